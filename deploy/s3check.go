package deploy

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ExpectedIngestSubdirs are the sub-directories an ingestable data path
// must contain.
var ExpectedIngestSubdirs = []string{"L2_Products", "L2_Products_Lite"}

// ObjectLister is the slice of the S3 API used for path verification.
type ObjectLister interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// NewS3Client builds an S3 client from the ambient AWS configuration.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("deploy: load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// VerifyIngestPath checks that dataPath under the base S3 URL exists,
// contains entries, and holds the expected product sub-directories.
// Returns the full S3 URL on success.
func VerifyIngestPath(ctx context.Context, lister ObjectLister, basePath, dataPath string, logger Logger) (string, error) {
	// A trailing slash makes the prefix behave as a directory.
	if !strings.HasSuffix(dataPath, "/") {
		dataPath += "/"
	}

	fullURL := strings.TrimRight(basePath, "/") + "/" + dataPath
	parts, err := url.Parse(fullURL)
	if err != nil || parts.Scheme != "s3" || parts.Host == "" {
		return "", validationErrorf("invalid S3 URL: %s", fullURL)
	}

	prefix := strings.TrimPrefix(parts.Path, "/")
	resp, err := lister.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(parts.Host),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return "", fmt.Errorf("deploy: list %s: %w", fullURL, err)
	}

	if len(resp.Contents) == 0 && len(resp.CommonPrefixes) == 0 {
		return "", validationErrorf("could not find anything at S3 URL: %s", fullURL)
	}
	if len(resp.CommonPrefixes) == 0 {
		return "", validationErrorf("no files or directories found at %s", fullURL)
	}

	subdirs := make([]string, 0, len(resp.CommonPrefixes))
	for _, cp := range resp.CommonPrefixes {
		if cp.Prefix == nil {
			continue
		}
		subdirs = append(subdirs, path.Base(strings.TrimRight(*cp.Prefix, "/")))
	}

	for _, expected := range ExpectedIngestSubdirs {
		found := false
		for _, subdir := range subdirs {
			if subdir == expected {
				found = true
				break
			}
		}
		if !found {
			return "", validationErrorf("did not find %s under %s", expected, fullURL)
		}
	}

	if logger != nil {
		logger.Infof("deploy: ingesting data from S3 path: %s", fullURL)
		logger.Infof("deploy: path contains:")
		for _, subdir := range subdirs {
			logger.Infof("deploy:  - %s", subdir)
		}
	}
	return fullURL, nil
}
