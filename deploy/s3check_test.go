package deploy

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	input  *s3.ListObjectsV2Input
	output *s3.ListObjectsV2Output
	err    error
}

func (f *fakeLister) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return f.output, nil
}

func prefixes(names ...string) []types.CommonPrefix {
	out := make([]types.CommonPrefix, 0, len(names))
	for _, name := range names {
		out = append(out, types.CommonPrefix{Prefix: aws.String(name)})
	}
	return out
}

func TestVerifyIngestPath(t *testing.T) {
	lister := &fakeLister{output: &s3.ListObjectsV2Output{
		CommonPrefixes: prefixes(
			"muses/2024-01-05/L2_Products/",
			"muses/2024-01-05/L2_Products_Lite/",
			"muses/2024-01-05/Logs/",
		),
	}}

	fullURL, err := VerifyIngestPath(context.Background(), lister, "s3://tropess-bucket/muses", "2024-01-05", nil)
	require.NoError(t, err)
	assert.Equal(t, "s3://tropess-bucket/muses/2024-01-05/", fullURL)

	require.NotNil(t, lister.input)
	assert.Equal(t, "tropess-bucket", aws.ToString(lister.input.Bucket))
	assert.Equal(t, "muses/2024-01-05/", aws.ToString(lister.input.Prefix))
	assert.Equal(t, "/", aws.ToString(lister.input.Delimiter))
}

func TestVerifyIngestPathMissingSubdir(t *testing.T) {
	lister := &fakeLister{output: &s3.ListObjectsV2Output{
		CommonPrefixes: prefixes("muses/2024-01-05/L2_Products/"),
	}}

	_, err := VerifyIngestPath(context.Background(), lister, "s3://tropess-bucket/muses", "2024-01-05", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "L2_Products_Lite")
}

func TestVerifyIngestPathEmpty(t *testing.T) {
	lister := &fakeLister{output: &s3.ListObjectsV2Output{}}

	_, err := VerifyIngestPath(context.Background(), lister, "s3://tropess-bucket/muses", "nonesuch", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "could not find anything")
}

func TestVerifyIngestPathBadURL(t *testing.T) {
	lister := &fakeLister{}
	_, err := VerifyIngestPath(context.Background(), lister, "https://not-s3/muses", "2024-01-05", nil)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Nil(t, lister.input)
}
