// Package deploy locates and validates the deployment artifacts a workflow
// run depends on: the per-venue CWL workflow template, its published URL,
// the stage-in STAC document, the default job parameters, and the S3 input
// data layout.
package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultBaseURL is where deployment artifacts are published for Airflow
// to fetch.
const DefaultBaseURL = "https://raw.githubusercontent.com/unity-sds/mdps-tropess-deploy/refs/heads/main/"

// ApplicationDirs maps an application name to its artifact directory.
var ApplicationDirs = map[string]string{
	"data_ingest": "mdps-muses-data-ingest",
	"py_tropess":  "py-tropess",
}

// jobParameterFilename is the per-application default CWL parameter file.
const jobParameterFilename = "example_job_input.json"

// stageInFilename is the empty stage-in STAC document used by runs that
// stage data themselves.
const stageInFilename = "stage_in.json"

// ValidationError reports a deployment artifact or input layout that
// failed verification. Validation failures happen before any workflow is
// triggered.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return "deploy: " + e.msg }

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// Logger represents the minimal logging interface used here.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// Artifacts resolves deployment files for one checkout of the deploy
// repository.
type Artifacts struct {
	BaseDir    string
	BaseURL    string
	httpClient *http.Client
	logger     Logger
}

// ArtifactsOption configures Artifacts.
type ArtifactsOption func(*Artifacts)

// WithHTTPClient injects a custom http.Client for URL verification.
func WithHTTPClient(httpClient *http.Client) ArtifactsOption {
	return func(a *Artifacts) {
		if httpClient != nil {
			a.httpClient = httpClient
		}
	}
}

// WithBaseURL overrides the published artifact base URL.
func WithBaseURL(baseURL string) ArtifactsOption {
	return func(a *Artifacts) {
		if baseURL != "" {
			a.BaseURL = baseURL
		}
	}
}

// WithLogger registers a logger.
func WithLogger(logger Logger) ArtifactsOption {
	return func(a *Artifacts) {
		a.logger = logger
	}
}

// NewArtifacts builds an Artifacts rooted at the local deploy checkout.
func NewArtifacts(baseDir string, opts ...ArtifactsOption) *Artifacts {
	a := &Artifacts{
		BaseDir:    baseDir,
		BaseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func applicationDir(app string) (string, error) {
	dir, ok := ApplicationDirs[app]
	if !ok {
		return "", validationErrorf("unknown application %q", app)
	}
	return dir, nil
}

// workflowFilename is the repository-relative path of the CWL template for
// one application on one project/venue.
func workflowFilename(app, project, venue string) (string, error) {
	dir, err := applicationDir(app)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/process-%s-%s.cwl", dir, project, venue), nil
}

// WorkflowURL resolves the published URL of the application's workflow
// template and the docker image version it pins. The template must exist
// in the local checkout before the published URL is trusted; a missing
// local file fails before any network call.
func (a *Artifacts) WorkflowURL(ctx context.Context, app, project, venue string) (string, string, error) {
	relative, err := workflowFilename(app, project, venue)
	if err != nil {
		return "", "", err
	}

	localPath := filepath.Join(a.BaseDir, filepath.FromSlash(relative))
	if _, err := os.Stat(localPath); err != nil {
		return "", "", validationErrorf("could not find process CWL file: %s", localPath)
	}

	dockerVersion, err := DockerVersionFromCWL(localPath)
	if err != nil {
		return "", "", err
	}

	workflowURL := a.BaseURL + relative
	if err := a.VerifyURL(ctx, workflowURL); err != nil {
		return "", "", err
	}

	if a.logger != nil {
		a.logger.Infof("deploy: using workflow CWL: %s", workflowURL)
	}
	return workflowURL, dockerVersion, nil
}

// StageInURL resolves and verifies the published URL of the application's
// empty stage-in STAC document.
func (a *Artifacts) StageInURL(ctx context.Context, app string) (string, error) {
	dir, err := applicationDir(app)
	if err != nil {
		return "", err
	}
	stageInURL := a.BaseURL + dir + "/" + stageInFilename
	if err := a.VerifyURL(ctx, stageInURL); err != nil {
		return "", err
	}
	if a.logger != nil {
		a.logger.Infof("deploy: using STAC JSON: %s", stageInURL)
	}
	return stageInURL, nil
}

// VerifyURL checks that a published file URL answers 200.
func (a *Artifacts) VerifyURL(ctx context.Context, rawURL string) error {
	if _, err := url.Parse(rawURL); err != nil {
		return validationErrorf("invalid file url: %s", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("deploy: verify %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return validationErrorf("invalid file url: %s, get failed with status code: %d", rawURL, resp.StatusCode)
	}
	return nil
}

// DockerVersionFromCWL extracts the image tag of the DockerRequirement
// pinned by a CWL workflow document.
func DockerVersionFromCWL(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("deploy: read CWL file: %w", err)
	}

	var doc struct {
		Requirements struct {
			DockerRequirement struct {
				DockerPull string `yaml:"dockerPull"`
			} `yaml:"DockerRequirement"`
		} `yaml:"requirements"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("deploy: parse CWL file %s: %w", path, err)
	}

	dockerPull := doc.Requirements.DockerRequirement.DockerPull
	if dockerPull == "" {
		return "", validationErrorf("no DockerRequirement.dockerPull in %s", path)
	}

	idx := strings.LastIndex(dockerPull, ":")
	if idx < 0 {
		return "", validationErrorf("docker image %q has no version tag", dockerPull)
	}
	return dockerPull[idx+1:], nil
}

// ReadJobParameters loads the application's default job parameter file.
func ReadJobParameters(baseDir, app string) (map[string]any, error) {
	dir, err := applicationDir(app)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(baseDir, dir, jobParameterFilename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("deploy: read job parameter file: %w", err)
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("deploy: parse job parameter file %s: %w", path, err)
	}
	return params, nil
}
