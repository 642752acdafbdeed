package deploy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCWL = `cwlVersion: v1.2
class: Workflow
requirements:
  DockerRequirement:
    dockerPull: registry.example.com/tropess/py-tropess:1.4.2
inputs: {}
outputs: {}
steps: {}
`

func writeWorkflow(t *testing.T, baseDir, app, project, venue string) string {
	t.Helper()
	dir := filepath.Join(baseDir, ApplicationDirs[app])
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "process-"+project+"-"+venue+".cwl")
	require.NoError(t, os.WriteFile(path, []byte(testCWL), 0o644))
	return path
}

func TestDockerVersionFromCWL(t *testing.T) {
	baseDir := t.TempDir()
	path := writeWorkflow(t, baseDir, "py_tropess", "unity", "ops")

	version, err := DockerVersionFromCWL(path)
	require.NoError(t, err)
	assert.Equal(t, "1.4.2", version)
}

func TestDockerVersionMissingTag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "process.cwl")
	require.NoError(t, os.WriteFile(path, []byte("requirements:\n  DockerRequirement:\n    dockerPull: image-without-tag\n"), 0o644))

	_, err := DockerVersionFromCWL(path)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestWorkflowURL(t *testing.T) {
	baseDir := t.TempDir()
	writeWorkflow(t, baseDir, "py_tropess", "unity", "ops")

	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
	}))
	defer server.Close()

	artifacts := NewArtifacts(baseDir,
		WithBaseURL(server.URL+"/"),
		WithHTTPClient(server.Client()),
	)

	workflowURL, dockerVersion, err := artifacts.WorkflowURL(context.Background(), "py_tropess", "unity", "ops")
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/py-tropess/process-unity-ops.cwl", workflowURL)
	assert.Equal(t, "1.4.2", dockerVersion)
	assert.Equal(t, []string{"/py-tropess/process-unity-ops.cwl"}, requested)
}

func TestWorkflowURLMissingLocalFileFailsBeforeNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no network call expected when the local template is missing")
	}))
	defer server.Close()

	artifacts := NewArtifacts(t.TempDir(),
		WithBaseURL(server.URL+"/"),
		WithHTTPClient(server.Client()),
	)

	_, _, err := artifacts.WorkflowURL(context.Background(), "data_ingest", "unity", "ops")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "process-unity-ops.cwl")
}

func TestVerifyURLNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	artifacts := NewArtifacts(t.TempDir(), WithHTTPClient(server.Client()))
	err := artifacts.VerifyURL(context.Background(), server.URL+"/missing")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, err.Error(), "status code: 404")
}

func TestReadJobParameters(t *testing.T) {
	baseDir := t.TempDir()
	dir := filepath.Join(baseDir, ApplicationDirs["data_ingest"])
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "example_job_input.json"),
		[]byte(`{"input_data_base_path": "s3://tropess-bucket/muses"}`),
		0o644,
	))

	params, err := ReadJobParameters(baseDir, "data_ingest")
	require.NoError(t, err)
	assert.Equal(t, "s3://tropess-bucket/muses", params["input_data_base_path"])

	_, err = ReadJobParameters(baseDir, "nonesuch")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}
