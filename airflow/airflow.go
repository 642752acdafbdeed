// Package airflow triggers workflow runs on the Airflow instance serving
// the venue's science processing system. Triggering is fire-and-forget:
// one POST per run, no polling and no cancellation.
package airflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultDAGName is the modular CWL runner DAG triggered for all TROPESS
// processing, unless overridden via AIRFLOW_DAG_NAME.
const DefaultDAGName = "cwl_dag_modular"

// Compute resources requested for every run.
const (
	RequestInstanceType = "t3.medium"
	RequestStorage      = "10Gi"
)

// Logger represents the minimal logging interface used by the client.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// TokenProvider supplies the bearer token for the Airflow REST API.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// TriggerError reports a failed dagRuns POST.
type TriggerError struct {
	URL    string
	Status int
	Body   string
}

func (e *TriggerError) Error() string {
	return fmt.Sprintf("airflow: error triggering DAG at %s (status=%d): %s", e.URL, e.Status, e.Body)
}

// Client posts DAG run requests against one Airflow API endpoint.
type Client struct {
	apiURL     string
	dagName    string
	httpClient *http.Client
	tokens     TokenProvider
	logger     Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDAGName overrides the triggered DAG.
func WithDAGName(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.dagName = name
		}
	}
}

// WithHTTPClient injects a custom http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTokenProvider registers the bearer token source.
func WithTokenProvider(tokens TokenProvider) Option {
	return func(c *Client) {
		c.tokens = tokens
	}
}

// WithLogger registers a logger used for trigger lifecycle events.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a Client for the given Airflow API base URL.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	if apiURL == "" {
		return nil, fmt.Errorf("airflow: api URL is required")
	}
	if _, err := url.Parse(apiURL); err != nil {
		return nil, fmt.Errorf("airflow: invalid api URL %q: %w", apiURL, err)
	}

	c := &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		dagName:    DefaultDAGName,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RunRequest describes one DAG run.
type RunRequest struct {
	RunID           string
	LogicalDate     time.Time
	ProcessArgs     map[string]any
	ProcessWorkflow string
	StacJSON        string
	UseECR          bool
	UseStacAuth     bool
}

// body renders the dagRuns POST payload. ProcessArgs are JSON-stringified
// once more inside the conf, as the DAG expects.
func (r RunRequest) body() (map[string]any, error) {
	args, err := json.Marshal(r.ProcessArgs)
	if err != nil {
		return nil, fmt.Errorf("airflow: encode process args: %w", err)
	}

	logicalDate := r.LogicalDate
	if logicalDate.IsZero() {
		logicalDate = time.Now().UTC()
	}

	return map[string]any{
		"dag_run_id":   r.RunID,
		"logical_date": logicalDate.UTC().Format("2006-01-02T15:04:05Z"),
		"conf": map[string]any{
			"process_args":          string(args),
			"process_workflow":      r.ProcessWorkflow,
			"stac_json":             r.StacJSON,
			"request_instance_type": RequestInstanceType,
			"request_storage":       RequestStorage,
			"use_ecr":               r.UseECR,
			"unity_stac_auth_type":  r.UseStacAuth,
		},
	}, nil
}

// Trigger posts a DAG run. With commit false all assembly and validation
// still runs and the payload is logged, but no request is issued.
func (c *Client) Trigger(ctx context.Context, req RunRequest, commit bool) error {
	payload, err := req.body()
	if err != nil {
		return err
	}

	triggerURL := fmt.Sprintf("%s/dags/%s/dagRuns", c.apiURL, c.dagName)

	if c.logger != nil {
		c.logger.Infof("airflow: using API URL: %s", triggerURL)
		encoded, _ := json.Marshal(payload)
		c.logger.Debugf("airflow: DAG parameters: %s", encoded)
	}

	if !commit {
		if c.logger != nil {
			c.logger.Infof("airflow: DAG dry-run only")
		}
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, triggerURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if c.logger != nil {
		c.logger.Infof("airflow: triggering DAG at: %s", triggerURL)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("airflow: trigger request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return &TriggerError{URL: triggerURL, Status: resp.StatusCode, Body: string(respBody)}
	}

	if c.logger != nil {
		c.logger.Debugf("airflow: response: %s", respBody)
	}
	return nil
}
