// Package mdps is a client for the MDPS/Unity data services (DAPA) REST
// API: collection registry, custom metadata, DAAC archive configuration
// and STAC catalog queries.
package mdps

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// dapaPrefix is the path prefix of the data services API on the venue
// endpoint.
const dapaPrefix = "/am-uds-dapa"

// Client is a reusable MDPS data services client.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	defaultHeaders http.Header
	tokens         TokenProvider
	retryPolicy    RetryPolicy
	logger         Logger
}

// New constructs a Client with provided options.
func New(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:     &http.Client{},
		defaultHeaders: make(http.Header),
		retryPolicy:    DefaultRetryPolicy,
	}
	c.defaultHeaders.Set("Accept", "application/json")
	c.defaultHeaders.Set("Content-Type", "application/json")
	c.defaultHeaders.Set("User-Agent", "tropess-mdps-tools/0.1")

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.baseURL == nil {
		return nil, ErrInvalidBaseURL
	}
	if c.httpClient == nil {
		return nil, ErrNilHTTPClient
	}
	return c, nil
}

// Collections returns a service for collection registry operations.
func (c *Client) Collections() *CollectionService {
	return &CollectionService{client: c}
}

// Metadata returns a service for custom metadata definitions.
func (c *Client) Metadata() *MetadataService {
	return &MetadataService{client: c}
}

// Archive returns a service for DAAC archive configuration.
func (c *Client) Archive() *ArchiveService {
	return &ArchiveService{client: c}
}

// Catalog returns a service for STAC catalog queries.
func (c *Client) Catalog() *CatalogService {
	return &CatalogService{client: c}
}

func (c *Client) buildURL(endpoint string, query url.Values) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	u := *c.baseURL
	u.Path = path.Join(c.baseURL.Path, dapaPrefix, endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body any) (*http.Request, error) {
	urlStr := c.buildURL(endpoint, query)

	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
	if err != nil {
		return nil, err
	}

	for key, values := range c.defaultHeaders {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.logger != nil {
		c.logger.Debugf("mdps: %s %s", req.Method, req.URL)
	}

	send := func() (*http.Response, error) {
		// Rewind the body when re-issuing, the previous attempt
		// consumed it.
		if req.Body != nil && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}
		return c.httpClient.Do(req)
	}

	var (
		resp *http.Response
		err  error
	)
	// Mutating calls are issued at most once; only idempotent reads go
	// through the retry loop.
	switch req.Method {
	case http.MethodGet, http.MethodHead:
		resp, err = c.retry(ctx, send)
	default:
		resp, err = send()
	}
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	data, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if readErr != nil {
		return nil, readErr
	}

	apiErr := &APIError{Status: resp.StatusCode, Raw: data}
	if err := json.Unmarshal(data, apiErr); err != nil {
		// Fallback to plain message.
		apiErr.Detail = string(data)
	}
	if c.logger != nil {
		c.logger.Errorf("mdps: request failed status=%d url=%s", resp.StatusCode, req.URL)
	}
	return nil, apiErr
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, query url.Values, body any, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, query, body)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}
