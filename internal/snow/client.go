// Package snow is the ServiceNow Table API client. Every record operation
// in the bridge funnels through the four generic table calls here.
package snow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Record is one Table API row. The instance returns every field as a
// string regardless of the underlying column type.
type Record map[string]string

// HeaderProvider supplies outbound authentication headers. Invalidate is
// called after a 401 so a cached OAuth token can be refreshed.
type HeaderProvider interface {
	Headers(ctx context.Context) (http.Header, error)
	Invalidate()
}

// Client issues requests against a single instance's Table API.
type Client struct {
	baseURL string
	auth    HeaderProvider
	http    *http.Client
}

// NewClient builds a Table API client for the instance at baseURL
// (e.g. https://acme.service-now.com). Timeout bounds every request;
// callers narrow it further per call with context deadlines.
func NewClient(baseURL string, auth HeaderProvider, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		auth:    auth,
		http:    &http.Client{Timeout: timeout},
	}
}

type listEnvelope struct {
	Result []Record `json:"result"`
}

type recordEnvelope struct {
	Result Record `json:"result"`
}

// List fetches records from a table.
func (c *Client) List(ctx context.Context, table string, q Query) ([]Record, error) {
	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, c.tableURL(table, "")+"?"+q.Values().Encode(), nil, &env); err != nil {
		return nil, fmt.Errorf("listing %s: %w", table, err)
	}
	return env.Result, nil
}

// Get fetches a single record by sys_id.
func (c *Client) Get(ctx context.Context, table, sysID string, q Query) (Record, error) {
	url := c.tableURL(table, sysID)
	if params := q.Values().Encode(); params != "" {
		url += "?" + params
	}
	var env recordEnvelope
	if err := c.do(ctx, http.MethodGet, url, nil, &env); err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", table, sysID, err)
	}
	return env.Result, nil
}

// Create inserts a record.
func (c *Client) Create(ctx context.Context, table string, body map[string]any) (Record, error) {
	var env recordEnvelope
	if err := c.do(ctx, http.MethodPost, c.tableURL(table, ""), body, &env); err != nil {
		return nil, fmt.Errorf("creating %s record: %w", table, err)
	}
	return env.Result, nil
}

// Update patches a record by sys_id. Only the fields in body change.
func (c *Client) Update(ctx context.Context, table, sysID string, body map[string]any) (Record, error) {
	var env recordEnvelope
	if err := c.do(ctx, http.MethodPatch, c.tableURL(table, sysID), body, &env); err != nil {
		return nil, fmt.Errorf("updating %s/%s: %w", table, sysID, err)
	}
	return env.Result, nil
}

func (c *Client) tableURL(table, sysID string) string {
	url := c.baseURL + "/api/now/table/" + table
	if sysID != "" {
		url += "/" + sysID
	}
	return url
}

func (c *Client) do(ctx context.Context, method, url string, body map[string]any, out any) error {
	err := c.doOnce(ctx, method, url, body, out)
	if err == ErrUnauthorized && c.auth != nil {
		// Stale OAuth token; refresh and retry exactly once.
		c.auth.Invalidate()
		err = c.doOnce(ctx, method, url, body, out)
	}
	return err
}

func (c *Client) doOnce(ctx context.Context, method, url string, body map[string]any, out any) error {
	table, start := tableFromURL(url), time.Now()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if c.auth != nil {
		headers, err := c.auth.Headers(ctx)
		if err != nil {
			return fmt.Errorf("resolving auth headers: %w", err)
		}
		for k, vs := range headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	requestDuration.WithLabelValues(table, method).Observe(time.Since(start).Seconds())
	if err != nil {
		requestsTotal.WithLabelValues(table, method, "transport_error").Inc()
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		requestsTotal.WithLabelValues(table, method, "unauthorized").Inc()
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		requestsTotal.WithLabelValues(table, method, "not_found").Inc()
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		requestsTotal.WithLabelValues(table, method, "error").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	requestsTotal.WithLabelValues(table, method, "ok").Inc()
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// tableFromURL extracts the table name from a Table API URL for metric
// labels; label cardinality stays bounded by the instance's table set.
func tableFromURL(url string) string {
	const marker = "/api/now/table/"
	i := bytes.Index([]byte(url), []byte(marker))
	if i < 0 {
		return "unknown"
	}
	rest := url[i+len(marker):]
	for j := 0; j < len(rest); j++ {
		if rest[j] == '/' || rest[j] == '?' {
			return rest[:j]
		}
	}
	return rest
}
