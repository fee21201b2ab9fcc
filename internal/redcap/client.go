package redcap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenFunc resolves the API token for a project. Tokens are per-project in
// the platform, so the client stays ignorant of where they are stored.
type TokenFunc func(ctx context.Context, projectID string) (string, error)

// Client talks to the platform's HTTP API. All calls are form-encoded POSTs
// to a single endpoint, dispatched on the content/action parameters.
type Client struct {
	baseURL string
	token   TokenFunc
	http    *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient constructs an API client for the store at baseURL.
func NewClient(baseURL string, token TokenFunc, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("redcap base URL is required")
	}
	if token == nil {
		return nil, fmt.Errorf("redcap token source is required")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) FetchRecords(ctx context.Context, projectID string, opts FetchOptions) ([]Record, error) {
	form := url.Values{}
	form.Set("content", "record")
	form.Set("action", "export")
	form.Set("format", "json")
	form.Set("type", "flat")
	setIndexed(form, "fields", opts.Fields)
	setIndexed(form, "records", opts.Records)
	setIndexed(form, "events", opts.Events)

	var records []Record
	if err := c.call(ctx, projectID, form, &records); err != nil {
		return nil, fmt.Errorf("fetch records: %w", err)
	}
	return records, nil
}

func (c *Client) SaveRecords(ctx context.Context, projectID string, records []Record) (SaveResult, error) {
	payload, err := json.Marshal(records)
	if err != nil {
		return SaveResult{}, fmt.Errorf("encode records: %w", err)
	}

	form := url.Values{}
	form.Set("content", "record")
	form.Set("action", "import")
	form.Set("format", "json")
	form.Set("type", "flat")
	form.Set("overwriteBehavior", "normal")
	form.Set("returnContent", "count")
	form.Set("data", string(payload))

	var result SaveResult
	if err := c.call(ctx, projectID, form, &result); err != nil {
		return SaveResult{}, fmt.Errorf("save records: %w", err)
	}
	return result, nil
}

func (c *Client) RecordIDField(ctx context.Context, projectID string) (string, error) {
	form := url.Values{}
	form.Set("content", "exportFieldNames")
	form.Set("format", "json")

	var fields []struct {
		OriginalFieldName string `json:"original_field_name"`
	}
	if err := c.call(ctx, projectID, form, &fields); err != nil {
		return "", fmt.Errorf("export field names: %w", err)
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("project %s has no fields", projectID)
	}
	// The record identifier is always the first field in the data dictionary.
	return fields[0].OriginalFieldName, nil
}

func (c *Client) EventID(ctx context.Context, projectID, uniqueEventName string) (string, error) {
	form := url.Values{}
	form.Set("content", "event")
	form.Set("format", "json")

	var events []struct {
		EventID         json.Number `json:"event_id"`
		UniqueEventName string      `json:"unique_event_name"`
	}
	if err := c.call(ctx, projectID, form, &events); err != nil {
		return "", fmt.Errorf("export events: %w", err)
	}
	for _, ev := range events {
		if ev.UniqueEventName == uniqueEventName {
			return ev.EventID.String(), nil
		}
	}
	return "", fmt.Errorf("event %q not defined in project %s", uniqueEventName, projectID)
}

// call posts one form to the API endpoint and decodes the JSON response into
// out. Non-2xx responses are surfaced with the platform's error message when
// one is present.
func (c *Client) call(ctx context.Context, projectID string, form url.Values, out any) error {
	token, err := c.token(ctx, projectID)
	if err != nil {
		return fmt.Errorf("resolve token for project %s: %w", projectID, err)
	}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("api status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("api status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func setIndexed(form url.Values, key string, values []string) {
	for i, v := range values {
		form.Set(key+"["+strconv.Itoa(i)+"]", v)
	}
}
