package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"ttx/internal/models"
	"ttx/internal/shared"
)

// togglAuthPassword is the fixed placeholder Toggl expects as the Basic auth
// password when the username is an API token.
const togglAuthPassword = "api_token"

// APIResponse is the normalized result of one tool API call. Body holds the
// raw bytes; JSONData is populated when the response declared a JSON content
// type and the body parsed. An empty or unparseable body on a successful
// response is not an error (DELETE responses are commonly empty).
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Decode unmarshals the response body into v. An empty body is a no-op so
// callers can decode optimistically.
func (r *APIResponse) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// APIError describes a non-2xx response from a tool API. Callers above the
// gateway branch on StatusCode.
type APIError struct {
	Tool       models.ToolName
	StatusCode int
	StatusText string
	URL        string
	Headers    http.Header
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d %s (%s)", e.Tool, e.StatusCode, e.StatusText, e.URL)
}

// Unwrap classifies every APIError under [shared.ErrAPIRequest] so callers
// can test for "a tool API refused us" without caring which tool or status.
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// StatusOf returns the HTTP status carried by err when it is an [APIError],
// and 0 otherwise.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Gateway performs authenticated requests against either tool. Base URLs and
// credentials are injected so the gateway carries no environment detection.
type Gateway struct {
	httpClient  *http.Client
	baseURL     func(models.ToolName) string
	credentials func(models.ToolName) models.Credentials
}

// NewGateway creates a Gateway. client defaults to [http.DefaultClient].
func NewGateway(client *http.Client, baseURL func(models.ToolName) string, credentials func(models.ToolName) models.Credentials) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		httpClient:  client,
		baseURL:     baseURL,
		credentials: credentials,
	}
}

// Request performs one call against the given tool. path is joined to the
// tool's base URL; query may be nil; body, when non-nil, is serialized as
// JSON. Non-2xx statuses return an [*APIError].
func (g *Gateway) Request(ctx context.Context, tool models.ToolName, method, path string, query url.Values, body any) (*APIResponse, error) {
	fullURL := g.baseURL(tool) + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	g.authorize(req, tool)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Tool:       tool,
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			URL:        fullURL,
			Headers:    resp.Header,
		}
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       raw,
	}

	// JSON is only parsed when the server says it sent JSON; a parse failure
	// (empty DELETE bodies are common) leaves JSONData nil rather than
	// surfacing an error.
	if strings.Contains(resp.Header.Get("Content-Type"), "json") {
		var data any
		if err := json.Unmarshal(raw, &data); err == nil {
			apiResp.IsJSON = true
			apiResp.JSONData = data
		}
	}

	return apiResp, nil
}

// authorize sets the tool-specific authentication header. Toggl uses Basic
// auth with the API token as username; Clockify uses a static key header.
func (g *Gateway) authorize(req *http.Request, tool models.ToolName) {
	creds := g.credentials(tool)
	switch tool {
	case models.ToolToggl:
		token := base64.StdEncoding.EncodeToString(
			[]byte(creds.APIKey + ":" + togglAuthPassword),
		)
		req.Header.Set("Authorization", "Basic "+token)
	case models.ToolClockify:
		req.Header.Set("X-Api-Key", creds.APIKey)
	}
	req.Header.Set("Accept", "application/json")
}
