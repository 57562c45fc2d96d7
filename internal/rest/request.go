// Package rest provides a small composable HTTP request builder used for the
// Testmo API. Requests are value types: every modifier returns an independent
// copy, so partially built requests can be shared and extended freely.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/qa-tooling/testmo-overview/internal/core"
)

// StatusError is returned when the server answers with a status code above
// 299. It carries the status code and the response text for diagnostics.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if body == "" {
		body = "(no text)"
	}
	return fmt.Sprintf("error response: %d: %s", e.StatusCode, body)
}

// Interface guard for StatusError
var _ error = &StatusError{}

// Request describes an HTTP request against a REST API. The zero value is
// usable as a template.
type Request struct {
	BaseURL  string
	Endpoint string
	Params   url.Values
	Headers  http.Header
	Body     any
}

// New creates a Request for the given base URL.
func New(baseURL string) Request {
	return Request{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Clone returns a deep copy of the request.
func (r Request) Clone() Request {
	clone := r
	if r.Params != nil {
		clone.Params = url.Values{}
		for key, values := range r.Params {
			clone.Params[key] = append([]string(nil), values...)
		}
	}
	if r.Headers != nil {
		clone.Headers = r.Headers.Clone()
	}
	return clone
}

// WithParam returns a copy of the request with a query parameter set.
func (r Request) WithParam(key, value string) Request {
	clone := r.Clone()
	if clone.Params == nil {
		clone.Params = url.Values{}
	}
	clone.Params.Set(key, value)
	return clone
}

// WithHeader returns a copy of the request with a header set.
func (r Request) WithHeader(key, value string) Request {
	clone := r.Clone()
	if clone.Headers == nil {
		clone.Headers = http.Header{}
	}
	clone.Headers.Set(key, value)
	return clone
}

// WithBody returns a copy of the request with the body set. A string body of
// the form "@path" is read from that file when the request is sent; any other
// body is JSON-encoded for POST and PUT.
func (r Request) WithBody(body any) Request {
	clone := r.Clone()
	clone.Body = body
	return clone
}

// Merge returns a copy of the request with the other request's query
// parameters merged in. Parameters from other overwrite existing ones.
func (r Request) Merge(other Request) Request {
	clone := r.Clone()
	if clone.Params == nil && len(other.Params) > 0 {
		clone.Params = url.Values{}
	}
	for key, values := range other.Params {
		clone.Params[key] = append([]string(nil), values...)
	}
	return clone
}

// ExtendEndpoint returns a copy of the request with path segments appended to
// the endpoint.
func (r Request) ExtendEndpoint(segments ...string) Request {
	clone := r.Clone()
	endpoint := strings.TrimRight(clone.Endpoint, "/")
	for _, segment := range segments {
		endpoint = endpoint + "/" + strings.TrimLeft(segment, "/")
	}
	clone.Endpoint = strings.TrimLeft(endpoint, "/")
	return clone
}

// FullURL constructs the full URL including the query string.
func (r Request) FullURL() string {
	full := strings.TrimRight(r.BaseURL, "/")
	if endpoint := strings.TrimLeft(r.Endpoint, "/"); endpoint != "" {
		full = full + "/" + endpoint
	}
	if len(r.Params) > 0 {
		full = full + "?" + r.Params.Encode()
	}
	return full
}

// FromURL creates a Request from a full URL, validating it against the base
// URL and splitting it into endpoint and query parameters. The template
// contributes everything besides endpoint and parameters (headers, body).
func FromURL(baseURL, fullURL string, template Request) (Request, error) {
	if !strings.HasPrefix(fullURL, baseURL) {
		return Request{}, fmt.Errorf("the full URL must start with the base URL")
	}

	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		return Request{}, fmt.Errorf("failed to parse base URL: %w", err)
	}
	parsedFull, err := url.Parse(fullURL)
	if err != nil {
		return Request{}, fmt.Errorf("failed to parse full URL: %w", err)
	}

	request := template.Clone()
	request.BaseURL = strings.TrimRight(baseURL, "/")
	request.Endpoint = strings.TrimLeft(strings.TrimPrefix(parsedFull.Path, parsedBase.Path), "/")
	if query := parsedFull.Query(); len(query) > 0 {
		request.Params = query
	}
	return request, nil
}

func (r Request) requestBody(method string) (io.Reader, string, error) {
	if body, ok := r.Body.(string); ok && strings.HasPrefix(body, "@") && len(strings.Fields(body)) == 1 {
		path := body[1:]
		data, err := os.ReadFile(path) // #nosec G304 -- the body file path is supplied by the caller on purpose
		if err != nil {
			return nil, "", fmt.Errorf("body file '%s' not found: %w", path, err)
		}
		return bytes.NewReader(data), "", nil
	}

	if r.Body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}

	return nil, "", nil
}

// Do sends the request with the given method and returns the raw response
// body. Responses with a status code above 299 are returned as *StatusError.
func (r Request) Do(ctx context.Context, client *http.Client, method string) ([]byte, error) {
	start := time.Now()
	data, err := r.do(ctx, client, method)
	core.LogAPIRequest(r.Endpoint, time.Since(start).Seconds(), err)
	return data, err
}

func (r Request) do(ctx context.Context, client *http.Client, method string) ([]byte, error) {
	method = strings.ToUpper(method)
	fullURL := r.FullURL()

	body, contentType, err := r.requestBody(method)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range r.Headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	zap.L().Debug("Sending request", zap.String("method", method), zap.String("url", fullURL))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer core.LogDeferredError(resp.Body.Close)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	return data, nil
}

// DoJSON sends the request and decodes the JSON response into the given value.
func (r Request) DoJSON(ctx context.Context, client *http.Client, method string, into any) error {
	data, err := r.Do(ctx, client, method)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Get sends the request as a GET.
func (r Request) Get(ctx context.Context, client *http.Client) ([]byte, error) {
	return r.Do(ctx, client, http.MethodGet)
}

// GetJSON sends the request as a GET and decodes the JSON response.
func (r Request) GetJSON(ctx context.Context, client *http.Client, into any) error {
	return r.DoJSON(ctx, client, http.MethodGet, into)
}

// String returns a developer-friendly representation of the request.
func (r Request) String() string {
	return fmt.Sprintf("Request(base_url='%s', endpoint='%s', params=%v)", r.BaseURL, r.Endpoint, r.Params)
}
