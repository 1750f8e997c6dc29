package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const (
	// DefaultTimeout applies to every call except document uploads.
	DefaultTimeout = 30 * time.Second

	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerUserAgent     = "User-Agent"
	contentTypeJSON     = "application/json"
	clientUserAgent     = "hirenest-client/1.0"
)

// TokenSource supplies the bearer token for outgoing requests.
type TokenSource interface {
	AccessToken() string
}

// HTTPClient implements Client over the HireNest REST API. The refresh
// credential is an HTTP-only cookie; it lives in the cookie jar and is never
// read by this package.
type HTTPClient struct {
	baseURL       string
	httpClient    *http.Client
	timeout       time.Duration
	uploadTimeout time.Duration
	tokens        TokenSource
}

var _ Client = (*HTTPClient)(nil)

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its Jar is kept if
// set, otherwise a fresh cookie jar is attached.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. Unless WithUploadTimeout is
// also given, uploads get twice this value.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.timeout = d
	}
}

func WithUploadTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		c.uploadTimeout = d
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) {
		c.tokens = ts
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	if c.uploadTimeout <= 0 {
		c.uploadTimeout = 2 * c.timeout
	}
	return c, nil
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) UploadTimeout() time.Duration {
	return c.uploadTimeout
}

// doRequest sends a JSON request and decodes a JSON response into result.
func (c *HTTPClient) doRequest(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	contentType := ""
	if body != nil {
		contentType = contentTypeJSON
	}
	return c.send(ctx, c.timeout, method, path, query, bodyReader, contentType, result)
}

// doMultipart posts a multipart/form-data body with the upload timeout.
func (c *HTTPClient) doMultipart(ctx context.Context, path string, fields map[string]string, fileField string, doc Document, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, doc.FileName))
	ct := doc.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set(headerContentType, ct)

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, doc.Content); err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.send(ctx, c.uploadTimeout, http.MethodPost, path, nil, &buf, w.FormDataContentType(), result)
}

func (c *HTTPClient) send(ctx context.Context, timeout time.Duration, method, path string, query url.Values, body io.Reader, contentType string, result any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeJSON)
	req.Header.Set(headerUserAgent, clientUserAgent)
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}
	if c.tokens != nil {
		if tok := c.tokens.AccessToken(); tok != "" {
			req.Header.Set(headerAuthorization, "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode >= 400 {
		return parseError(resp.StatusCode, respBody)
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := decodeBody(respBody, result); err != nil {
			return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: "Unexpected response from server.", Err: err}
		}
	}
	return nil
}

// decodeBody accepts both bare payloads and payloads wrapped in {"data": ...}.
func decodeBody(b []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		b = env.Data
	}
	return json.Unmarshal(b, out)
}

// parseError turns an error response into *Error, keeping the server's
// message verbatim when it sent one.
func parseError(statusCode int, body []byte) error {
	msg := ""

	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	var flat struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	switch {
	case json.Unmarshal(body, &nested) == nil && nested.Error.Message != "":
		msg = nested.Error.Message
	case json.Unmarshal(body, &flat) == nil && (flat.Message != "" || flat.Error != ""):
		msg = flat.Message
		if msg == "" {
			msg = flat.Error
		}
	default:
		if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") && !strings.HasPrefix(text, "<") {
			msg = text
		}
	}

	kind := kindForStatus(statusCode)
	if msg == "" {
		if kind == KindNetwork {
			msg = GenericNetworkMessage
		} else {
			msg = http.StatusText(statusCode)
		}
	}
	return &Error{Kind: kind, StatusCode: statusCode, Message: msg}
}

// IsCanceled reports whether err came from the caller's context being
// cancelled rather than from the server.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
