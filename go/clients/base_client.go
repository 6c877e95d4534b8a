package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Detail     string // the server's "detail" field when present
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("API returned status code: %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("API returned status code: %d, response: %s", e.StatusCode, e.Body)
}

type BaseClient struct {
	baseURL *url.URL
	client  *http.Client
	headers map[string]string

	csrfCookie string
	csrfHeader string
}

func NewBaseClient(baseURL string) (*BaseClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &BaseClient{
		baseURL: u,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		headers: make(map[string]string),
	}, nil
}

func (c *BaseClient) SetHeader(key, value string) {
	c.headers[key] = value
}

func (c *BaseClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// Jar exposes the session cookies so other transports can share the session.
func (c *BaseClient) Jar() http.CookieJar {
	return c.client.Jar
}

// BaseURL returns the parsed base URL.
func (c *BaseClient) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// EnableCSRF copies the named cookie into the named header on unsafe requests.
func (c *BaseClient) EnableCSRF(cookieName, headerName string) {
	c.csrfCookie = cookieName
	c.csrfHeader = headerName
}

// Cookie returns the value of a cookie the server set for the base URL.
func (c *BaseClient) Cookie(name string) string {
	for _, ck := range c.client.Jar.Cookies(c.baseURL) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *BaseClient) MakeRequest(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && c.csrfHeader != "" {
		if token := c.Cookie(c.csrfCookie); token != "" {
			req.Header.Set(c.csrfHeader, token)
		}
		req.Header.Set("Referer", c.baseURL.String())
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(responseBody)}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(responseBody, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return nil, apiErr
	}

	return responseBody, nil
}

func (c *BaseClient) Get(ctx context.Context, endpoint string) ([]byte, error) {
	return c.MakeRequest(ctx, http.MethodGet, endpoint, nil)
}

func (c *BaseClient) Post(ctx context.Context, endpoint string, body io.Reader) ([]byte, error) {
	return c.MakeRequest(ctx, http.MethodPost, endpoint, body)
}

// PostJSON marshals in (when non-nil), posts it and decodes the response into
// out (when non-nil and the body is not empty).
func (c *BaseClient) PostJSON(ctx context.Context, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	respBody, err := c.Post(ctx, endpoint, body)
	if err != nil {
		return err
	}
	return decodeInto(respBody, out)
}

// GetJSON fetches endpoint and decodes the response into out.
func (c *BaseClient) GetJSON(ctx context.Context, endpoint string, out any) error {
	respBody, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	return decodeInto(respBody, out)
}

func decodeInto(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return nil
}
