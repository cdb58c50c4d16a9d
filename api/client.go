// api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a decoded JSON response. Error statuses are not treated
// specially: the body is decoded the same way for every status code.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       Value
}

// Client sends JSON requests relative to a base URL and decodes JSON replies.
type Client struct {
	httpClient Doer
	baseURL    string
}

// NewClient returns a Client for baseURL. A nil httpClient means a plain
// *http.Client, which applies no timeout of its own.
func NewClient(baseURL string, httpClient Doer) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// BaseURL returns the address every request path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues one request. A non-nil body is sent as JSON.
// Failures to encode or send the request or to read the response are
// *TransportError; a response body that is not one JSON value is *DecodeError.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("encoding request body: %w", err)}
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: url, Err: fmt.Errorf("reading response body: %w", err)}
	}

	value, err := ParseValue(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, &DecodeError{Method: method, URL: url, StatusCode: resp.StatusCode, Err: err}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       value,
	}, nil
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}
