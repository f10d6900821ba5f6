package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for HTTP requests to external gateway APIs.
type Client struct {
	r *resty.Client
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithHeader sets a custom header.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// WithBaseURL sets the base URL for all requests.
func (c *Client) WithBaseURL(url string) *Client {
	c.r.SetBaseURL(url)
	return c
}

// GetJSON sends a GET request with query parameters and returns the body and
// HTTP status code. A non-nil error means the request never produced a
// response (DNS, timeout, connection reset).
func (c *Client) GetJSON(ctx context.Context, url string, query map[string]string) ([]byte, int, error) {
	resp, err := c.r.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("Accept", "application/json").
		Get(url)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body(), resp.StatusCode(), nil
}

// PostJSON sends a POST request with a JSON body and returns the body and
// HTTP status code.
func (c *Client) PostJSON(ctx context.Context, url string, body interface{}) ([]byte, int, error) {
	req := c.r.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body(), resp.StatusCode(), nil
}

// IsSuccess reports whether the HTTP status code is 2xx.
func IsSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

// Raw returns the underlying resty client for advanced usage.
func (c *Client) Raw() *resty.Client {
	return c.r
}
