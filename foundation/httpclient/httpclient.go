// Package httpclient provides basic http functions
package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Response contains the status and body of a completed request
type Response struct {
	StatusCode int
	Body       []byte
	URL        string
}

// OK reports whether the request completed with a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// BuildURL appends query parameters to baseURL
func BuildURL(baseURL string, query url.Values) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	existing := u.Query()
	for key, values := range query {
		for _, value := range values {
			existing.Add(key, value)
		}
	}
	u.RawQuery = existing.Encode()
	return u.String(), nil
}

// Get retrieves url with a GET request and reads the whole body.
// Errors are only returned when no complete response was received, any status code is returned in Response.
// client may be nil to use http.DefaultClient
func Get(ctx context.Context, client *http.Client, url string) (*Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        url,
	}, nil
}
