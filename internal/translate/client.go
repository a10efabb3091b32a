package translate

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// UpstreamResponse is the minimal shape the core needs back from a POST:
// status, headers, and a byte stream the caller must close.
type UpstreamResponse struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
}

// Client is the upstream HTTP capability the core consumes (spec §1): send
// a POST (or the GET used for the model listing), receive status + headers
// + byte stream. Kept narrow on purpose — the core has no business knowing
// about connection pooling, retries, or proxies beyond what these two
// methods expose.
type Client interface {
	Post(ctx context.Context, url string, header http.Header, body []byte) (*UpstreamResponse, error)
	Get(ctx context.Context, url string, header http.Header) (*UpstreamResponse, error)
}

// HTTPClient adapts a *http.Client to the Client interface.
type HTTPClient struct {
	Inner *http.Client
}

// NewHTTPClient builds an HTTPClient, defaulting to http.DefaultTransport
// the way the teacher's proxy.DefaultTransport does, but without the
// OAuth/impersonation transport chain this module has no use for.
func NewHTTPClient(inner *http.Client) *HTTPClient {
	if inner == nil {
		inner = &http.Client{}
	}
	return &HTTPClient{Inner: inner}
}

func (c *HTTPClient) Post(ctx context.Context, url string, header http.Header, body []byte) (*UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = header.Clone()
	resp, err := c.Inner.Do(req)
	if err != nil {
		return nil, err
	}
	return &UpstreamResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}

func (c *HTTPClient) Get(ctx context.Context, url string, header http.Header) (*UpstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header = header.Clone()
	resp, err := c.Inner.Do(req)
	if err != nil {
		return nil, err
	}
	return &UpstreamResponse{StatusCode: resp.StatusCode, Header: resp.Header, Body: resp.Body}, nil
}
