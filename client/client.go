package client

import (
	"context"
	"fmt"
	"maps"
	"net/http"
)

type Client struct {
	client   *http.Client
	header   http.Header
	endpoint string
}

// NewClient creates a new http client wrapper.
func NewClient(endpoint string, options ...Option) *Client {
	client := &Client{
		endpoint: endpoint,
		client:   http.DefaultClient,
	}
	for _, option := range options {
		option(client)
	}

	return client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.client = httpClient
	}
}

func WithHTTPHeader(header http.Header) Option {
	return func(c *Client) {
		c.header = header
	}
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Post sends the operation and decodes the data member of the response into out.
// Options apply to this request only.
func (c *Client) Post(ctx context.Context, operationName, query string, variables map[string]any, out any, options ...Option) error {
	cc := *c
	for _, option := range options {
		option(&cc)
	}

	req, err := NewRequest(ctx, cc.endpoint, operationName, query, variables)
	if err != nil {
		return fmt.Errorf("failed to create post request: %w", err)
	}

	header := cc.header.Clone()
	if header == nil {
		header = http.Header{}
	}
	maps.Copy(header, req.Header)
	req.Header = header

	resp, err := cc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	return ParseResponse(resp, out)
}
