// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/codeflow-engine/autopr-desktop/internal/log"
)

// DefaultURL is the sidecar's status endpoint.
const DefaultURL = "http://localhost:8000/status"

// Reading is one observation of the status endpoint.
type Reading struct {
	Body       string
	StatusCode int
	FetchedAt  time.Time
}

// Client fetches the status document. The zero value is not usable; build one
// with NewClient.
type Client struct {
	URL  string
	HTTP *http.Client
}

// NewClient returns a Client for url, or DefaultURL when url is empty.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		URL:  url,
		HTTP: cleanhttp.DefaultPooledClient(),
	}
}

// Fetch returns the response body verbatim.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	r, err := c.Read(ctx)
	if err != nil {
		return "", err
	}
	return r.Body, nil
}

// Read issues a single GET and returns the whole body along with the HTTP
// status code. A non-2xx response is not an error; the body is still the
// answer.
func (c *Client) Read(ctx context.Context) (Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Reading{}, fmt.Errorf("failed to create request: %w", err)
	}

	log.Tracef("status GET %s", c.URL)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return Reading{}, fmt.Errorf("failed to read response: %w", err)
	}
	log.Debugf("status response: url=%s code=%d bytes=%d", c.URL, resp.StatusCode, doc.Len())

	return Reading{
		Body:       doc.String(),
		StatusCode: resp.StatusCode,
		FetchedAt:  time.Now(),
	}, nil
}
