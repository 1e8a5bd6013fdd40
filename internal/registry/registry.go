// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package registry mirrors the conversion service's list of generated PDFs.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/pdiddy/rapid-converter/internal/httputil"
	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// listPath is the listing endpoint relative to the base address.
const listPath = "/list-pdfs"

// listResponse is the listing body. A missing pdfs field decodes to nil,
// which is an empty collection.
type listResponse struct {
	PDFs []types.Artifact `json:"pdfs"`
}

// Client holds the last successfully fetched collection. The collection is
// swapped as a whole, so readers never see a partial update.
type Client struct {
	base     string
	http     *http.Client
	agent    string
	notifier notify.Notifier

	// artifacts is nil until the first successful refresh.
	artifacts atomic.Pointer[[]types.Artifact]
}

// New returns a Client for the service at base.
func New(base string, client *http.Client, userAgent string, n notify.Notifier) *Client {
	if n == nil {
		n = notify.Discard
	}
	return &Client{
		base:     strings.TrimRight(base, "/"),
		http:     client,
		agent:    userAgent,
		notifier: n,
	}
}

// Refresh fetches the listing and replaces the collection. On failure it
// notifies ListFetchFailed and keeps the previous collection.
func (c *Client) Refresh(ctx context.Context) error {
	list, err := c.fetch(ctx)
	if err != nil {
		c.notifier.Notify(notify.ListFetchFailed, "Failed to fetch PDFs")
		return fmt.Errorf("%w: %w", notify.ErrListFetchFailed, err)
	}
	c.artifacts.Store(&list)
	return nil
}

func (c *Client) fetch(ctx context.Context) ([]types.Artifact, error) {
	req, err := http.NewRequest(http.MethodGet, c.base+listPath, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.agent != "" {
		req.Header.Set("User-Agent", c.agent)
	}

	resp, err := httputil.Do(ctx, c.http, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}
	if body.PDFs == nil {
		return []types.Artifact{}, nil
	}
	return body.PDFs, nil
}

// Latest returns the most recent artifact, the last one listed. It reports
// false when the collection is empty or has never been fetched.
func (c *Client) Latest() (types.Artifact, bool) {
	p := c.artifacts.Load()
	if p == nil || len(*p) == 0 {
		return types.Artifact{}, false
	}
	list := *p
	return list[len(list)-1], true
}

// Artifacts returns the current collection and whether any refresh has
// succeeded yet. The returned slice must not be modified.
func (c *Client) Artifacts() ([]types.Artifact, bool) {
	p := c.artifacts.Load()
	if p == nil {
		return nil, false
	}
	return *p, true
}

// Find returns the artifact named name from the current collection.
func (c *Client) Find(name string) (types.Artifact, bool) {
	list, _ := c.Artifacts()
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Name == name {
			return list[i], true
		}
	}
	return types.Artifact{}, false
}
