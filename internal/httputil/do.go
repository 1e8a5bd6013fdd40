// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the workflow components.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout applies when a client is built with a zero timeout.
const DefaultTimeout = 2 * time.Minute

// maxErrorBody bounds how much of a failed response body is kept in a StatusError.
const maxErrorBody = 512

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d from %s: %s", e.Code, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d from %s", e.Code, e.URL)
}

// NewClient returns an http.Client with the given timeout, or DefaultTimeout
// when timeout is zero.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// Do executes req exactly once. Transport errors are returned as-is. A
// non-2xx response is drained, closed, and turned into a *StatusError, so a
// nil error always comes with a body the caller must close.
//
// There is no retry: a failed call is reported and the user decides whether
// to trigger it again.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, error) {
	resp, err := client.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{
			Code: resp.StatusCode,
			URL:  req.URL.String(),
			Body: string(snippet),
		}
	}
	return resp, nil
}
