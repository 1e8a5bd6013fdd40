// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify carries one-shot user-visible notifications out of the
// workflow components. Components never talk to the terminal directly; they
// are handed a Notifier.
package notify

import (
	"fmt"
	"io"
	"sync"
)

// Kind classifies a notification.
type Kind string

const (
	NoFileSelected      Kind = "no_file_selected"
	ListFetchFailed     Kind = "list_fetch_failed"
	ConversionFailed    Kind = "conversion_failed"
	DownloadFailed      Kind = "download_failed"
	ConversionSucceeded Kind = "conversion_succeeded"
	DownloadSucceeded   Kind = "download_succeeded"
)

// IsFailure reports whether k describes a failed action.
func (k Kind) IsFailure() bool {
	switch k {
	case NoFileSelected, ListFetchFailed, ConversionFailed, DownloadFailed:
		return true
	}
	return false
}

// Notifier receives notifications. Implementations must be safe for
// concurrent use: background refreshes notify from their own goroutine.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Console writes notifications as single lines. Failures are prefixed with
// "error:"; successes are suppressed when Quiet is set.
type Console struct {
	mu    sync.Mutex
	w     io.Writer
	Quiet bool
}

// NewConsole returns a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Notify(kind Kind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind.IsFailure() {
		fmt.Fprintf(c.w, "error: %s\n", message)
		return
	}
	if c.Quiet {
		return
	}
	fmt.Fprintln(c.w, message)
}

// Discard drops every notification.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(Kind, string) {}
