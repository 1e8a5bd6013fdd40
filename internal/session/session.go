// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session wires the conversion workflow components for one run of
// the client.
package session

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/rapid-converter/internal/convert"
	"github.com/pdiddy/rapid-converter/internal/history"
	"github.com/pdiddy/rapid-converter/internal/httputil"
	"github.com/pdiddy/rapid-converter/internal/negotiate"
	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/internal/pdfinfo"
	"github.com/pdiddy/rapid-converter/internal/registry"
	"github.com/pdiddy/rapid-converter/internal/retrieve"
	"github.com/pdiddy/rapid-converter/internal/save"
	"github.com/pdiddy/rapid-converter/internal/selection"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// Session owns the workflow state: the selection, the negotiated option
// and the artifact collection.
type Session struct {
	Selection    *selection.Holder
	Registry     *registry.Client
	Negotiator   *negotiate.Negotiator
	Orchestrator *convert.Orchestrator
	Retriever    *retrieve.Retriever
	Saver        *save.Disk

	history    *history.Store
	background *errgroup.Group
}

// New builds a session from cfg. Notifications go to n and non-fatal
// warnings to warn. The history ledger is opened only when cfg.HistoryDB
// is set.
func New(cfg types.ClientConfig, n notify.Notifier, warn io.Writer) (*Session, error) {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = types.DefaultAPIBaseURL
	}
	if warn == nil {
		warn = io.Discard
	}

	s := &Session{
		Selection:  &selection.Holder{},
		background: &errgroup.Group{},
	}

	opts := []save.Option{
		save.WithPageCounter(pdfinfo.PageCount),
		save.WithWarnings(warn),
	}
	if cfg.HistoryDB != "" {
		h, err := history.Open(cfg.HistoryDB)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		s.history = h
		opts = append(opts, save.WithLedger(h))
	}
	s.Saver = save.NewDisk(cfg.OutputDir, opts...)

	client := httputil.NewClient(cfg.Timeout)
	s.Registry = registry.New(cfg.APIBaseURL, client, cfg.UserAgent, n)
	s.Orchestrator = convert.New(convert.Config{
		BaseURL:      cfg.APIBaseURL,
		UserAgent:    cfg.UserAgent,
		HTTP:         client,
		Saver:        s.Saver,
		Registry:     s.Registry,
		Notifier:     n,
		Background:   s.background,
		SingleFlight: cfg.SingleFlight,
	})
	s.Retriever = retrieve.New(cfg.APIBaseURL, client, cfg.UserAgent, s.Saver, n)
	s.Negotiator = negotiate.New(s.Selection, s.Orchestrator, n)
	return s, nil
}

// Start performs the unconditional startup refresh. A failure has already
// been notified; it is returned for callers that need the collection.
func (s *Session) Start(ctx context.Context) error {
	return s.Registry.Refresh(ctx)
}

// SelectPath picks the document at path and selects it.
func (s *Session) SelectPath(path string) error {
	f, err := selection.Pick(path)
	if err != nil {
		return err
	}
	s.Selection.Select(f)
	return nil
}

// Wait blocks until background refreshes finish. Their failures were
// already notified, so the error is informational.
func (s *Session) Wait() error {
	return s.background.Wait()
}

// History returns the save ledger, or nil when it is disabled.
func (s *Session) History() *history.Store {
	return s.history
}

// Close waits for background work and releases the ledger.
func (s *Session) Close() error {
	s.Wait()
	if s.history != nil {
		return s.history.Close()
	}
	return nil
}
