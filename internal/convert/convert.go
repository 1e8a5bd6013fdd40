// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert submits a selected document to the conversion service
// and delivers the resulting PDF.
//
// A successful conversion saves the PDF locally first and only then asks
// the registry to refresh. The refresh runs in the background; the save
// path does not wait for it.
package convert

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/rapid-converter/internal/httputil"
	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/internal/save"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// convertPath is the conversion endpoint relative to the base address.
const convertPath = "/convert"

// flightKey is the single-flight key: at most one conversion at a time.
const flightKey = "convert"

// Refresher re-reads the artifact registry.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Spawner runs background work. *errgroup.Group satisfies it.
type Spawner interface {
	Go(f func() error)
}

// Config wires an Orchestrator.
type Config struct {
	BaseURL   string
	UserAgent string
	HTTP      *http.Client
	Saver     save.Saver
	Registry  Refresher
	Notifier  notify.Notifier

	// Background runs post-conversion refreshes. Defaults to a private errgroup.
	Background Spawner

	// SingleFlight makes concurrent Convert calls share the in-flight
	// request instead of submitting another one.
	SingleFlight bool
}

// Orchestrator runs conversions. It is safe for concurrent use; unless
// SingleFlight is set, overlapping calls each submit their own request and
// each trigger their own refresh and notifications.
type Orchestrator struct {
	base         string
	agent        string
	http         *http.Client
	saver        save.Saver
	registry     Refresher
	notifier     notify.Notifier
	background   Spawner
	singleFlight bool
	flight       singleflight.Group
	newID        func() string
}

// New returns an Orchestrator for cfg.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		base:         strings.TrimRight(cfg.BaseURL, "/"),
		agent:        cfg.UserAgent,
		http:         cfg.HTTP,
		saver:        cfg.Saver,
		registry:     cfg.Registry,
		notifier:     cfg.Notifier,
		background:   cfg.Background,
		singleFlight: cfg.SingleFlight,
		newID:        uuid.NewString,
	}
	if o.http == nil {
		o.http = httputil.NewClient(0)
	}
	if o.notifier == nil {
		o.notifier = notify.Discard
	}
	if o.background == nil {
		o.background = &errgroup.Group{}
	}
	return o
}

// Convert submits file with opt and saves the returned PDF.
//
// A nil file notifies NoFileSelected and returns notify.ErrNoFileSelected
// without touching the network. Service, transport and local save failures
// notify ConversionFailed and return an error wrapping
// notify.ErrConversionFailed. Nothing is retried and neither argument is
// modified, so the caller can simply try again.
func (o *Orchestrator) Convert(ctx context.Context, file *types.SelectedFile, opt types.EncryptionOption) (types.SaveRecord, error) {
	if file == nil {
		o.notifier.Notify(notify.NoFileSelected, "No file selected")
		return types.SaveRecord{}, notify.ErrNoFileSelected
	}

	if !o.singleFlight {
		return o.convert(ctx, file, opt)
	}

	v, err, _ := o.flight.Do(flightKey, func() (any, error) {
		return o.convert(ctx, file, opt)
	})
	rec, _ := v.(types.SaveRecord)
	return rec, err
}

func (o *Orchestrator) convert(ctx context.Context, file *types.SelectedFile, opt types.EncryptionOption) (types.SaveRecord, error) {
	rec, err := o.submitAndSave(ctx, file, opt)
	if err != nil {
		o.notifier.Notify(notify.ConversionFailed, "Conversion failed")
		return types.SaveRecord{}, fmt.Errorf("%w: %s: %w", notify.ErrConversionFailed, file.Name, err)
	}

	// The save above has completed; only now is the registry asked to refresh.
	if o.registry != nil {
		refreshCtx := context.WithoutCancel(ctx)
		o.background.Go(func() error {
			return o.registry.Refresh(refreshCtx)
		})
	}

	o.notifier.Notify(notify.ConversionSucceeded, fmt.Sprintf("Conversion successful: saved %s", rec.Path))
	return rec, nil
}

func (o *Orchestrator) submitAndSave(ctx context.Context, file *types.SelectedFile, opt types.EncryptionOption) (types.SaveRecord, error) {
	body, contentType, err := RequestBody(file, opt)
	if err != nil {
		return types.SaveRecord{}, err
	}

	req, err := http.NewRequest(http.MethodPost, o.base+convertPath, body)
	if err != nil {
		return types.SaveRecord{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", types.PDFMediaType)
	req.Header.Set("X-Request-ID", o.newID())
	if o.agent != "" {
		req.Header.Set("User-Agent", o.agent)
	}

	resp, err := httputil.Do(ctx, o.http, req)
	if err != nil {
		return types.SaveRecord{}, err
	}
	defer resp.Body.Close()

	return o.saver.Save(ctx, save.Request{
		Name:      OutputName(file.Name, opt.Encrypt),
		Source:    types.SourceConvert,
		Encrypted: opt.Encrypt,
	}, resp.Body)
}

// OutputName is the suggested save name for a converted document:
// "<name>.pdf", or "encrypted_<name>.pdf" for protected output. The
// original extension is kept.
func OutputName(name string, encrypted bool) string {
	if encrypted {
		return "encrypted_" + name + ".pdf"
	}
	return name + ".pdf"
}
