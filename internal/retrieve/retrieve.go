// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieve downloads artifacts listed by the registry.
package retrieve

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/rapid-converter/internal/httputil"
	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/internal/save"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// Retriever fetches artifact bytes and saves them locally. It never touches
// the registry's collection.
type Retriever struct {
	base     string
	agent    string
	http     *http.Client
	saver    save.Saver
	notifier notify.Notifier
}

// New returns a Retriever for the service at base.
func New(base string, client *http.Client, userAgent string, saver save.Saver, n notify.Notifier) *Retriever {
	if n == nil {
		n = notify.Discard
	}
	return &Retriever{
		base:     strings.TrimRight(base, "/"),
		agent:    userAgent,
		http:     client,
		saver:    saver,
		notifier: n,
	}
}

// Download fetches artifact from its retrieval path and saves it under
// artifact.Name. Any failure notifies DownloadFailed and returns an error
// wrapping notify.ErrDownloadFailed; nothing is retried.
func (r *Retriever) Download(ctx context.Context, artifact types.Artifact) (types.SaveRecord, error) {
	rec, err := r.download(ctx, artifact)
	if err != nil {
		r.notifier.Notify(notify.DownloadFailed, "Download failed")
		return types.SaveRecord{}, fmt.Errorf("%w: %s: %w", notify.ErrDownloadFailed, artifact.Name, err)
	}
	r.notifier.Notify(notify.DownloadSucceeded, fmt.Sprintf("Downloaded %s to %s", artifact.Name, rec.Path))
	return rec, nil
}

func (r *Retriever) download(ctx context.Context, artifact types.Artifact) (types.SaveRecord, error) {
	req, err := http.NewRequest(http.MethodGet, r.base+artifact.URL, nil)
	if err != nil {
		return types.SaveRecord{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", types.PDFMediaType)
	if r.agent != "" {
		req.Header.Set("User-Agent", r.agent)
	}

	resp, err := httputil.Do(ctx, r.http, req)
	if err != nil {
		return types.SaveRecord{}, err
	}
	defer resp.Body.Close()

	return r.saver.Save(ctx, save.Request{
		Name:      artifact.Name,
		Source:    types.SourceDownload,
		Encrypted: strings.HasPrefix(save.SanitizeName(artifact.Name), "encrypted_"),
	}, resp.Body)
}
