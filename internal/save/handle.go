// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package save

import (
	"context"
	"fmt"
	"io"
	"os"
)

// handle is a staged temporary file. release must be deferred right after
// acquire; it is a no-op once the file has been committed.
type handle struct {
	f         *os.File
	path      string
	closed    bool
	committed bool
}

func acquire(dir string) (*handle, error) {
	f, err := os.CreateTemp(dir, ".rapidconv-*.tmp")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	return &handle{f: f, path: f.Name()}, nil
}

func (h *handle) write(ctx context.Context, r io.Reader) (int64, error) {
	n, err := io.Copy(h.f, ctxReader{ctx: ctx, r: r})
	if err != nil {
		return n, fmt.Errorf("writing download: %w", err)
	}
	return n, nil
}

func (h *handle) commit(dest string) error {
	h.closed = true
	if err := h.f.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(h.path, dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	h.committed = true
	return nil
}

func (h *handle) release() {
	if h.committed {
		return
	}
	if !h.closed {
		h.f.Close()
		h.closed = true
	}
	os.Remove(h.path)
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
