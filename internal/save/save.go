// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package save materializes downloaded PDF bytes as files in the local
// output directory.
//
// Each save stages the bytes in a temporary file inside the output
// directory and renames it into place. The temporary file is the transient
// handle of a save: it is released on every exit path, so nothing outlives
// the call except the final file.
package save

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

// fallbackName is used when a suggested name sanitizes to nothing.
const fallbackName = "download.pdf"

// Request describes one save.
type Request struct {
	// Name is the suggested file name. Only its base name is used.
	Name string

	// Source tells which operation produced the bytes.
	Source types.SaveSource

	// Encrypted marks password-protected output; such files are not inspected.
	Encrypted bool
}

// Saver writes bytes to local storage.
type Saver interface {
	Save(ctx context.Context, req Request, r io.Reader) (types.SaveRecord, error)
}

// Ledger records completed saves.
type Ledger interface {
	Record(ctx context.Context, rec types.SaveRecord) error
}

// PageCounter returns the page count of the PDF at path.
type PageCounter func(path string) (int, error)

// Disk saves into a directory.
type Disk struct {
	dir    string
	ledger Ledger
	pages  PageCounter
	warn   io.Writer
	now    func() time.Time
}

// Option configures a Disk.
type Option func(*Disk)

// WithLedger records every completed save in l.
func WithLedger(l Ledger) Option {
	return func(d *Disk) { d.ledger = l }
}

// WithPageCounter inspects unencrypted saves with pc.
func WithPageCounter(pc PageCounter) Option {
	return func(d *Disk) { d.pages = pc }
}

// WithWarnings sends non-fatal warnings to w.
func WithWarnings(w io.Writer) Option {
	return func(d *Disk) { d.warn = w }
}

// NewDisk returns a Disk writing into dir. The directory is created on the
// first save.
func NewDisk(dir string, opts ...Option) *Disk {
	if dir == "" {
		dir = "."
	}
	d := &Disk{dir: dir, warn: io.Discard, now: time.Now}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Dir returns the output directory.
func (d *Disk) Dir() string { return d.dir }

// Save streams r into a new file named after req.Name. An existing file
// with that name is never overwritten: " (1)", " (2)"... is appended to
// the stem instead. Inspection and ledger failures are warnings; only a
// failure to produce the file is an error.
func (d *Disk) Save(ctx context.Context, req Request, r io.Reader) (types.SaveRecord, error) {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return types.SaveRecord{}, fmt.Errorf("creating output directory %s: %w", d.dir, err)
	}

	h, err := acquire(d.dir)
	if err != nil {
		return types.SaveRecord{}, err
	}
	defer h.release()

	n, err := h.write(ctx, r)
	if err != nil {
		return types.SaveRecord{}, err
	}

	name := SanitizeName(req.Name)
	dest := uniquePath(d.dir, name)
	if err := h.commit(dest); err != nil {
		return types.SaveRecord{}, err
	}

	rec := types.SaveRecord{
		ID:        uuid.NewString(),
		Name:      filepath.Base(dest),
		Path:      dest,
		Source:    req.Source,
		Bytes:     n,
		Encrypted: req.Encrypted,
		SavedAt:   d.now().UTC(),
	}

	if d.pages != nil && !req.Encrypted {
		if pages, err := d.pages(dest); err != nil {
			fmt.Fprintf(d.warn, "warning: could not inspect %s: %v\n", rec.Name, err)
		} else {
			rec.Pages = pages
		}
	}

	if d.ledger != nil {
		if err := d.ledger.Record(ctx, rec); err != nil {
			fmt.Fprintf(d.warn, "warning: could not record %s in history: %v\n", rec.Name, err)
		}
	}

	return rec, nil
}

// SanitizeName reduces a suggested name to a plain file name that stays
// inside the output directory.
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == ".." || strings.TrimSpace(base) == "" {
		return fallbackName
	}
	return base
}

// uniquePath returns dir/name, or the first "stem (n).ext" variant that
// does not exist yet.
func uniquePath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Lstat(p); os.IsNotExist(err) {
		return p
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		p = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			return p
		}
	}
}
