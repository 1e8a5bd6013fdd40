// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package selection holds the one input document pending conversion and
// the picker that admits documents into it.
package selection

import (
	"sync"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

// Holder is a single slot. The last Select wins; nothing else retains a
// reference to a replaced file.
type Holder struct {
	mu   sync.RWMutex
	file *types.SelectedFile
}

// Select stores file, replacing any previous selection.
func (h *Holder) Select(file types.SelectedFile) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.file = &file
}

// Current returns the held file, or false when nothing has been selected.
func (h *Holder) Current() (*types.SelectedFile, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.file == nil {
		return nil, false
	}
	return h.file, true
}
