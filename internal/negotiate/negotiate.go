// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package negotiate collects the encryption option for a conversion.
//
// The negotiator is a small modal state machine:
//
//	Closed ──Open──▶ OpenUnencrypted ◀─SetEncrypt─▶ OpenEncrypted
//	   ▲                   │                             │
//	   └──── Close / Confirm ───────────────────────────┘
//
// The flag and the typed password survive Close and Confirm, so the next
// Open starts from the user's previous choice.
package negotiate

import (
	"context"
	"errors"
	"sync"

	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// State is the negotiator's modal state.
type State int

const (
	Closed State = iota
	OpenUnencrypted
	OpenEncrypted
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case OpenUnencrypted:
		return "open-unencrypted"
	case OpenEncrypted:
		return "open-encrypted"
	}
	return "unknown"
}

// ErrNotOpen is returned when an edit or confirm arrives while Closed.
var ErrNotOpen = errors.New("encryption dialog is not open")

// Selection exposes the pending input document.
type Selection interface {
	Current() (*types.SelectedFile, bool)
}

// Converter runs a conversion.
type Converter interface {
	Convert(ctx context.Context, file *types.SelectedFile, opt types.EncryptionOption) (types.SaveRecord, error)
}

// Negotiator owns the encryption option and the dialog state.
type Negotiator struct {
	selection Selection
	converter Converter
	notifier  notify.Notifier

	mu     sync.Mutex
	state  State
	option types.EncryptionOption
}

// New returns a Closed negotiator.
func New(sel Selection, conv Converter, n notify.Notifier) *Negotiator {
	if n == nil {
		n = notify.Discard
	}
	return &Negotiator{selection: sel, converter: conv, notifier: n}
}

// Preset seeds the option, e.g. from flags or a stored password, without
// changing the state.
func (n *Negotiator) Preset(opt types.EncryptionOption) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.option = opt
	if n.state != Closed {
		n.state = openState(opt.Encrypt)
	}
}

// Open starts a negotiation. Without a selected file it notifies
// NoFileSelected, returns notify.ErrNoFileSelected and stays Closed.
// Opening an open dialog is a no-op.
func (n *Negotiator) Open() error {
	if _, ok := n.selection.Current(); !ok {
		n.notifier.Notify(notify.NoFileSelected, "No file selected")
		return notify.ErrNoFileSelected
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == Closed {
		n.state = openState(n.option.Encrypt)
	}
	return nil
}

// Close cancels the negotiation. The option is kept for the next Open.
func (n *Negotiator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state = Closed
}

// SetEncrypt toggles encryption. Turning it off hides the password but
// keeps its value.
func (n *Negotiator) SetEncrypt(on bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == Closed {
		return ErrNotOpen
	}
	n.option.Encrypt = on
	n.state = openState(on)
	return nil
}

// SetPassword stores the typed password.
func (n *Negotiator) SetPassword(pw string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.state == Closed {
		return ErrNotOpen
	}
	n.option.Password = pw
	return nil
}

// Snapshot returns the current option.
func (n *Negotiator) Snapshot() types.EncryptionOption {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.option
}

// State returns the current modal state.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// PasswordVisible reports whether the password field is shown.
func (n *Negotiator) PasswordVisible() bool {
	return n.State() == OpenEncrypted
}

// Confirm runs the conversion with the current selection and option, then
// closes the dialog whatever the outcome. The converter's error is
// returned unchanged.
func (n *Negotiator) Confirm(ctx context.Context) (types.SaveRecord, error) {
	n.mu.Lock()
	if n.state == Closed {
		n.mu.Unlock()
		return types.SaveRecord{}, ErrNotOpen
	}
	opt := n.option
	n.mu.Unlock()

	defer n.Close()

	file, _ := n.selection.Current()
	return n.converter.Convert(ctx, file, opt)
}

func openState(encrypt bool) State {
	if encrypt {
		return OpenEncrypted
	}
	return OpenUnencrypted
}
