// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package prompt drives the encryption dialog from a terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/pdiddy/rapid-converter/internal/negotiate"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// ErrCancelled is returned when the user declines the dialog.
var ErrCancelled = errors.New("conversion cancelled")

// Terminal asks questions on w and reads answers from r. Passwords are
// read from stdin without echo.
type Terminal struct {
	r *bufio.Reader
	w io.Writer
}

// NewTerminal returns a Terminal over r and w.
func NewTerminal(r io.Reader, w io.Writer) *Terminal {
	return &Terminal{r: bufio.NewReader(r), w: w}
}

// YesNo asks a yes/no question. An empty answer picks def.
func (t *Terminal) YesNo(question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}
	if _, err := fmt.Fprintf(t.w, "%s %s ", question, hint); err != nil {
		return false, err
	}
	line, err := t.r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Password reads a password without echo.
func (t *Terminal) Password(label string) (string, error) {
	if _, err := fmt.Fprintf(t.w, "%s: ", label); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(t.w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}

// Negotiate walks the user through an opened negotiator: encrypt or not,
// the password when encrypting, then convert or cancel. Cancelling closes
// the dialog with the option retained and returns ErrCancelled.
func (t *Terminal) Negotiate(ctx context.Context, n *negotiate.Negotiator) (types.SaveRecord, error) {
	if err := n.Open(); err != nil {
		return types.SaveRecord{}, err
	}

	current := n.Snapshot()
	encrypt, err := t.YesNo("Do you want to encrypt the generated PDF?", current.Encrypt)
	if err != nil {
		n.Close()
		return types.SaveRecord{}, err
	}
	if err := n.SetEncrypt(encrypt); err != nil {
		return types.SaveRecord{}, err
	}

	if n.PasswordVisible() {
		label := "Password"
		if current.Password != "" {
			label = "Password (empty keeps the current one)"
		}
		pw, err := t.Password(label)
		if err != nil {
			n.Close()
			return types.SaveRecord{}, err
		}
		if pw != "" || current.Password == "" {
			if err := n.SetPassword(pw); err != nil {
				return types.SaveRecord{}, err
			}
		}
	}

	ok, err := t.YesNo("Convert now?", true)
	if err != nil || !ok {
		n.Close()
		if err == nil {
			err = ErrCancelled
		}
		return types.SaveRecord{}, err
	}
	return n.Confirm(ctx)
}
