// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rapid-converter/internal/prompt"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.docx>",
	Short: "Convert a DOCX document to PDF",
	Long: `Convert uploads a DOCX document to the conversion service and saves the
returned PDF as <name>.pdf, or encrypted_<name>.pdf when --encrypt is set.
After a successful conversion the list of generated PDFs is refreshed.

With --interactive the encryption choice and password are asked for on the
terminal; the password is read without echo. Without a --password, the
contents of .secrets/pdf-password are used when present.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	// A failed startup listing is already notified and does not block conversion.
	s.Start(ctx)

	if err := s.SelectPath(args[0]); err != nil {
		return err
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		saved, err := prompt.NewTerminal(os.Stdin, os.Stderr).Negotiate(ctx, s.Negotiator)
		if errors.Is(err, prompt.ErrCancelled) {
			fmt.Fprintln(os.Stderr, "Conversion cancelled.")
			return nil
		}
		if err != nil {
			return err
		}
		printSaved(saved)
		return nil
	}

	opt := s.Negotiator.Snapshot()
	opt.Encrypt, _ = cmd.Flags().GetBool("encrypt")
	if cmd.Flags().Changed("password") {
		opt.Password, _ = cmd.Flags().GetString("password")
		if !opt.Encrypt {
			fmt.Fprintln(os.Stderr, "warning: --password is ignored without --encrypt")
		}
	}
	if opt.Encrypt && opt.Password == "" {
		fmt.Fprintln(os.Stderr, "warning: encrypting with an empty password")
	}
	s.Negotiator.Preset(opt)

	if err := s.Negotiator.Open(); err != nil {
		return err
	}
	saved, err := s.Negotiator.Confirm(ctx)
	if err != nil {
		return err
	}
	printSaved(saved)
	return nil
}

func init() {
	convertCmd.Flags().Bool("encrypt", false, "password-protect the generated PDF")
	convertCmd.Flags().String("password", "", "password for the encrypted PDF")
	convertCmd.Flags().BoolP("interactive", "i", false, "ask for encryption options on the terminal")

	rootCmd.AddCommand(convertCmd)
}

// printSaved reports a saved record on stdout.
func printSaved(rec types.SaveRecord) {
	fmt.Println(rec.Path)
}
