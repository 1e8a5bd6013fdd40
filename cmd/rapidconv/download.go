// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download [name]",
	Short: "Download the most recent PDF, or the named one",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDownload,
}

func runDownload(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		return err
	}

	var (
		artifact types.Artifact
		ok       bool
	)
	if len(args) == 1 {
		artifact, ok = s.Registry.Find(args[0])
		if !ok {
			return fmt.Errorf("no generated PDF named %q", args[0])
		}
	} else {
		artifact, ok = s.Registry.Latest()
		if !ok {
			return fmt.Errorf("no PDFs generated yet")
		}
	}

	saved, err := s.Retriever.Download(context.Background(), artifact)
	if err != nil {
		return err
	}
	printSaved(saved)
	return nil
}

func init() {
	rootCmd.AddCommand(downloadCmd)
}
