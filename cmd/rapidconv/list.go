// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the PDFs generated by the conversion service",
	Long: `List fetches the service's list of generated PDFs, oldest first. The
last entry is the most recent one.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		return err
	}
	list, _ := s.Registry.Artifacts()

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		return writeJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No PDFs generated yet.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-40s  %s\n", "#", "Name", "URL")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))
	for i, a := range list {
		fmt.Fprintf(os.Stdout, "%-4d  %-40s  %s\n", i+1, a.Name, a.URL)
	}
	return nil
}

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recently generated PDF",
	RunE:  runLatest,
}

func runLatest(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Start(context.Background()); err != nil {
		return err
	}

	latest, ok := s.Registry.Latest()
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if !ok {
			return writeJSON(nil)
		}
		return writeJSON(latest)
	}
	if !ok {
		fmt.Println("No PDFs generated yet.")
		return nil
	}
	fmt.Printf("%s\t%s\n", latest.Name, latest.URL)
	return nil
}

func writeJSON(v any) error {
	if list, ok := v.([]types.Artifact); ok && list == nil {
		v = []types.Artifact{}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	listCmd.Flags().Bool("json", false, "output as JSON")
	latestCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(latestCmd)
}
