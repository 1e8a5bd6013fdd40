// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/rapid-converter/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show PDFs saved on this machine",
	Long: `History lists the PDFs this client has saved, newest first, from the
local ledger at history_db.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg := clientConfig()
	if cfg.HistoryDB == "" {
		return fmt.Errorf("history is disabled: history_db is not set")
	}

	store, err := history.Open(cfg.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	recs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	yamlOutput, _ := cmd.Flags().GetBool("yaml")
	if yamlOutput {
		return history.ExportYAML(os.Stdout, recs)
	}
	if len(recs) == 0 {
		fmt.Println("No saved PDFs.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-40s  %8s  %5s  %s\n",
		"Saved", "Source", "Name", "Bytes", "Pages", "Path")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range recs {
		pages := "-"
		if r.Pages > 0 {
			pages = fmt.Sprint(r.Pages)
		}
		name := r.Name
		if r.Encrypted {
			name += " (encrypted)"
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-8s  %-40s  %8d  %5s  %s\n",
			r.SavedAt.Local().Format(time.DateTime), r.Source, name, r.Bytes, pages, r.Path)
	}
	return nil
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries")
	historyCmd.Flags().Bool("yaml", false, "output as YAML")

	rootCmd.AddCommand(historyCmd)
}
