// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rapidconv CLI, a client for a
// DOCX-to-PDF conversion service.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/rapid-converter/internal/notify"
	"github.com/pdiddy/rapid-converter/internal/secrets"
	"github.com/pdiddy/rapid-converter/internal/session"
	"github.com/pdiddy/rapid-converter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the rapidconv CLI.
var rootCmd = &cobra.Command{
	Use:   "rapidconv",
	Short: "Convert DOCX documents to PDF with a remote conversion service",
	Long: `rapidconv sends a DOCX document to a conversion service, optionally asks
the service to password-protect the resulting PDF, and saves the PDF locally.
It can also list the PDFs the service has generated and download the most
recent one.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./rapidconv.yaml or ~/.config/rapidconv/rapidconv.yaml)")
	pf.String("api-base-url", "", "conversion service address (default "+types.DefaultAPIBaseURL+")")
	pf.String("output-dir", "", "directory for saved PDFs (default: current directory)")
	pf.Duration("timeout", 0, "HTTP request timeout (default 2m)")
	pf.Bool("single-flight", false, "share one in-flight conversion between concurrent requests")
	pf.BoolP("quiet", "q", false, "only report failures")

	viper.BindPFlag("api_base_url", pf.Lookup("api-base-url"))
	viper.BindPFlag("output_dir", pf.Lookup("output-dir"))
	viper.BindPFlag("timeout", pf.Lookup("timeout"))
	viper.BindPFlag("single_flight", pf.Lookup("single-flight"))
	viper.BindPFlag("quiet", pf.Lookup("quiet"))
}

func initConfig() {
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "Loaded environment from .env")
	}

	home, _ := os.UserHomeDir()
	configDir := filepath.Join(home, ".config", "rapidconv")

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rapidconv")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home != "" {
			viper.AddConfigPath(configDir)
		}
	}

	viper.SetDefault("api_base_url", types.DefaultAPIBaseURL)
	viper.SetDefault("timeout", 2*time.Minute)
	viper.SetDefault("user_agent", "rapidconv/"+version)
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("secrets_dir", ".secrets")
	if home != "" {
		viper.SetDefault("history_db", filepath.Join(configDir, "history.db"))
	}

	viper.SetEnvPrefix("RAPIDCONV")
	viper.AutomaticEnv()
	viper.BindEnv("api_base_url", "RAPIDCONV_API_BASE_URL", "NEXT_PUBLIC_API_BASE_URL")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// clientConfig assembles the effective configuration.
func clientConfig() types.ClientConfig {
	return types.ClientConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("timeout"),
			UserAgent: viper.GetString("user_agent"),
		},
		APIBaseURL:   strings.TrimRight(viper.GetString("api_base_url"), "/"),
		OutputDir:    viper.GetString("output_dir"),
		HistoryDB:    viper.GetString("history_db"),
		SecretsDir:   viper.GetString("secrets_dir"),
		SingleFlight: viper.GetBool("single_flight"),
	}
}

// openSession builds a session that reports to stderr. The stored default
// password, if any, is preset into the negotiator.
func openSession() (*session.Session, error) {
	cfg := clientConfig()
	console := notify.NewConsole(os.Stderr)
	console.Quiet = viper.GetBool("quiet")

	s, err := session.New(cfg, console, os.Stderr)
	if err != nil {
		return nil, err
	}

	pw, err := secrets.Lookup(cfg.SecretsDir, secrets.PDFPassword, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	if pw != "" {
		s.Negotiator.Preset(types.EncryptionOption{Password: pw})
	}
	return s, nil
}

// reported tells whether err was already shown to the user as a notification.
func reported(err error) bool {
	for _, target := range []error{
		notify.ErrNoFileSelected,
		notify.ErrListFetchFailed,
		notify.ErrConversionFailed,
		notify.ErrDownloadFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !reported(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
