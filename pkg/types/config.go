// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultAPIBaseURL is used when no base address is configured.
const DefaultAPIBaseURL = "http://localhost:8000"

// HTTPConfig holds shared HTTP settings used by every remote call.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. A request that exceeds it fails
	// like any other transport error.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "rapidconv/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ClientConfig groups the settings of a conversion session.
type ClientConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIBaseURL is the address of the conversion service, without a trailing slash.
	APIBaseURL string `json:"api_base_url" yaml:"api_base_url"`

	// OutputDir is where converted and downloaded PDFs are saved.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// HistoryDB is the path of the SQLite save ledger. Empty disables the ledger.
	HistoryDB string `json:"history_db" yaml:"history_db"`

	// SecretsDir holds plain-text secret files (see internal/secrets).
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`

	// SingleFlight makes concurrent conversions share one in-flight request.
	SingleFlight bool `json:"single_flight" yaml:"single_flight"`
}
