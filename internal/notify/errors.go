// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import "errors"

// Sentinel errors returned alongside the matching failure notification.
// Callers match them with errors.Is; the wrapped cause is kept for logs.
var (
	ErrNoFileSelected   = errors.New("no file selected")
	ErrListFetchFailed  = errors.New("failed to fetch PDFs")
	ErrConversionFailed = errors.New("conversion failed")
	ErrDownloadFailed   = errors.New("download failed")
)
