// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data shared by the conversion workflow components.
package types

import "time"

// DocxMediaType is the only media type the file picker accepts.
const DocxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// PDFMediaType is the media type of converted and downloaded artifacts.
const PDFMediaType = "application/pdf"

// SelectedFile is the single input document pending conversion.
type SelectedFile struct {
	// Name is the display name, usually the base name of the picked path.
	Name string `json:"name" yaml:"name"`

	// MediaType is the media type reported by the picker.
	MediaType string `json:"media_type" yaml:"media_type"`

	// Content is the raw document.
	Content []byte `json:"-" yaml:"-"`
}

// EncryptionOption is the negotiated protection for a conversion. Password
// is only sent when Encrypt is true; an empty password is still sent.
type EncryptionOption struct {
	Encrypt  bool   `json:"encrypt" yaml:"encrypt"`
	Password string `json:"-" yaml:"-"`
}

// Artifact is one PDF known to the conversion service.
type Artifact struct {
	// Name identifies the artifact and doubles as the suggested save name.
	Name string `json:"name" yaml:"name"`

	// URL is the retrieval path relative to the service base address.
	URL string `json:"url" yaml:"url"`
}

// SaveSource tells which operation produced a local save.
type SaveSource string

const (
	SourceConvert  SaveSource = "convert"
	SourceDownload SaveSource = "download"
)

// SaveRecord describes one PDF written to the local output directory.
type SaveRecord struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Path      string     `json:"path" yaml:"path"`
	Source    SaveSource `json:"source" yaml:"source"`
	Bytes     int64      `json:"bytes" yaml:"bytes"`
	Pages     int        `json:"pages" yaml:"pages"`
	Encrypted bool       `json:"encrypted" yaml:"encrypted"`
	SavedAt   time.Time  `json:"saved_at" yaml:"saved_at"`
}
