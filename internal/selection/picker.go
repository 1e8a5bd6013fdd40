// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package selection

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

// ErrUnsupportedType is returned by Pick for anything that is not a DOCX file.
var ErrUnsupportedType = errors.New("only .docx files are accepted")

// docxExt is the single extension class the picker admits.
const docxExt = ".docx"

// zipMagic opens every OOXML container.
var zipMagic = []byte("PK\x03\x04")

// Pick reads the document at path and returns it as a SelectedFile. Only
// a file with a .docx extension and a ZIP container signature passes; the
// check happens before the file can reach a Holder.
func Pick(path string) (types.SelectedFile, error) {
	if !strings.EqualFold(filepath.Ext(path), docxExt) {
		return types.SelectedFile{}, fmt.Errorf("%s: %w", path, ErrUnsupportedType)
	}

	info, err := os.Stat(path)
	if err != nil {
		return types.SelectedFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if info.IsDir() {
		return types.SelectedFile{}, fmt.Errorf("%s is a directory: %w", path, ErrUnsupportedType)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.SelectedFile{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, zipMagic) {
		return types.SelectedFile{}, fmt.Errorf("%s is not a word-processing document: %w", path, ErrUnsupportedType)
	}

	return types.SelectedFile{
		Name:      filepath.Base(path),
		MediaType: types.DocxMediaType,
		Content:   data,
	}, nil
}
