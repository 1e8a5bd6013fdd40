// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/pdiddy/rapid-converter/pkg/types"
)

// Multipart field names understood by the conversion endpoint.
const (
	fieldFile       = "file"
	fieldEncryption = "encryption"
	fieldPassword   = "password"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// RequestBody builds the multipart conversion request. The password field
// is present only when opt.Encrypt is true, whatever opt.Password holds.
func RequestBody(file *types.SelectedFile, opt types.EncryptionOption) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		fieldFile, quoteEscaper.Replace(file.Name)))
	h.Set("Content-Type", mediaType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("writing file part: %w", err)
	}

	if err := mw.WriteField(fieldEncryption, strconv.FormatBool(opt.Encrypt)); err != nil {
		return nil, "", fmt.Errorf("writing encryption field: %w", err)
	}
	if opt.Encrypt {
		if err := mw.WriteField(fieldPassword, opt.Password); err != nil {
			return nil, "", fmt.Errorf("writing password field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
