package preview

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/AnyUserName/blurtune/internal/apperr"
	"github.com/AnyUserName/blurtune/internal/options"
)

const (
	uriScheme = "data:"
	uriBase64 = ";base64,"
)

// DataURI embeds data as data:image/<format>;base64,<payload>.
func DataURI(format options.ImageFormat, data []byte) string {
	var b strings.Builder
	b.Grow(len(uriScheme) + len(format.MIMEType()) + len(uriBase64) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString(uriScheme)
	b.WriteString(format.MIMEType())
	b.WriteString(uriBase64)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DecodeURI splits a data URI produced by DataURI into its format and
// decoded payload.
func DecodeURI(uri string) (options.ImageFormat, []byte, error) {
	const op = "preview.decode_uri"

	rest, ok := strings.CutPrefix(uri, uriScheme+"image/")
	if !ok {
		return "", nil, apperr.Errorf(apperr.InvalidConfiguration, op, "not an image data URI")
	}
	subtype, payload, ok := strings.Cut(rest, uriBase64)
	if !ok {
		return "", nil, apperr.Errorf(apperr.InvalidConfiguration, op, "data URI is not base64 encoded")
	}
	format, err := options.ParseFormat(subtype)
	if err != nil || string(format) != subtype {
		return "", nil, apperr.Errorf(apperr.InvalidConfiguration, op, "unexpected MIME subtype %q", subtype)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, apperr.New(apperr.InvalidConfiguration, op, fmt.Errorf("payload: %w", err))
	}
	return format, data, nil
}
