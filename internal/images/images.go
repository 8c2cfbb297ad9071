package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"net/http"
	"strings"

	"github.com/notecraft/notecraft/internal/utils"
)

// DefaultMIMEType is declared when nothing better is known
const DefaultMIMEType = "image/jpeg"

var (
	ErrEmpty    = errors.New("image is empty")
	ErrNotImage = errors.New("data is not an image")
)

// Image is an uploaded product photo
type Image struct {
	MIMEType string
	Data     []byte
	Width    int
	Height   int
	Checksum string
}

// Decode wraps raw bytes, sniffing the media type. declared is used when
// sniffing is inconclusive, so formats the sniffer does not know still pass.
func Decode(data []byte, declared string) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	mimeType := baseMIME(http.DetectContentType(data))
	if !strings.HasPrefix(mimeType, "image/") {
		declared = baseMIME(declared)
		switch {
		case strings.HasPrefix(declared, "image/"):
			mimeType = declared
		case mimeType == "application/octet-stream" && declared == "":
			mimeType = DefaultMIMEType
		default:
			return nil, fmt.Errorf("%w: detected %s", ErrNotImage, mimeType)
		}
	}

	img := &Image{
		MIMEType: mimeType,
		Data:     data,
		Checksum: utils.CalculateDataMD5(data),
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		slog.Debug("Failed to get image dimensions", "mime_type", mimeType, "error", err)
	} else {
		img.Width, img.Height = cfg.Width, cfg.Height
	}

	return img, nil
}

// ParseDataURI accepts either a data URI or bare base64
func ParseDataURI(value string) (*Image, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrEmpty
	}

	declared := ""
	if strings.HasPrefix(value, "data:") {
		if idx := strings.IndexByte(value, ','); idx >= 0 {
			header := strings.TrimPrefix(value[:idx], "data:")
			declared = strings.TrimSuffix(header, ";base64")
		}
	}

	data, err := base64.StdEncoding.DecodeString(StripDataURIPrefix(value))
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return Decode(data, declared)
}

// StripDataURIPrefix drops everything up to and including the first comma
func StripDataURIPrefix(value string) string {
	if idx := strings.IndexByte(value, ','); idx >= 0 {
		return value[idx+1:]
	}
	return value
}

func baseMIME(value string) string {
	value = strings.TrimSpace(value)
	if idx := strings.IndexByte(value, ';'); idx >= 0 {
		value = value[:idx]
	}
	return strings.ToLower(strings.TrimSpace(value))
}
