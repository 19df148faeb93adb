package serialize

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/h2non/filetype"

	"github.com/heimdex/jr3d/internal/session"
)

var ErrInvalidDataURL = errors.New("invalid data URL")

var extByMIME = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/webp":    "webp",
	"image/gif":     "gif",
	"image/bmp":     "bmp",
	"image/svg+xml": "svg",
}

// DecodeDataURL splits a data URL into its media type and raw bytes.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, ErrInvalidDataURL
	}

	isBase64 := false
	if m, found := strings.CutSuffix(meta, ";base64"); found {
		meta = m
		isBase64 = true
	}
	mime, _, _ := strings.Cut(meta, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
			}
		}
		return mime, data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	return mime, []byte(text), nil
}

// ImageExt picks a file extension from the MIME type, then from the content,
// and falls back to png.
func ImageExt(mime string, data []byte) string {
	if ext, ok := extByMIME[strings.ToLower(mime)]; ok {
		return ext
	}
	if kind, err := filetype.Image(data); err == nil && kind != filetype.Unknown {
		if kind.Extension == "jpeg" {
			return "jpg"
		}
		return kind.Extension
	}
	return "png"
}

// imageBytes returns the bytes of an image held either as a blob or as a
// data URL, with the extension to store it under.
func imageBytes(blob *session.Blob, dataURL string) ([]byte, string, error) {
	if blob != nil && len(blob.Data) > 0 {
		return blob.Data, ImageExt(blob.MimeType, blob.Data), nil
	}
	if dataURL == "" {
		return nil, "", errors.New("no image data")
	}
	mime, data, err := DecodeDataURL(dataURL)
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image data")
	}
	return data, ImageExt(mime, data), nil
}
