package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ErrInvalidImageEncoding is returned when an image payload is not a
// base64 data URI holding a decodable picture.
var ErrInvalidImageEncoding = errors.New("invalid image encoding")

// AllowImage lists the content types accepted for recipe images.
var AllowImage = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/tiff",
}

// Image is a decoded upload ready to be stored.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string // with leading dot
	Width       int
	Height      int
}

// ImageStore persists recipe images and hands back the reference that is
// kept on the recipe.
type ImageStore interface {
	Save(ctx context.Context, img *Image) (string, error)
	Delete(ctx context.Context, ref string) error
}

// DecodeDataURI parses a payload of the form data:image/<ext>;base64,<data>.
// The declared type is only a hint; the bytes themselves must sniff as an
// allowed image type and decode.
func DecodeDataURI(payload string) (*Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(payload), "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data: prefix", ErrInvalidImageEncoding)
	}
	header, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: missing payload separator", ErrInvalidImageEncoding)
	}
	mediaType, encoding, _ := strings.Cut(header, ";")
	if !strings.HasPrefix(mediaType, "image/") || encoding != "base64" {
		return nil, fmt.Errorf("%w: unsupported header %q", ErrInvalidImageEncoding, header)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageEncoding, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImageEncoding)
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), AllowImage...) {
		return nil, fmt.Errorf("%w: content type %s not allowed", ErrInvalidImageEncoding, mtype.String())
	}

	decoded, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImageEncoding, err)
	}
	bounds := decoded.Bounds()

	return &Image{
		Data:        data,
		ContentType: mtype.String(),
		Ext:         mtype.Extension(),
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
