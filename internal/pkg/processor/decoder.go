package processor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

type Decoder struct {
	maxPixels int64
}

// NewDecoder returns a decoder refusing sources whose header declares more
// than maxPixels pixels. Zero disables the limit.
func NewDecoder(maxPixels int64) *Decoder {
	return &Decoder{maxPixels: maxPixels}
}

// Decode detects the container format from the bytes themselves.
// GIF input yields its first frame.
//
// The declared dimensions are read first, so an oversized header is
// rejected before any pixel buffer is allocated.
func (d *Decoder) Decode(src []byte) (image.Image, entity.InputFormat, error) {
	if len(src) == 0 {
		return nil, "", entity.NewError(entity.KindDecode, errors.New("empty source"))
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(src))
	if err != nil {
		return nil, "", entity.NewError(entity.KindDecode, fmt.Errorf("decode image header: %w", err))
	}
	if d.maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > d.maxPixels {
		return nil, "", entity.NewError(entity.KindDecode,
			fmt.Errorf("%s source is %dx%d, above the %d pixel limit", format, cfg.Width, cfg.Height, d.maxPixels))
	}

	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, "", entity.NewError(entity.KindDecode, fmt.Errorf("decode image: %w", err))
	}

	return img, entity.InputFormat(format), nil
}

// Decode decodes src without a pixel limit.
func Decode(src []byte) (image.Image, entity.InputFormat, error) {
	return NewDecoder(0).Decode(src)
}
