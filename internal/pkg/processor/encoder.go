package processor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

// Encode serializes img as PNG or, for anything else, JPEG.
func Encode(img image.Image, format entity.OutputFormat) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format.MIMEType {
	case entity.MIMEPNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	default:
		quality := format.Quality
		if quality <= 0 {
			quality = entity.OutputJPEG.Quality
		}
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	}
	if err != nil {
		return nil, entity.NewError(entity.KindEncode, fmt.Errorf("encode %s: %w", format.MIMEType, err))
	}

	return buf.Bytes(), nil
}
