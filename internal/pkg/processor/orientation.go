package processor

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

// ReadOrientation reads the EXIF orientation tag from the original encoded
// bytes. ok is false when the tag is absent. A missing or corrupt EXIF
// segment is reported as an ExifParseError.
//
// Only the bounded APP1 payload reaches the EXIF decoder, and only after
// its declared value sizes have been checked against the payload.
func ReadOrientation(src []byte) (o entity.Orientation, ok bool, err error) {
	payload, err := exifPayload(src)
	if err != nil {
		return 0, false, entity.NewError(entity.KindExifParse, err)
	}
	if err := checkTIFF(payload); err != nil {
		return 0, false, entity.NewError(entity.KindExifParse, err)
	}

	x, err := exif.Decode(bytes.NewReader(payload))
	if err != nil {
		return 0, false, entity.NewError(entity.KindExifParse, err)
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false, nil
	}

	v, err := tag.Int(0)
	if err != nil {
		return 0, false, entity.NewError(entity.KindExifParse, err)
	}
	return entity.Orientation(v), true, nil
}

// Orient applies the transform that displays an image stored with EXIF
// orientation o upright. Values outside 2..8 return an
// unrotated copy. The result never shares pixels with img.
//
// The flip/rotate order of 5 and 7 matters; swapping it mirrors the result.
func Orient(img image.Image, o entity.Orientation) image.Image {
	switch o {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return rotateCW270(imaging.FlipH(img))
	case 6:
		return rotateCW90(img)
	case 7:
		return imaging.FlipH(rotateCW270(img))
	case 8:
		return rotateCW270(img)
	default:
		return imaging.Clone(img)
	}
}

// imaging rotates counter-clockwise.
func rotateCW90(img image.Image) *image.NRGBA {
	return imaging.Rotate270(img)
}

func rotateCW270(img image.Image) *image.NRGBA {
	return imaging.Rotate90(img)
}
