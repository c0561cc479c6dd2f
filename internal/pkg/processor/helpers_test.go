package processor

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// gradientImage has a distinct colour in every pixel, so any flip or
// rotation is observable.
func gradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: uint8((x*7 + y*13) % 256),
				A: 255,
			})
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}))
	return buf.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// exifOrientationSegment builds an APP1 segment holding a little-endian
// TIFF header and a single IFD0 entry for the orientation tag.
func exifOrientationSegment(orientation uint16) []byte {
	return exifSegment(tiffIFD(0, tiffEntry(0x0112, 3, 1, uint32(orientation))))
}

// tiffEntry encodes one little-endian IFD entry. value holds inline data
// or an offset, as the TIFF layout dictates.
func tiffEntry(tag, typ uint16, count, value uint32) []byte {
	e := make([]byte, 12)
	binary.LittleEndian.PutUint16(e, tag)
	binary.LittleEndian.PutUint16(e[2:], typ)
	binary.LittleEndian.PutUint32(e[4:], count)
	binary.LittleEndian.PutUint32(e[8:], value)
	return e
}

func tiffIFD(next uint32, entries ...[]byte) []byte {
	d := binary.LittleEndian.AppendUint16(nil, uint16(len(entries)))
	for _, e := range entries {
		d = append(d, e...)
	}
	return binary.LittleEndian.AppendUint32(d, next)
}

// ifdSize is the encoded size of an IFD with n entries.
func ifdSize(n int) uint32 {
	return uint32(2 + 12*n + 4)
}

// exifSegment lays ifds out back to back after the TIFF header, so the
// first one sits at offset 8.
func exifSegment(ifds ...[]byte) []byte {
	tiff := []byte{'I', 'I', 0x2A, 0x00, 0x08, 0x00, 0x00, 0x00}
	for _, d := range ifds {
		tiff = append(tiff, d...)
	}
	return app1Segment(append([]byte("Exif\x00\x00"), tiff...))
}

func app1Segment(payload []byte) []byte {
	n := len(payload) + 2
	return append([]byte{0xFF, 0xE1, byte(n >> 8), byte(n)}, payload...)
}

// withSegment inserts seg right after the SOI marker of a JPEG stream.
func withSegment(jpegBytes, seg []byte) []byte {
	out := make([]byte, 0, len(jpegBytes)+len(seg))
	out = append(out, jpegBytes[:2]...)
	out = append(out, seg...)
	return append(out, jpegBytes[2:]...)
}

func jpegWithOrientation(t *testing.T, img image.Image, orientation uint16) []byte {
	t.Helper()
	return withSegment(encodeJPEG(t, img), exifOrientationSegment(orientation))
}

// samePixels compares two images pixel by pixel in NRGBA space.
func samePixels(a, b image.Image) bool {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return false
	}
	for y := 0; y < ab.Dy(); y++ {
		for x := 0; x < ab.Dx(); x++ {
			ca := color.NRGBAModel.Convert(a.At(ab.Min.X+x, ab.Min.Y+y))
			cb := color.NRGBAModel.Convert(b.At(bb.Min.X+x, bb.Min.Y+y))
			if ca != cb {
				return false
			}
		}
	}
	return true
}
