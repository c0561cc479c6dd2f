package processor

import (
	"errors"
	"fmt"
	"image"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

func TestOrientMapsEveryPixel(t *testing.T) {
	const w, h = 3, 2
	src := gradientImage(w, h)

	// dst maps a source pixel (x, y) to its position after the transform.
	tests := []struct {
		orientation entity.Orientation
		width       int
		height      int
		dst         func(x, y int) (int, int)
	}{
		{1, w, h, func(x, y int) (int, int) { return x, y }},
		{2, w, h, func(x, y int) (int, int) { return w - 1 - x, y }},
		{3, w, h, func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }},
		{4, w, h, func(x, y int) (int, int) { return x, h - 1 - y }},
		{5, h, w, func(x, y int) (int, int) { return y, x }},
		{6, h, w, func(x, y int) (int, int) { return h - 1 - y, x }},
		{7, h, w, func(x, y int) (int, int) { return h - 1 - y, w - 1 - x }},
		{8, h, w, func(x, y int) (int, int) { return y, w - 1 - x }},
		{0, w, h, func(x, y int) (int, int) { return x, y }},
		{9, w, h, func(x, y int) (int, int) { return x, y }},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("orientation %d", tt.orientation), func(t *testing.T) {
			got := Orient(src, tt.orientation)

			require.Equal(t, tt.width, got.Bounds().Dx())
			require.Equal(t, tt.height, got.Bounds().Dy())

			want := image.NewNRGBA(image.Rect(0, 0, tt.width, tt.height))
			for y := 0; y < h; y++ {
				for x := 0; x < w; x++ {
					dx, dy := tt.dst(x, y)
					want.Set(dx, dy, src.At(x, y))
				}
			}
			assert.True(t, samePixels(want, got), "orientation %d", tt.orientation)
		})
	}
}

func TestOrientCompositionOrder(t *testing.T) {
	src := gradientImage(4, 3)

	// Orientation 5 flips then rotates; the commuted order must differ.
	five := Orient(src, 5)
	assert.True(t, samePixels(rotateCW270(imaging.FlipH(src)), five))
	assert.False(t, samePixels(imaging.FlipH(rotateCW270(src)), five))

	// Orientation 7 rotates then flips.
	seven := Orient(src, 7)
	assert.True(t, samePixels(imaging.FlipH(rotateCW270(src)), seven))
	assert.False(t, samePixels(rotateCW270(imaging.FlipH(src)), seven))
}

func TestOrientIdentity(t *testing.T) {
	src := gradientImage(5, 4)

	assert.True(t, samePixels(src, Orient(src, entity.OrientationNormal)))
	assert.True(t, samePixels(src, Orient(src, 0)))
}

func TestReadOrientation(t *testing.T) {
	img := gradientImage(8, 6)

	for o := uint16(1); o <= 8; o++ {
		got, ok, err := ReadOrientation(jpegWithOrientation(t, img, o))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, entity.Orientation(o), got)
	}
}

func TestReadOrientationFailures(t *testing.T) {
	img := gradientImage(8, 6)

	tests := []struct {
		name string
		src  []byte
	}{
		{"jpeg without exif", encodeJPEG(t, img)},
		{"corrupt exif", withSegment(encodeJPEG(t, img), app1Segment([]byte("Exif\x00\x00garbage!")))},
		{"not an image", []byte("definitely not a jpeg")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := ReadOrientation(tt.src)

			assert.False(t, ok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrExifParse))
		})
	}
}

func TestReadOrientationFollowsSubIFDs(t *testing.T) {
	exifIFD := ifdSize(2) + 8
	seg := exifSegment(
		tiffIFD(0,
			tiffEntry(0x0112, 3, 1, 6),
			tiffEntry(0x8769, 4, 1, exifIFD),
		),
		tiffIFD(0, tiffEntry(0x9000, 7, 4, 0x30333230)), // ExifVersion "0230"
	)

	got, ok, err := ReadOrientation(withSegment(encodeJPEG(t, gradientImage(8, 6)), seg))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.Orientation(6), got)
}

func TestReadOrientationSkipsOtherSegments(t *testing.T) {
	app0 := []byte{0xFF, 0xE0, 0x00, 0x07, 'J', 'F', 'I', 'F', 0x00}
	src := withSegment(jpegWithOrientation(t, gradientImage(8, 6), 8), app0)

	got, ok, err := ReadOrientation(src)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, entity.Orientation(8), got)
}

// TestReadOrientationRejectsOversizedTags covers declared value sizes that
// wrap around in 32 bits and would otherwise be allocated in full.
func TestReadOrientationRejectsOversizedTags(t *testing.T) {
	subIFD := ifdSize(1) + 8

	tests := []struct {
		name string
		seg  []byte
	}{
		{"short count wraps", exifSegment(tiffIFD(0, tiffEntry(0x0112, 3, 0x80000001, 6)))},
		{"long count wraps", exifSegment(tiffIFD(0, tiffEntry(0x0112, 4, 0x40000001, 6)))},
		{"rational count wraps", exifSegment(tiffIFD(0, tiffEntry(0x011A, 5, 0x20000001, 0)))},
		{"count larger than segment", exifSegment(tiffIFD(0, tiffEntry(0x010F, 2, 70000, 8)))},
		{"oversized tag in sub-IFD", exifSegment(
			tiffIFD(0, tiffEntry(0x8769, 4, 1, subIFD)),
			tiffIFD(0, tiffEntry(0x9000, 3, 0x80000002, 0)),
		)},
		{"sub-IFD outside segment", exifSegment(tiffIFD(0, tiffEntry(0x8769, 4, 1, 0xFFFF)))},
		{"IFD chain loops", exifSegment(tiffIFD(8, tiffEntry(0x0112, 3, 1, 6)))},
		{"entries overrun segment", exifSegment([]byte{0xFF, 0x00, 0x12, 0x01})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := withSegment(encodeJPEG(t, gradientImage(16, 16)), tt.seg)

			o, ok, err := ReadOrientation(src)

			assert.Zero(t, o)
			assert.False(t, ok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrExifParse))
		})
	}
}

func TestOrientReturnsNewBuffer(t *testing.T) {
	for o := entity.Orientation(0); o <= 9; o++ {
		t.Run(fmt.Sprintf("orientation %d", o), func(t *testing.T) {
			src := gradientImage(4, 3)
			before := imaging.Clone(src)

			out, ok := Orient(src, o).(*image.NRGBA)
			require.True(t, ok)
			for i := range out.Pix {
				out.Pix[i] = 0
			}

			assert.True(t, samePixels(before, src))
		})
	}
}
