package processor

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

type Resizer struct {
	maxDimension int
}

// NewResizer returns a resizer refusing outputs larger than maxDimension
// on either side. Zero disables the limit.
func NewResizer(maxDimension int) *Resizer {
	return &Resizer{maxDimension: maxDimension}
}

// Resize scales img to targetWidth, keeping the aspect ratio with a floored height.
func (r *Resizer) Resize(img image.Image, targetWidth float64) (image.Image, error) {
	if math.IsNaN(targetWidth) || math.IsInf(targetWidth, 0) || targetWidth <= 0 {
		return nil, entity.NewError(entity.KindResize,
			fmt.Errorf("%w: target width %v", entity.ErrInvalidParameter, targetWidth))
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, entity.NewError(entity.KindResize,
			fmt.Errorf("%w: source is %dx%d", entity.ErrInvalidParameter, bounds.Dx(), bounds.Dy()))
	}

	width, height := TargetDimensions(bounds.Dx(), bounds.Dy(), targetWidth)
	if width < 1 || height < 1 {
		return nil, entity.NewError(entity.KindResize,
			fmt.Errorf("%w: %dx%d scaled to width %v collapses to %dx%d",
				entity.ErrInvalidParameter, bounds.Dx(), bounds.Dy(), targetWidth, width, height))
	}
	if r.maxDimension > 0 && (width > r.maxDimension || height > r.maxDimension) {
		return nil, entity.NewError(entity.KindResize,
			fmt.Errorf("%w: %dx%d exceeds the %d pixel limit",
				entity.ErrInvalidParameter, width, height, r.maxDimension))
	}

	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// TargetDimensions computes ratio = targetWidth / width and
// height = floor(height * ratio). The width is floored the same way.
func TargetDimensions(width, height int, targetWidth float64) (int, int) {
	ratio := targetWidth / float64(width)
	newHeight := math.Floor(float64(height) * ratio)
	return int(math.Floor(targetWidth)), int(newHeight)
}
