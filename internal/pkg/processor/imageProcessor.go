package processor

import (
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

type ImageProcessor interface {
	Transform(src []byte, targetWidth float64, mimeType string) (*Output, error)
}

// Output is the encoded image together with what happened to it.
type Output struct {
	Data         []byte
	Width        int
	Height       int
	InputFormat  entity.InputFormat
	OutputFormat entity.OutputFormat
	Orientation  entity.Orientation // zero when no tag was applied
}

type imageProcessor struct {
	decoder         *Decoder
	resizer         *Resizer
	readOrientation func([]byte) (entity.Orientation, bool, error)
	logger          logrus.FieldLogger
}

// NewImageProcessor limits sources to maxSourcePixels and outputs to
// maxDimension on either side. Zero disables a limit.
func NewImageProcessor(maxDimension int, maxSourcePixels int64, logger logrus.FieldLogger) ImageProcessor {
	return &imageProcessor{
		decoder:         NewDecoder(maxSourcePixels),
		resizer:         NewResizer(maxDimension),
		readOrientation: ReadOrientation,
		logger:          logger,
	}
}

// Transform runs decode, resize, orient and encode in sequence over the
// fetched source bytes. Only the decode, resize and encode stages can fail.
func (p *imageProcessor) Transform(src []byte, targetWidth float64, mimeType string) (*Output, error) {
	then := time.Now()

	img, inputFormat, err := p.decoder.Decode(src)
	if err != nil {
		return nil, entity.AtStage(err, entity.StageFetched)
	}

	bounds := img.Bounds()
	logctx := p.logger.WithFields(logrus.Fields{
		"input_format": inputFormat,
		"source_size":  len(src),
		"source_dims":  [2]int{bounds.Dx(), bounds.Dy()},
		"target_width": targetWidth,
	})
	logctx.WithField("duration", time.Since(then)).Debug("Decoded source image")

	resized, err := p.resizer.Resize(img, targetWidth)
	if err != nil {
		return nil, entity.AtStage(err, entity.StageDecoded)
	}

	oriented, orientation := p.orient(logctx, src, resized, inputFormat)

	outputFormat := entity.OutputFormatFromMIME(mimeType)
	data, err := Encode(oriented, outputFormat)
	if err != nil {
		return nil, entity.AtStage(err, entity.StageOriented)
	}

	final := oriented.Bounds()
	logctx.WithFields(logrus.Fields{
		"output_format": outputFormat.MIMEType,
		"output_dims":   [2]int{final.Dx(), final.Dy()},
		"orientation":   orientation,
		"duration":      time.Since(then),
	}).Info("Transformed image")

	return &Output{
		Data:         data,
		Width:        final.Dx(),
		Height:       final.Dy(),
		InputFormat:  inputFormat,
		OutputFormat: outputFormat,
		Orientation:  orientation,
	}, nil
}

// orient is always run and always returns a new buffer. The image is left
// unrotated for sources without EXIF orientation and when the tag is absent
// or unreadable.
func (p *imageProcessor) orient(logctx logrus.FieldLogger, src []byte, img image.Image, format entity.InputFormat) (image.Image, entity.Orientation) {
	o := p.orientation(logctx, src, format)
	return Orient(img, o), o
}

// orientation returns the tag to apply, or zero.
func (p *imageProcessor) orientation(logctx logrus.FieldLogger, src []byte, format entity.InputFormat) entity.Orientation {
	if !format.CarriesOrientation() {
		return 0
	}

	o, ok, err := p.readOrientation(src)
	if err != nil {
		err = entity.AtStage(err, entity.StageResized)
		logctx.WithError(err).WithField("stage", entity.StageOf(err)).Warn("Could not read EXIF orientation, keeping image as is")
		return 0
	}
	if !ok || o < 1 || o > 8 {
		return 0
	}
	return o
}
