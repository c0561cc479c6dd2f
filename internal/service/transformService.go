package service

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/internal/entity"
)

// NewTransformRequest validates raw invocation parameters. Every failure is
// an InvalidRequest and happens before any network I/O.
func NewTransformRequest(id, sourceURL, destinationURL, size, mimeType string) (entity.TransformRequest, error) {
	if id == "" {
		id = uuid.New().String()
	}
	req := entity.TransformRequest{
		ID:             id,
		SourceURL:      strings.TrimSpace(sourceURL),
		DestinationURL: strings.TrimSpace(destinationURL),
		OutputMIMEType: strings.TrimSpace(mimeType),
	}
	if req.OutputMIMEType == "" {
		req.OutputMIMEType = entity.MIMEJPEG
	}

	if req.SourceURL == "" {
		return req, invalid(entity.ErrMissingSource)
	}
	if req.DestinationURL == "" {
		return req, invalid(entity.ErrMissingDest)
	}
	size = strings.TrimSpace(size)
	if size == "" {
		return req, invalid(entity.ErrMissingSize)
	}

	width, err := strconv.ParseFloat(size, 64)
	if err != nil {
		return req, invalid(fmt.Errorf("%w: size %q is not a number", entity.ErrInvalidParameter, size))
	}
	req.TargetWidth = width

	return req, validateRequest(req)
}

func validateRequest(req entity.TransformRequest) error {
	for name, raw := range map[string]string{"source-url": req.SourceURL, "destination-url": req.DestinationURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return invalid(fmt.Errorf("%w: %s %q is not an absolute URL", entity.ErrInvalidParameter, name, raw))
		}
	}
	if math.IsNaN(req.TargetWidth) || math.IsInf(req.TargetWidth, 0) || req.TargetWidth <= 0 {
		return invalid(fmt.Errorf("%w: size must be a positive number, got %v", entity.ErrInvalidParameter, req.TargetWidth))
	}
	return nil
}

func invalid(err error) error {
	return entity.AtStage(entity.NewError(entity.KindInvalidRequest, err), entity.StageReceived)
}

// Transform fetches, transforms and uploads one image.
func (s *transformService) Transform(ctx context.Context, req entity.TransformRequest) (*entity.TransformResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	logctx := s.logger.WithFields(logrus.Fields{
		"request_id":      req.ID,
		"source_url":      req.SourceURL,
		"destination_url": req.DestinationURL,
		"size":            req.TargetWidth,
		"mime_type":       req.OutputMIMEType,
	})
	then := time.Now()

	src, err := s.fetcher.Fetch(ctx, req.SourceURL)
	if err != nil {
		return nil, s.fail(logctx, classify(err, entity.KindFetch), entity.StageReceived)
	}

	out, err := s.processor.Transform(src, req.TargetWidth, req.OutputMIMEType)
	if err != nil {
		return nil, s.fail(logctx, classify(err, entity.KindInternal), entity.StageFetched)
	}

	if err := s.uploader.Upload(ctx, req.DestinationURL, out.Data, out.OutputFormat.MIMEType); err != nil {
		return nil, s.fail(logctx, classify(err, entity.KindUpload), entity.StageEncoded)
	}

	logctx.WithField("duration", time.Since(then)).Info("Delivered transformed image")

	return &entity.TransformResult{
		RequestID:   req.ID,
		Width:       out.Width,
		Height:      out.Height,
		InputFormat: out.InputFormat,
		Format:      out.OutputFormat.MIMEType,
		Bytes:       len(out.Data),
		Orientation: out.Orientation,
		Stage:       entity.StageDelivered,
	}, nil
}

func (s *transformService) fail(logctx logrus.FieldLogger, err error, stage entity.Stage) error {
	err = entity.AtStage(err, stage)
	logctx.WithFields(logrus.Fields{
		"kind":  entity.KindOf(err),
		"stage": entity.StageOf(err),
		"error": err.Error(),
	}).Error("Transform failed")
	return err
}

// classify gives unclassified collaborator errors the kind of the stage they came from.
func classify(err error, kind entity.ErrorKind) error {
	if entity.KindOf(err) != entity.KindInternal {
		return err
	}
	return entity.NewError(kind, err)
}
