package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/image-resizer/internal/entity"
	"github.com/ds124wfegd/image-resizer/internal/pkg/processor"
	"github.com/ds124wfegd/image-resizer/internal/pkg/transfer"
)

type TransformService interface {
	Transform(ctx context.Context, req entity.TransformRequest) (*entity.TransformResult, error)
}

type transformService struct {
	fetcher   transfer.Fetcher
	uploader  transfer.Uploader
	processor processor.ImageProcessor
	logger    logrus.FieldLogger
}

func NewTransformService(fetcher transfer.Fetcher, uploader transfer.Uploader, processor processor.ImageProcessor, logger logrus.FieldLogger) TransformService {
	return &transformService{
		fetcher:   fetcher,
		uploader:  uploader,
		processor: processor,
		logger:    logger,
	}
}
