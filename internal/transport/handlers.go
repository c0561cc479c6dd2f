package transport

import (
	"github.com/ds124wfegd/image-resizer/internal/service"
)

const (
	HeaderSource      = "source-url"
	HeaderDestination = "destination-url"
	HeaderMIMEType    = "mime-type"
	HeaderRequestID   = "X-Request-Id"
	QuerySize         = "size"
)

type TransformHandler struct {
	service service.TransformService
}

func NewTransformHandler(service service.TransformService) *TransformHandler {
	return &TransformHandler{service: service}
}
