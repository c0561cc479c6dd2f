package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ds124wfegd/image-resizer/internal/entity"
	"github.com/ds124wfegd/image-resizer/internal/service"
)

func (h *TransformHandler) Transform(c *gin.Context) {
	req, err := service.NewTransformRequest(
		c.GetHeader(HeaderRequestID),
		c.GetHeader(HeaderSource),
		c.GetHeader(HeaderDestination),
		c.Query(QuerySize),
		c.GetHeader(HeaderMIMEType),
	)
	if err != nil {
		h.respondError(c, req.ID, err)
		return
	}
	c.Header(HeaderRequestID, req.ID)

	result, err := h.service.Transform(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, req.ID, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Status:          entity.StatusOK,
		TransformResult: *result,
	})
}

func (h *TransformHandler) respondError(c *gin.Context, requestID string, err error) {
	c.Error(err)
	c.JSON(entity.KindOf(err).HTTPStatus(), entity.NewErrorResponse(requestID, err))
}
