package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/ds124wfegd/image-resizer/internal/entity"
	"github.com/ds124wfegd/image-resizer/internal/service"
)

// HandleAPIGateway serves the same contract as the HTTP route for an
// API Gateway proxy event.
func (h *TransformHandler) HandleAPIGateway(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := service.NewTransformRequest(
		firstNonEmpty(lookupHeader(event.Headers, HeaderRequestID), event.RequestContext.RequestID),
		lookupHeader(event.Headers, HeaderSource),
		lookupHeader(event.Headers, HeaderDestination),
		event.QueryStringParameters[QuerySize],
		lookupHeader(event.Headers, HeaderMIMEType),
	)
	if err != nil {
		return lambdaResponse(entity.KindOf(err).HTTPStatus(), req.ID, entity.NewErrorResponse(req.ID, err))
	}

	result, err := h.service.Transform(ctx, req)
	if err != nil {
		return lambdaResponse(entity.KindOf(err).HTTPStatus(), req.ID, entity.NewErrorResponse(req.ID, err))
	}

	return lambdaResponse(http.StatusOK, req.ID, entity.SuccessResponse{
		Status:          entity.StatusOK,
		TransformResult: *result,
	})
}

func lambdaResponse(status int, requestID string, body interface{}) (events.APIGatewayProxyResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			HeaderRequestID: requestID,
		},
		Body: string(payload),
	}, nil
}

// API Gateway passes headers through with the client's casing.
func lookupHeader(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
