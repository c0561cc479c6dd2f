package entity

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewError(KindDecode, errors.New("bad header")))

	assert.True(t, errors.Is(err, ErrDecode))
	assert.False(t, errors.Is(err, ErrResize))
	assert.Equal(t, KindDecode, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestErrorUnwrapsCause(t *testing.T) {
	err := NewError(KindResize, fmt.Errorf("%w: width -5", ErrInvalidParameter))

	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Equal(t, "ResizeError: invalid parameter: width -5", err.Error())
}

func TestAtStageKeepsFirstStage(t *testing.T) {
	err := NewError(KindFetch, errors.New("timeout"))

	AtStage(err, StageReceived)
	AtStage(err, StageDecoded)

	assert.Equal(t, StageReceived, StageOf(err))
	assert.Equal(t, Stage(""), StageOf(errors.New("plain")))
}

func TestKindHTTPStatus(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want int
	}{
		{KindInvalidRequest, http.StatusBadRequest},
		{KindFetch, http.StatusBadGateway},
		{KindUpload, http.StatusBadGateway},
		{KindDecode, http.StatusUnprocessableEntity},
		{KindResize, http.StatusUnprocessableEntity},
		{KindEncode, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.HTTPStatus())
		})
	}
}

func TestOutputFormatFromMIME(t *testing.T) {
	tests := []struct {
		mime string
		want OutputFormat
	}{
		{"image/jpeg", OutputJPEG},
		{"image/png", OutputPNG},
		{" IMAGE/PNG ", OutputPNG},
		{"image/webp", OutputJPEG},
		{"", OutputJPEG},
	}

	for _, tt := range tests {
		t.Run(tt.mime, func(t *testing.T) {
			assert.Equal(t, tt.want, OutputFormatFromMIME(tt.mime))
		})
	}
	assert.Equal(t, 90, OutputJPEG.Quality)
}
