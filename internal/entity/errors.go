package entity

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "InvalidRequest"
	KindFetch          ErrorKind = "FetchError"
	KindDecode         ErrorKind = "DecodeError"
	KindResize         ErrorKind = "ResizeError"
	KindExifParse      ErrorKind = "ExifParseError"
	KindEncode         ErrorKind = "EncodeError"
	KindUpload         ErrorKind = "UploadError"
	KindInternal       ErrorKind = "InternalError"
)

var (
	// Request errors
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingSource    = errors.New("missing source-url header")
	ErrMissingDest      = errors.New("missing destination-url header")
	ErrMissingSize      = errors.New("missing size parameter")
	ErrInvalidParameter = errors.New("invalid parameter")

	// Pipeline errors
	ErrFetch     = errors.New("fetch failed")
	ErrDecode    = errors.New("decode failed")
	ErrResize    = errors.New("resize failed")
	ErrExifParse = errors.New("exif parse failed")
	ErrEncode    = errors.New("encode failed")
	ErrUpload    = errors.New("upload failed")
	ErrInternal  = errors.New("internal error")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidRequest: ErrInvalidRequest,
	KindFetch:          ErrFetch,
	KindDecode:         ErrDecode,
	KindResize:         ErrResize,
	KindExifParse:      ErrExifParse,
	KindEncode:         ErrEncode,
	KindUpload:         ErrUpload,
	KindInternal:       ErrInternal,
}

// HTTPStatus maps a kind to the response code surfaced to callers.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindFetch, KindUpload:
		return http.StatusBadGateway
	case KindDecode, KindResize:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Stage is the last state reached before it.
type Error struct {
	Kind  ErrorKind
	Stage Stage
	Err   error
}

func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind, so errors.Is(err, ErrDecode) works.
func (e *Error) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf classifies any error; unclassified errors are internal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// StageOf returns the stage recorded on err, if any.
func StageOf(err error) Stage {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// AtStage records the stage on a classified error, leaving others untouched.
func AtStage(err error, stage Stage) error {
	var e *Error
	if errors.As(err, &e) && e.Stage == "" {
		e.Stage = stage
	}
	return err
}

// NewErrorResponse renders err as the payload returned to callers.
func NewErrorResponse(requestID string, err error) ErrorResponse {
	return ErrorResponse{
		Status:    StatusError,
		RequestID: requestID,
		Kind:      KindOf(err),
		Error:     err.Error(),
		Stage:     StageOf(err),
	}
}
