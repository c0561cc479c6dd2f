package entity

import "strings"

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

// InputFormat is the container format detected from the source bytes.
type InputFormat string

const (
	InputJPEG InputFormat = "jpeg"
	InputPNG  InputFormat = "png"
	InputGIF  InputFormat = "gif"
	InputBMP  InputFormat = "bmp"
	InputTIFF InputFormat = "tiff"
	InputWEBP InputFormat = "webp"
)

// CarriesOrientation reports whether EXIF orientation is honored for the format.
func (f InputFormat) CarriesOrientation() bool {
	return f == InputJPEG
}

// OutputFormat is the encoding requested by the caller.
type OutputFormat struct {
	MIMEType string
	Quality  int // JPEG only
}

var (
	OutputJPEG = OutputFormat{MIMEType: MIMEJPEG, Quality: 90}
	OutputPNG  = OutputFormat{MIMEType: MIMEPNG}
)

// OutputFormatFromMIME never fails: anything other than PNG encodes as JPEG.
func OutputFormatFromMIME(mimeType string) OutputFormat {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case MIMEPNG:
		return OutputPNG
	default:
		return OutputJPEG
	}
}

// Orientation is the EXIF orientation tag value, 1 through 8.
type Orientation int

const OrientationNormal Orientation = 1

// Stage names the last pipeline state an invocation reached.
type Stage string

const (
	StageReceived  Stage = "Received"
	StageFetched   Stage = "Fetched"
	StageDecoded   Stage = "Decoded"
	StageResized   Stage = "Resized"
	StageOriented  Stage = "Oriented"
	StageEncoded   Stage = "Encoded"
	StageDelivered Stage = "Delivered"
)

// TransformRequest is built once per invocation and never mutated.
type TransformRequest struct {
	ID             string  `json:"request_id"`
	SourceURL      string  `json:"source_url"`
	DestinationURL string  `json:"destination_url"`
	TargetWidth    float64 `json:"size"`
	OutputMIMEType string  `json:"mime_type"`
}

type TransformResult struct {
	RequestID   string      `json:"request_id"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	InputFormat InputFormat `json:"input_format"`
	Format      string      `json:"format"`
	Bytes       int         `json:"bytes"`
	Orientation Orientation `json:"orientation,omitempty"`
	Stage       Stage       `json:"stage"`
}

// TransformJob is the Kafka message consumed by the processor.
type TransformJob struct {
	ID             string `json:"id,omitempty"`
	SourceURL      string `json:"source_url"`
	DestinationURL string `json:"destination_url"`
	Size           string `json:"size"`
	MIMEType       string `json:"mime_type,omitempty"`
}

// TransformEvent is published once a job has finished, either way.
type TransformEvent struct {
	JobID  string           `json:"job_id,omitempty"`
	Status string           `json:"status"`
	Result *TransformResult `json:"result,omitempty"`
	Error  *ErrorResponse   `json:"error,omitempty"`
}

type SuccessResponse struct {
	Status string `json:"status"`
	TransformResult
}

type ErrorResponse struct {
	Status    string    `json:"status"`
	RequestID string    `json:"request_id,omitempty"`
	Kind      ErrorKind `json:"kind"`
	Error     string    `json:"error"`
	Stage     Stage     `json:"stage,omitempty"`
}

const (
	StatusOK    = "ok"
	StatusError = "error"
)
