package detect

import (
	"strings"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
)

// Result is a successful measurement: the dimensions of the detected
// object and the service's annotated copy of the uploaded photo (JPEG).
type Result struct {
	Dimensions lighting.Dimensions
	Annotated  []byte
}

// wireResponse is the service's success payload.
type wireResponse struct {
	Image      string        `json:"image"` // base64-encoded annotated JPEG
	Dimensions wireDimension `json:"dimensions"`
}

type wireDimension struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// wireError is the service's failure payload.
type wireError struct {
	Error string `json:"error"`
}

// Error strings emitted by the measurement service. These are part of its
// wire contract and matched verbatim.
const (
	msgNoFilePart      = "No file part"
	msgNoSelectedFile  = "No selected file"
	msgNoMarker        = "No Aruco marker detected"
	msgNoObjects       = "No objects detected"
	msgNoCenterObjects = "No objects close to center detected"
)

// classifyServiceError maps a service error string to a structured error.
// Unknown messages are reported as internal errors so new service failures
// surface loudly instead of being mistaken for user mistakes.
func classifyServiceError(msg string) error {
	switch {
	case msg == msgNoMarker:
		return errors.New(errors.ErrCodeNoMarker, "no ArUco marker detected in the photo")
	case msg == msgNoObjects, msg == msgNoCenterObjects:
		return errors.New(errors.ErrCodeNoObject, "no measurable object detected in the photo")
	case msg == msgNoFilePart, msg == msgNoSelectedFile,
		strings.Contains(strings.ToLower(msg), "file"):
		return errors.New(errors.ErrCodeInvalidImage, "the service rejected the uploaded image: %s", msg)
	default:
		return errors.New(errors.ErrCodeInternal, "measurement service error: %s", msg)
	}
}
