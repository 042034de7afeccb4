package session

import (
	"encoding/json"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
)

// Event kinds as they appear on the wire.
const (
	KindPhotoCaptured       = "photo_captured"
	KindProcessingStarted   = "processing_started"
	KindProcessingSucceeded = "processing_succeeded"
	KindProcessingFailed    = "processing_failed"
	KindPlanComputed        = "plan_computed"
	KindReset               = "reset"
)

// Event is a discrete transition applied to a session.
type Event interface {
	// Kind returns the wire name of the event.
	Kind() string
}

// PhotoCaptured records that the user captured (or retook) a photo.
type PhotoCaptured struct {
	// Hash is the SHA-256 of the photo bytes.
	Hash string `json:"hash"`
}

// ProcessingStarted records that the photo was submitted to the
// measurement service.
type ProcessingStarted struct{}

// ProcessingSucceeded carries the dimensions the service measured.
type ProcessingSucceeded struct {
	Dimensions lighting.Dimensions `json:"dimensions"`
}

// ProcessingFailed records a detection failure with a displayable reason.
type ProcessingFailed struct {
	Reason string `json:"reason"`
}

// PlanComputed attaches a computed fixture plan to a ready session.
type PlanComputed struct {
	Plan *lighting.Plan `json:"plan"`
}

// Reset returns the session to idle, discarding photo, dimensions, and plan.
type Reset struct{}

func (PhotoCaptured) Kind() string       { return KindPhotoCaptured }
func (ProcessingStarted) Kind() string   { return KindProcessingStarted }
func (ProcessingSucceeded) Kind() string { return KindProcessingSucceeded }
func (ProcessingFailed) Kind() string    { return KindProcessingFailed }
func (PlanComputed) Kind() string        { return KindPlanComputed }
func (Reset) Kind() string               { return KindReset }

// DecodeEvent builds an Event from its wire kind and JSON payload.
// Used by the HTTP API to apply client-submitted events.
func DecodeEvent(kind string, payload json.RawMessage) (Event, error) {
	decode := func(v any) error {
		if len(payload) == 0 {
			return errors.New(errors.ErrCodeInvalidEvent, "event %q requires a payload", kind)
		}
		if err := json.Unmarshal(payload, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidEvent, err, "malformed payload for event %q", kind)
		}
		return nil
	}

	switch kind {
	case KindPhotoCaptured:
		var ev PhotoCaptured
		if err := decode(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	case KindProcessingStarted:
		return ProcessingStarted{}, nil
	case KindProcessingSucceeded:
		var ev ProcessingSucceeded
		if err := decode(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	case KindProcessingFailed:
		var ev ProcessingFailed
		if err := decode(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	case KindPlanComputed:
		var ev PlanComputed
		if err := decode(&ev); err != nil {
			return nil, err
		}
		return ev, nil
	case KindReset:
		return Reset{}, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidEvent, "unknown event kind %q", kind)
	}
}
