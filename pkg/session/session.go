// Package session models a measurement session as an explicit state
// machine with pluggable storage backends.
//
// A session tracks one photo-to-plan workflow: the user captures a photo,
// the photo is sent to the measurement service, and the resulting
// dimensions feed the fixture layout calculator. Instead of a loose set of
// flags (current photo, loading, result), the session is an immutable
// value transitioned by discrete events:
//
//	idle --PhotoCaptured--> captured --ProcessingStarted--> processing
//	processing --ProcessingSucceeded--> ready
//	processing --ProcessingFailed--> failed
//	ready --PlanComputed--> ready (plan attached)
//	any --Reset--> idle
//
// Invalid transitions (e.g. starting processing without a captured photo)
// are rejected with an INVALID_EVENT error and leave the session
// untouched, which makes states that the flag-based design could silently
// reach unrepresentable.
//
// # Storage
//
// The Store interface supports Get/Set/Delete/Cleanup with automatic
// expiration. Implementations:
//   - memory: in-memory storage for development and tests
//   - file: file-based storage for CLI usage (~/.config/lumen/sessions/)
//   - redis: Redis-backed storage for multi-instance service deployments
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
)

// DefaultTTL is how long a session stays retrievable after creation.
const DefaultTTL = 24 * time.Hour

// State identifies where a session is in the photo-to-plan workflow.
type State string

const (
	// StateIdle is the initial state: no photo captured yet.
	StateIdle State = "idle"
	// StateCaptured means a photo is held but not yet processed.
	StateCaptured State = "captured"
	// StateProcessing means the photo was sent to the measurement service.
	StateProcessing State = "processing"
	// StateReady means dimensions are available (and possibly a plan).
	StateReady State = "ready"
	// StateFailed means the measurement service rejected the photo.
	StateFailed State = "failed"
)

// Session is one measurement workflow. Sessions are value types: Apply
// returns an updated copy and never mutates the receiver, so a stored
// session only changes when the caller explicitly saves the new value.
type Session struct {
	ID    string `json:"id"`
	State State  `json:"state"`

	// PhotoHash is the SHA-256 of the captured photo, set on capture.
	PhotoHash string `json:"photo_hash,omitempty"`

	// Dimensions is set when processing succeeds.
	Dimensions *lighting.Dimensions `json:"dimensions,omitempty"`

	// Plan is the most recent fixture plan, if one was computed. Each new
	// computation supersedes the previous plan entirely.
	Plan *lighting.Plan `json:"plan,omitempty"`

	// FailureReason describes why processing failed, for display.
	FailureReason string `json:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New creates an idle session with a fresh UUID and the given TTL.
func New(ttl time.Duration) Session {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has passed its expiry time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Apply transitions the session with the given event and returns the new
// session value. The receiver is never modified; on an invalid transition
// the returned session equals the receiver and the error carries the
// INVALID_EVENT code.
func (s Session) Apply(event Event) (Session, error) {
	next := s
	switch ev := event.(type) {
	case PhotoCaptured:
		// Capturing is allowed from every state except mid-processing:
		// retaking the photo discards any previous result.
		if s.State == StateProcessing {
			return s, invalidEvent(s.State, event)
		}
		next.State = StateCaptured
		next.PhotoHash = ev.Hash
		next.Dimensions = nil
		next.Plan = nil
		next.FailureReason = ""

	case ProcessingStarted:
		if s.State != StateCaptured {
			return s, invalidEvent(s.State, event)
		}
		next.State = StateProcessing

	case ProcessingSucceeded:
		if s.State != StateProcessing {
			return s, invalidEvent(s.State, event)
		}
		if err := ev.Dimensions.Validate(); err != nil {
			return s, err
		}
		dims := ev.Dimensions
		next.State = StateReady
		next.Dimensions = &dims

	case ProcessingFailed:
		if s.State != StateProcessing {
			return s, invalidEvent(s.State, event)
		}
		next.State = StateFailed
		next.FailureReason = ev.Reason

	case PlanComputed:
		if s.State != StateReady {
			return s, invalidEvent(s.State, event)
		}
		if ev.Plan == nil {
			return s, errors.New(errors.ErrCodeInvalidEvent, "plan_computed event carries no plan")
		}
		next.Plan = ev.Plan

	case Reset:
		next.State = StateIdle
		next.PhotoHash = ""
		next.Dimensions = nil
		next.Plan = nil
		next.FailureReason = ""

	default:
		return s, errors.New(errors.ErrCodeInvalidEvent, "unknown event type %T", event)
	}

	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

func invalidEvent(state State, event Event) error {
	return errors.New(errors.ErrCodeInvalidEvent,
		"event %q is not valid in state %q", event.Kind(), state)
}
