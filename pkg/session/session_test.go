package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
)

func TestNewSession(t *testing.T) {
	sess := New(time.Hour)

	if sess.ID == "" {
		t.Error("New() session has empty ID")
	}
	if sess.State != StateIdle {
		t.Errorf("State = %v, want idle", sess.State)
	}
	if sess.IsExpired() {
		t.Error("fresh session reports expired")
	}
}

func TestHappyPathTransitions(t *testing.T) {
	sess := New(time.Hour)

	sess, err := sess.Apply(PhotoCaptured{Hash: "abc"})
	if err != nil {
		t.Fatalf("PhotoCaptured: %v", err)
	}
	if sess.State != StateCaptured || sess.PhotoHash != "abc" {
		t.Errorf("after capture: state=%v hash=%q", sess.State, sess.PhotoHash)
	}

	sess, err = sess.Apply(ProcessingStarted{})
	if err != nil {
		t.Fatalf("ProcessingStarted: %v", err)
	}
	if sess.State != StateProcessing {
		t.Errorf("after start: state=%v", sess.State)
	}

	dims := lighting.Dimensions{Width: 4, Height: 3}
	sess, err = sess.Apply(ProcessingSucceeded{Dimensions: dims})
	if err != nil {
		t.Fatalf("ProcessingSucceeded: %v", err)
	}
	if sess.State != StateReady {
		t.Errorf("after success: state=%v", sess.State)
	}
	if sess.Dimensions == nil || *sess.Dimensions != dims {
		t.Errorf("Dimensions = %v, want %v", sess.Dimensions, dims)
	}

	plan, err := lighting.Compute(dims, lighting.Requirements{Illuminance: 300, LumensPerFixture: 900})
	if err != nil {
		t.Fatal(err)
	}
	sess, err = sess.Apply(PlanComputed{Plan: plan})
	if err != nil {
		t.Fatalf("PlanComputed: %v", err)
	}
	if sess.State != StateReady || sess.Plan == nil {
		t.Errorf("after plan: state=%v plan=%v", sess.State, sess.Plan)
	}

	sess, err = sess.Apply(Reset{})
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if sess.State != StateIdle || sess.Plan != nil || sess.Dimensions != nil || sess.PhotoHash != "" {
		t.Errorf("after reset: %+v", sess)
	}
}

func TestInvalidTransitionsLeaveSessionUntouched(t *testing.T) {
	tests := []struct {
		name  string
		setup []Event
		event Event
	}{
		{"process without photo", nil, ProcessingStarted{}},
		{"succeed without processing", []Event{PhotoCaptured{Hash: "a"}}, ProcessingSucceeded{Dimensions: lighting.Dimensions{Width: 1, Height: 1}}},
		{"fail without processing", nil, ProcessingFailed{Reason: "x"}},
		{"plan before ready", []Event{PhotoCaptured{Hash: "a"}}, PlanComputed{Plan: &lighting.Plan{}}},
		{"capture while processing", []Event{PhotoCaptured{Hash: "a"}, ProcessingStarted{}}, PhotoCaptured{Hash: "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := New(time.Hour)
			var err error
			for _, ev := range tt.setup {
				if sess, err = sess.Apply(ev); err != nil {
					t.Fatalf("setup event %q: %v", ev.Kind(), err)
				}
			}

			before := sess
			after, err := sess.Apply(tt.event)
			if !errors.Is(err, errors.ErrCodeInvalidEvent) {
				t.Errorf("Apply(%q) code = %v, want INVALID_EVENT", tt.event.Kind(), errors.GetCode(err))
			}
			if after.State != before.State || after.PhotoHash != before.PhotoHash {
				t.Errorf("invalid event mutated session: %+v != %+v", after, before)
			}
		})
	}
}

func TestRetakeAfterFailure(t *testing.T) {
	sess := New(time.Hour)
	sess, _ = sess.Apply(PhotoCaptured{Hash: "first"})
	sess, _ = sess.Apply(ProcessingStarted{})
	sess, err := sess.Apply(ProcessingFailed{Reason: "No Aruco marker detected"})
	if err != nil {
		t.Fatalf("ProcessingFailed: %v", err)
	}
	if sess.State != StateFailed || sess.FailureReason == "" {
		t.Errorf("after failure: %+v", sess)
	}

	sess, err = sess.Apply(PhotoCaptured{Hash: "second"})
	if err != nil {
		t.Fatalf("retake after failure: %v", err)
	}
	if sess.State != StateCaptured || sess.PhotoHash != "second" || sess.FailureReason != "" {
		t.Errorf("retake did not reset failure state: %+v", sess)
	}
}

func TestProcessingSucceededValidatesDimensions(t *testing.T) {
	sess := New(time.Hour)
	sess, _ = sess.Apply(PhotoCaptured{Hash: "a"})
	sess, _ = sess.Apply(ProcessingStarted{})

	_, err := sess.Apply(ProcessingSucceeded{Dimensions: lighting.Dimensions{Width: 0, Height: 3}})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Apply() code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
}

func TestApplyDoesNotMutateReceiver(t *testing.T) {
	sess := New(time.Hour)
	next, err := sess.Apply(PhotoCaptured{Hash: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	if sess.State != StateIdle {
		t.Errorf("receiver mutated: state=%v", sess.State)
	}
	if next.State != StateCaptured {
		t.Errorf("returned session not transitioned: state=%v", next.State)
	}
}

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		kind     string
		payload  string
		wantKind string
		wantErr  bool
	}{
		{"photo captured", KindPhotoCaptured, `{"hash": "abc"}`, KindPhotoCaptured, false},
		{"processing started", KindProcessingStarted, ``, KindProcessingStarted, false},
		{"succeeded", KindProcessingSucceeded, `{"dimensions": {"width": 4, "height": 3}}`, KindProcessingSucceeded, false},
		{"failed", KindProcessingFailed, `{"reason": "no marker"}`, KindProcessingFailed, false},
		{"reset", KindReset, ``, KindReset, false},
		{"unknown kind", "bogus", ``, "", true},
		{"malformed payload", KindPhotoCaptured, `{`, "", true},
		{"missing payload", KindProcessingSucceeded, ``, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeEvent(tt.kind, json.RawMessage(tt.payload))
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeInvalidEvent) {
					t.Errorf("DecodeEvent() code = %v, want INVALID_EVENT", errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			if ev.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", ev.Kind(), tt.wantKind)
			}
		})
	}
}
