package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lumenlab/lumen/internal/config"
	"github.com/lumenlab/lumen/pkg/archive"
	"github.com/lumenlab/lumen/pkg/detect"
	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
	"github.com/lumenlab/lumen/pkg/pipeline"
	"github.com/lumenlab/lumen/pkg/session"
)

type fakeDetector struct {
	result *detect.Result
	err    error
	calls  int
}

func (f *fakeDetector) Measure(ctx context.Context, image []byte, refresh bool) (*detect.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestServer(t *testing.T, detector pipeline.Detector) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(detector, logger)
	return New(config.Default(), runner, session.NewMemoryStore(), archive.NewMemoryArchive(), logger)
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeDetector{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestPlanEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeDetector{})

	t.Run("valid", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/plan", map[string]float64{
			"width":              4,
			"height":             3,
			"illuminance":        300,
			"lumens_per_fixture": 900,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var doc struct {
			FixtureCount int                 `json:"fixture_count"`
			Positions    []lighting.Position `json:"positions"`
			Complete     bool                `json:"complete"`
		}
		decodeBody(t, rec, &doc)
		if doc.FixtureCount != 4 {
			t.Errorf("fixture_count = %d, want 4", doc.FixtureCount)
		}
		if len(doc.Positions) != 4 || !doc.Complete {
			t.Errorf("positions = %v, complete = %v", doc.Positions, doc.Complete)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/v1/plan", map[string]float64{
			"width":              0,
			"height":             3,
			"illuminance":        300,
			"lumens_per_fixture": 900,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var body struct {
			Error struct {
				Code errors.Code `json:"code"`
			} `json:"error"`
		}
		decodeBody(t, rec, &body)
		if body.Error.Code != errors.ErrCodeInvalidInput {
			t.Errorf("error code = %s, want INVALID_INPUT", body.Error.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/plan", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, &fakeDetector{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	var sess session.Session
	decodeBody(t, rec, &sess)
	if sess.ID == "" || sess.State != session.StateIdle {
		t.Fatalf("created session = %+v", sess)
	}

	eventsPath := "/api/v1/sessions/" + sess.ID + "/events"

	// Walk the full photo-to-plan workflow.
	steps := []struct {
		kind      string
		payload   any
		wantState session.State
	}{
		{session.KindPhotoCaptured, map[string]string{"hash": "abc123"}, session.StateCaptured},
		{session.KindProcessingStarted, nil, session.StateProcessing},
		{session.KindProcessingSucceeded, map[string]any{
			"dimensions": map[string]float64{"width": 4, "height": 3},
		}, session.StateReady},
	}
	for _, step := range steps {
		body := map[string]any{"kind": step.kind}
		if step.payload != nil {
			body["payload"] = step.payload
		}
		rec := doJSON(t, h, http.MethodPost, eventsPath, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("event %s status = %d, body %s", step.kind, rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &sess)
		if sess.State != step.wantState {
			t.Fatalf("after %s state = %s, want %s", step.kind, sess.State, step.wantState)
		}
	}

	plan, err := lighting.Compute(*sess.Dimensions, lighting.Requirements{Illuminance: 300, LumensPerFixture: 900})
	if err != nil {
		t.Fatal(err)
	}
	rec = doJSON(t, h, http.MethodPost, eventsPath, map[string]any{
		"kind":    session.KindPlanComputed,
		"payload": map[string]any{"plan": plan},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("plan_computed status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &sess)
	if sess.Plan == nil || sess.Plan.FixtureCount != plan.FixtureCount {
		t.Fatalf("session plan = %+v", sess.Plan)
	}

	// The computed plan lands in the archive.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/plans", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list plans status = %d", rec.Code)
	}
	var list struct {
		Plans []archive.Record `json:"plans"`
	}
	decodeBody(t, rec, &list)
	if len(list.Plans) != 1 || list.Plans[0].SessionID != sess.ID {
		t.Fatalf("archived plans = %+v", list.Plans)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/plans/"+list.Plans[0].ID, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get plan status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/sessions/"+sess.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestSessionErrors(t *testing.T) {
	srv := newTestServer(t, &fakeDetector{})
	h := srv.Handler()

	t.Run("unknown session", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodGet, "/api/v1/sessions/does-not-exist", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("invalid transition leaves session untouched", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
		var sess session.Session
		decodeBody(t, rec, &sess)

		rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/events", map[string]any{
			"kind": session.KindProcessingStarted,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}

		rec = doJSON(t, h, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
		decodeBody(t, rec, &sess)
		if sess.State != session.StateIdle {
			t.Errorf("state = %s, want idle", sess.State)
		}
	})

	t.Run("unknown event kind", func(t *testing.T) {
		rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", nil)
		var sess session.Session
		decodeBody(t, rec, &sess)

		rec = doJSON(t, h, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/events", map[string]any{
			"kind": "teleport",
		})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestListPlansLimit(t *testing.T) {
	srv := newTestServer(t, &fakeDetector{})
	plan, err := lighting.Compute(
		lighting.Dimensions{Width: 4, Height: 3},
		lighting.Requirements{Illuminance: 300, LumensPerFixture: 900},
	)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := srv.plans.Insert(context.Background(), archive.NewRecord(fmt.Sprintf("s%d", i), plan)); err != nil {
			t.Fatal(err)
		}
	}

	rec := doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/plans?limit=2", nil)
	var list struct {
		Plans []archive.Record `json:"plans"`
	}
	decodeBody(t, rec, &list)
	if len(list.Plans) != 2 {
		t.Errorf("len(plans) = %d, want 2", len(list.Plans))
	}

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/plans?limit=nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, srv.Handler(), http.MethodGet, "/api/v1/plans/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing plan status = %d, want 404", rec.Code)
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestProcessImage(t *testing.T) {
	annotated := []byte("annotated-jpeg-bytes")

	t.Run("success", func(t *testing.T) {
		detector := &fakeDetector{result: &detect.Result{
			Dimensions: lighting.Dimensions{Width: 1.5, Height: 2.25},
			Annotated:  annotated,
		}}
		srv := newTestServer(t, detector)

		body, contentType := multipartUpload(t, "file", "room.jpg", []byte("raw-jpeg"))
		req := httptest.NewRequest(http.MethodPost, "/process_image", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			Image      string `json:"image"`
			Dimensions struct {
				Width  float64 `json:"width"`
				Height float64 `json:"height"`
			} `json:"dimensions"`
		}
		decodeBody(t, rec, &resp)
		decoded, err := base64.StdEncoding.DecodeString(resp.Image)
		if err != nil || !bytes.Equal(decoded, annotated) {
			t.Errorf("image payload mismatch: %v", err)
		}
		if resp.Dimensions.Width != 1.5 || resp.Dimensions.Height != 2.25 {
			t.Errorf("dimensions = %+v", resp.Dimensions)
		}
		if detector.calls != 1 {
			t.Errorf("detector calls = %d, want 1", detector.calls)
		}
	})

	t.Run("missing file part", func(t *testing.T) {
		srv := newTestServer(t, &fakeDetector{})
		body, contentType := multipartUpload(t, "photo", "room.jpg", []byte("raw"))
		req := httptest.NewRequest(http.MethodPost, "/process_image", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp legacyError
		decodeBody(t, rec, &resp)
		if resp.Error != "No file part" {
			t.Errorf("error = %q, want %q", resp.Error, "No file part")
		}
	})

	t.Run("detection failure keeps original message", func(t *testing.T) {
		srv := newTestServer(t, &fakeDetector{
			err: errors.New(errors.ErrCodeNoMarker, "no ArUco marker detected in the photo"),
		})
		body, contentType := multipartUpload(t, "file", "room.jpg", []byte("raw"))
		req := httptest.NewRequest(http.MethodPost, "/process_image", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp legacyError
		decodeBody(t, rec, &resp)
		if resp.Error != "No Aruco marker detected" {
			t.Errorf("error = %q", resp.Error)
		}
	})
}
