package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lumenlab/lumen/pkg/archive"
	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
	"github.com/lumenlab/lumen/pkg/render"
	"github.com/lumenlab/lumen/pkg/session"
)

// maxUploadBytes bounds a single photo upload.
const maxUploadBytes = 32 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---- measurement compatibility endpoint ----

// legacyError is the flat error shape of the original measurement
// endpoint: {"error": "<message>"}.
type legacyError struct {
	Error string `json:"error"`
}

// legacyMessage maps structured detection errors back to the message
// strings the original endpoint emitted. The two "no objects" variants
// collapse to the generic one.
func legacyMessage(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeNoMarker:
		return "No Aruco marker detected"
	case errors.ErrCodeNoObject:
		return "No objects detected"
	default:
		return errors.UserMessage(err)
	}
}

func (s *Server) handleProcessImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, legacyError{Error: "No file part"})
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, legacyError{Error: "No selected file"})
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, legacyError{Error: "No selected file"})
		return
	}

	dims, annotated, _, err := s.runner.Detect(r.Context(), image, false)
	if err != nil {
		status := http.StatusBadRequest
		if statusForCode(errors.GetCode(err)) >= http.StatusInternalServerError {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, legacyError{Error: legacyMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"image": base64.StdEncoding.EncodeToString(annotated),
		"dimensions": map[string]float64{
			"width":  dims.Width,
			"height": dims.Height,
		},
	})
}

// ---- plan endpoint ----

type planRequest struct {
	Width            float64 `json:"width"`
	Height           float64 `json:"height"`
	Illuminance      float64 `json:"illuminance"`
	LumensPerFixture float64 `json:"lumens_per_fixture"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "malformed request body"))
		return
	}

	plan, err := lighting.Compute(
		lighting.Dimensions{Width: req.Width, Height: req.Height},
		lighting.Requirements{Illuminance: req.Illuminance, LumensPerFixture: req.LumensPerFixture},
	)
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := render.JSON(plan)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// ---- session endpoints ----

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := session.New(s.cfg.Sessions.TTL.Duration())
	if err := s.sessions.Set(r.Context(), &sess); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// loadSession resolves the {id} route parameter; missing and expired
// sessions both surface as SESSION_NOT_FOUND.
func (s *Server) loadSession(r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, errors.ErrCodeInvalidInput) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeSessionNotFound, err, "session %s", id)
	}
	if sess == nil {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type eventRequest struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (s *Server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidEvent, err, "malformed request body"))
		return
	}
	event, err := session.DecodeEvent(req.Kind, req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	next, err := sess.Apply(event)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sessions.Set(r.Context(), &next); err != nil {
		writeError(w, err)
		return
	}

	// Archiving is advisory: a failed insert never fails the event.
	if _, ok := event.(session.PlanComputed); ok && next.Plan != nil {
		rec := archive.NewRecord(next.ID, next.Plan)
		if err := s.plans.Insert(r.Context(), rec); err != nil {
			s.logger.Warn("plan archive insert failed", "session", next.ID, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, next)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- archive endpoints ----

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = n
	}

	records, err := s.plans.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []archive.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": records})
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
