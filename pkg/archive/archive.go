// Package archive records completed measurements for later retrieval.
//
// The calculator itself is stateless and persistence-free; the archive is
// a service-side convenience that keeps a history of computed plans so
// past measurements can be listed and inspected. Archiving is strictly
// advisory: the service logs archive failures and still returns the plan.
//
// Two backends are provided: an in-memory archive for development and
// tests, and a MongoDB archive for deployments.
package archive

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlab/lumen/pkg/errors"
	"github.com/lumenlab/lumen/pkg/lighting"
)

// DefaultListLimit bounds List when the caller passes limit <= 0.
const DefaultListLimit = 50

// Record is one archived measurement: the inputs and the plan they
// produced.
type Record struct {
	ID           string               `json:"id" bson:"_id"`
	SessionID    string               `json:"session_id,omitempty" bson:"session_id,omitempty"`
	Dimensions   lighting.Dimensions  `json:"dimensions" bson:"dimensions"`
	Requirements lighting.Requirements `json:"requirements" bson:"requirements"`
	FixtureCount int                  `json:"fixture_count" bson:"fixture_count"`
	Positions    []lighting.Position  `json:"positions" bson:"positions"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
}

// NewRecord builds a Record from a computed plan with a fresh UUID and
// the current timestamp.
func NewRecord(sessionID string, plan *lighting.Plan) Record {
	return Record{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Dimensions:   plan.Dimensions,
		Requirements: plan.Requirements,
		FixtureCount: plan.FixtureCount,
		Positions:    plan.Positions,
		CreatedAt:    time.Now().UTC(),
	}
}

// Archive is the interface for plan history backends.
type Archive interface {
	// Insert stores a record.
	Insert(ctx context.Context, rec Record) error

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]Record, error)

	// Get retrieves a record by ID. Returns a PLAN_NOT_FOUND error when
	// no record exists.
	Get(ctx context.Context, id string) (*Record, error)
}

// MemoryArchive is an in-memory archive for development and tests.
// Safe for concurrent use.
type MemoryArchive struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryArchive creates an empty in-memory archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{}
}

func (a *MemoryArchive) Insert(ctx context.Context, rec Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *MemoryArchive) List(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	a.mu.RLock()
	out := make([]Record, len(a.records))
	copy(out, a.records)
	a.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *MemoryArchive) Get(ctx context.Context, id string) (*Record, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for i := range a.records {
		if a.records[i].ID == id {
			rec := a.records[i]
			return &rec, nil
		}
	}
	return nil, errors.New(errors.ErrCodePlanNotFound, "no archived plan with id %q", id)
}

var _ Archive = (*MemoryArchive)(nil)
