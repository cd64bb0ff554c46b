package ingest

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Ingestion states. Progress percent only moves forward within a state.
const (
	StatePending      = "pending"
	StateDownloading  = "downloading"
	StateUploading    = "uploading"
	StateTranscribing = "transcribing"
	StateReady        = "ready"
	StateFailed       = "failed"
)

// Status is a point-in-time snapshot of an ingestion.
type Status struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Percent   float64   `json:"percent"`
	Filename  string    `json:"filename,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// statusRetention is how long finished and failed entries stay pollable
// before they are pruned.
const statusRetention = time.Hour

// StatusRegistry tracks in-flight and recently finished ingestions so the
// client can poll progress instead of relying on an ad hoc callback
// channel. Terminal entries are pruned after a retention window so the
// registry does not grow for the lifetime of the process.
type StatusRegistry struct {
	mu        sync.RWMutex
	statuses  map[string]*Status
	retention time.Duration
}

func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{
		statuses:  make(map[string]*Status),
		retention: statusRetention,
	}
}

// Begin registers a new pending ingestion and returns its id. Expired
// terminal entries are swept here, amortizing cleanup over new work.
func (r *StatusRegistry) Begin() string {
	id := uuid.NewString()
	now := time.Now()
	r.mu.Lock()
	for old, s := range r.statuses {
		if (s.State == StateReady || s.State == StateFailed) && now.Sub(s.UpdatedAt) > r.retention {
			delete(r.statuses, old)
		}
	}
	r.statuses[id] = &Status{ID: id, State: StatePending, UpdatedAt: now}
	r.mu.Unlock()
	return id
}

// SetState moves an ingestion to a new state and resets nothing: percent
// is kept so a state change never appears to move progress backwards.
func (r *StatusRegistry) SetState(id, state string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.statuses[id]; ok {
		s.State = state
		s.UpdatedAt = time.Now()
	}
}

// SetPercent updates progress. Regressions are ignored so the reported
// percentage is monotonically increasing.
func (r *StatusRegistry) SetPercent(id string, percent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.statuses[id]; ok && percent > s.Percent {
		if percent > 100 {
			percent = 100
		}
		s.Percent = percent
		s.UpdatedAt = time.Now()
	}
}

// Finish marks an ingestion ready and records the resulting filename.
func (r *StatusRegistry) Finish(id, filename string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.statuses[id]; ok {
		s.State = StateReady
		s.Percent = 100
		s.Filename = filename
		s.UpdatedAt = time.Now()
	}
}

// Fail marks an ingestion failed with a human-readable message.
func (r *StatusRegistry) Fail(id string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.statuses[id]; ok {
		s.State = StateFailed
		s.Error = err.Error()
		s.UpdatedAt = time.Now()
	}
}

// Get returns a copy of the status for id.
func (r *StatusRegistry) Get(id string) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.statuses[id]
	if !ok {
		return Status{}, false
	}
	return *s, true
}
