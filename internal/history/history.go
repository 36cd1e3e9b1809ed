package history

import (
	"sync"
	"time"
)

type contextKey string

// ContextKeyRequestID carries the inbound request id so call records can be
// correlated with request logs.
const ContextKeyRequestID contextKey = "request_id"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Record is one completed gateway call as shown in the history view.
type Record struct {
	ID        string    `json:"id"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Ring is a bounded in-memory record buffer. When full, adding evicts the
// oldest record. Call history is a transient view, not a persisted log.
type Ring struct {
	mu      sync.RWMutex
	records []Record
	size    int
}

const defaultRingSize = 200

func NewRing(size int) *Ring {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Ring{records: make([]Record, 0, size), size: size}
}

func (r *Ring) Add(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.records) == r.size {
		copy(r.records, r.records[1:])
		r.records = r.records[:r.size-1]
	}
	r.records = append(r.records, rec)
}

// List returns a snapshot of the buffer, most recent first.
func (r *Ring) List() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, len(r.records))
	for i, rec := range r.records {
		out[len(r.records)-1-i] = rec
	}
	return out
}

func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
