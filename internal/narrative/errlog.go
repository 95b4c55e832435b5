package narrative

import (
	"sync"
	"time"
)

const errorRingSize = 20

// ErrorRecord is one recent classified failure, kept for operator
// visibility on the status endpoint. Diagnostic only.
type ErrorRecord struct {
	Time     time.Time `json:"time"`
	Endpoint string    `json:"endpoint"`
	Code     string    `json:"code"`
	Status   int       `json:"status"`
	Message  string    `json:"message"`
}

// errorRing is a bounded ring of recent error records.
type errorRing struct {
	mu      sync.Mutex
	records []ErrorRecord
	next    int
	filled  bool
}

func newErrorRing() *errorRing {
	return &errorRing{records: make([]ErrorRecord, errorRingSize)}
}

func (r *errorRing) add(rec ErrorRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[r.next] = rec
	r.next++
	if r.next == len(r.records) {
		r.next = 0
		r.filled = true
	}
}

// recent returns records newest-first.
func (r *errorRing) recent() []ErrorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.filled {
		size = len(r.records)
	}
	out := make([]ErrorRecord, 0, size)
	for i := 1; i <= size; i++ {
		idx := (r.next - i + len(r.records)) % len(r.records)
		out = append(out, r.records[idx])
	}
	return out
}
