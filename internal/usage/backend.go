// Package usage persists a diagnostic audit trail of narrative
// generation requests. The in-memory ledger remains the source of truth
// for admission decisions; these records exist for offline review.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/ridgeline/caseflow/internal/config"
)

// Record is one audited narrative request.
type Record struct {
	Endpoint    string
	Model       string
	ClientKey   string
	RequestedAt time.Time
	Cached      bool
	Failed      bool
	Tokens      int64
}

// Backend defines the persistence contract for audit records.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Enqueue adds a record to the write queue. Non-blocking; records
	// are dropped with a warning when the queue is full.
	Enqueue(record Record)

	// Flush forces pending records to be written to storage.
	Flush(ctx context.Context) error

	// QueryGlobalStats returns aggregate statistics since the given time.
	QueryGlobalStats(ctx context.Context, since time.Time) (*AggregatedStats, error)

	// QueryDailyStats returns per-day statistics since the given time.
	QueryDailyStats(ctx context.Context, since time.Time) ([]DailyStats, error)

	// QueryEndpointStats returns per-endpoint/model statistics since the given time.
	QueryEndpointStats(ctx context.Context, since time.Time) ([]EndpointStats, error)

	// Cleanup removes records older than the given time.
	Cleanup(ctx context.Context, before time.Time) (int64, error)

	// Start begins background workers (write loop, cleanup loop).
	Start() error

	// Stop gracefully shuts down the backend, flushing pending writes.
	Stop() error
}

// BackendConfig holds parameters for backend initialization.
type BackendConfig struct {
	// DSN is the database connection string (sqlite://... or postgres://...).
	DSN string

	// BatchSize is the number of records to batch before writing.
	BatchSize int

	// FlushInterval is how often to flush pending writes.
	FlushInterval time.Duration

	// RetentionDays is how many days of records to keep.
	RetentionDays int
}

// NewBackend creates the appropriate backend based on DSN configuration.
func NewBackend(cfg BackendConfig) (Backend, error) {
	parsed, err := config.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, fmt.Errorf("DSN is required (use sqlite:// or postgres://)")
	}

	switch parsed.Backend {
	case "postgres":
		return NewPostgresBackend(parsed.URL, cfg)
	case "sqlite":
		return NewSQLiteBackend(parsed.Path, cfg)
	default:
		return nil, fmt.Errorf("unknown backend type: %q", parsed.Backend)
	}
}
