// Package ledger tracks daily request and token consumption for the
// narrative gateway and answers admission-control questions.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Limits are the static daily quotas, fixed after process start.
type Limits struct {
	GlobalDailyRequests    int64
	GlobalDailyTokens      int64
	PerClientDailyRequests int64
	PerClientDailyTokens   int64
}

// DenyReason identifies which quota scope rejected a request.
type DenyReason string

const (
	DenyNone             DenyReason = ""
	DenyDailyLimit       DenyReason = "daily_limit_reached"
	DenyClientDailyLimit DenyReason = "client_daily_limit_reached"
)

// AdmissionResult is the outcome of an Admit call.
type AdmissionResult struct {
	Allowed bool
	Reason  DenyReason
}

// Counter is one day's consumption at a single scope.
type Counter struct {
	Day      string `json:"day"`
	Requests int64  `json:"requests"`
	Tokens   int64  `json:"tokens"`
}

// Snapshot is a point-in-time view of ledger state for the status endpoint.
type Snapshot struct {
	Limits  Limits
	Global  Counter
	Clients int
}

// Store is the admission-control contract. The in-memory implementation
// below serves a single instance; a networked implementation can replace
// it for scale-out without touching callers.
type Store interface {
	Admit(clientKey string) AdmissionResult
	RecordTokens(clientKey string, tokens int64)
	Snapshot() Snapshot
	ClientCounter(clientKey string) Counter
}

// Ledger is the in-memory Store. Counters live for the process lifetime,
// reset lazily at day rollover, and are never persisted.
type Ledger struct {
	mu      sync.Mutex
	limits  Limits
	global  Counter
	clients map[string]*Counter
	now     func() time.Time
}

var _ Store = (*Ledger)(nil)

// New creates a ledger with the given limits.
func New(limits Limits) *Ledger {
	return &Ledger{
		limits:  limits,
		clients: make(map[string]*Counter),
		now:     time.Now,
	}
}

// SetClock overrides the ledger clock. Tests only.
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// rollover replaces a stale-day counter with a zeroed one for today.
// Caller must hold the lock.
func rollover(c *Counter, today string) {
	if c.Day != today {
		*c = Counter{Day: today}
	}
}

// Admit normalizes both counters to the current day, evaluates the global
// then the per-client limits, and on success charges one request unit to
// both scopes. The check-and-increment is a single critical section, so
// concurrent callers cannot both take the last slot.
func (l *Ledger) Admit(clientKey string) AdmissionResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := dayKey(l.now())
	rollover(&l.global, today)
	client := l.clientLocked(clientKey, today)

	if l.global.Requests >= l.limits.GlobalDailyRequests || l.global.Tokens >= l.limits.GlobalDailyTokens {
		return AdmissionResult{Reason: DenyDailyLimit}
	}
	if client.Requests >= l.limits.PerClientDailyRequests || client.Tokens >= l.limits.PerClientDailyTokens {
		return AdmissionResult{Reason: DenyClientDailyLimit}
	}

	l.global.Requests++
	client.Requests++
	return AdmissionResult{Allowed: true}
}

// RecordTokens adds completed upstream token usage to both scopes. Called
// only after a real upstream call; cache hits and fallbacks contribute
// nothing.
func (l *Ledger) RecordTokens(clientKey string, tokens int64) {
	if tokens <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	today := dayKey(l.now())
	rollover(&l.global, today)
	client := l.clientLocked(clientKey, today)

	l.global.Tokens += tokens
	client.Tokens += tokens
}

// Snapshot returns current global consumption and configured limits.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	rollover(&l.global, dayKey(l.now()))
	return Snapshot{
		Limits:  l.limits,
		Global:  l.global,
		Clients: len(l.clients),
	}
}

// ClientCounter returns today's consumption for one client key.
func (l *Ledger) ClientCounter(clientKey string) Counter {
	l.mu.Lock()
	defer l.mu.Unlock()

	return *l.clientLocked(clientKey, dayKey(l.now()))
}

// clientLocked fetches or creates the client counter normalized to today.
// Caller must hold the lock.
func (l *Ledger) clientLocked(clientKey, today string) *Counter {
	c, ok := l.clients[clientKey]
	if !ok {
		c = &Counter{Day: today}
		l.clients[clientKey] = c
		return c
	}
	rollover(c, today)
	return c
}

// credentialTailLen is how much of the caller credential feeds the client
// key, enough to separate credentials without retaining them.
const credentialTailLen = 8

// DeriveClientKey produces a stable, non-reversible caller identifier from
// the caller's network origin and the trailing slice of its credential.
func DeriveClientKey(origin, credential string) string {
	tail := credential
	if len(tail) > credentialTailLen {
		tail = tail[len(tail)-credentialTailLen:]
	}
	sum := sha256.Sum256([]byte(origin + "|" + tail))
	return hex.EncodeToString(sum[:])[:16]
}
