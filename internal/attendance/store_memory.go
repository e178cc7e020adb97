package attendance

import (
	"context"
	"sync"

	"rollcall/pkg/domain"
)

// InMemoryLedger keeps the ledger in a mutex-guarded map. It is the default
// backend for tests and single-process deployments; the mutex makes the
// conditional SetJoinedAt atomic the same way HSETNX does on Redis.
type InMemoryLedger struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryLedger creates an empty in-memory ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{records: make(map[string]Record)}
}

func ledgerKey(date domain.CivilDate, username domain.Username) string {
	return date.String() + "/" + string(username)
}

// Seed installs a bare record, standing in for the daily initialization job.
func (l *InMemoryLedger) Seed(date domain.CivilDate, username domain.Username) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(date, username)
	if _, ok := l.records[key]; !ok {
		l.records[key] = Record{Date: date, Username: username}
	}
}

func (l *InMemoryLedger) SetJoinedAt(_ context.Context, date domain.CivilDate, username domain.Username, stamp string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(date, username)
	rec, ok := l.records[key]
	if !ok {
		rec = Record{Date: date, Username: username}
	}
	if rec.JoinedAt != "" {
		return ErrAlreadyRecorded
	}
	rec.JoinedAt = stamp
	l.records[key] = rec
	return nil
}

func (l *InMemoryLedger) SetStatus(_ context.Context, date domain.CivilDate, username domain.Username, status domain.AttendanceStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(date, username)
	rec, ok := l.records[key]
	if !ok {
		return ErrNoRecord
	}
	rec.Status = status
	l.records[key] = rec
	return nil
}

func (l *InMemoryLedger) Find(_ context.Context, date domain.CivilDate, username domain.Username) (Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if rec, ok := l.records[ledgerKey(date, username)]; ok {
		return rec, nil
	}
	return Record{}, ErrNoRecord
}
