package attendance

import (
	"context"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Record is one (date, username) entry in the daily ledger. A record is
// created ahead of time by the daily initialization job; within this service
// only the conditional JoinedAt set may bring one into existence.
type Record struct {
	Date     domain.CivilDate
	Username domain.Username
	// JoinedAt is the first-arrival timestamp in clock.Timestamp format.
	// Empty until the first in-window join of the day; immutable after.
	JoinedAt string
	// Status is empty for ordinary presence; StatusDayOff marks a
	// registered absence.
	Status domain.AttendanceStatus
}

var (
	// ErrAlreadyRecorded is the condition-failed outcome: the day's first
	// arrival was stamped earlier. Expected, not a fault.
	ErrAlreadyRecorded = dErrors.New(dErrors.CodeAlreadyRecorded, "first arrival already recorded")

	// ErrNoRecord means the daily initialization job never created the
	// (date, username) record the write targeted.
	ErrNoRecord = dErrors.New(dErrors.CodeNotFound, "no attendance record for that date")
)

// Ledger is the conditional-write surface the recorder and registrar depend
// on. Exactly-once semantics for SetJoinedAt must come from the backing
// store's atomic conditional primitive; implementations must not emulate it
// with a read followed by a write.
type Ledger interface {
	// SetJoinedAt stamps the first-arrival timestamp for (date, username)
	// only if none exists yet, creating the record when the daily job has
	// not. Returns ErrAlreadyRecorded when the field is already present.
	SetJoinedAt(ctx context.Context, date domain.CivilDate, username domain.Username, stamp string) error

	// SetStatus overwrites the attendance status for an existing record.
	// Idempotent; returns ErrNoRecord when the record does not exist.
	SetStatus(ctx context.Context, date domain.CivilDate, username domain.Username, status domain.AttendanceStatus) error

	// Find returns the record for (date, username), or ErrNoRecord.
	Find(ctx context.Context, date domain.CivilDate, username domain.Username) (Record, error)
}
