// Package domain holds the typed identifiers shared across services. IDs are
// validated at trust boundaries via the Parse constructors; direct casting
// bypasses validation.
package domain

import (
	"time"

	dErrors "rollcall/pkg/domain-errors"
)

// MemberID is the platform-native stable identifier for a tracked person:
// a non-empty string of ASCII digits (snowflake-style).
type MemberID string

// ChannelID identifies a voice or text channel on the platform. The empty
// value means "no channel" (e.g. a member who disconnected entirely).
type ChannelID string

// Username is the ledger-facing account name a member's attendance records
// are keyed by. It is resolved from a MemberID through the roster.
type Username string

// ParseMemberID constructs a MemberID from external input.
//
// Errors: CodeInvalidInput when the value is empty or contains a non-digit.
func ParseMemberID(s string) (MemberID, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "member id cannot be empty")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", dErrors.New(dErrors.CodeInvalidInput, "member id must be numeric")
		}
	}
	return MemberID(s), nil
}

func (id MemberID) String() string { return string(id) }

// IsZero reports whether the ID is unset.
func (id MemberID) IsZero() bool { return id == "" }

func (c ChannelID) String() string { return string(c) }

// IsZero reports whether the channel is "no channel".
func (c ChannelID) IsZero() bool { return c == "" }

func (u Username) String() string { return string(u) }

// CivilDate is a calendar date in the ledger's civil timezone, with no
// time-of-day component.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf projects an instant onto its civil date.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// ParseCivilDate constructs a CivilDate from YYYY-MM-DD input.
//
// Errors: CodeInvalidInput when the value is not a real calendar date.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return CivilDate{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid calendar date")
	}
	return DateOf(t), nil
}

// ParseMonthDay constructs a CivilDate from a strict MMDD token within the
// given year. "0229" is only valid in leap years, "1332" never.
//
// Errors: CodeInvalidInput on wrong length, non-digits, or an impossible
// month/day combination.
func ParseMonthDay(mmdd string, year int) (CivilDate, error) {
	if len(mmdd) != 4 {
		return CivilDate{}, dErrors.New(dErrors.CodeInvalidInput, "date must be 4 digits (mmdd)")
	}
	for _, r := range mmdd {
		if r < '0' || r > '9' {
			return CivilDate{}, dErrors.New(dErrors.CodeInvalidInput, "date must be 4 digits (mmdd)")
		}
	}
	month := int(mmdd[0]-'0')*10 + int(mmdd[1]-'0')
	day := int(mmdd[2]-'0')*10 + int(mmdd[3]-'0')
	d := CivilDate{Year: year, Month: time.Month(month), Day: day}
	// time.Date normalizes out-of-range components; a mismatch after the
	// round trip means the combination is not a real date.
	if DateOf(d.At(time.UTC)) != d {
		return CivilDate{}, dErrors.Newf(dErrors.CodeInvalidInput, "%q is not a valid month/day", mmdd)
	}
	return d, nil
}

// At returns midnight of the date in the given location.
func (d CivilDate) At(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Next returns the following civil day.
func (d CivilDate) Next() CivilDate {
	return DateOf(d.At(time.UTC).AddDate(0, 0, 1))
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is strictly later than other.
func (d CivilDate) After(other CivilDate) bool {
	return other.Before(d)
}

// String renders the date as YYYY-MM-DD, the ledger key format.
func (d CivilDate) String() string {
	return d.At(time.UTC).Format("2006-01-02")
}

// AttendanceStatus is the explicit state stamped onto an attendance record.
// Absence of a status means "present" by default.
type AttendanceStatus string

const (
	// StatusDayOff marks a pre-registered absence.
	StatusDayOff AttendanceStatus = "dayoff"
)

// validStatuses is the single source of truth for valid statuses.
var validStatuses = map[AttendanceStatus]bool{
	StatusDayOff: true,
}

// ParseAttendanceStatus constructs an AttendanceStatus from external input.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	st := AttendanceStatus(s)
	if !validStatuses[st] {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid attendance status")
	}
	return st, nil
}

func (s AttendanceStatus) String() string { return string(s) }
