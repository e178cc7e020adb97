package audit

import "time"

// Actions emitted by the domain services.
const (
	ActionArrivalRecorded   = "arrival_recorded"
	ActionAbsenceRegistered = "absence_registered"
)

// Event is emitted from domain logic to capture key ledger actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Username  string    `json:"username"`
	Date      string    `json:"date,omitempty"`
	EndDate   string    `json:"end_date,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}
