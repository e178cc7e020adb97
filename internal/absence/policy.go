package absence

import dErrors "rollcall/pkg/domain-errors"

// Policy names the caller-visible outcome contract for a date-range
// registration. The range writes are dispatched concurrently with no
// transactional rollback either way; the policy only decides what the caller
// is told when some dates fail.
type Policy string

const (
	// PolicyBestEffort reports success once every write has settled,
	// regardless of individual failures; failures show up in logs and in
	// the per-date outcomes.
	PolicyBestEffort Policy = "best_effort"
	// PolicyAllOrNothing fails the whole call when any date failed. Dates
	// already written stay written; this is a reporting contract, not a
	// transaction.
	PolicyAllOrNothing Policy = "all_or_nothing"
)

// ParsePolicy validates a configured policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyBestEffort, PolicyAllOrNothing:
		return Policy(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown absence policy %q", s)
}

// UnmarshalText lets the policy be parsed straight from environment config.
func (p *Policy) UnmarshalText(text []byte) error {
	parsed, err := ParsePolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
