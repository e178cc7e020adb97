// Package clock provides the civil-time source every gating and stamping
// decision derives from. Event payloads carry their own timestamps; those are
// never trusted, so that window checks stay deterministic under an injected
// clock.
package clock

import (
	"time"

	"rollcall/pkg/domain"
)

// Timestamp is the ledger's wall-clock format.
const Timestamp = "2006-01-02 15:04:05"

// Clock yields the current instant. Defaults to time.Now; tests inject fixed
// or stepping clocks.
type Clock func() time.Time

// Civil binds a clock to a fixed civil timezone.
type Civil struct {
	clock Clock
	loc   *time.Location
}

// Option configures a Civil instance.
type Option func(*Civil)

// WithClock overrides the time source.
func WithClock(c Clock) Option {
	return func(cv *Civil) {
		if c != nil {
			cv.clock = c
		}
	}
}

// New constructs a civil clock for the named IANA timezone.
func New(timezone string, opts ...Option) (*Civil, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, err
	}
	cv := &Civil{clock: time.Now, loc: loc}
	for _, opt := range opts {
		opt(cv)
	}
	return cv, nil
}

// Now returns the current instant in the civil timezone.
func (c *Civil) Now() time.Time {
	return c.clock().In(c.loc)
}

// Today returns the civil date for Now.
func (c *Civil) Today() domain.CivilDate {
	return domain.DateOf(c.Now())
}

// Stamp formats Now in the ledger timestamp format.
func (c *Civil) Stamp() string {
	return c.Now().Format(Timestamp)
}

// Location exposes the civil timezone for date arithmetic.
func (c *Civil) Location() *time.Location {
	return c.loc
}

// Year returns the current civil year, used to anchor month/day command
// arguments.
func (c *Civil) Year() int {
	return c.Now().Year()
}
