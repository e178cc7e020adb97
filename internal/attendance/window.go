package attendance

import (
	"fmt"
	"time"

	dErrors "rollcall/pkg/domain-errors"
)

// Window is the half-open time-of-day interval [Open, Close) during which a
// join event may stamp the day's first arrival. Bounds are minutes since
// midnight; Close may be 1440 to keep the window open until end of day.
// The bounds are deployment configuration, not constants: observed setups
// range from 06:00-10:00 to 05:00-24:00.
type Window struct {
	Open  int
	Close int
}

// ParseWindow parses "HH:MM-HH:MM" bounds. "24:00" is accepted as the close
// bound only.
func ParseWindow(s string) (Window, error) {
	var oh, om, ch, cm int
	if _, err := fmt.Sscanf(s, "%d:%d-%d:%d", &oh, &om, &ch, &cm); err != nil {
		return Window{}, dErrors.Newf(dErrors.CodeInvalidInput, "attendance window %q must be HH:MM-HH:MM", s)
	}
	w := Window{Open: oh*60 + om, Close: ch*60 + cm}
	if oh < 0 || oh > 23 || om < 0 || om > 59 || cm < 0 || cm > 59 || ch < 0 || ch > 24 || (ch == 24 && cm != 0) {
		return Window{}, dErrors.Newf(dErrors.CodeInvalidInput, "attendance window %q is out of range", s)
	}
	if w.Close <= w.Open {
		return Window{}, dErrors.Newf(dErrors.CodeInvalidInput, "attendance window %q must close after it opens", s)
	}
	return w, nil
}

// UnmarshalText lets the window be parsed straight from environment config.
func (w *Window) UnmarshalText(text []byte) error {
	parsed, err := ParseWindow(string(text))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// Contains reports whether the instant's time-of-day falls inside the window.
func (w Window) Contains(t time.Time) bool {
	minute := t.Hour()*60 + t.Minute()
	return minute >= w.Open && minute < w.Close
}

// String renders the window back in HH:MM-HH:MM form for logs.
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Open/60, w.Open%60, w.Close/60, w.Close%60)
}
