package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"rollcall/internal/audit"
	"rollcall/internal/clock"
	"rollcall/internal/platform/metrics"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Recorder decides whether a join event gets to stamp the day's first
// arrival. The decision is a pure time-of-day gate; the at-most-once
// guarantee comes from the ledger's conditional write, never from locking
// here, so concurrent joins for the same member race safely.
type Recorder struct {
	ledger  Ledger
	civil   *clock.Civil
	window  Window
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithLogger sets the recorder's logger.
func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) RecorderOption {
	return func(r *Recorder) {
		r.metrics = m
	}
}

// WithAudit attaches the audit publisher.
func WithAudit(p *audit.Publisher) RecorderOption {
	return func(r *Recorder) {
		r.audit = p
	}
}

// NewRecorder constructs a recorder for the given ledger, clock, and
// attendance window.
func NewRecorder(ledger Ledger, civil *clock.Civil, window Window, opts ...RecorderOption) (*Recorder, error) {
	if ledger == nil {
		return nil, fmt.Errorf("attendance ledger is required")
	}
	if civil == nil {
		return nil, fmt.Errorf("civil clock is required")
	}
	r := &Recorder{
		ledger: ledger,
		civil:  civil,
		window: window,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RecordFirstArrival stamps the member's first arrival for today, if the
// current civil time falls inside the attendance window and no arrival is
// recorded yet. Outcomes:
//   - write applied: success log, nil
//   - condition failed: informational log, nil (expected, not a fault)
//   - anything else: error log, error returned; no retry
func (r *Recorder) RecordFirstArrival(ctx context.Context, username domain.Username) error {
	now := r.civil.Now()
	if !r.window.Contains(now) {
		r.logger.Debug("join outside attendance window",
			"username", username,
			"window", r.window.String(),
			"time", now.Format(clock.Timestamp),
		)
		return nil
	}

	date := domain.DateOf(now)
	stamp := now.Format(clock.Timestamp)

	err := r.ledger.SetJoinedAt(ctx, date, username, stamp)
	switch {
	case err == nil:
		r.logger.Info("first arrival recorded",
			"username", username,
			"date", date.String(),
			"joined_at", stamp,
		)
		if r.metrics != nil {
			r.metrics.IncArrivalsRecorded()
		}
		r.audit.Emit(audit.Event{
			Action:   audit.ActionArrivalRecorded,
			Username: string(username),
			Date:     date.String(),
			Detail:   stamp,
		})
		return nil
	case dErrors.HasCode(err, dErrors.CodeAlreadyRecorded):
		r.logger.Info("first arrival already recorded",
			"username", username,
			"date", date.String(),
		)
		if r.metrics != nil {
			r.metrics.IncArrivalsAlreadyRecorded()
		}
		return nil
	default:
		r.logger.Error("first arrival write failed",
			"username", username,
			"date", date.String(),
			"error", err,
		)
		if r.metrics != nil {
			r.metrics.IncArrivalFailures()
		}
		return err
	}
}

// Window exposes the configured attendance window for the startup log.
func (r *Recorder) Window() Window {
	return r.window
}
