package absence

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"rollcall/internal/attendance"
	"rollcall/internal/audit"
	"rollcall/internal/clock"
	"rollcall/internal/platform/metrics"
	"rollcall/internal/roster"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Request is a validated-inputs-pending registration: the raw identity token
// and the MMDD bounds exactly as the user typed them.
type Request struct {
	IdentityToken string
	StartMMDD     string
	EndMMDD       string
	Reason        string
}

// DateOutcome is the result of one per-date status write.
type DateOutcome struct {
	Date domain.CivilDate
	Err  error
}

// Result reports a registration: who it resolved to, the range, and every
// per-date outcome in ascending date order.
type Result struct {
	Username domain.Username
	Start    domain.CivilDate
	End      domain.CivilDate
	Dates    []DateOutcome
}

// Failed returns the outcomes that did not apply.
func (r Result) Failed() []DateOutcome {
	var failed []DateOutcome
	for _, d := range r.Dates {
		if d.Err != nil {
			failed = append(failed, d)
		}
	}
	return failed
}

// Registrar validates a dayoff request and drives the per-date ledger writes.
type Registrar struct {
	ledger  attendance.Ledger
	roster  *roster.Roster
	civil   *clock.Civil
	policy  Policy
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
}

// RegistrarOption configures a Registrar.
type RegistrarOption func(*Registrar)

// WithLogger sets the registrar's logger.
func WithLogger(logger *slog.Logger) RegistrarOption {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) RegistrarOption {
	return func(r *Registrar) {
		r.metrics = m
	}
}

// WithAudit attaches the audit publisher.
func WithAudit(p *audit.Publisher) RegistrarOption {
	return func(r *Registrar) {
		r.audit = p
	}
}

// NewRegistrar constructs a registrar with the given outcome policy.
func NewRegistrar(ledger attendance.Ledger, r *roster.Roster, civil *clock.Civil, policy Policy, opts ...RegistrarOption) (*Registrar, error) {
	if ledger == nil {
		return nil, fmt.Errorf("attendance ledger is required")
	}
	if r == nil {
		return nil, fmt.Errorf("roster is required")
	}
	if civil == nil {
		return nil, fmt.Errorf("civil clock is required")
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	reg := &Registrar{
		ledger: ledger,
		roster: r,
		civil:  civil,
		policy: policy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(reg)
	}
	return reg, nil
}

// Register validates the request, resolves the identity, and marks every date
// in the inclusive range as a dayoff. All validation happens before the first
// ledger write; per-date writes are dispatched concurrently and joined before
// returning. There are no retries and no rollback of dates already written.
//
// Errors: CodeInvalidInput for bad dates or an inverted range, CodeNotFound
// for an unresolvable identity — both guaranteed to have touched no ledger
// state. Under PolicyAllOrNothing, a CodeUnavailable error accompanies the
// Result when any date failed.
func (r *Registrar) Register(ctx context.Context, req Request) (Result, error) {
	year := r.civil.Year()

	start, err := domain.ParseMonthDay(req.StartMMDD, year)
	if err != nil {
		return Result{}, err
	}
	end, err := domain.ParseMonthDay(req.EndMMDD, year)
	if err != nil {
		return Result{}, err
	}
	if end.Before(start) {
		return Result{}, dErrors.Newf(dErrors.CodeInvalidInput, "end date %s precedes start date %s", end, start)
	}

	memberID, err := r.roster.Resolve(req.IdentityToken)
	if err != nil {
		return Result{}, err
	}
	username, err := r.roster.Username(memberID)
	if err != nil {
		return Result{}, err
	}

	result := Result{Username: username, Start: start, End: end}
	for d := start; !end.Before(d); d = d.Next() {
		result.Dates = append(result.Dates, DateOutcome{Date: d})
	}

	r.logger.Info("registering dayoff range",
		"username", username,
		"start", start.String(),
		"end", end.String(),
		"days", len(result.Dates),
		"reason", req.Reason,
	)

	// One goroutine per date, each writing its own outcome slot. The group
	// deliberately has no shared context cancellation: every date must be
	// attempted even when an earlier one fails.
	var g errgroup.Group
	for i := range result.Dates {
		g.Go(func() error {
			outcome := &result.Dates[i]
			err := r.ledger.SetStatus(ctx, outcome.Date, username, domain.StatusDayOff)
			outcome.Err = err
			switch {
			case err == nil:
				r.logger.Info("dayoff recorded", "username", username, "date", outcome.Date.String())
				if r.metrics != nil {
					r.metrics.IncDayoffDatesWritten()
				}
				return nil
			case dErrors.HasCode(err, dErrors.CodeNotFound):
				// The daily job never created this record; distinct
				// from an outage when reading the logs.
				r.logger.Warn("no attendance record for date", "username", username, "date", outcome.Date.String())
			default:
				r.logger.Error("dayoff write failed", "username", username, "date", outcome.Date.String(), "error", err)
			}
			if r.metrics != nil {
				r.metrics.IncDayoffDateFailures()
			}
			return err
		})
	}
	groupErr := g.Wait()

	r.audit.Emit(audit.Event{
		Action:   audit.ActionAbsenceRegistered,
		Username: string(username),
		Date:     start.String(),
		EndDate:  end.String(),
		Detail:   req.Reason,
	})

	if r.policy == PolicyAllOrNothing && groupErr != nil {
		return result, dErrors.Wrap(groupErr, dErrors.CodeUnavailable,
			fmt.Sprintf("%d of %d dates failed", len(result.Failed()), len(result.Dates)))
	}
	return result, nil
}
