package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service. Construct once in
// main; services treat a nil *Metrics as "metrics disabled" so unit tests
// never touch the global registry.
type Metrics struct {
	PresenceEvents          prometheus.Counter
	ArrivalsRecorded        prometheus.Counter
	ArrivalsAlreadyRecorded prometheus.Counter
	ArrivalFailures         prometheus.Counter
	DayoffDatesWritten      prometheus.Counter
	DayoffDateFailures      prometheus.Counter
	CommandsRejected        prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PresenceEvents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_presence_events_total",
			Help: "Voice-state change events processed",
		}),
		ArrivalsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_arrivals_recorded_total",
			Help: "First-arrival timestamps durably written",
		}),
		ArrivalsAlreadyRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_arrivals_already_recorded_total",
			Help: "Joins whose first arrival was already stamped today",
		}),
		ArrivalFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_arrival_failures_total",
			Help: "First-arrival writes that failed for reasons other than the condition",
		}),
		DayoffDatesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_dayoff_dates_written_total",
			Help: "Per-date dayoff status writes applied",
		}),
		DayoffDateFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_dayoff_date_failures_total",
			Help: "Per-date dayoff status writes that failed",
		}),
		CommandsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rollcall_commands_rejected_total",
			Help: "Absence commands rejected before any ledger write",
		}),
	}
}

// IncPresenceEvents increments the presence event counter by 1.
func (m *Metrics) IncPresenceEvents() { m.PresenceEvents.Inc() }

// IncArrivalsRecorded increments the recorded-arrival counter by 1.
func (m *Metrics) IncArrivalsRecorded() { m.ArrivalsRecorded.Inc() }

// IncArrivalsAlreadyRecorded increments the condition-failed counter by 1.
func (m *Metrics) IncArrivalsAlreadyRecorded() { m.ArrivalsAlreadyRecorded.Inc() }

// IncArrivalFailures increments the arrival failure counter by 1.
func (m *Metrics) IncArrivalFailures() { m.ArrivalFailures.Inc() }

// IncDayoffDatesWritten increments the dayoff write counter by 1.
func (m *Metrics) IncDayoffDatesWritten() { m.DayoffDatesWritten.Inc() }

// IncDayoffDateFailures increments the dayoff failure counter by 1.
func (m *Metrics) IncDayoffDateFailures() { m.DayoffDateFailures.Inc() }

// IncCommandsRejected increments the rejected-command counter by 1.
func (m *Metrics) IncCommandsRejected() { m.CommandsRejected.Inc() }
