package presence

import (
	"context"
	"fmt"
	"log/slog"

	"rollcall/internal/clock"
	"rollcall/internal/platform/metrics"
	"rollcall/internal/roster"
	"rollcall/pkg/domain"
)

// VoiceState is one membership change event from the platform: the member's
// previous and new voice channels, either of which may be empty.
type VoiceState struct {
	MemberID   domain.MemberID
	OldChannel domain.ChannelID
	NewChannel domain.ChannelID
}

// ArrivalRecorder is the attendance hook fired on every join transition.
type ArrivalRecorder interface {
	RecordFirstArrival(ctx context.Context, username domain.Username) error
}

// Tracker maintains the per-member presence state machine: {absent,
// present(channel)}. A single event can carry both a leave and a join (a
// channel move); both effects fire, leave first, within that one event.
type Tracker struct {
	store    Store
	recorder ArrivalRecorder
	roster   *roster.Roster
	civil    *clock.Civil
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics attaches Prometheus counters.
func WithMetrics(m *metrics.Metrics) TrackerOption {
	return func(t *Tracker) {
		t.metrics = m
	}
}

// NewTracker constructs a tracker over the given store, roster, and clock.
// The recorder hook may be nil when attendance stamping is disabled.
func NewTracker(store Store, recorder ArrivalRecorder, r *roster.Roster, civil *clock.Civil, opts ...TrackerOption) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("presence store is required")
	}
	if r == nil {
		return nil, fmt.Errorf("roster is required")
	}
	if civil == nil {
		return nil, fmt.Errorf("civil clock is required")
	}
	t := &Tracker{
		store:    store,
		recorder: recorder,
		roster:   r,
		civil:    civil,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// HandleVoiceState applies a membership change. Members outside the roster
// are ignored. Store failures are logged and dropped: presence events carry
// no reply channel, and one failed effect must not block the next event or
// the remaining effects of this one.
func (t *Tracker) HandleVoiceState(ctx context.Context, ev VoiceState) {
	if t.metrics != nil {
		t.metrics.IncPresenceEvents()
	}

	username, err := t.roster.Username(ev.MemberID)
	if err != nil {
		// Only the known roster is tracked; everyone else is a no-op.
		t.logger.Debug("ignoring untracked member", "member_id", ev.MemberID)
		return
	}

	if !ev.OldChannel.IsZero() && ev.OldChannel != ev.NewChannel {
		if err := t.store.Delete(ctx, username); err != nil {
			t.logger.Error("presence delete failed",
				"username", username,
				"channel", ev.OldChannel,
				"error", err,
			)
		} else {
			t.logger.Info("member left voice channel",
				"username", username,
				"channel", ev.OldChannel,
				"at", t.civil.Stamp(),
			)
		}
	}

	if !ev.NewChannel.IsZero() && ev.NewChannel != ev.OldChannel {
		record := Record{
			Username: username,
			Channel:  ev.NewChannel,
			JoinedAt: t.civil.Stamp(),
		}
		if err := t.store.Put(ctx, record); err != nil {
			t.logger.Error("presence put failed",
				"username", username,
				"channel", ev.NewChannel,
				"error", err,
			)
		} else {
			t.logger.Info("member joined voice channel",
				"username", username,
				"channel", ev.NewChannel,
				"at", record.JoinedAt,
			)
		}

		if t.recorder != nil {
			// The recorder classifies and logs its own outcomes; a
			// failure here has no user-visible surface to report to.
			_ = t.recorder.RecordFirstArrival(ctx, username)
		}
	}
}

// Current returns the live presence record for a member, or ErrNotFound when
// the member is absent.
func (t *Tracker) Current(ctx context.Context, id domain.MemberID) (Record, error) {
	username, err := t.roster.Username(id)
	if err != nil {
		return Record{}, err
	}
	return t.store.Find(ctx, username)
}
