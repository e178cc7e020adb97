package absence

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"rollcall/internal/attendance"
	"rollcall/internal/clock"
	"rollcall/internal/roster"
	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// =============================================================================
// Registrar Test Suite
// =============================================================================
// Justification for unit tests: the registrar enforces the validate-before-
// write ordering and the per-date fan-out. A call-counting ledger is needed
// to prove rejected requests touch no store state.

type RegistrarSuite struct {
	suite.Suite
	ledger *countingLedger
	roster *roster.Roster
	civil  *clock.Civil
}

func TestRegistrarSuite(t *testing.T) {
	suite.Run(t, new(RegistrarSuite))
}

type countingLedger struct {
	*attendance.InMemoryLedger
	setStatusCalls atomic.Int64
}

func (l *countingLedger) SetStatus(ctx context.Context, date domain.CivilDate, username domain.Username, status domain.AttendanceStatus) error {
	l.setStatusCalls.Add(1)
	return l.InMemoryLedger.SetStatus(ctx, date, username, status)
}

const userKyungeun = domain.Username("kyungeun_dev")

func (s *RegistrarSuite) SetupTest() {
	s.ledger = &countingLedger{InMemoryLedger: attendance.NewInMemoryLedger()}

	var err error
	s.roster, err = roster.New([]roster.Entry{
		{DisplayName: "경은", ID: "100000000000000001", Username: userKyungeun},
	})
	s.Require().NoError(err)

	s.civil, err = clock.New("UTC", clock.WithClock(func() time.Time {
		return time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
	}))
	s.Require().NoError(err)
}

func (s *RegistrarSuite) newRegistrar(policy Policy) *Registrar {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg, err := NewRegistrar(s.ledger, s.roster, s.civil, policy, WithLogger(logger))
	s.Require().NoError(err)
	return reg
}

func (s *RegistrarSuite) seedRange(days ...int) {
	for _, day := range days {
		s.ledger.Seed(domain.CivilDate{Year: 2025, Month: time.July, Day: day}, userKyungeun)
	}
}

func (s *RegistrarSuite) TestRegistersEveryDateInInclusiveRange() {
	s.seedRange(5, 6, 7)
	reg := s.newRegistrar(PolicyBestEffort)

	result, err := reg.Register(context.Background(), Request{
		IdentityToken: "경은",
		StartMMDD:     "0705",
		EndMMDD:       "0707",
	})
	s.NoError(err)

	s.EqualValues(3, s.ledger.setStatusCalls.Load())
	s.Len(result.Dates, 3)
	s.Empty(result.Failed())

	for _, day := range []int{5, 6, 7} {
		rec, err := s.ledger.Find(context.Background(),
			domain.CivilDate{Year: 2025, Month: time.July, Day: day}, userKyungeun)
		s.NoError(err)
		s.Equal(domain.StatusDayOff, rec.Status)
	}
}

func (s *RegistrarSuite) TestSingleDayRange() {
	s.seedRange(5)
	reg := s.newRegistrar(PolicyBestEffort)

	result, err := reg.Register(context.Background(), Request{
		IdentityToken: "@경은",
		StartMMDD:     "0705",
		EndMMDD:       "0705",
	})
	s.NoError(err)
	s.Len(result.Dates, 1)
	s.EqualValues(1, s.ledger.setStatusCalls.Load())
}

func (s *RegistrarSuite) TestInvertedRangeRejectedBeforeAnyWrite() {
	reg := s.newRegistrar(PolicyBestEffort)

	_, err := reg.Register(context.Background(), Request{
		IdentityToken: "경은",
		StartMMDD:     "0710",
		EndMMDD:       "0705",
	})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	s.EqualValues(0, s.ledger.setStatusCalls.Load())
}

func (s *RegistrarSuite) TestMalformedDatesRejectedBeforeAnyWrite() {
	reg := s.newRegistrar(PolicyBestEffort)

	for _, req := range []Request{
		{IdentityToken: "경은", StartMMDD: "7055", EndMMDD: "0707"},
		{IdentityToken: "경은", StartMMDD: "0705", EndMMDD: "0732"},
		{IdentityToken: "경은", StartMMDD: "july5", EndMMDD: "0707"},
	} {
		_, err := reg.Register(context.Background(), req)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	}
	s.EqualValues(0, s.ledger.setStatusCalls.Load())
}

func (s *RegistrarSuite) TestUnresolvableIdentityRejectedBeforeAnyWrite() {
	reg := s.newRegistrar(PolicyBestEffort)

	_, err := reg.Register(context.Background(), Request{
		IdentityToken: "@모르는사람",
		StartMMDD:     "0705",
		EndMMDD:       "0707",
	})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.EqualValues(0, s.ledger.setStatusCalls.Load())
}

func (s *RegistrarSuite) TestReRegistrationIsIdempotent() {
	s.seedRange(5, 6, 7)
	reg := s.newRegistrar(PolicyBestEffort)
	req := Request{IdentityToken: "경은", StartMMDD: "0705", EndMMDD: "0707"}

	_, err := reg.Register(context.Background(), req)
	s.NoError(err)
	_, err = reg.Register(context.Background(), req)
	s.NoError(err)

	for _, day := range []int{5, 6, 7} {
		rec, err := s.ledger.Find(context.Background(),
			domain.CivilDate{Year: 2025, Month: time.July, Day: day}, userKyungeun)
		s.NoError(err)
		s.Equal(domain.StatusDayOff, rec.Status)
	}
}

func (s *RegistrarSuite) TestBestEffortReportsPerDateFailures() {
	// Day 6 was never seeded: the daily job skipped it.
	s.seedRange(5, 7)
	reg := s.newRegistrar(PolicyBestEffort)

	result, err := reg.Register(context.Background(), Request{
		IdentityToken: "경은",
		StartMMDD:     "0705",
		EndMMDD:       "0707",
	})
	s.NoError(err, "best effort replies success after dispatch")

	failed := result.Failed()
	s.Len(failed, 1)
	s.Equal("2025-07-06", failed[0].Date.String())
	s.True(dErrors.HasCode(failed[0].Err, dErrors.CodeNotFound))

	// The other dates were still written.
	rec, err := s.ledger.Find(context.Background(),
		domain.CivilDate{Year: 2025, Month: time.July, Day: 7}, userKyungeun)
	s.NoError(err)
	s.Equal(domain.StatusDayOff, rec.Status)
}

func (s *RegistrarSuite) TestAllOrNothingFailsTheCall() {
	s.seedRange(5, 7)
	reg := s.newRegistrar(PolicyAllOrNothing)

	result, err := reg.Register(context.Background(), Request{
		IdentityToken: "경은",
		StartMMDD:     "0705",
		EndMMDD:       "0707",
	})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	// No rollback: the dates that applied stay applied.
	s.Len(result.Failed(), 1)
	rec, findErr := s.ledger.Find(context.Background(),
		domain.CivilDate{Year: 2025, Month: time.July, Day: 5}, userKyungeun)
	s.NoError(findErr)
	s.Equal(domain.StatusDayOff, rec.Status)
}

func (s *RegistrarSuite) TestRangeCrossingMonthBoundary() {
	s.ledger.Seed(domain.CivilDate{Year: 2025, Month: time.July, Day: 31}, userKyungeun)
	s.ledger.Seed(domain.CivilDate{Year: 2025, Month: time.August, Day: 1}, userKyungeun)
	reg := s.newRegistrar(PolicyBestEffort)

	result, err := reg.Register(context.Background(), Request{
		IdentityToken: "경은",
		StartMMDD:     "0731",
		EndMMDD:       "0801",
	})
	s.NoError(err)
	s.Len(result.Dates, 2)
	s.Equal("2025-07-31", result.Dates[0].Date.String())
	s.Equal("2025-08-01", result.Dates[1].Date.String())
}

func (s *RegistrarSuite) TestConstructorRejectsUnknownPolicy() {
	_, err := NewRegistrar(s.ledger, s.roster, s.civil, Policy("transactional"))
	s.Error(err)
}
