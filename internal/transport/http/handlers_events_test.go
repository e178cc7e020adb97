package httptransport

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/absence"
	"rollcall/internal/attendance"
	"rollcall/internal/clock"
	"rollcall/internal/presence"
	"rollcall/internal/roster"
	"rollcall/pkg/domain"
)

type fixture struct {
	server   *httptest.Server
	ledger   *attendance.InMemoryLedger
	presence *presence.InMemoryStore
}

// newFixture wires real services over in-memory stores behind the router,
// with the clock pinned inside the attendance window.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	civil, err := clock.New("UTC", clock.WithClock(func() time.Time {
		return time.Date(2025, time.July, 1, 8, 30, 0, 0, time.UTC)
	}))
	require.NoError(t, err)

	r, err := roster.New([]roster.Entry{
		{DisplayName: "경은", ID: "100000000000000001", Username: "kyungeun_dev"},
	})
	require.NoError(t, err)

	ledger := attendance.NewInMemoryLedger()
	window, err := attendance.ParseWindow("06:00-10:00")
	require.NoError(t, err)
	recorder, err := attendance.NewRecorder(ledger, civil, window, attendance.WithLogger(logger))
	require.NoError(t, err)

	presenceStore := presence.NewInMemoryStore()
	tracker, err := presence.NewTracker(presenceStore, recorder, r, civil, presence.WithLogger(logger))
	require.NoError(t, err)

	registrar, err := absence.NewRegistrar(ledger, r, civil, absence.PolicyBestEffort, absence.WithLogger(logger))
	require.NoError(t, err)

	handler := NewHandler(tracker, registrar, "/dayoff",
		map[domain.ChannelID]bool{"cmd-channel": true},
		WithLogger(logger),
	)
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)

	return &fixture{server: server, ledger: ledger, presence: presenceStore}
}

func (f *fixture) post(t *testing.T, path, body string) (int, messageResponse) {
	t.Helper()
	resp, err := http.Post(f.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out messageResponse
	if resp.Header.Get("Content-Type") == "application/json" {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

func TestHandleVoiceState(t *testing.T) {
	t.Run("join is accepted and stamps attendance", func(t *testing.T) {
		f := newFixture(t)

		status, _ := f.post(t, "/events/voice-state",
			`{"member_id":"100000000000000001","new_channel_id":"voice-main"}`)
		assert.Equal(t, http.StatusAccepted, status)

		rec, err := f.presence.Find(t.Context(), "kyungeun_dev")
		require.NoError(t, err)
		assert.Equal(t, domain.ChannelID("voice-main"), rec.Channel)

		att, err := f.ledger.Find(t.Context(),
			domain.CivilDate{Year: 2025, Month: time.July, Day: 1}, "kyungeun_dev")
		require.NoError(t, err)
		assert.Equal(t, "2025-07-01 08:30:00", att.JoinedAt)
	})

	t.Run("rejects non-numeric member id", func(t *testing.T) {
		f := newFixture(t)
		status, _ := f.post(t, "/events/voice-state", `{"member_id":"not-an-id"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		f := newFixture(t)
		status, _ := f.post(t, "/events/voice-state", `{`)
		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestHandleMessage(t *testing.T) {
	seed := func(f *fixture, days ...int) {
		for _, day := range days {
			f.ledger.Seed(domain.CivilDate{Year: 2025, Month: time.July, Day: day}, "kyungeun_dev")
		}
	}

	t.Run("registers a dayoff range", func(t *testing.T) {
		f := newFixture(t)
		seed(f, 5, 6, 7)

		status, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","author_id":"1","content":"/dayoff @경은 0705 0707 trip"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, out.Reply, "dayoff registered for kyungeun_dev")
		assert.Contains(t, out.Reply, "2025-07-05 ~ 2025-07-07")

		rec, err := f.ledger.Find(t.Context(),
			domain.CivilDate{Year: 2025, Month: time.July, Day: 6}, "kyungeun_dev")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDayOff, rec.Status)
	})

	t.Run("ignores bot authors", func(t *testing.T) {
		f := newFixture(t)
		_, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","author_is_bot":true,"content":"/dayoff @경은 0705 0707"}`)
		assert.True(t, out.Ignored)
		assert.Empty(t, out.Reply)
	})

	t.Run("ignores channels outside the allow-list", func(t *testing.T) {
		f := newFixture(t)
		_, out := f.post(t, "/events/message",
			`{"channel_id":"general","content":"/dayoff @경은 0705 0707"}`)
		assert.True(t, out.Ignored)
	})

	t.Run("non-command text gets the usage hint", func(t *testing.T) {
		f := newFixture(t)
		_, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","content":"hello"}`)
		assert.Contains(t, out.Reply, "command error")
		assert.Contains(t, out.Reply, "/dayoff <member> <start mmdd> <end mmdd> [reason]")
	})

	t.Run("missing arguments get the usage hint", func(t *testing.T) {
		f := newFixture(t)
		_, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","content":"/dayoff @경은 0705"}`)
		assert.Contains(t, out.Reply, "command error")
	})

	t.Run("bad dates get a date error reply", func(t *testing.T) {
		f := newFixture(t)
		_, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","content":"/dayoff @경은 0732 0733"}`)
		assert.Contains(t, out.Reply, "date error")
	})

	t.Run("unknown identity gets a resolution error reply", func(t *testing.T) {
		f := newFixture(t)
		_, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","content":"/dayoff @아무도아님 0705 0707"}`)
		assert.Contains(t, out.Reply, "identity not found")
	})

	t.Run("best effort reply lists unrecorded dates", func(t *testing.T) {
		f := newFixture(t)
		seed(f, 5, 7) // day 6 missing

		_, out := f.post(t, "/events/message",
			`{"channel_id":"cmd-channel","content":"/dayoff 경은 0705 0707"}`)
		assert.Contains(t, out.Reply, "dayoff registered")
		assert.Contains(t, out.Reply, "not recorded for: 2025-07-06")
	})
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
