//go:build integration

package attendance

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
	"rollcall/pkg/testutil/containers"
)

func TestRedisLedger_Integration(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	ledger := NewRedisLedger(rc.Client)

	date := domain.CivilDate{Year: 2025, Month: time.July, Day: 5}
	user := domain.Username("kyungeun_dev")

	t.Run("conditional joined_at write is atomic", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		var applied atomic.Int64
		var wg sync.WaitGroup
		for i := range 8 {
			stamp := time.Date(2025, 7, 5, 8, 0, i, 0, time.UTC).Format("2006-01-02 15:04:05")
			wg.Go(func() {
				if err := ledger.SetJoinedAt(ctx, date, user, stamp); err == nil {
					applied.Add(1)
				}
			})
		}
		wg.Wait()

		assert.EqualValues(t, 1, applied.Load())

		rec, err := ledger.Find(ctx, date, user)
		require.NoError(t, err)
		assert.NotEmpty(t, rec.JoinedAt)
	})

	t.Run("second write reports condition failure", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		require.NoError(t, ledger.SetJoinedAt(ctx, date, user, "2025-07-05 08:12:00"))
		err := ledger.SetJoinedAt(ctx, date, user, "2025-07-05 09:00:00")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeAlreadyRecorded))

		rec, err := ledger.Find(ctx, date, user)
		require.NoError(t, err)
		assert.Equal(t, "2025-07-05 08:12:00", rec.JoinedAt)
	})

	t.Run("status write requires a seeded record", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))

		err := ledger.SetStatus(ctx, date, user, domain.StatusDayOff)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

		require.NoError(t, ledger.Seed(ctx, date, user))
		require.NoError(t, ledger.SetStatus(ctx, date, user, domain.StatusDayOff))
		require.NoError(t, ledger.SetStatus(ctx, date, user, domain.StatusDayOff))

		rec, err := ledger.Find(ctx, date, user)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDayOff, rec.Status)
	})
}
