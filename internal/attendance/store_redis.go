package attendance

import (
	"context"

	"github.com/redis/go-redis/v9"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

const (
	// Redis key prefix for ledger records: one hash per (date, username).
	ledgerKeyPrefix = "attendance:"

	fieldJoinedAt = "joined_at"
	fieldStatus   = "status"
)

// setStatusScript overwrites the status field only when the record hash
// exists. Running it server-side keeps the existence check and the write in
// one atomic step, mirroring the conditional-update contract of the Ledger.
var setStatusScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HSET", KEYS[1], ARGV[1], ARGV[2])
  return 1
end
return 0
`)

// RedisLedger is the Redis-backed Ledger for distributed deployments. The
// at-most-once joinedAt write rides on HSETNX; no in-process serialization is
// involved.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger constructs a Redis-backed ledger. The client lifecycle is
// managed by the caller.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func redisLedgerKey(date domain.CivilDate, username domain.Username) string {
	return ledgerKeyPrefix + date.String() + ":" + string(username)
}

func (l *RedisLedger) SetJoinedAt(ctx context.Context, date domain.CivilDate, username domain.Username, stamp string) error {
	key := redisLedgerKey(date, username)
	set, err := l.client.HSetNX(ctx, key, fieldJoinedAt, stamp).Result()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "conditional joined_at write failed")
	}
	if !set {
		return ErrAlreadyRecorded
	}
	return nil
}

func (l *RedisLedger) SetStatus(ctx context.Context, date domain.CivilDate, username domain.Username, status domain.AttendanceStatus) error {
	key := redisLedgerKey(date, username)
	res, err := setStatusScript.Run(ctx, l.client, []string{key}, fieldStatus, status.String()).Int()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "status write failed")
	}
	if res == 0 {
		return ErrNoRecord
	}
	return nil
}

func (l *RedisLedger) Find(ctx context.Context, date domain.CivilDate, username domain.Username) (Record, error) {
	fields, err := l.client.HGetAll(ctx, redisLedgerKey(date, username)).Result()
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger read failed")
	}
	if len(fields) == 0 {
		return Record{}, ErrNoRecord
	}
	return Record{
		Date:     date,
		Username: username,
		JoinedAt: fields[fieldJoinedAt],
		Status:   domain.AttendanceStatus(fields[fieldStatus]),
	}, nil
}

// Seed installs a bare record hash, standing in for the daily initialization
// job. Used by integration tests and operational tooling.
func (l *RedisLedger) Seed(ctx context.Context, date domain.CivilDate, username domain.Username) error {
	key := redisLedgerKey(date, username)
	return l.client.HSetNX(ctx, key, "created", "1").Err()
}
