package presence

import (
	"context"

	"github.com/redis/go-redis/v9"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

const (
	// Redis key prefix for live presence records.
	presenceKeyPrefix = "presence:"

	fieldChannel  = "channel"
	fieldJoinedAt = "joined_at"
)

// RedisStore is the Redis-backed presence store for distributed deployments
// where multiple gateway instances share live state.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed presence store. The client
// lifecycle is managed externally.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func presenceKey(username domain.Username) string {
	return presenceKeyPrefix + string(username)
}

func (s *RedisStore) Put(ctx context.Context, record Record) error {
	err := s.client.HSet(ctx, presenceKey(record.Username),
		fieldChannel, string(record.Channel),
		fieldJoinedAt, record.JoinedAt,
	).Err()
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "presence put failed")
}

func (s *RedisStore) Delete(ctx context.Context, username domain.Username) error {
	// DEL of a missing key is a no-op, matching the store contract.
	err := s.client.Del(ctx, presenceKey(username)).Err()
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "presence delete failed")
}

func (s *RedisStore) Find(ctx context.Context, username domain.Username) (Record, error) {
	fields, err := s.client.HGetAll(ctx, presenceKey(username)).Result()
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "presence read failed")
	}
	if len(fields) == 0 {
		return Record{}, ErrNotFound
	}
	return Record{
		Username: username,
		Channel:  domain.ChannelID(fields[fieldChannel]),
		JoinedAt: fields[fieldJoinedAt],
	}, nil
}
