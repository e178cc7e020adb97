package presence

import (
	"context"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// Record is the live "currently in a voice room" entry for a member. At most
// one exists per member; it is deleted on leave rather than retained, so the
// store is a snapshot, not an audit log.
type Record struct {
	Username domain.Username
	Channel  domain.ChannelID
	// JoinedAt is the wall-clock stamp of the current session's start, in
	// clock.Timestamp format.
	JoinedAt string
}

// ErrNotFound keeps store-specific lookups consistent across in-memory and
// Redis implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "no presence record")

// Store holds the live presence records. Deleting a record that does not
// exist is not an error; leave events routinely race disconnects.
type Store interface {
	Put(ctx context.Context, record Record) error
	Delete(ctx context.Context, username domain.Username) error
	Find(ctx context.Context, username domain.Username) (Record, error)
}
