package attendance

import (
	"context"
	"database/sql"
	"errors"

	// Postgres driver registration.
	_ "github.com/lib/pq"

	"rollcall/pkg/domain"
	dErrors "rollcall/pkg/domain-errors"
)

// PostgresLedger persists the ledger in PostgreSQL. The conditional joinedAt
// write is a single upsert whose WHERE clause carries the "only if absent"
// condition, so atomicity comes from the database rather than this process.
//
// Expected schema:
//
//	CREATE TABLE attendance (
//	    day       DATE NOT NULL,
//	    username  TEXT NOT NULL,
//	    joined_at TEXT,
//	    status    TEXT,
//	    PRIMARY KEY (day, username)
//	);
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger constructs a PostgreSQL-backed ledger.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) SetJoinedAt(ctx context.Context, date domain.CivilDate, username domain.Username, stamp string) error {
	query := `
		INSERT INTO attendance (day, username, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (day, username)
		DO UPDATE SET joined_at = EXCLUDED.joined_at
		WHERE attendance.joined_at IS NULL`
	res, err := l.db.ExecContext(ctx, query, date.String(), string(username), stamp)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "conditional joined_at write failed")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "conditional joined_at write failed")
	}
	if affected == 0 {
		return ErrAlreadyRecorded
	}
	return nil
}

func (l *PostgresLedger) SetStatus(ctx context.Context, date domain.CivilDate, username domain.Username, status domain.AttendanceStatus) error {
	query := `UPDATE attendance SET status = $3 WHERE day = $1 AND username = $2`
	res, err := l.db.ExecContext(ctx, query, date.String(), string(username), status.String())
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "status write failed")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "status write failed")
	}
	if affected == 0 {
		return ErrNoRecord
	}
	return nil
}

func (l *PostgresLedger) Find(ctx context.Context, date domain.CivilDate, username domain.Username) (Record, error) {
	query := `SELECT COALESCE(joined_at, ''), COALESCE(status, '') FROM attendance WHERE day = $1 AND username = $2`
	rec := Record{Date: date, Username: username}
	var status string
	err := l.db.QueryRowContext(ctx, query, date.String(), string(username)).Scan(&rec.JoinedAt, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNoRecord
	}
	if err != nil {
		return Record{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger read failed")
	}
	rec.Status = domain.AttendanceStatus(status)
	return rec, nil
}
