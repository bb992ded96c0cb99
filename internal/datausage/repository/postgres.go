package repository

import (
	"context"
	"database/sql"
	"time"

	"vehicle-tracking-backend/internal/datausage/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a data usage repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUsage inserts the sample in its own transaction and sets u.ID.
func (r *PostgresRepository) CreateUsage(ctx context.Context, u *domain.Usage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO data_usage (ts, bytes_sent, bytes_received) VALUES ($1, $2, $3) RETURNING id`,
		u.Timestamp.UTC(), u.BytesSent, u.BytesReceived,
	).Scan(&u.ID)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ListSince returns samples at or after cutoff, oldest first.
func (r *PostgresRepository) ListSince(ctx context.Context, cutoff time.Time) ([]*domain.Usage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ts, bytes_sent, bytes_received FROM data_usage WHERE ts >= $1 ORDER BY ts ASC, id ASC`,
		cutoff.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Usage
	for rows.Next() {
		u := &domain.Usage{}
		if err := rows.Scan(&u.ID, &u.Timestamp, &u.BytesSent, &u.BytesReceived); err != nil {
			return nil, err
		}
		u.Timestamp = time.Date(
			u.Timestamp.Year(), u.Timestamp.Month(), u.Timestamp.Day(),
			u.Timestamp.Hour(), u.Timestamp.Minute(), u.Timestamp.Second(),
			u.Timestamp.Nanosecond(), time.UTC,
		)
		out = append(out, u)
	}
	return out, rows.Err()
}
