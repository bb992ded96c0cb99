package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"vehicle-tracking-backend/internal/detection/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a detection repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateTelemetry inserts the telemetry row in its own transaction and sets
// t.ID from the store-assigned key. Rolls back fully on any failure.
func (r *PostgresRepository) CreateTelemetry(ctx context.Context, t *domain.Telemetry) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx,
			`INSERT INTO telemetry (latitude, longitude, speed, ts) VALUES ($1, $2, $3, $4) RETURNING id`,
			t.Latitude, t.Longitude, t.Speed, t.Timestamp.UTC(),
		).Scan(&t.ID)
	})
}

// CreateDetection inserts the detection row in its own transaction and sets
// d.ID from the store-assigned key. Rolls back fully on any failure.
func (r *PostgresRepository) CreateDetection(ctx context.Context, d *domain.Detection) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		signType := sql.NullString{String: d.SignType, Valid: d.SignType != ""}
		image := sql.NullString{String: d.Image, Valid: d.Image != ""}
		return tx.QueryRowContext(ctx,
			`INSERT INTO detections (latitude, longitude, speed, sign_type, image, ts) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
			d.Latitude, d.Longitude, d.Speed, signType, image, d.Timestamp.UTC(),
		).Scan(&d.ID)
	})
}

// ListDetections returns detections newest first (timestamp desc, id desc).
func (r *PostgresRepository) ListDetections(ctx context.Context, skip, limit int) ([]*domain.Detection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, speed, sign_type, image, ts FROM detections ORDER BY ts DESC, id DESC OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Detection, 0, limit)
	for rows.Next() {
		d, err := scanDetection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CountDetections returns the unfiltered detection count.
func (r *PostgresRepository) CountDetections(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM detections`).Scan(&n)
	return n, err
}

// ListTelemetry returns telemetry newest first (timestamp desc, id desc).
func (r *PostgresRepository) ListTelemetry(ctx context.Context, skip, limit int) ([]*domain.Telemetry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, latitude, longitude, speed, ts FROM telemetry ORDER BY ts DESC, id DESC OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Telemetry, 0, limit)
	for rows.Next() {
		t := &domain.Telemetry{}
		if err := rows.Scan(&t.ID, &t.Latitude, &t.Longitude, &t.Speed, &t.Timestamp); err != nil {
			return nil, err
		}
		t.Timestamp = asUTC(t.Timestamp)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CountTelemetry returns the unfiltered telemetry count.
func (r *PostgresRepository) CountTelemetry(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM telemetry`).Scan(&n)
	return n, err
}

// LatestDetection returns the newest detection, or nil if the table is empty.
func (r *PostgresRepository) LatestDetection(ctx context.Context) (*domain.Detection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, latitude, longitude, speed, sign_type, image, ts FROM detections ORDER BY ts DESC, id DESC LIMIT 1`,
	)
	d, err := scanDetection(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

// ClearDetections deletes every detection row and returns the prior count.
func (r *PostgresRepository) ClearDetections(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM detections`)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on any error so no partial write is ever visible.
func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDetection(row rowScanner) (*domain.Detection, error) {
	d := &domain.Detection{}
	var signType, image sql.NullString
	if err := row.Scan(&d.ID, &d.Latitude, &d.Longitude, &d.Speed, &signType, &image, &d.Timestamp); err != nil {
		return nil, err
	}
	d.SignType = signType.String
	d.Image = image.String
	d.Timestamp = asUTC(d.Timestamp)
	return d, nil
}

// asUTC reattaches UTC to timestamps scanned from TIMESTAMP columns, which
// the driver may hand back in the session timezone. Stored values are UTC
// wall-clock by construction.
func asUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
