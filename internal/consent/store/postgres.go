package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"portfolio/internal/consent/models"
	"portfolio/pkg/platform/sentinel"
)

// Migrations holds the visitor_consents schema for golang-migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

const defaultDeleteBatch = 500

// PostgresStore persists consent records in the visitor_consents table.
type PostgresStore struct {
	db          *sql.DB
	deleteBatch int
}

// PostgresStoreOption configures a PostgresStore instance.
type PostgresStoreOption func(*PostgresStore)

// WithDeleteBatch sets how many expired rows DeleteExpired removes per statement.
func WithDeleteBatch(n int) PostgresStoreOption {
	return func(s *PostgresStore) {
		if n > 0 {
			s.deleteBatch = n
		}
	}
}

// NewPostgresStore constructs a PostgreSQL-backed consent store.
func NewPostgresStore(db *sql.DB, opts ...PostgresStoreOption) *PostgresStore {
	s := &PostgresStore{db: db, deleteBatch: defaultDeleteBatch}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *PostgresStore) Get(ctx context.Context, kind models.Kind, key string) (*models.ConsentRecord, error) {
	query := `
		SELECT subject_key, name, company, email, user_agent, os, device_class, browser,
			granted_at, trust_window_seconds
		FROM visitor_consents
		WHERE kind = $1 AND subject_key = $2
	`
	var (
		rec           models.ConsentRecord
		windowSeconds int64
	)
	err := s.db.QueryRowContext(ctx, query, string(kind), key).Scan(
		&rec.SubjectKey, &rec.Name, &rec.Company, &rec.Email, &rec.UserAgent,
		&rec.Device.OS, &rec.Device.DeviceClass, &rec.Device.Browser,
		&rec.GrantedAt, &windowSeconds,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s consent: %w", kind, err)
	}
	rec.GrantedAt = rec.GrantedAt.UTC()
	rec.TrustWindow = time.Duration(windowSeconds) * time.Second
	return &rec, nil
}

// Put upserts by (kind, subject_key). Every column is overwritten.
func (s *PostgresStore) Put(ctx context.Context, kind models.Kind, record *models.ConsentRecord) error {
	if record == nil || record.SubjectKey == "" {
		return fmt.Errorf("put %s consent: empty subject key", kind)
	}
	query := `
		INSERT INTO visitor_consents (
			kind, subject_key, name, company, email, user_agent, os, device_class, browser,
			granted_at, trust_window_seconds, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (kind, subject_key) DO UPDATE SET
			name = EXCLUDED.name,
			company = EXCLUDED.company,
			email = EXCLUDED.email,
			user_agent = EXCLUDED.user_agent,
			os = EXCLUDED.os,
			device_class = EXCLUDED.device_class,
			browser = EXCLUDED.browser,
			granted_at = EXCLUDED.granted_at,
			trust_window_seconds = EXCLUDED.trust_window_seconds,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(kind), record.SubjectKey, record.Name, record.Company, record.Email, record.UserAgent,
		record.Device.OS, record.Device.DeviceClass, record.Device.Browser,
		record.GrantedAt.UTC(), int64(record.TrustWindow/time.Second), record.ExpiresAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("put %s consent: %w", kind, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, kind models.Kind, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM visitor_consents WHERE kind = $1 AND subject_key = $2`, string(kind), key)
	if err != nil {
		return fmt.Errorf("delete %s consent: %w", kind, err)
	}
	return nil
}

// DeleteExpired removes expired rows in batches so a large backlog does not
// hold one long lock on the table.
func (s *PostgresStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	total := 0
	for {
		ids, err := s.expiredIDs(ctx, now)
		if err != nil {
			return total, err
		}
		if len(ids) == 0 {
			return total, nil
		}
		res, err := s.db.ExecContext(ctx, `DELETE FROM visitor_consents WHERE id = ANY($1)`, pq.Array(ids))
		if err != nil {
			return total, fmt.Errorf("delete expired consents: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("delete expired consents: %w", err)
		}
		total += int(n)
		if len(ids) < s.deleteBatch {
			return total, nil
		}
	}
}

func (s *PostgresStore) expiredIDs(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM visitor_consents WHERE expires_at <= $1 ORDER BY id LIMIT $2`,
		now.UTC(), s.deleteBatch,
	)
	if err != nil {
		return nil, fmt.Errorf("list expired consents: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan expired consent: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired consents: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
