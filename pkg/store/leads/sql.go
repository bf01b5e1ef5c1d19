package leads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/getmilo/milo/pkg/models/store"
	"github.com/getmilo/milo/pkg/store/sqldb"
	"github.com/rs/zerolog"
)

type sqlStore struct {
	db      *sql.DB
	dialect sqldb.Dialect
}

func NewSQLStore(db *sql.DB, dialect sqldb.Dialect) (Store, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	return &sqlStore{db: db, dialect: dialect}, nil
}

func (s *sqlStore) Upsert(ctx context.Context, lead store.Lead) error {
	query := s.dialect.Rebind(`
		INSERT INTO leads (id, email, source, product, submitted_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (email) DO UPDATE SET
			source = excluded.source,
			product = excluded.product,
			submitted_at = excluded.submitted_at
	`)
	_, err := s.db.ExecContext(ctx, query, lead.ID, lead.Email, lead.Source, lead.Product, lead.Timestamp.UTC())
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

func (s *sqlStore) Stats(ctx context.Context) (store.LeadStats, error) {
	var stats store.LeadStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN converted THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN follow_up_sent THEN 1 ELSE 0 END), 0)
		FROM leads
	`).Scan(&stats.Total, &stats.Converted, &stats.FollowUpSent)
	if err != nil {
		return store.LeadStats{}, fmt.Errorf("lead stats query failed: %w", err)
	}
	return stats, nil
}

func (s *sqlStore) List(ctx context.Context) ([]store.Lead, error) {
	logger := zerolog.Ctx(ctx)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, source, product, submitted_at, converted, follow_up_sent
		FROM leads
		ORDER BY submitted_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list leads query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close lead rows")
		}
	}(rows)

	var out []store.Lead
	for rows.Next() {
		var l store.Lead
		if err := rows.Scan(&l.ID, &l.Email, &l.Source, &l.Product, &l.Timestamp, &l.Converted, &l.FollowUpSent); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return out, nil
}
