package repository

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/nightstudy-service/internal/domain"
)

// RevocationRepository is the blacklist table. Rows are only ever appended, except
// by Compact.
type RevocationRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewRevocationRepository returns a Postgres-backed blacklist.
func NewRevocationRepository(db DBTX, logger *zap.Logger) *RevocationRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevocationRepository{db: db, logger: logger}
}

var blacklistSchema = []string{
	`CREATE TABLE IF NOT EXISTS blacklist (
            access_token  TEXT,
            refresh_token TEXT,
            revoked_at    TIMESTAMPTZ NOT NULL DEFAULT NOW())`,
	`CREATE INDEX IF NOT EXISTS blacklist_access_token_idx ON blacklist USING HASH (access_token)`,
	`CREATE INDEX IF NOT EXISTS blacklist_refresh_token_idx ON blacklist USING HASH (refresh_token)`,
	`CREATE INDEX IF NOT EXISTS blacklist_revoked_at_idx ON blacklist (revoked_at)`,
}

// EnsureSchema creates the table and indexes when missing. Safe to call repeatedly.
func (r *RevocationRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range blacklistSchema {
		if _, err := r.db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Revoke appends pair. Duplicates are allowed.
func (r *RevocationRepository) Revoke(ctx context.Context, pair domain.TokenPair) error {
	const query = `INSERT INTO blacklist (access_token, refresh_token) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, nullable(pair.AccessToken), nullable(pair.RefreshToken))
	return err
}

// IsRevoked matches either column. Empty halves are sent as NULL so they never
// match. A failed lookup is reported as revoked.
func (r *RevocationRepository) IsRevoked(ctx context.Context, pair domain.TokenPair) bool {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM blacklist WHERE access_token = $1 OR refresh_token = $2
        )`

	var revoked bool
	if err := r.db.QueryRow(ctx, query, nullable(pair.AccessToken), nullable(pair.RefreshToken)).Scan(&revoked); err != nil {
		r.logger.Error("blacklist lookup failed; treating token as revoked", zap.Error(err))
		return true
	}
	return revoked
}

// Compact deletes rows revoked before cutoff and reports how many went.
func (r *RevocationRepository) Compact(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM blacklist WHERE revoked_at < $1`
	cmd, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
