package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the repositories use. Every call acquires a
// pooled connection and releases it before returning.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DefaultPageSize is the page length used by list endpoints.
const DefaultPageSize = 25

// Page is a 1-based page request. Page 0 means "everything".
type Page struct {
	Number int
	Size   int
}

// limitClause renders LIMIT/OFFSET for p, or nothing for an unpaged request.
func (p Page) limitClause() string {
	if p.Number <= 0 {
		return ""
	}
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, (p.Number-1)*size)
}
