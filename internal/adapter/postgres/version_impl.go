package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/classifier-service/internal/repository"
)

// VersionRepoImpl implements repository.VersionRepository using PostgreSQL.
type VersionRepoImpl struct {
	db *pgxpool.Pool
}

// NewVersionRepo creates a new instance of VersionRepoImpl.
func NewVersionRepo(db *pgxpool.Pool) *VersionRepoImpl {
	return &VersionRepoImpl{db: db}
}

// Latest returns the newest crawl version id.
func (r *VersionRepoImpl) Latest(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRow(ctx, `SELECT id FROM versions ORDER BY created_at DESC LIMIT 1;`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", repository.ErrNotFound
	}
	return id, err
}
