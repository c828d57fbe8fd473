package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

// FeatureRepoImpl implements repository.FeatureRepository using PostgreSQL.
type FeatureRepoImpl struct {
	db *pgxpool.Pool
}

// NewFeatureRepo creates a new instance of FeatureRepoImpl.
func NewFeatureRepo(db *pgxpool.Pool) *FeatureRepoImpl {
	return &FeatureRepoImpl{db: db}
}

// Create stores a feature vector; the referenced object must already exist.
func (r *FeatureRepoImpl) Create(ctx context.Context, f *entity.Feature) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO features (object_id, vector, version_id) VALUES ($1, $2, $3) RETURNING id;`,
		f.ObjectID, f.Vector, f.VersionID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert feature for object %d: %w", f.ObjectID, err)
	}
	if id == 0 {
		return 0, repository.ErrNoID
	}
	return id, nil
}
