package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

// ObjectRepoImpl implements repository.ObjectRepository using PostgreSQL.
type ObjectRepoImpl struct {
	db *pgxpool.Pool
}

// NewObjectRepo creates a new instance of ObjectRepoImpl.
func NewObjectRepo(db *pgxpool.Pool) *ObjectRepoImpl {
	return &ObjectRepoImpl{db: db}
}

// Create inserts the object; image_id stays NULL unless already known.
func (r *ObjectRepoImpl) Create(ctx context.Context, obj *entity.Object) (int64, error) {
	query := `
		INSERT INTO objects (product_id, class_code, storage_key, bucket, url, is_main, image_id, version_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		obj.ProductID,
		obj.ClassCode,
		obj.StorageKey,
		obj.Bucket,
		obj.URL,
		obj.IsMain,
		obj.ImageID,
		obj.VersionID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert object for product %s: %w", obj.ProductID, err)
	}
	if id == 0 {
		return 0, repository.ErrNoID
	}
	return id, nil
}

// SetImageID back-fills the image reference of one object.
func (r *ObjectRepoImpl) SetImageID(ctx context.Context, objectID, imageID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE objects SET image_id = $1 WHERE id = $2;`, imageID, objectID)
	if err != nil {
		return fmt.Errorf("set image %d on object %d: %w", imageID, objectID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set image %d on object %d: %w", imageID, objectID, repository.ErrNotFound)
	}
	return nil
}

// FindOrphans lists objects still missing their image reference, oldest first.
func (r *ObjectRepoImpl) FindOrphans(ctx context.Context, limit int) ([]*entity.Object, error) {
	query := `
		SELECT id, product_id, class_code, storage_key, bucket, url, is_main, version_id, created_at
		FROM objects
		WHERE image_id IS NULL
		ORDER BY created_at ASC
		LIMIT $1;
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []*entity.Object
	for rows.Next() {
		var o entity.Object
		if err := rows.Scan(
			&o.ID,
			&o.ProductID,
			&o.ClassCode,
			&o.StorageKey,
			&o.Bucket,
			&o.URL,
			&o.IsMain,
			&o.VersionID,
			&o.CreatedAt,
		); err != nil {
			return nil, err
		}
		orphans = append(orphans, &o)
	}
	return orphans, rows.Err()
}
