package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

// ImageRepoImpl implements repository.ImageRepository using PostgreSQL.
type ImageRepoImpl struct {
	db *pgxpool.Pool
}

// NewImageRepo creates a new instance of ImageRepoImpl.
func NewImageRepo(db *pgxpool.Pool) *ImageRepoImpl {
	return &ImageRepoImpl{db: db}
}

// Create inserts the image with its object ids and returns the generated id.
func (r *ImageRepoImpl) Create(ctx context.Context, img *entity.Image) (int64, error) {
	query := `
		INSERT INTO images (product_id, product_name, product_url, host_code, host_group,
			main_image, sub_images, tags, price, currency, class_code, object_ids, version_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id;
	`
	var id int64
	err := r.db.QueryRow(ctx, query,
		img.ProductID,
		img.ProductName,
		img.ProductURL,
		img.HostCode,
		img.HostGroup,
		img.MainImage,
		nonNil(img.SubImages),
		nonNil(img.Tags),
		img.Price,
		img.Currency,
		img.ClassCode,
		nonNil(img.ObjectIDs),
		img.VersionID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert image for product %s: %w", img.ProductID, err)
	}
	if id == 0 {
		return 0, repository.ErrNoID
	}
	return id, nil
}

// FindByID loads one image.
func (r *ImageRepoImpl) FindByID(ctx context.Context, id int64) (*entity.Image, error) {
	query := `
		SELECT id, product_id, product_name, product_url, host_code, host_group, main_image,
			sub_images, tags, price, currency, class_code, object_ids, version_id, created_at
		FROM images
		WHERE id = $1;
	`
	var img entity.Image
	err := r.db.QueryRow(ctx, query, id).Scan(
		&img.ID,
		&img.ProductID,
		&img.ProductName,
		&img.ProductURL,
		&img.HostCode,
		&img.HostGroup,
		&img.MainImage,
		&img.SubImages,
		&img.Tags,
		&img.Price,
		&img.Currency,
		&img.ClassCode,
		&img.ObjectIDs,
		&img.VersionID,
		&img.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// nonNil keeps NOT NULL array columns from receiving SQL NULL.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
