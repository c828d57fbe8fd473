package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/classifier-service/internal/entity"
	"github.com/user/classifier-service/internal/repository"
)

// ProductRepoImpl implements repository.ProductRepository using PostgreSQL.
type ProductRepoImpl struct {
	db *pgxpool.Pool
}

// NewProductRepo creates a new instance of ProductRepoImpl.
func NewProductRepo(db *pgxpool.Pool) *ProductRepoImpl {
	return &ProductRepoImpl{db: db}
}

// Update sets only the columns present in the patch.
func (r *ProductRepoImpl) Update(ctx context.Context, productID string, patch entity.ProductPatch) error {
	query, args := buildProductUpdate(productID, patch)
	if query == "" {
		return nil
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update product %s: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update product %s: %w", productID, repository.ErrNotFound)
	}
	return nil
}

// buildProductUpdate renders the partial UPDATE; it returns an empty query for an empty patch.
func buildProductUpdate(productID string, patch entity.ProductPatch) (string, []any) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.IsClassified != nil {
		add("is_classified", *patch.IsClassified)
	}
	if patch.IsAvailable != nil {
		add("is_available", *patch.IsAvailable)
	}
	if patch.MainImageMobileFull != nil {
		add("main_image_mobile_full", *patch.MainImageMobileFull)
	}
	if patch.MainImageMobileThumb != nil {
		add("main_image_mobile_thumb", *patch.MainImageMobileThumb)
	}
	if len(sets) == 0 {
		return "", nil
	}

	args = append(args, productID)
	query := fmt.Sprintf("UPDATE products SET %s, updated_at = NOW() WHERE id = $%d;",
		strings.Join(sets, ", "), len(args))
	return query, args
}
