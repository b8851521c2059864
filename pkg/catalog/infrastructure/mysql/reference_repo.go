package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

type categoryRow struct {
	ID       uuid.UUID     `db:"id"`
	Name     string        `db:"name"`
	ParentID uuid.NullUUID `db:"parent_id"`
	IsActive bool          `db:"is_active"`
}

func (r categoryRow) toModel() model.Category {
	category := model.Category{ID: r.ID, Name: r.Name, IsActive: r.IsActive}
	if r.ParentID.Valid {
		id := r.ParentID.UUID
		category.ParentID = &id
	}
	return category
}

var _ model.CategoryRepository = &categoryRepository{}

type categoryRepository struct {
	q sqlx.ExtContext
}

func NewCategoryRepository(q sqlx.ExtContext) model.CategoryRepository {
	return &categoryRepository{q: q}
}

func (r *categoryRepository) Find(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var row categoryRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, name, parent_id, is_active FROM categories WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCategoryNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting category")
	}
	category := row.toModel()
	return &category, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT id, name, parent_id, is_active FROM categories WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing categories")
	}
	out := make([]model.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

type brandRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
}

var _ model.BrandRepository = &brandRepository{}

type brandRepository struct {
	q sqlx.ExtContext
}

func NewBrandRepository(q sqlx.ExtContext) model.BrandRepository {
	return &brandRepository{q: q}
}

func (r *brandRepository) Find(ctx context.Context, id uuid.UUID) (*model.Brand, error) {
	var row brandRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, name, is_active, created_at FROM brands WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrBrandNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting brand")
	}
	return &model.Brand{ID: row.ID, Name: row.Name, IsActive: row.IsActive}, nil
}

func (r *brandRepository) ListActive(ctx context.Context) ([]model.Brand, error) {
	var rows []brandRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT id, name, is_active, created_at FROM brands WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, "listing brands")
	}
	out := make([]model.Brand, 0, len(rows))
	for _, row := range rows {
		out = append(out, model.Brand{ID: row.ID, Name: row.Name, IsActive: row.IsActive})
	}
	return out, nil
}
