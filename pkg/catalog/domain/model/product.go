package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
	ErrSKUAlreadyExists = errors.New("product with this SKU already exists")
)

type Product struct {
	ID         uuid.UUID
	Name       string
	SKU        string
	PriceCents int64
	StockQty   int
	IsActive   bool
	CategoryID uuid.UUID
	BrandID    *uuid.UUID
	Features   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Category struct {
	ID       uuid.UUID
	Name     string
	ParentID *uuid.UUID
	IsActive bool
}

type Brand struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

type ProductFilter struct {
	Name       string
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	ActiveOnly bool
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]Product, error)
	// LockByIDs returns active products only and takes row locks when called
	// inside a transaction, serializing stock checks against concurrent writers.
	LockByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	// DecrementStock lowers the stock quantity, flooring it at zero,
	// and returns the new quantity.
	DecrementStock(ctx context.Context, id uuid.UUID, amount int) (int, error)
	Search(ctx context.Context, filter ProductFilter) ([]Product, error)
}

type CategoryRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*Category, error)
	ListActive(ctx context.Context) ([]Category, error)
}

type BrandRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*Brand, error)
	ListActive(ctx context.Context) ([]Brand, error)
}
