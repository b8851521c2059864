package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

type ComparisonRow struct {
	Key    string
	Values []string
}

type ProductComparison struct {
	Products []model.Product
	Matrix   []ComparisonRow
}

// CatalogQueryService serves the public read side of the catalog.
type CatalogQueryService interface {
	ProductByID(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	SearchProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	CompareProducts(ctx context.Context, productIDs []uuid.UUID) (*ProductComparison, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListBrands(ctx context.Context) ([]model.Brand, error)
}

func NewCatalogQueryService(products model.ProductRepository, categories model.CategoryRepository, brands model.BrandRepository) CatalogQueryService {
	return &catalogQueryService{products: products, categories: categories, brands: brands}
}

type catalogQueryService struct {
	products   model.ProductRepository
	categories model.CategoryRepository
	brands     model.BrandRepository
}

func (s *catalogQueryService) ProductByID(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

func (s *catalogQueryService) SearchProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.ActiveOnly = true
	return s.products.Search(ctx, filter)
}

func (s *catalogQueryService) CompareProducts(ctx context.Context, productIDs []uuid.UUID) (*ProductComparison, error) {
	if len(productIDs) < 2 {
		return nil, fmt.Errorf("%w: provide at least two product ids", model.ErrInvalidRequest)
	}

	products, err := s.products.FindByIDs(ctx, productIDs, true)
	if err != nil {
		return nil, err
	}
	if len(products) < 2 {
		return nil, model.ErrProductNotFound
	}

	keySet := make(map[string]struct{})
	for _, p := range products {
		for key := range p.Features {
			keySet[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(keySet))
	for key := range keySet {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	matrix := make([]ComparisonRow, 0, len(keys))
	for _, key := range keys {
		row := ComparisonRow{Key: key, Values: make([]string, 0, len(products))}
		for _, p := range products {
			value, ok := p.Features[key]
			if !ok {
				value = "-"
			}
			row.Values = append(row.Values, value)
		}
		matrix = append(matrix, row)
	}

	return &ProductComparison{Products: products, Matrix: matrix}, nil
}

func (s *catalogQueryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.ListActive(ctx)
}

func (s *catalogQueryService) ListBrands(ctx context.Context) ([]model.Brand, error) {
	return s.brands.ListActive(ctx)
}
