package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

var (
	ErrInvalidStockQuantity = errors.New("stock quantity must be a positive number")
	ErrNegativePrice        = errors.New("price cannot be negative")
)

type NewProductInput struct {
	Name       string
	SKU        string
	PriceCents int64
	StockQty   int
	IsActive   bool
	CategoryID uuid.UUID
	BrandID    *uuid.UUID
	Features   map[string]string
}

type ProductService interface {
	CreateProduct(ctx context.Context, input NewProductInput) (*model.Product, error)
	ChangePrice(ctx context.Context, productID uuid.UUID, newPriceCents int64) error
	ReceiveStock(ctx context.Context, productID uuid.UUID, quantity int) error
	UpdateFeatures(ctx context.Context, productID uuid.UUID, features map[string]string) error
	Activate(ctx context.Context, productID uuid.UUID) error
	Deactivate(ctx context.Context, productID uuid.UUID) error
}

func NewProductService(products model.ProductRepository, categories model.CategoryRepository, brands model.BrandRepository, dispatcher EventDispatcher) ProductService {
	return &productService{
		products:   products,
		categories: categories,
		brands:     brands,
		dispatcher: dispatcher,
	}
}

type productService struct {
	products   model.ProductRepository
	categories model.CategoryRepository
	brands     model.BrandRepository
	dispatcher EventDispatcher
}

func (s *productService) CreateProduct(ctx context.Context, input NewProductInput) (*model.Product, error) {
	if input.Name == "" || input.SKU == "" {
		return nil, fmt.Errorf("%w: name and sku are required", model.ErrInvalidRequest)
	}
	if input.PriceCents < 0 {
		return nil, ErrNegativePrice
	}
	if input.StockQty < 0 {
		return nil, ErrInvalidStockQuantity
	}

	if _, err := s.categories.Find(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	if input.BrandID != nil {
		if _, err := s.brands.Find(ctx, *input.BrandID); err != nil {
			return nil, err
		}
	}

	existing, err := s.products.FindBySKU(ctx, input.SKU)
	if err != nil && !errors.Is(err, model.ErrProductNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, model.ErrSKUAlreadyExists
	}

	productID, err := s.products.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:         productID,
		Name:       input.Name,
		SKU:        input.SKU,
		PriceCents: input.PriceCents,
		StockQty:   input.StockQty,
		IsActive:   input.IsActive,
		CategoryID: input.CategoryID,
		BrandID:    input.BrandID,
		Features:   input.Features,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.ProductCreated{ProductID: productID, Name: product.Name, SKU: product.SKU})
	return product, nil
}

func (s *productService) ChangePrice(ctx context.Context, productID uuid.UUID, newPriceCents int64) error {
	if newPriceCents < 0 {
		return ErrNegativePrice
	}

	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return err
	}

	oldPrice := product.PriceCents
	product.PriceCents = newPriceCents

	if err := s.updateProduct(ctx, product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductPriceChanged{
		ProductID:     productID,
		OldPriceCents: oldPrice,
		NewPriceCents: newPriceCents,
	})
	return nil
}

func (s *productService) ReceiveStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidStockQuantity
	}

	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return err
	}

	product.StockQty += quantity

	if err := s.updateProduct(ctx, product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductStockChanged{
		ProductID:    productID,
		ChangeAmount: quantity,
		NewQuantity:  product.StockQty,
	})
	return nil
}

func (s *productService) UpdateFeatures(ctx context.Context, productID uuid.UUID, features map[string]string) error {
	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return err
	}

	product.Features = features
	return s.updateProduct(ctx, product)
}

func (s *productService) Activate(ctx context.Context, productID uuid.UUID) error {
	return s.setActive(ctx, productID, true)
}

func (s *productService) Deactivate(ctx context.Context, productID uuid.UUID) error {
	return s.setActive(ctx, productID, false)
}

func (s *productService) setActive(ctx context.Context, productID uuid.UUID, active bool) error {
	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return err
	}
	if product.IsActive == active {
		return nil
	}

	product.IsActive = active

	if err := s.updateProduct(ctx, product); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.ProductActivationChanged{ProductID: productID, IsActive: active})
	return nil
}

func (s *productService) updateProduct(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()
	return s.products.Update(ctx, product)
}
