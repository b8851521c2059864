package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

type OrderItemRequest struct {
	ProductID uuid.UUID
	Qty       int
}

// PlacementService turns a validated item list into a persisted order.
// Stock validation, pricing and the stock decrement happen inside one store
// transaction; a failure at any step leaves catalog and orders untouched.
type PlacementService interface {
	PlaceOrder(ctx context.Context, customerID uuid.UUID, items []OrderItemRequest) (*model.Order, error)
}

func NewPlacementService(client model.TransactionalClient, dispatcher EventDispatcher) PlacementService {
	return &placementService{client: client, dispatcher: dispatcher}
}

type placementService struct {
	client     model.TransactionalClient
	dispatcher EventDispatcher
}

func (s *placementService) PlaceOrder(ctx context.Context, customerID uuid.UUID, items []OrderItemRequest) (*model.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items must be a non-empty list", model.ErrInvalidRequest)
	}

	normalized := normalizeItems(items)
	ids := make([]uuid.UUID, 0, len(normalized))
	for _, item := range normalized {
		ids = append(ids, item.ProductID)
	}

	var order *model.Order
	err := s.client.Transact(ctx, func(r model.RepositoryProvider) error {
		products, err := r.Products().LockByIDs(ctx, ids)
		if err != nil {
			return err
		}
		// A shortfall against the distinct requested set means a product is
		// missing or inactive.
		if len(products) != len(ids) {
			return fmt.Errorf("%w: some products not found or inactive", model.ErrInvalidRequest)
		}
		byID := make(map[uuid.UUID]*model.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		for _, item := range normalized {
			product := byID[item.ProductID]
			if product.StockQty < item.Qty {
				return &model.InsufficientStockError{
					ProductID: product.ID,
					Requested: item.Qty,
					Available: product.StockQty,
				}
			}
		}

		orderID, err := r.Orders().NextID()
		if err != nil {
			return err
		}

		var subtotal int64
		lines := make([]model.OrderLine, 0, len(normalized))
		for _, item := range normalized {
			product := byID[item.ProductID]
			lineID, err := r.Orders().NextID()
			if err != nil {
				return err
			}
			lineTotal := product.PriceCents * int64(item.Qty)
			subtotal += lineTotal
			lines = append(lines, model.OrderLine{
				ID:             lineID,
				ProductID:      product.ID,
				NameSnapshot:   product.Name,
				SKUSnapshot:    product.SKU,
				UnitPriceCents: product.PriceCents,
				Qty:            item.Qty,
				LineTotalCents: lineTotal,
			})
		}

		for _, item := range normalized {
			if _, err := r.Products().DecrementStock(ctx, item.ProductID, item.Qty); err != nil {
				return err
			}
		}

		// Offers are quoted separately; checkout does not apply them yet.
		var discount int64
		now := time.Now().UTC()
		order = &model.Order{
			ID:            orderID,
			CustomerID:    customerID,
			Lines:         lines,
			SubtotalCents: subtotal,
			DiscountCents: discount,
			TotalCents:    subtotal - discount,
			PaymentMethod: model.PaymentMethodCOD,
			Status:        model.OrderStatusPlaced,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return r.Orders().Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderPlaced{
		OrderID:    order.ID,
		CustomerID: customerID,
		TotalCents: order.TotalCents,
	})
	return order, nil
}

// normalizeItems raises quantities below 1 to 1 and collapses duplicate
// product identifiers into one line, preserving first-seen order.
func normalizeItems(items []OrderItemRequest) []OrderItemRequest {
	merged := make(map[uuid.UUID]int, len(items))
	seen := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		qty := item.Qty
		if qty < 1 {
			qty = 1
		}
		if _, ok := merged[item.ProductID]; !ok {
			seen = append(seen, item.ProductID)
		}
		merged[item.ProductID] += qty
	}

	out := make([]OrderItemRequest, 0, len(seen))
	for _, id := range seen {
		out = append(out, OrderItemRequest{ProductID: id, Qty: merged[id]})
	}
	return out
}
