package model

import "github.com/google/uuid"

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
	SKU       string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductPriceChanged struct {
	ProductID     uuid.UUID
	OldPriceCents int64
	NewPriceCents int64
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type ProductStockChanged struct {
	ProductID    uuid.UUID
	ChangeAmount int
	NewQuantity  int
}

func (e ProductStockChanged) Type() string { return "ProductStockChanged" }

type ProductActivationChanged struct {
	ProductID uuid.UUID
	IsActive  bool
}

func (e ProductActivationChanged) Type() string { return "ProductActivationChanged" }

type OfferCreated struct {
	OfferID uuid.UUID
	Name    string
	Kind    OfferKind
}

func (e OfferCreated) Type() string { return "OfferCreated" }

type OfferUpdated struct {
	OfferID uuid.UUID
}

func (e OfferUpdated) Type() string { return "OfferUpdated" }

type OfferDeleted struct {
	OfferID uuid.UUID
}

func (e OfferDeleted) Type() string { return "OfferDeleted" }

type OrderPlaced struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	TotalCents int64
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }

type OrderStatusChanged struct {
	OrderID   uuid.UUID
	OldStatus OrderStatus
	NewStatus OrderStatus
}

func (e OrderStatusChanged) Type() string { return "OrderStatusChanged" }
