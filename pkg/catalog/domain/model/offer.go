package model

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOfferNotFound      = errors.New("offer not found")
	ErrInvalidOfferKind   = errors.New("offer kind must be PERCENT or AMOUNT")
	ErrInvalidOfferValue  = errors.New("offer value is out of range for its kind")
	ErrInvalidOfferWindow = errors.New("offer start must not be after its end")
)

type OfferKind string

const (
	OfferPercent OfferKind = "PERCENT"
	OfferAmount  OfferKind = "AMOUNT"
)

func (k OfferKind) Valid() bool {
	return k == OfferPercent || k == OfferAmount
}

// Offer is a time-bounded promotion targeting specific products and/or
// whole categories. Value is a percentage for PERCENT offers and an amount
// in major currency units for AMOUNT offers.
type Offer struct {
	ID          uuid.UUID
	Name        string
	Kind        OfferKind
	Value       decimal.Decimal
	StartsAt    time.Time
	EndsAt      time.Time
	IsActive    bool
	ProductIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (o Offer) ActiveAt(now time.Time) bool {
	return o.IsActive && !now.Before(o.StartsAt) && !now.After(o.EndsAt)
}

func (o Offer) Targets(productID, categoryID uuid.UUID) bool {
	for _, id := range o.ProductIDs {
		if id == productID {
			return true
		}
	}
	for _, id := range o.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

type OfferRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, offer *Offer) error
	// Update rewrites the offer together with its target sets; the previous
	// targets are replaced wholesale, never patched.
	Update(ctx context.Context, offer *Offer) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*Offer, error)
	FindActiveFor(ctx context.Context, productID, categoryID uuid.UUID, now time.Time) ([]Offer, error)
	ListActive(ctx context.Context, now time.Time) ([]Offer, error)
}
