package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

var (
	oneHundred = decimal.NewFromInt(100)
)

// PricingService resolves a product's effective price by stacking every
// offer active at the supplied evaluation time. It is read-only: the caller
// provides "now", so two calls against unchanged state return the same quote.
type PricingService interface {
	ResolvePrice(ctx context.Context, productID uuid.UUID, now time.Time) (*model.PriceQuote, error)
}

func NewPricingService(products model.ProductRepository, offers model.OfferRepository) PricingService {
	return &pricingService{products: products, offers: offers}
}

type pricingService struct {
	products model.ProductRepository
	offers   model.OfferRepository
}

func (s *pricingService) ResolvePrice(ctx context.Context, productID uuid.UUID, now time.Time) (*model.PriceQuote, error) {
	// The product itself is quoted even when inactive; only absence fails.
	product, err := s.products.Find(ctx, productID)
	if err != nil {
		return nil, err
	}

	offers, err := s.offers.FindActiveFor(ctx, product.ID, product.CategoryID, now)
	if err != nil {
		return nil, err
	}

	base := product.PriceCents
	var raw int64
	applied := make([]model.AppliedOffer, 0, len(offers))
	for _, offer := range offers {
		raw += offerContribution(base, offer)
		applied = append(applied, model.AppliedOffer{
			ID:    offer.ID,
			Name:  offer.Name,
			Kind:  offer.Kind,
			Value: offer.Value,
		})
	}

	discount := clampDiscount(raw, base)
	return &model.PriceQuote{
		ProductID:       product.ID,
		BasePriceCents:  base,
		DiscountCents:   discount,
		FinalPriceCents: base - discount,
		AppliedOffers:   applied,
	}, nil
}

// offerContribution computes a single offer's raw discount in minor units.
// PERCENT floors, AMOUNT rounds half up; non-positive values contribute nothing.
func offerContribution(basePriceCents int64, offer model.Offer) int64 {
	if !offer.Value.IsPositive() {
		return 0
	}
	switch offer.Kind {
	case model.OfferPercent:
		return decimal.NewFromInt(basePriceCents).
			Mul(offer.Value).
			Div(oneHundred).
			Floor().
			IntPart()
	case model.OfferAmount:
		return offer.Value.Mul(oneHundred).Round(0).IntPart()
	}
	return 0
}

// clampDiscount bounds the stacked discount into [0, basePriceCents] so the
// final price can never go negative, no matter how many offers overlap.
func clampDiscount(raw, basePriceCents int64) int64 {
	if raw < 0 {
		return 0
	}
	if raw > basePriceCents {
		return basePriceCents
	}
	return raw
}
