package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceQuote is the result of resolving a product's price against all
// offers active at the evaluation time. FinalPriceCents is always
// BasePriceCents minus DiscountCents, with the discount clamped into
// [0, BasePriceCents].
type PriceQuote struct {
	ProductID       uuid.UUID
	BasePriceCents  int64
	DiscountCents   int64
	FinalPriceCents int64
	AppliedOffers   []AppliedOffer
}

// AppliedOffer identifies an offer that matched the quote. Clamping is
// applied to the aggregate discount, so a matched offer is reported even
// when its marginal contribution was clamped away.
type AppliedOffer struct {
	ID    uuid.UUID
	Name  string
	Kind  OfferKind
	Value decimal.Decimal
}
