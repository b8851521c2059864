package tests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/service"
)

func setupPricing(t *testing.T) (service.PricingService, *mockProductRepository, *mockOfferRepository) {
	t.Helper()
	products := newMockProductRepository()
	offers := newMockOfferRepository()
	return service.NewPricingService(products, offers), products, offers
}

func seedProduct(products *mockProductRepository, priceCents int64) model.Product {
	product := model.Product{
		ID:         uuid.New(),
		Name:       "Phone X",
		SKU:        "PHX-128-BLK",
		PriceCents: priceCents,
		StockQty:   12,
		IsActive:   true,
		CategoryID: uuid.New(),
	}
	products.add(product)
	return product
}

func seedOffer(offers *mockOfferRepository, kind model.OfferKind, value string, now time.Time, productIDs, categoryIDs []uuid.UUID) model.Offer {
	offer := model.Offer{
		ID:          uuid.New(),
		Name:        string(kind) + " " + value,
		Kind:        kind,
		Value:       decimal.RequireFromString(value),
		StartsAt:    now.Add(-time.Hour),
		EndsAt:      now.Add(time.Hour),
		IsActive:    true,
		ProductIDs:  productIDs,
		CategoryIDs: categoryIDs,
	}
	offers.add(offer)
	return offer
}

func TestResolvePrice(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("Unknown product", func(t *testing.T) {
		pricing, _, _ := setupPricing(t)
		_, err := pricing.ResolvePrice(ctx, uuid.New(), now)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("No offers", func(t *testing.T) {
		pricing, products, _ := setupPricing(t)
		product := seedProduct(products, 1000)

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), quote.BasePriceCents)
		assert.Equal(t, int64(0), quote.DiscountCents)
		assert.Equal(t, int64(1000), quote.FinalPriceCents)
		assert.Empty(t, quote.AppliedOffers)
	})

	t.Run("Percent offer on product", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		seedOffer(offers, model.OfferPercent, "10", now, []uuid.UUID{product.ID}, nil)

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(100), quote.DiscountCents)
		assert.Equal(t, int64(900), quote.FinalPriceCents)
		require.Len(t, quote.AppliedOffers, 1)
		assert.Equal(t, model.OfferPercent, quote.AppliedOffers[0].Kind)
	})

	t.Run("Percent discount floors", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 999)
		seedOffer(offers, model.OfferPercent, "10", now, []uuid.UUID{product.ID}, nil)

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(99), quote.DiscountCents)
	})

	t.Run("Amount offer rounds half up", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		seedOffer(offers, model.OfferAmount, "1.255", now, []uuid.UUID{product.ID}, nil)

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(126), quote.DiscountCents)
	})

	t.Run("Category target applies", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 2000)
		seedOffer(offers, model.OfferPercent, "25", now, nil, []uuid.UUID{product.CategoryID})

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(500), quote.DiscountCents)
		assert.Equal(t, int64(1500), quote.FinalPriceCents)
	})

	t.Run("Stacked offers clamp at base price", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		seedOffer(offers, model.OfferPercent, "80", now, []uuid.UUID{product.ID}, nil)
		seedOffer(offers, model.OfferAmount, "5", now, []uuid.UUID{product.ID}, nil)

		// raw discount 800 + 500 = 1300, clamped to the base price
		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), quote.DiscountCents)
		assert.Equal(t, int64(0), quote.FinalPriceCents)
		assert.Len(t, quote.AppliedOffers, 2)
	})

	t.Run("Two 80 percent offers clamp to 100 percent", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		seedOffer(offers, model.OfferPercent, "80", now, []uuid.UUID{product.ID}, nil)
		seedOffer(offers, model.OfferPercent, "80", now, nil, []uuid.UUID{product.CategoryID})

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), quote.DiscountCents)
		assert.Equal(t, int64(0), quote.FinalPriceCents)
	})

	t.Run("Expired and upcoming offers ignored", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)

		expired := seedOffer(offers, model.OfferPercent, "50", now.Add(-3*time.Hour), []uuid.UUID{product.ID}, nil)
		require.False(t, expired.ActiveAt(now))
		upcoming := seedOffer(offers, model.OfferPercent, "50", now.Add(3*time.Hour), []uuid.UUID{product.ID}, nil)
		require.False(t, upcoming.ActiveAt(now))

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), quote.DiscountCents)
	})

	t.Run("Inactive offer ignored", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		offer := seedOffer(offers, model.OfferPercent, "50", now, []uuid.UUID{product.ID}, nil)
		offer.IsActive = false
		offers.add(offer)

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), quote.DiscountCents)
	})

	t.Run("Offer for another product ignored", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		seedOffer(offers, model.OfferPercent, "50", now, []uuid.UUID{uuid.New()}, []uuid.UUID{uuid.New()})

		quote, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, int64(0), quote.DiscountCents)
	})

	t.Run("Repeated calls yield identical quotes", func(t *testing.T) {
		pricing, products, offers := setupPricing(t)
		product := seedProduct(products, 1000)
		seedOffer(offers, model.OfferPercent, "10", now, []uuid.UUID{product.ID}, nil)
		seedOffer(offers, model.OfferAmount, "2.50", now, nil, []uuid.UUID{product.CategoryID})

		first, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		second, err := pricing.ResolvePrice(ctx, product.ID, now)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
