package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/service"
)

type listResponse struct {
	Items interface{} `json:"items"`
	Total int         `json:"total"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ProductID string `json:"productId,omitempty"`
	Requested int    `json:"requested,omitempty"`
	Available *int   `json:"available,omitempty"`
}

type productJSON struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	SKU        string            `json:"sku"`
	PriceCents int64             `json:"priceCents"`
	StockQty   int               `json:"stockQty"`
	IsActive   bool              `json:"isActive"`
	CategoryID string            `json:"categoryId"`
	BrandID    *string           `json:"brandId,omitempty"`
	Features   map[string]string `json:"features,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

type categoryJSON struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
	IsActive bool    `json:"isActive"`
}

type brandJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

type comparisonRowJSON struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

type priceQuoteJSON struct {
	ProductID       string             `json:"productId"`
	BasePriceCents  int64              `json:"basePriceCents"`
	DiscountCents   int64              `json:"discountCents"`
	FinalPriceCents int64              `json:"finalPriceCents"`
	AppliedOffers   []appliedOfferJSON `json:"appliedOffers"`
}

type appliedOfferJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type offerJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Value       string    `json:"value"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	IsActive    bool      `json:"isActive"`
	ProductIDs  []string  `json:"productIds"`
	CategoryIDs []string  `json:"categoryIds"`
}

type orderLineJSON struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	SKU            string `json:"sku"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Qty            int    `json:"qty"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

type orderJSON struct {
	ID            string          `json:"id"`
	CustomerID    string          `json:"customerId"`
	Lines         []orderLineJSON `json:"lines,omitempty"`
	SubtotalCents int64           `json:"subtotalCents"`
	DiscountCents int64           `json:"discountCents"`
	TotalCents    int64           `json:"totalCents"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type placeOrderRequest struct {
	CustomerID string `json:"customerId"`
	Items      []struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	} `json:"items"`
}

type createProductRequest struct {
	Name       string            `json:"name"`
	SKU        string            `json:"sku"`
	PriceCents int64             `json:"priceCents"`
	StockQty   int               `json:"stockQty"`
	IsActive   *bool             `json:"isActive"`
	CategoryID string            `json:"categoryId"`
	BrandID    *string           `json:"brandId"`
	Features   map[string]string `json:"features"`
}

type offerRequest struct {
	Name        string    `json:"name"`
	Kind        string    `json:"kind"`
	Value       string    `json:"value"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	IsActive    *bool     `json:"isActive"`
	ProductIDs  []string  `json:"productIds"`
	CategoryIDs []string  `json:"categoryIds"`
}

type offerUpdateRequest struct {
	Name        *string    `json:"name"`
	Kind        *string    `json:"kind"`
	Value       *string    `json:"value"`
	StartsAt    *time.Time `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt"`
	IsActive    *bool      `json:"isActive"`
	ProductIDs  []string   `json:"productIds"`
	CategoryIDs []string   `json:"categoryIds"`
}

func toProductJSON(p model.Product) productJSON {
	out := productJSON{
		ID:         p.ID.String(),
		Name:       p.Name,
		SKU:        p.SKU,
		PriceCents: p.PriceCents,
		StockQty:   p.StockQty,
		IsActive:   p.IsActive,
		CategoryID: p.CategoryID.String(),
		Features:   p.Features,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
	if p.BrandID != nil {
		brand := p.BrandID.String()
		out.BrandID = &brand
	}
	return out
}

func toProductsJSON(products []model.Product) []productJSON {
	out := make([]productJSON, 0, len(products))
	for _, p := range products {
		out = append(out, toProductJSON(p))
	}
	return out
}

func toOfferJSON(o model.Offer) offerJSON {
	productIDs := make([]string, 0, len(o.ProductIDs))
	for _, id := range o.ProductIDs {
		productIDs = append(productIDs, id.String())
	}
	categoryIDs := make([]string, 0, len(o.CategoryIDs))
	for _, id := range o.CategoryIDs {
		categoryIDs = append(categoryIDs, id.String())
	}
	return offerJSON{
		ID:          o.ID.String(),
		Name:        o.Name,
		Kind:        string(o.Kind),
		Value:       o.Value.String(),
		StartsAt:    o.StartsAt,
		EndsAt:      o.EndsAt,
		IsActive:    o.IsActive,
		ProductIDs:  productIDs,
		CategoryIDs: categoryIDs,
	}
}

func toOrderJSON(o model.Order) orderJSON {
	lines := make([]orderLineJSON, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineJSON{
			ProductID:      line.ProductID.String(),
			Name:           line.NameSnapshot,
			SKU:            line.SKUSnapshot,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			LineTotalCents: line.LineTotalCents,
		})
	}
	return orderJSON{
		ID:            o.ID.String(),
		CustomerID:    o.CustomerID.String(),
		Lines:         lines,
		SubtotalCents: o.SubtotalCents,
		DiscountCents: o.DiscountCents,
		TotalCents:    o.TotalCents,
		PaymentMethod: o.PaymentMethod,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Error("failed to write response body")
	}
}

func writeError(w http.ResponseWriter, err error) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:     stockErr.Error(),
			ProductID: stockErr.ProductID.String(),
			Requested: stockErr.Requested,
			Available: &available,
		})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrProductNotFound),
		errors.Is(err, model.ErrCategoryNotFound),
		errors.Is(err, model.ErrBrandNotFound),
		errors.Is(err, model.ErrOfferNotFound),
		errors.Is(err, model.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrSKUAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidRequest),
		errors.Is(err, model.ErrInvalidOfferKind),
		errors.Is(err, model.ErrInvalidOfferValue),
		errors.Is(err, model.ErrInvalidOfferWindow),
		errors.Is(err, model.ErrInvalidOrderStatus),
		errors.Is(err, service.ErrInvalidStockQuantity),
		errors.Is(err, service.ErrNegativePrice):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
