package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/service"
)

type Services struct {
	Pricing   service.PricingService
	Placement service.PlacementService
	Catalog   service.CatalogQueryService
	Products  service.ProductService
	Offers    service.OfferService
	Orders    service.OrderService
}

func Router(services Services) http.Handler {
	h := &handler{services: services}

	r := mux.NewRouter()
	s := r.PathPrefix("/api/v1").Subrouter()

	s.HandleFunc("/catalog/products", h.searchProducts).Methods(http.MethodGet)
	s.HandleFunc("/catalog/products/{ID}", h.getProduct).Methods(http.MethodGet)
	s.HandleFunc("/catalog/categories", h.listCategories).Methods(http.MethodGet)
	s.HandleFunc("/catalog/brands", h.listBrands).Methods(http.MethodGet)
	s.HandleFunc("/catalog/compare", h.compareProducts).Methods(http.MethodPost)
	s.HandleFunc("/catalog/price", h.getPrice).Methods(http.MethodGet)
	s.HandleFunc("/catalog/offers", h.listOffers).Methods(http.MethodGet)

	s.HandleFunc("/orders", h.placeOrder).Methods(http.MethodPost)
	s.HandleFunc("/orders/{ID}", h.getOrder).Methods(http.MethodGet)
	s.HandleFunc("/customers/{ID}/orders", h.listCustomerOrders).Methods(http.MethodGet)

	s.HandleFunc("/owner/products", h.createProduct).Methods(http.MethodPost)
	s.HandleFunc("/owner/products/{ID}/price", h.changePrice).Methods(http.MethodPatch)
	s.HandleFunc("/owner/products/{ID}/stock", h.receiveStock).Methods(http.MethodPost)
	s.HandleFunc("/owner/products/{ID}/features", h.updateFeatures).Methods(http.MethodPatch)
	s.HandleFunc("/owner/products/{ID}/active", h.setProductActive).Methods(http.MethodPatch)
	s.HandleFunc("/owner/offers", h.createOffer).Methods(http.MethodPost)
	s.HandleFunc("/owner/offers/{ID}", h.updateOffer).Methods(http.MethodPatch)
	s.HandleFunc("/owner/offers/{ID}", h.deleteOffer).Methods(http.MethodDelete)
	s.HandleFunc("/owner/orders/{ID}/status", h.updateOrderStatus).Methods(http.MethodPatch)

	return logMiddleware(r)
}

type handler struct {
	services Services
}

func (h *handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	filter := model.ProductFilter{Name: r.URL.Query().Get("search")}
	if raw := r.URL.Query().Get("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad categoryId"))
			return
		}
		filter.CategoryID = &id
	}
	if raw := r.URL.Query().Get("brandId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad brandId"))
			return
		}
		filter.BrandID = &id
	}

	products, err := h.services.Catalog.SearchProducts(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse{Items: toProductsJSON(products), Total: len(products)})
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	product, err := h.services.Catalog.ProductByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"product": toProductJSON(*product)})
}

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.services.Catalog.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		item := categoryJSON{ID: c.ID.String(), Name: c.Name, IsActive: c.IsActive}
		if c.ParentID != nil {
			parent := c.ParentID.String()
			item.ParentID = &parent
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (h *handler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.services.Catalog.ListBrands(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]brandJSON, 0, len(brands))
	for _, b := range brands {
		items = append(items, brandJSON{ID: b.ID.String(), Name: b.Name, IsActive: b.IsActive})
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (h *handler) compareProducts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ids, err := parseIDs(req.ProductIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	comparison, err := h.services.Catalog.CompareProducts(r.Context(), ids)
	if err != nil {
		writeError(w, err)
		return
	}

	matrix := make([]comparisonRowJSON, 0, len(comparison.Matrix))
	for _, row := range comparison.Matrix {
		matrix = append(matrix, comparisonRowJSON{Key: row.Key, Values: row.Values})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": toProductsJSON(comparison.Products),
		"matrix":   matrix,
	})
}

func (h *handler) getPrice(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, "id is required"))
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad id"))
		return
	}

	now := time.Now().UTC()
	if at := r.URL.Query().Get("at"); at != "" {
		now, err = time.Parse(time.RFC3339, at)
		if err != nil {
			writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad at timestamp"))
			return
		}
	}

	quote, err := h.services.Pricing.ResolvePrice(r.Context(), id, now)
	if err != nil {
		writeError(w, err)
		return
	}

	applied := make([]appliedOfferJSON, 0, len(quote.AppliedOffers))
	for _, offer := range quote.AppliedOffers {
		applied = append(applied, appliedOfferJSON{
			ID:    offer.ID.String(),
			Name:  offer.Name,
			Kind:  string(offer.Kind),
			Value: offer.Value.String(),
		})
	}
	writeJSON(w, http.StatusOK, priceQuoteJSON{
		ProductID:       quote.ProductID.String(),
		BasePriceCents:  quote.BasePriceCents,
		DiscountCents:   quote.DiscountCents,
		FinalPriceCents: quote.FinalPriceCents,
		AppliedOffers:   applied,
	})
}

func (h *handler) listOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.services.Offers.ListActive(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]offerJSON, 0, len(offers))
	for _, offer := range offers {
		items = append(items, toOfferJSON(offer))
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (h *handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad customerId"))
		return
	}

	items := make([]service.OrderItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad productId"))
			return
		}
		items = append(items, service.OrderItemRequest{ProductID: productID, Qty: item.Qty})
	}

	order, err := h.services.Placement.PlaceOrder(r.Context(), customerID, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"order": toOrderJSON(*order)})
}

func (h *handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	order, err := h.services.Orders.Find(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"order": toOrderJSON(*order)})
}

func (h *handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	orders, err := h.services.Orders.ListByCustomer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]orderJSON, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderJSON(order))
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Total: len(items)})
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad categoryId"))
		return
	}

	input := service.NewProductInput{
		Name:       req.Name,
		SKU:        req.SKU,
		PriceCents: req.PriceCents,
		StockQty:   req.StockQty,
		IsActive:   req.IsActive == nil || *req.IsActive,
		CategoryID: categoryID,
		Features:   req.Features,
	}
	if req.BrandID != nil {
		brandID, err := uuid.Parse(*req.BrandID)
		if err != nil {
			writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad brandId"))
			return
		}
		input.BrandID = &brandID
	}

	product, err := h.services.Products.CreateProduct(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"product": toProductJSON(*product)})
}

func (h *handler) changePrice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		PriceCents int64 `json:"priceCents"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Products.ChangePrice(r.Context(), id, req.PriceCents); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) receiveStock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Products.ReceiveStock(r.Context(), id, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) updateFeatures(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Features map[string]string `json:"features"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Products.UpdateFeatures(r.Context(), id, req.Features); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setProductActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		IsActive bool `json:"isActive"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.IsActive {
		err = h.services.Products.Activate(r.Context(), id)
	} else {
		err = h.services.Products.Deactivate(r.Context(), id)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) createOffer(w http.ResponseWriter, r *http.Request) {
	var req offerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad value"))
		return
	}
	productIDs, err := parseIDs(req.ProductIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	categoryIDs, err := parseIDs(req.CategoryIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	offer, err := h.services.Offers.CreateOffer(r.Context(), service.NewOfferInput{
		Name:        req.Name,
		Kind:        model.OfferKind(req.Kind),
		Value:       value,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		IsActive:    req.IsActive == nil || *req.IsActive,
		ProductIDs:  productIDs,
		CategoryIDs: categoryIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"offer": toOfferJSON(*offer)})
}

func (h *handler) updateOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req offerUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	update := service.OfferUpdate{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
		IsActive: req.IsActive,
	}
	if req.Kind != nil {
		kind := model.OfferKind(*req.Kind)
		update.Kind = &kind
	}
	if req.Value != nil {
		value, err := decimal.NewFromString(*req.Value)
		if err != nil {
			writeError(w, errors.Wrap(model.ErrInvalidRequest, "bad value"))
			return
		}
		update.Value = &value
	}
	if req.ProductIDs != nil {
		update.ProductIDs, err = parseIDs(req.ProductIDs)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	if req.CategoryIDs != nil {
		update.CategoryIDs, err = parseIDs(req.CategoryIDs)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	offer, err := h.services.Offers.UpdateOffer(r.Context(), id, update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offer": toOfferJSON(*offer)})
}

func (h *handler) deleteOffer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Offers.DeleteOffer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Orders.UpdateStatus(r.Context(), id, model.OrderStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["ID"])
	if err != nil {
		return uuid.Nil, errors.Wrap(model.ErrInvalidRequest, "bad id in path")
	}
	return id, nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, errors.Wrap(model.ErrInvalidRequest, "bad id in list")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func decodeBody(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Wrap(model.ErrInvalidRequest, "malformed JSON body")
	}
	return nil
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}
