package tests

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/service"
)

var _ model.ProductRepository = &mockProductRepository{}

type mockProductRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Product
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{store: make(map[uuid.UUID]*model.Product)}
}

func (r *mockProductRepository) add(product model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[product.ID] = cloneProduct(&product)
}

func (r *mockProductRepository) stockOf(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store[id].StockQty
}

func (r *mockProductRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *mockProductRepository) Create(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.store {
		if existing.SKU == product.SKU {
			return model.ErrSKUAlreadyExists
		}
	}
	r.store[product.ID] = cloneProduct(product)
	return nil
}

func (r *mockProductRepository) Update(_ context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[product.ID]; !ok {
		return model.ErrProductNotFound
	}
	r.store[product.ID] = cloneProduct(product)
	return nil
}

func (r *mockProductRepository) Find(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.store[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	return cloneProduct(product), nil
}

func (r *mockProductRepository) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, product := range r.store {
		if product.SKU == sku {
			return cloneProduct(product), nil
		}
	}
	return nil, model.ErrProductNotFound
}

func (r *mockProductRepository) FindByIDs(_ context.Context, ids []uuid.UUID, activeOnly bool) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		product, ok := r.store[id]
		if !ok || (activeOnly && !product.IsActive) {
			continue
		}
		out = append(out, *cloneProduct(product))
	}
	return out, nil
}

func (r *mockProductRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	return r.FindByIDs(ctx, ids, true)
}

func (r *mockProductRepository) DecrementStock(_ context.Context, id uuid.UUID, amount int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.store[id]
	if !ok {
		return 0, model.ErrProductNotFound
	}
	next := product.StockQty - amount
	if next < 0 {
		next = 0
	}
	product.StockQty = next
	return next, nil
}

func (r *mockProductRepository) Search(_ context.Context, filter model.ProductFilter) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, product := range r.store {
		if filter.ActiveOnly && !product.IsActive {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(product.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.BrandID != nil && (product.BrandID == nil || *product.BrandID != *filter.BrandID) {
			continue
		}
		out = append(out, *cloneProduct(product))
	}
	return out, nil
}

func (r *mockProductRepository) snapshot() map[uuid.UUID]*model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[uuid.UUID]*model.Product, len(r.store))
	for id, product := range r.store {
		snap[id] = cloneProduct(product)
	}
	return snap
}

func (r *mockProductRepository) restore(snap map[uuid.UUID]*model.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = snap
}

func cloneProduct(p *model.Product) *model.Product {
	clone := *p
	if p.BrandID != nil {
		id := *p.BrandID
		clone.BrandID = &id
	}
	if p.Features != nil {
		clone.Features = make(map[string]string, len(p.Features))
		for k, v := range p.Features {
			clone.Features[k] = v
		}
	}
	return &clone
}

var _ model.OfferRepository = &mockOfferRepository{}

type mockOfferRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Offer
}

func newMockOfferRepository() *mockOfferRepository {
	return &mockOfferRepository{store: make(map[uuid.UUID]*model.Offer)}
}

func (r *mockOfferRepository) add(offer model.Offer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[offer.ID] = cloneOffer(&offer)
}

func (r *mockOfferRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *mockOfferRepository) Create(_ context.Context, offer *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[offer.ID] = cloneOffer(offer)
	return nil
}

func (r *mockOfferRepository) Update(_ context.Context, offer *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[offer.ID]; !ok {
		return model.ErrOfferNotFound
	}
	r.store[offer.ID] = cloneOffer(offer)
	return nil
}

func (r *mockOfferRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[id]; !ok {
		return model.ErrOfferNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *mockOfferRepository) Find(_ context.Context, id uuid.UUID) (*model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	offer, ok := r.store[id]
	if !ok {
		return nil, model.ErrOfferNotFound
	}
	return cloneOffer(offer), nil
}

func (r *mockOfferRepository) FindActiveFor(_ context.Context, productID, categoryID uuid.UUID, now time.Time) ([]model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Offer
	for _, offer := range r.store {
		if offer.ActiveAt(now) && offer.Targets(productID, categoryID) {
			out = append(out, *cloneOffer(offer))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *mockOfferRepository) ListActive(_ context.Context, now time.Time) ([]model.Offer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Offer
	for _, offer := range r.store {
		if offer.ActiveAt(now) {
			out = append(out, *cloneOffer(offer))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *mockOfferRepository) snapshot() map[uuid.UUID]*model.Offer {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[uuid.UUID]*model.Offer, len(r.store))
	for id, offer := range r.store {
		snap[id] = cloneOffer(offer)
	}
	return snap
}

func (r *mockOfferRepository) restore(snap map[uuid.UUID]*model.Offer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = snap
}

func cloneOffer(o *model.Offer) *model.Offer {
	clone := *o
	clone.ProductIDs = append([]uuid.UUID(nil), o.ProductIDs...)
	clone.CategoryIDs = append([]uuid.UUID(nil), o.CategoryIDs...)
	return &clone
}

var _ model.OrderRepository = &mockOrderRepository{}

type mockOrderRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{store: make(map[uuid.UUID]*model.Order)}
}

func (r *mockOrderRepository) NextID() (uuid.UUID, error) {
	return uuid.New(), nil
}

func (r *mockOrderRepository) Create(_ context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store[order.ID] = cloneOrder(order)
	return nil
}

func (r *mockOrderRepository) Find(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.store[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *mockOrderRepository) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for _, order := range r.store {
		if order.CustomerID != customerID {
			continue
		}
		summary := *cloneOrder(order)
		summary.Lines = nil
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *mockOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.store[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	order.Status = status
	return nil
}

func (r *mockOrderRepository) snapshot() map[uuid.UUID]*model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := make(map[uuid.UUID]*model.Order, len(r.store))
	for id, order := range r.store {
		snap[id] = cloneOrder(order)
	}
	return snap
}

func (r *mockOrderRepository) restore(snap map[uuid.UUID]*model.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.store = snap
}

func cloneOrder(o *model.Order) *model.Order {
	clone := *o
	clone.Lines = append([]model.OrderLine(nil), o.Lines...)
	return &clone
}

var _ model.CategoryRepository = &mockCategoryRepository{}

type mockCategoryRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{store: make(map[uuid.UUID]*model.Category)}
}

func (r *mockCategoryRepository) add(category model.Category) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := category
	r.store[category.ID] = &c
}

func (r *mockCategoryRepository) Find(_ context.Context, id uuid.UUID) (*model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	category, ok := r.store[id]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}
	c := *category
	return &c, nil
}

func (r *mockCategoryRepository) ListActive(_ context.Context) ([]model.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Category
	for _, category := range r.store {
		if category.IsActive {
			out = append(out, *category)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ model.BrandRepository = &mockBrandRepository{}

type mockBrandRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Brand
}

func newMockBrandRepository() *mockBrandRepository {
	return &mockBrandRepository{store: make(map[uuid.UUID]*model.Brand)}
}

func (r *mockBrandRepository) add(brand model.Brand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := brand
	r.store[brand.ID] = &b
}

func (r *mockBrandRepository) Find(_ context.Context, id uuid.UUID) (*model.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	brand, ok := r.store[id]
	if !ok {
		return nil, model.ErrBrandNotFound
	}
	b := *brand
	return &b, nil
}

func (r *mockBrandRepository) ListActive(_ context.Context) ([]model.Brand, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Brand
	for _, brand := range r.store {
		if brand.IsActive {
			out = append(out, *brand)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

var _ model.RepositoryProvider = &mockRepositoryProvider{}

type mockRepositoryProvider struct {
	products *mockProductRepository
	offers   *mockOfferRepository
	orders   *mockOrderRepository
}

func (p *mockRepositoryProvider) Products() model.ProductRepository { return p.products }
func (p *mockRepositoryProvider) Offers() model.OfferRepository { return p.offers }
func (p *mockRepositoryProvider) Orders() model.OrderRepository { return p.orders }

var _ model.TransactionalClient = &mockTransactionalClient{}

// mockTransactionalClient serializes units of work with a mutex, standing in
// for the row locking a real store provides, and restores a snapshot on
// failure to mimic rollback.
type mockTransactionalClient struct {
	mu       sync.Mutex
	provider *mockRepositoryProvider
}

func newMockTransactionalClient(provider *mockRepositoryProvider) *mockTransactionalClient {
	return &mockTransactionalClient{provider: provider}
}

func (c *mockTransactionalClient) Transact(_ context.Context, fn func(provider model.RepositoryProvider) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	productSnap := c.provider.products.snapshot()
	offerSnap := c.provider.offers.snapshot()
	orderSnap := c.provider.orders.snapshot()

	if err := fn(c.provider); err != nil {
		c.provider.products.restore(productSnap)
		c.provider.offers.restore(offerSnap)
		c.provider.orders.restore(orderSnap)
		return err
	}
	return nil
}

type mockEventDispatcher struct {
	mu     sync.Mutex
	events []service.Event
}

func (d *mockEventDispatcher) Dispatch(event service.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *mockEventDispatcher) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = nil
}

func (d *mockEventDispatcher) Events() []service.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]service.Event(nil), d.events...)
}
