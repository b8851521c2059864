package mysql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

const mysqlErrDuplicateEntry = 1062

var productColumns = []string{
	"id", "name", "sku", "price_cents", "stock_qty", "is_active",
	"category_id", "brand_id", "features", "created_at", "updated_at",
}

type productRow struct {
	ID         uuid.UUID     `db:"id"`
	Name       string        `db:"name"`
	SKU        string        `db:"sku"`
	PriceCents int64         `db:"price_cents"`
	StockQty   int           `db:"stock_qty"`
	IsActive   bool          `db:"is_active"`
	CategoryID uuid.UUID     `db:"category_id"`
	BrandID    uuid.NullUUID `db:"brand_id"`
	Features   featuresJSON  `db:"features"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

func (r productRow) toModel() model.Product {
	product := model.Product{
		ID:         r.ID,
		Name:       r.Name,
		SKU:        r.SKU,
		PriceCents: r.PriceCents,
		StockQty:   r.StockQty,
		IsActive:   r.IsActive,
		CategoryID: r.CategoryID,
		Features:   r.Features,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.BrandID.Valid {
		id := r.BrandID.UUID
		product.BrandID = &id
	}
	return product
}

// featuresJSON maps the free-form feature attributes onto a nullable JSON column.
type featuresJSON map[string]string

func (f featuresJSON) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

func (f *featuresJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return errors.Errorf("unsupported features column type %T", src)
	}
}

var _ model.ProductRepository = &productRepository{}

type productRepository struct {
	q sqlx.ExtContext
}

func NewProductRepository(q sqlx.ExtContext) model.ProductRepository {
	return &productRepository{q: q}
}

func (r *productRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	var brandID uuid.NullUUID
	if product.BrandID != nil {
		brandID = uuid.NullUUID{UUID: *product.BrandID, Valid: true}
	}
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO products (id, name, sku, price_cents, stock_qty, is_active, category_id, brand_id, features, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.SKU, product.PriceCents, product.StockQty,
		product.IsActive, product.CategoryID, brandID, featuresJSON(product.Features),
		product.CreatedAt, product.UpdatedAt,
	)
	if isDuplicateEntry(err) {
		return model.ErrSKUAlreadyExists
	}
	return errors.Wrap(err, "inserting product")
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	var brandID uuid.NullUUID
	if product.BrandID != nil {
		brandID = uuid.NullUUID{UUID: *product.BrandID, Valid: true}
	}
	res, err := r.q.ExecContext(ctx,
		`UPDATE products
		 SET name = ?, sku = ?, price_cents = ?, stock_qty = ?, is_active = ?,
		     category_id = ?, brand_id = ?, features = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name, product.SKU, product.PriceCents, product.StockQty, product.IsActive,
		product.CategoryID, brandID, featuresJSON(product.Features), product.UpdatedAt,
		product.ID,
	)
	if isDuplicateEntry(err) {
		return model.ErrSKUAlreadyExists
	}
	if err != nil {
		return errors.Wrap(err, "updating product")
	}
	return checkFound(res, model.ErrProductNotFound)
}

func (r *productRepository) Find(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return r.findOne(ctx, "WHERE id = ?", id)
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.findOne(ctx, "WHERE sku = ?", sku)
}

func (r *productRepository) findOne(ctx context.Context, where string, arg interface{}) (*model.Product, error) {
	var row productRow
	err := sqlx.GetContext(ctx, r.q,
		&row, `SELECT id, name, sku, price_cents, stock_qty, is_active, category_id, brand_id, features, created_at, updated_at
		 FROM products `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting product")
	}
	product := row.toModel()
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID, activeOnly bool) ([]model.Product, error) {
	return r.selectByIDs(ctx, ids, activeOnly, false)
}

// LockByIDs keeps the selected rows locked until the surrounding transaction
// ends, so a concurrent placement for the same products blocks on the stock
// check instead of racing the decrement.
func (r *productRepository) LockByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	return r.selectByIDs(ctx, ids, true, true)
}

func (r *productRepository) selectByIDs(ctx context.Context, ids []uuid.UUID, activeOnly, forUpdate bool) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id, name, sku, price_cents, stock_qty, is_active, category_id, brand_id, features, created_at, updated_at
	 FROM products WHERE id IN (?)`
	if activeOnly {
		query += " AND is_active = TRUE"
	}
	if forUpdate {
		query += " FOR UPDATE"
	}
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, errors.Wrap(err, "expanding product id list")
	}

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "selecting products by ids")
	}

	byID := make(map[uuid.UUID]productRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	// preserve the requested order
	out := make([]model.Product, 0, len(rows))
	for _, id := range ids {
		if row, ok := byID[id]; ok {
			out = append(out, row.toModel())
		}
	}
	return out, nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, amount int) (int, error) {
	_, err := r.q.ExecContext(ctx,
		`UPDATE products SET stock_qty = GREATEST(stock_qty - ?, 0), updated_at = ? WHERE id = ?`,
		amount, time.Now().UTC(), id,
	)
	if err != nil {
		return 0, errors.Wrap(err, "decrementing stock")
	}

	var qty int
	err = sqlx.GetContext(ctx, r.q, &qty, `SELECT stock_qty FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrProductNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "reading stock after decrement")
	}
	return qty, nil
}

func (r *productRepository) Search(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	qb := squirrel.Select(productColumns...).From("products").OrderBy("created_at DESC")
	if filter.ActiveOnly {
		qb = qb.Where(squirrel.Eq{"is_active": true})
	}
	if filter.Name != "" {
		qb = qb.Where(squirrel.Like{"name": "%" + filter.Name + "%"})
	}
	if filter.CategoryID != nil {
		qb = qb.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.BrandID != nil {
		qb = qb.Where(squirrel.Eq{"brand_id": *filter.BrandID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building product search query")
	}

	var rows []productRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "searching products")
	}
	out := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysqldriver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDuplicateEntry
}

// checkFound expects the statement to have touched exactly one row.
func checkFound(res sql.Result, notFound error) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "getting affected rows")
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
