package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

type orderRow struct {
	ID            uuid.UUID `db:"id"`
	CustomerID    uuid.UUID `db:"customer_id"`
	SubtotalCents int64     `db:"subtotal_cents"`
	DiscountCents int64     `db:"discount_cents"`
	TotalCents    int64     `db:"total_cents"`
	PaymentMethod string    `db:"payment_method"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r orderRow) toModel() model.Order {
	return model.Order{
		ID:            r.ID,
		CustomerID:    r.CustomerID,
		SubtotalCents: r.SubtotalCents,
		DiscountCents: r.DiscountCents,
		TotalCents:    r.TotalCents,
		PaymentMethod: r.PaymentMethod,
		Status:        model.OrderStatus(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

type orderLineRow struct {
	ID             uuid.UUID `db:"id"`
	OrderID        uuid.UUID `db:"order_id"`
	ProductID      uuid.UUID `db:"product_id"`
	LineNo         int       `db:"line_no"`
	NameSnapshot   string    `db:"name_snapshot"`
	SKUSnapshot    string    `db:"sku_snapshot"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	Qty            int       `db:"qty"`
	LineTotalCents int64     `db:"line_total_cents"`
}

var _ model.OrderRepository = &orderRepository{}

type orderRepository struct {
	q sqlx.ExtContext
}

func NewOrderRepository(q sqlx.ExtContext) model.OrderRepository {
	return &orderRepository{q: q}
}

func (r *orderRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO orders (id, customer_id, subtotal_cents, discount_cents, total_cents, payment_method, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.CustomerID, order.SubtotalCents, order.DiscountCents, order.TotalCents,
		order.PaymentMethod, string(order.Status), order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting order")
	}

	for i, line := range order.Lines {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO order_items (id, order_id, product_id, line_no, name_snapshot, sku_snapshot, unit_price_cents, qty, line_total_cents)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			line.ID, order.ID, line.ProductID, i, line.NameSnapshot, line.SKUSnapshot,
			line.UnitPriceCents, line.Qty, line.LineTotalCents,
		)
		if err != nil {
			return errors.Wrap(err, "inserting order item")
		}
	}
	return nil
}

func (r *orderRepository) Find(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var row orderRow
	err := sqlx.GetContext(ctx, r.q, &row,
		`SELECT id, customer_id, subtotal_cents, discount_cents, total_cents, payment_method, status, created_at, updated_at
		 FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting order")
	}

	var lineRows []orderLineRow
	err = sqlx.SelectContext(ctx, r.q, &lineRows,
		`SELECT id, order_id, product_id, line_no, name_snapshot, sku_snapshot, unit_price_cents, qty, line_total_cents
		 FROM order_items WHERE order_id = ? ORDER BY line_no`, id)
	if err != nil {
		return nil, errors.Wrap(err, "selecting order items")
	}

	order := row.toModel()
	order.Lines = make([]model.OrderLine, 0, len(lineRows))
	for _, lr := range lineRows {
		order.Lines = append(order.Lines, model.OrderLine{
			ID:             lr.ID,
			ProductID:      lr.ProductID,
			NameSnapshot:   lr.NameSnapshot,
			SKUSnapshot:    lr.SKUSnapshot,
			UnitPriceCents: lr.UnitPriceCents,
			Qty:            lr.Qty,
			LineTotalCents: lr.LineTotalCents,
		})
	}
	return &order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Order, error) {
	var rows []orderRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT id, customer_id, subtotal_cents, discount_cents, total_cents, payment_method, status, created_at, updated_at
		 FROM orders WHERE customer_id = ? ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, errors.Wrap(err, "listing orders")
	}

	out := make([]model.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), id)
	if err != nil {
		return errors.Wrap(err, "updating order status")
	}
	return checkFound(res, model.ErrOrderNotFound)
}
