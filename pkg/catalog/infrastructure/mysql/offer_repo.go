package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

const selectOfferColumns = `SELECT id, name, kind, value, starts_at, ends_at, is_active, created_at, updated_at FROM offers`

type offerRow struct {
	ID        uuid.UUID       `db:"id"`
	Name      string          `db:"name"`
	Kind      string          `db:"kind"`
	Value     decimal.Decimal `db:"value"`
	StartsAt  time.Time       `db:"starts_at"`
	EndsAt    time.Time       `db:"ends_at"`
	IsActive  bool            `db:"is_active"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r offerRow) toModel() model.Offer {
	return model.Offer{
		ID:        r.ID,
		Name:      r.Name,
		Kind:      model.OfferKind(r.Kind),
		Value:     r.Value,
		StartsAt:  r.StartsAt,
		EndsAt:    r.EndsAt,
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

var _ model.OfferRepository = &offerRepository{}

type offerRepository struct {
	q sqlx.ExtContext
}

func NewOfferRepository(q sqlx.ExtContext) model.OfferRepository {
	return &offerRepository{q: q}
}

func (r *offerRepository) NextID() (uuid.UUID, error) {
	return uuid.NewRandom()
}

func (r *offerRepository) Create(ctx context.Context, offer *model.Offer) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO offers (id, name, kind, value, starts_at, ends_at, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		offer.ID, offer.Name, string(offer.Kind), offer.Value, offer.StartsAt, offer.EndsAt,
		offer.IsActive, offer.CreatedAt, offer.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "inserting offer")
	}
	return r.insertTargets(ctx, offer)
}

func (r *offerRepository) Update(ctx context.Context, offer *model.Offer) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE offers SET name = ?, kind = ?, value = ?, starts_at = ?, ends_at = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		offer.Name, string(offer.Kind), offer.Value, offer.StartsAt, offer.EndsAt,
		offer.IsActive, offer.UpdatedAt, offer.ID,
	)
	if err != nil {
		return errors.Wrap(err, "updating offer")
	}
	if err := checkFound(res, model.ErrOfferNotFound); err != nil {
		return err
	}

	// replace-all target semantics
	if _, err := r.q.ExecContext(ctx, `DELETE FROM offer_product_targets WHERE offer_id = ?`, offer.ID); err != nil {
		return errors.Wrap(err, "clearing product targets")
	}
	if _, err := r.q.ExecContext(ctx, `DELETE FROM offer_category_targets WHERE offer_id = ?`, offer.ID); err != nil {
		return errors.Wrap(err, "clearing category targets")
	}
	return r.insertTargets(ctx, offer)
}

func (r *offerRepository) insertTargets(ctx context.Context, offer *model.Offer) error {
	for _, productID := range offer.ProductIDs {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO offer_product_targets (offer_id, product_id) VALUES (?, ?)`,
			offer.ID, productID)
		if err != nil {
			return errors.Wrap(err, "inserting product target")
		}
	}
	for _, categoryID := range offer.CategoryIDs {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO offer_category_targets (offer_id, category_id) VALUES (?, ?)`,
			offer.ID, categoryID)
		if err != nil {
			return errors.Wrap(err, "inserting category target")
		}
	}
	return nil
}

func (r *offerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// targets go with the offer via ON DELETE CASCADE
	res, err := r.q.ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "deleting offer")
	}
	return checkFound(res, model.ErrOfferNotFound)
}

func (r *offerRepository) Find(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var row offerRow
	err := sqlx.GetContext(ctx, r.q, &row, selectOfferColumns+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrOfferNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "selecting offer")
	}

	offers, err := r.attachTargets(ctx, []offerRow{row})
	if err != nil {
		return nil, err
	}
	return &offers[0], nil
}

func (r *offerRepository) FindActiveFor(ctx context.Context, productID, categoryID uuid.UUID, now time.Time) ([]model.Offer, error) {
	var rows []offerRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		`SELECT DISTINCT o.id, o.name, o.kind, o.value, o.starts_at, o.ends_at, o.is_active, o.created_at, o.updated_at
		 FROM offers o
		 LEFT JOIN offer_product_targets pt ON pt.offer_id = o.id
		 LEFT JOIN offer_category_targets ct ON ct.offer_id = o.id
		 WHERE o.is_active = TRUE AND o.starts_at <= ? AND o.ends_at >= ?
		   AND (pt.product_id = ? OR ct.category_id = ?)
		 ORDER BY o.id`,
		now, now, productID, categoryID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting active offers")
	}
	return r.attachTargets(ctx, rows)
}

func (r *offerRepository) ListActive(ctx context.Context, now time.Time) ([]model.Offer, error) {
	var rows []offerRow
	err := sqlx.SelectContext(ctx, r.q, &rows,
		selectOfferColumns+` WHERE is_active = TRUE AND starts_at <= ? AND ends_at >= ? ORDER BY id`,
		now, now,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing active offers")
	}
	return r.attachTargets(ctx, rows)
}

func (r *offerRepository) attachTargets(ctx context.Context, rows []offerRow) ([]model.Offer, error) {
	offers := make([]model.Offer, 0, len(rows))
	if len(rows) == 0 {
		return offers, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	type targetRow struct {
		OfferID  uuid.UUID `db:"offer_id"`
		TargetID uuid.UUID `db:"target_id"`
	}

	loadTargets := func(query string) (map[uuid.UUID][]uuid.UUID, error) {
		query, args, err := sqlx.In(query, ids)
		if err != nil {
			return nil, errors.Wrap(err, "expanding offer id list")
		}
		var targets []targetRow
		if err := sqlx.SelectContext(ctx, r.q, &targets, r.q.Rebind(query), args...); err != nil {
			return nil, errors.Wrap(err, "selecting offer targets")
		}
		byOffer := make(map[uuid.UUID][]uuid.UUID, len(targets))
		for _, t := range targets {
			byOffer[t.OfferID] = append(byOffer[t.OfferID], t.TargetID)
		}
		return byOffer, nil
	}

	productTargets, err := loadTargets(
		`SELECT offer_id, product_id AS target_id FROM offer_product_targets WHERE offer_id IN (?)`)
	if err != nil {
		return nil, err
	}
	categoryTargets, err := loadTargets(
		`SELECT offer_id, category_id AS target_id FROM offer_category_targets WHERE offer_id IN (?)`)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		offer := row.toModel()
		offer.ProductIDs = productTargets[row.ID]
		offer.CategoryIDs = categoryTargets[row.ID]
		offers = append(offers, offer)
	}
	return offers, nil
}
