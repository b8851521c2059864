package mysql

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

var _ model.TransactionalClient = &Client{}

// Client hands out repositories over the shared pool and runs transactional
// units of work over a dedicated connection.
type Client struct {
	db *sqlx.DB
}

func NewClient(db *sqlx.DB) *Client {
	return &Client{db: db}
}

func (c *Client) Products() model.ProductRepository { return NewProductRepository(c.db) }
func (c *Client) Offers() model.OfferRepository { return NewOfferRepository(c.db) }
func (c *Client) Orders() model.OrderRepository { return NewOrderRepository(c.db) }
func (c *Client) Categories() model.CategoryRepository { return NewCategoryRepository(c.db) }
func (c *Client) Brands() model.BrandRepository { return NewBrandRepository(c.db) }

func (c *Client) Transact(ctx context.Context, fn func(provider model.RepositoryProvider) error) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransactionFailure, err)
	}

	if err := fn(&txRepositoryProvider{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", model.ErrTransactionFailure, err)
	}
	return nil
}

type txRepositoryProvider struct {
	tx *sqlx.Tx
}

func (p *txRepositoryProvider) Products() model.ProductRepository { return NewProductRepository(p.tx) }
func (p *txRepositoryProvider) Offers() model.OfferRepository { return NewOfferRepository(p.tx) }
func (p *txRepositoryProvider) Orders() model.OrderRepository { return NewOrderRepository(p.tx) }
