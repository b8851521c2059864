package model

import "context"

// RepositoryProvider hands out repositories bound to one unit of work.
type RepositoryProvider interface {
	Products() ProductRepository
	Offers() OfferRepository
	Orders() OrderRepository
}

// TransactionalClient runs fn inside a single store transaction. Every
// repository obtained from the provider shares that transaction; an error
// from fn rolls the whole unit back, a failed commit surfaces wrapped in
// ErrTransactionFailure.
type TransactionalClient interface {
	Transact(ctx context.Context, fn func(provider RepositoryProvider) error) error
}
