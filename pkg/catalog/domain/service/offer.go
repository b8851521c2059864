package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DeemaAlothman/simple-shop/pkg/catalog/domain/model"
)

type NewOfferInput struct {
	Name        string
	Kind        model.OfferKind
	Value       decimal.Decimal
	StartsAt    time.Time
	EndsAt      time.Time
	IsActive    bool
	ProductIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
}

// OfferUpdate carries partial changes. Nil pointer fields keep the current
// value; a non-nil target slice replaces the whole target set, an empty
// non-nil slice clears it.
type OfferUpdate struct {
	Name        *string
	Kind        *model.OfferKind
	Value       *decimal.Decimal
	StartsAt    *time.Time
	EndsAt      *time.Time
	IsActive    *bool
	ProductIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
}

type OfferService interface {
	CreateOffer(ctx context.Context, input NewOfferInput) (*model.Offer, error)
	UpdateOffer(ctx context.Context, offerID uuid.UUID, update OfferUpdate) (*model.Offer, error)
	DeleteOffer(ctx context.Context, offerID uuid.UUID) error
	ListActive(ctx context.Context, now time.Time) ([]model.Offer, error)
}

func NewOfferService(client model.TransactionalClient, offers model.OfferRepository, dispatcher EventDispatcher) OfferService {
	return &offerService{client: client, offers: offers, dispatcher: dispatcher}
}

type offerService struct {
	client     model.TransactionalClient
	offers     model.OfferRepository
	dispatcher EventDispatcher
}

func (s *offerService) CreateOffer(ctx context.Context, input NewOfferInput) (*model.Offer, error) {
	if err := validateOfferTerms(input.Kind, input.Value, input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}

	offerID, err := s.offers.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	offer := &model.Offer{
		ID:          offerID,
		Name:        input.Name,
		Kind:        input.Kind,
		Value:       input.Value,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
		IsActive:    input.IsActive,
		ProductIDs:  input.ProductIDs,
		CategoryIDs: input.CategoryIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.client.Transact(ctx, func(r model.RepositoryProvider) error {
		return r.Offers().Create(ctx, offer)
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OfferCreated{OfferID: offerID, Name: offer.Name, Kind: offer.Kind})
	return offer, nil
}

func (s *offerService) UpdateOffer(ctx context.Context, offerID uuid.UUID, update OfferUpdate) (*model.Offer, error) {
	var offer *model.Offer
	err := s.client.Transact(ctx, func(r model.RepositoryProvider) error {
		current, err := r.Offers().Find(ctx, offerID)
		if err != nil {
			return err
		}

		if update.Name != nil {
			current.Name = *update.Name
		}
		if update.Kind != nil {
			current.Kind = *update.Kind
		}
		if update.Value != nil {
			current.Value = *update.Value
		}
		if update.StartsAt != nil {
			current.StartsAt = *update.StartsAt
		}
		if update.EndsAt != nil {
			current.EndsAt = *update.EndsAt
		}
		if update.IsActive != nil {
			current.IsActive = *update.IsActive
		}
		if update.ProductIDs != nil {
			current.ProductIDs = update.ProductIDs
		}
		if update.CategoryIDs != nil {
			current.CategoryIDs = update.CategoryIDs
		}

		if err := validateOfferTerms(current.Kind, current.Value, current.StartsAt, current.EndsAt); err != nil {
			return err
		}

		current.UpdatedAt = time.Now().UTC()
		if err := r.Offers().Update(ctx, current); err != nil {
			return err
		}
		offer = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OfferUpdated{OfferID: offerID})
	return offer, nil
}

func (s *offerService) DeleteOffer(ctx context.Context, offerID uuid.UUID) error {
	err := s.client.Transact(ctx, func(r model.RepositoryProvider) error {
		return r.Offers().Delete(ctx, offerID)
	})
	if err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.OfferDeleted{OfferID: offerID})
	return nil
}

func (s *offerService) ListActive(ctx context.Context, now time.Time) ([]model.Offer, error) {
	return s.offers.ListActive(ctx, now)
}

func validateOfferTerms(kind model.OfferKind, value decimal.Decimal, startsAt, endsAt time.Time) error {
	if !kind.Valid() {
		return model.ErrInvalidOfferKind
	}
	if !value.IsPositive() {
		return model.ErrInvalidOfferValue
	}
	if kind == model.OfferPercent && value.GreaterThan(oneHundred) {
		return model.ErrInvalidOfferValue
	}
	if startsAt.After(endsAt) {
		return model.ErrInvalidOfferWindow
	}
	return nil
}
