package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopfront/catalog_api/internal/notification"
)

// Service exposes owner-scoped product operations.
type Service struct {
	repo     Repository
	notifier notification.Notifier
}

// NewService builds a product service. notifier may be nil.
func NewService(repo Repository, notifier notification.Notifier) *Service {
	return &Service{repo: repo, notifier: notifier}
}

// Create stores fields for ownerID. Reserved keys in fields are ignored.
func (s *Service) Create(ctx context.Context, ownerID string, fields map[string]any) (Product, error) {
	p, err := s.repo.Create(ctx, Product{OwnerID: ownerID, Fields: sanitize(fields)})
	if err != nil {
		return Product{}, err
	}
	s.notify(ctx, notification.KindProductCreated, p.OwnerID, p.ID)
	return p, nil
}

// List returns every product owned by ownerID. The result is never nil.
func (s *Service) List(ctx context.Context, ownerID string) ([]Product, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns ErrNotFound when the product is missing or owned by someone else.
func (s *Service) Get(ctx context.Context, ownerID, id string) (Product, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Update merges patch into the owned product. Not owning the product is a no-op.
func (s *Service) Update(ctx context.Context, ownerID, id string, patch map[string]any) (UpdateResult, error) {
	patch = sanitize(patch)
	if len(patch) == 0 {
		if _, err := s.repo.Get(ctx, ownerID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return UpdateResult{}, nil
			}
			return UpdateResult{}, err
		}
		return UpdateResult{Matched: 1}, nil
	}
	res, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return UpdateResult{}, err
	}
	if res.Modified > 0 {
		s.notify(ctx, notification.KindProductUpdated, ownerID, id)
	}
	return res, nil
}

// Delete removes the owned product. Not owning the product deletes nothing.
func (s *Service) Delete(ctx context.Context, ownerID, id string) (DeleteResult, error) {
	res, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return DeleteResult{}, err
	}
	if res.Deleted > 0 {
		s.notify(ctx, notification.KindProductDeleted, ownerID, id)
	}
	return res, nil
}

// Search returns owned products whose name, company or category contains key,
// ignoring case.
func (s *Service) Search(ctx context.Context, ownerID, key string) ([]Product, error) {
	return s.repo.Search(ctx, ownerID, key)
}

func (s *Service) notify(ctx context.Context, kind, ownerID, productID string) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        kind,
		Destination: ownerID,
		Body:        fmt.Sprintf("product %s", productID),
	})
}
