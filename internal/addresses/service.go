package addresses

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/RohithAchar/oxm-sub002/internal/platform/httpx"
	"github.com/RohithAchar/oxm-sub002/internal/shared"
)

// Service implements address book operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the caller's addresses.
func (s *Service) List(ctx context.Context, principal shared.Principal) ([]Address, error) {
	items, err := s.repo.List(ctx, principal.ProfileID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Address{}
	}
	return items, nil
}

// Create stores an address. The first address always becomes the default.
func (s *Service) Create(ctx context.Context, principal shared.Principal, in AddressInput) (*Address, error) {
	a, err := normalize(in)
	if err != nil {
		return nil, err
	}
	a.ProfileID = principal.ProfileID

	var created *Address
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockProfile(ctx, principal.ProfileID); err != nil {
			return err
		}
		n, err := tx.Count(ctx, principal.ProfileID)
		if err != nil {
			return err
		}
		if n == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := tx.ClearDefault(ctx, principal.ProfileID); err != nil {
				return err
			}
		}
		created, err = tx.Insert(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces an owned address. The default flag can only be moved, not
// dropped: use another address to change the default.
func (s *Service) Update(ctx context.Context, principal shared.Principal, id uuid.UUID, in AddressInput) (*Address, error) {
	current, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	a, err := normalize(in)
	if err != nil {
		return nil, err
	}
	a.ID = current.ID
	a.ProfileID = current.ProfileID
	a.IsDefault = a.IsDefault || current.IsDefault

	var updated *Address
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockProfile(ctx, principal.ProfileID); err != nil {
			return err
		}
		if a.IsDefault && !current.IsDefault {
			if err := tx.ClearDefault(ctx, principal.ProfileID); err != nil {
				return err
			}
		}
		var err error
		updated, err = tx.Update(ctx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetDefault marks an owned address as the default.
func (s *Service) SetDefault(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Address, error) {
	current, err := s.owned(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	if current.IsDefault {
		return current, nil
	}
	current.IsDefault = true
	var updated *Address
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockProfile(ctx, principal.ProfileID); err != nil {
			return err
		}
		if err := tx.ClearDefault(ctx, principal.ProfileID); err != nil {
			return err
		}
		var err error
		updated, err = tx.Update(ctx, *current)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an owned address, promoting the newest remaining one when
// the default goes away.
func (s *Service) Delete(ctx context.Context, principal shared.Principal, id uuid.UUID) error {
	current, err := s.owned(ctx, principal, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockProfile(ctx, principal.ProfileID); err != nil {
			return err
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		if current.IsDefault {
			return tx.PromoteLatest(ctx, principal.ProfileID)
		}
		return nil
	})
}

func (s *Service) owned(ctx context.Context, principal shared.Principal, id uuid.UUID) (*Address, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.Owns(a.ProfileID) {
		return nil, fmt.Errorf("address belongs to another profile: %w", httpx.ErrForbidden)
	}
	return a, nil
}
