package bank

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/utils"
)

// CreateEnterprise registers a business account for ownerID. One
// enterprise per owner: a second creation is rejected. The generated
// display account number is unique across enterprises.
func (s *Service) CreateEnterprise(ctx context.Context, ownerID, name string) (*models.Enterprise, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Entreprise"
	}

	var out *models.Enterprise
	err := s.store.Mutate(func(f *File) error {
		for _, e := range f.Enterprises {
			if e.OwnerID == ownerID {
				return models.ErrEnterpriseExists
			}
		}

		accountNumber := utils.GenerateAccountNumber()
		for taken(f, accountNumber) {
			accountNumber = utils.GenerateAccountNumber()
		}

		now := s.now().UTC()
		ent := &models.Enterprise{
			ID:            utils.GenerateID("ent"),
			OwnerID:       ownerID,
			Name:          name,
			AccountNumber: accountNumber,
			Status:        models.StatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
			History:       []models.HistoryEntry{},
		}
		f.Enterprises[ent.ID] = ent
		out = ent.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.publisher.Publish(ctx, events.BankEventsStream, events.EnterpriseCreated, events.EnterpriseCreatedEvent{
		EnterpriseID:  out.ID,
		OwnerID:       out.OwnerID,
		Name:          out.Name,
		AccountNumber: out.AccountNumber,
	}); err != nil {
		log.Printf("Failed to publish enterprise.created event: %v", err)
	}
	return out, nil
}

func taken(f *File, accountNumber string) bool {
	for _, e := range f.Enterprises {
		if e.AccountNumber == accountNumber {
			return true
		}
	}
	return false
}

// GetEnterprise returns a snapshot by enterprise id.
func (s *Service) GetEnterprise(entID string) (*models.Enterprise, error) {
	var out *models.Enterprise
	s.store.View(func(f *File) {
		if e, ok := f.Enterprises[entID]; ok {
			out = e.Clone()
		}
	})
	if out == nil {
		return nil, fmt.Errorf("enterprise %s: %w", entID, models.ErrNotFound)
	}
	return out, nil
}

// GetEnterpriseByOwner returns the owner's enterprise, if any.
func (s *Service) GetEnterpriseByOwner(ownerID string) (*models.Enterprise, error) {
	var out *models.Enterprise
	s.store.View(func(f *File) {
		for _, e := range f.Enterprises {
			if e.OwnerID == ownerID {
				out = e.Clone()
				return
			}
		}
	})
	if out == nil {
		return nil, fmt.Errorf("enterprise of %s: %w", ownerID, models.ErrNotFound)
	}
	return out, nil
}

// ResolveEnterprise accepts either an enterprise id or an owner id.
// No match is a terminal ErrNotFound, never a retry.
func (s *Service) ResolveEnterprise(ref string) (*models.Enterprise, error) {
	if ent, err := s.GetEnterprise(ref); err == nil {
		return ent, nil
	}
	return s.GetEnterpriseByOwner(ref)
}

// SetEnterpriseStatus is staff tooling, mirroring SetUserStatus.
func (s *Service) SetEnterpriseStatus(ctx context.Context, entID string, status models.AccountStatus, actorID string) (*models.Enterprise, error) {
	var out *models.Enterprise
	err := s.store.Mutate(func(f *File) error {
		e, ok := f.Enterprises[entID]
		if !ok {
			return fmt.Errorf("enterprise %s: %w", entID, models.ErrNotFound)
		}
		e.Status = status
		e.UpdatedAt = s.now().UTC()
		out = e.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.BankEventsStream, events.AccountStatusChanged, events.AccountStatusChangedEvent{
		EnterpriseID: entID,
		Status:       string(status),
		ActorID:      actorID,
	}); err != nil {
		log.Printf("Failed to publish account.status_changed event: %v", err)
	}
	return out, nil
}

// AddEnterpriseHistory appends one journal entry to the enterprise.
func (s *Service) AddEnterpriseHistory(entID string, e models.HistoryEntry) error {
	return s.store.Mutate(func(f *File) error {
		ent, ok := f.Enterprises[entID]
		if !ok {
			return fmt.Errorf("enterprise %s: %w", entID, models.ErrNotFound)
		}
		ent.History = history.Append(ent.History, e)
		ent.UpdatedAt = s.now().UTC()
		return nil
	})
}

// CheckUser implements the economy gate: closed accounts block every
// operation, frozen accounts block mutating ones, blacklist is handled
// by the ledger itself.
func (s *Service) CheckUser(userID string, mutating bool) error {
	p := s.GetOrCreateProfile(userID)
	switch {
	case p.Status == models.StatusClosed:
		return models.ErrAccountClosed
	case mutating && p.Status == models.StatusFrozen:
		return models.ErrAccountFrozen
	}
	return nil
}

// CheckEnterprise implements the economy gate for enterprise accounts.
func (s *Service) CheckEnterprise(entID string, mutating bool) error {
	e, err := s.GetEnterprise(entID)
	if err != nil {
		return err
	}
	switch {
	case e.Status == models.StatusClosed:
		return models.ErrAccountClosed
	case mutating && e.Status == models.StatusFrozen:
		return models.ErrAccountFrozen
	}
	return nil
}
