package economy

import (
	"context"
	"fmt"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

// CreateEnterpriseAccount opens the ledger side of an enterprise. It is
// never created lazily: only staff flows call this, alongside the bank
// profile creation.
func (s *Service) CreateEnterpriseAccount(entID, name, ownerID string) (*models.EnterpriseAccount, error) {
	var out *models.EnterpriseAccount
	err := s.store.Mutate(func(f *File) error {
		if _, ok := f.Enterprises[entID]; ok {
			return fmt.Errorf("enterprise ledger %s: %w", entID, models.ErrEnterpriseExists)
		}
		now := s.now().UTC()
		acc := &models.EnterpriseAccount{
			ID:        entID,
			Name:      name,
			OwnerID:   ownerID,
			CreatedAt: now,
			UpdatedAt: now,
			Members:   []string{},
		}
		f.Enterprises[entID] = acc
		out = acc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetEnterpriseAccount returns a snapshot of the enterprise ledger.
func (s *Service) GetEnterpriseAccount(entID string) (*models.EnterpriseAccount, error) {
	var out *models.EnterpriseAccount
	s.store.View(func(f *File) {
		if acc, ok := f.Enterprises[entID]; ok {
			out = acc.Clone()
		}
	})
	if out == nil {
		return nil, fmt.Errorf("enterprise ledger %s: %w", entID, models.ErrNotFound)
	}
	return out, nil
}

// EnterpriseBalance returns the cash/bank/total read model.
func (s *Service) EnterpriseBalance(entID string) (models.BalanceSnapshot, error) {
	acc, err := s.GetEnterpriseAccount(entID)
	if err != nil {
		return models.BalanceSnapshot{}, err
	}
	return models.BalanceSnapshot{
		Cash:  acc.Balances.Cash,
		Bank:  acc.Balances.Bank,
		Total: acc.Balances.Cash + acc.Balances.Bank,
	}, nil
}

// AddEnterpriseMoney applies a signed delta to one side of the
// enterprise ledger, bank by default at call sites.
func (s *Service) AddEnterpriseMoney(ctx context.Context, entID string, amount int64, kind models.BalanceKind, opts AdjustOptions) (*models.EnterpriseAccount, error) {
	if amount == 0 {
		return nil, models.ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if err := s.gate.CheckEnterprise(entID, true); err != nil {
		return nil, err
	}

	var out *models.EnterpriseAccount
	var after int64
	err := s.store.Mutate(func(f *File) error {
		acc, ok := f.Enterprises[entID]
		if !ok {
			return fmt.Errorf("enterprise ledger %s: %w", entID, models.ErrNotFound)
		}
		before := acc.Balances.Get(kind)
		after = before + amount
		if after < 0 {
			return fmt.Errorf("%s of enterprise %s: %w", kind, entID, models.ErrInsufficientFunds)
		}
		acc.Balances.Set(kind, after)

		if amount > 0 {
			acc.Stats.EarnedTotal += amount
		} else {
			acc.Stats.SpentTotal += -amount
		}
		if opts.Reason != "" {
			acc.Meta.LastReasons = pushReason(acc.Meta.LastReasons, models.ReasonEntry{
				Reason: opts.Reason,
				Amount: amount,
				Kind:   kind,
				At:     s.now().UTC(),
			})
		}
		acc.UpdatedAt = s.now().UTC()
		out = acc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEnterprise(entID, models.HistoryEntry{
		Type:         history.TypeAdjustment,
		Amount:       amount,
		BalanceAfter: after,
		Description:  opts.Reason,
		ActorID:      opts.ActorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.BalanceAdjusted, events.TransactionCreatedEvent{
		EnterpriseID: entID,
		Type:         history.TypeAdjustment,
		Kind:         string(kind),
		Amount:       amount,
		BalanceAfter: after,
		ActorID:      opts.ActorID,
	})
	return out, nil
}

// EnterpriseTransferResult is the post-transfer view of both ledgers.
type EnterpriseTransferResult struct {
	Amount     int64                     `json:"amount"`
	User       *models.UserAccount       `json:"user"`
	Enterprise *models.EnterpriseAccount `json:"enterprise"`
}

// TransferUserToEnterprise pays an enterprise from a user's balance.
// The enterprise is credited on its bank side. Both ledgers live in the
// economy aggregate, so the two legs commit in one critical section.
func (s *Service) TransferUserToEnterprise(ctx context.Context, userID, entID string, amount int64, sourceKind models.BalanceKind, actorID string) (*EnterpriseTransferResult, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !sourceKind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if err := s.gate.CheckUser(userID, true); err != nil {
		return nil, err
	}
	if err := s.gate.CheckEnterprise(entID, true); err != nil {
		return nil, err
	}

	res := &EnterpriseTransferResult{Amount: amount}
	var userAfter, entAfter int64
	err := s.store.Mutate(func(f *File) error {
		user := s.accountLocked(f, userID)
		ent, ok := f.Enterprises[entID]
		if !ok {
			return fmt.Errorf("enterprise ledger %s: %w", entID, models.ErrNotFound)
		}
		if user.Flags.Blacklisted {
			return models.ErrBlacklisted
		}
		if user.Wallet.Get(sourceKind) < amount {
			return fmt.Errorf("%s of %s: %w", sourceKind, userID, models.ErrInsufficientFunds)
		}

		now := s.now().UTC()
		user.Wallet.Set(sourceKind, user.Wallet.Get(sourceKind)-amount)
		user.Stats.SpentTotal += amount
		user.Stats.TransfersOut += amount
		user.UpdatedAt = now

		ent.Balances.Bank += amount
		ent.Stats.EarnedTotal += amount
		ent.Meta.LastReasons = pushReason(ent.Meta.LastReasons, models.ReasonEntry{
			Reason: fmt.Sprintf("Paiement joueur %s", userID),
			Amount: amount,
			Kind:   models.KindBank,
			At:     now,
		})
		ent.UpdatedAt = now

		userAfter = user.Wallet.Get(sourceKind)
		entAfter = ent.Balances.Bank
		res.User = user.Clone()
		res.Enterprise = ent.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordUser(userID, models.HistoryEntry{
		Type:         history.TypeEnterpriseTransfer,
		Amount:       -amount,
		BalanceAfter: userAfter,
		TargetType:   "enterprise",
		TargetID:     entID,
		ActorID:      actorID,
	})
	s.recordEnterprise(entID, models.HistoryEntry{
		Type:         history.TypeTransferIn,
		Amount:       amount,
		BalanceAfter: entAfter,
		TargetType:   "user",
		TargetID:     userID,
		ActorID:      actorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		FromID: userID,
		ToID:   entID,
		Kind:   string(sourceKind),
		Amount: amount,
	})
	return res, nil
}

// TransferEnterpriseToUser pays a user (salary, for instance) from the
// enterprise bank balance.
func (s *Service) TransferEnterpriseToUser(ctx context.Context, entID, userID string, amount int64, targetKind models.BalanceKind, actorID string) (*EnterpriseTransferResult, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !targetKind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if err := s.gate.CheckEnterprise(entID, true); err != nil {
		return nil, err
	}
	if err := s.gate.CheckUser(userID, true); err != nil {
		return nil, err
	}

	res := &EnterpriseTransferResult{Amount: amount}
	var userAfter, entAfter int64
	err := s.store.Mutate(func(f *File) error {
		ent, ok := f.Enterprises[entID]
		if !ok {
			return fmt.Errorf("enterprise ledger %s: %w", entID, models.ErrNotFound)
		}
		user := s.accountLocked(f, userID)
		if user.Flags.Blacklisted {
			return models.ErrBlacklisted
		}
		if ent.Balances.Bank < amount {
			return fmt.Errorf("bank of enterprise %s: %w", entID, models.ErrInsufficientFunds)
		}

		now := s.now().UTC()
		ent.Balances.Bank -= amount
		ent.Stats.SpentTotal += amount
		ent.UpdatedAt = now

		user.Wallet.Set(targetKind, user.Wallet.Get(targetKind)+amount)
		user.Stats.EarnedTotal += amount
		user.Stats.TransfersIn += amount
		user.Meta.LastReasons = pushReason(user.Meta.LastReasons, models.ReasonEntry{
			Reason: fmt.Sprintf("Salaire / paiement entreprise %s", entID),
			Amount: amount,
			Kind:   targetKind,
			At:     now,
		})
		user.UpdatedAt = now

		userAfter = user.Wallet.Get(targetKind)
		entAfter = ent.Balances.Bank
		res.User = user.Clone()
		res.Enterprise = ent.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordEnterprise(entID, models.HistoryEntry{
		Type:         history.TypeTransferOut,
		Amount:       -amount,
		BalanceAfter: entAfter,
		TargetType:   "user",
		TargetID:     userID,
		ActorID:      actorID,
	})
	s.recordUser(userID, models.HistoryEntry{
		Type:         history.TypeTransferIn,
		Amount:       amount,
		BalanceAfter: userAfter,
		TargetType:   "enterprise",
		TargetID:     entID,
		ActorID:      actorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		FromID: entID,
		ToID:   userID,
		Kind:   string(targetKind),
		Amount: amount,
	})
	return res, nil
}
