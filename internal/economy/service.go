// Package economy is the authoritative ledger for player and enterprise
// money. Balances are integer cents and never go negative: operations
// that cannot be covered are rejected whole, nothing is clamped.
package economy

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/storage"
)

const maxReasons = 10

// File is the economy.json aggregate. Enterprises are stored under the
// "companies" key kept from the original data files.
type File struct {
	Users       map[string]*models.UserAccount       `json:"users"`
	Enterprises map[string]*models.EnterpriseAccount `json:"companies"`
	LastSave    *time.Time                           `json:"lastSave"`
}

func (f *File) SetLastSave(t time.Time) { f.LastSave = &t }

func emptyFile() *File {
	return &File{
		Users:       map[string]*models.UserAccount{},
		Enterprises: map[string]*models.EnterpriseAccount{},
	}
}

// OpenStore opens (or initializes) economy.json under dataDir.
func OpenStore(dataDir string) (*storage.Store[*File], error) {
	return storage.Open(filepath.Join(dataDir, "economy.json"), emptyFile)
}

// Journal receives one audit entry per record a ledger operation
// touched. Implemented by the bank service, mocked in tests.
type Journal interface {
	AddUserHistory(userID string, e models.HistoryEntry) error
	AddEnterpriseHistory(entID string, e models.HistoryEntry) error
}

// Gate enforces account-status checks before money moves. Implemented
// by the bank service.
type Gate interface {
	CheckUser(userID string, mutating bool) error
	CheckEnterprise(entID string, mutating bool) error
}

type Service struct {
	store     *storage.Store[*File]
	journal   Journal
	gate      Gate
	publisher events.Publisher

	now func() time.Time
}

func NewService(store *storage.Store[*File], journal Journal, gate Gate, publisher events.Publisher) *Service {
	return &Service{
		store:     store,
		journal:   journal,
		gate:      gate,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *Service) accountLocked(f *File, userID string) *models.UserAccount {
	acc, ok := f.Users[userID]
	if !ok {
		now := s.now().UTC()
		acc = &models.UserAccount{
			ID:        userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		f.Users[userID] = acc
	}
	return acc
}

// GetOrCreateAccount returns a snapshot of the ledger, creating it
// lazily on first access.
func (s *Service) GetOrCreateAccount(userID string) *models.UserAccount {
	var out *models.UserAccount
	s.store.View(func(f *File) {
		if acc, ok := f.Users[userID]; ok {
			out = acc.Clone()
		}
	})
	if out == nil {
		_ = s.store.Mutate(func(f *File) error {
			out = s.accountLocked(f, userID).Clone()
			return nil
		})
	}
	return out
}

// Balance returns the cash/bank/total read model.
func (s *Service) Balance(userID string) models.BalanceSnapshot {
	acc := s.GetOrCreateAccount(userID)
	return models.BalanceSnapshot{
		Cash:  acc.Wallet.Cash,
		Bank:  acc.Wallet.Bank,
		Total: acc.Wallet.Cash + acc.Wallet.Bank,
	}
}

// ListAccountIDs returns every known ledger id, sorted.
func (s *Service) ListAccountIDs() []string {
	var out []string
	s.store.View(func(f *File) {
		for id := range f.Users {
			out = append(out, id)
		}
	})
	sort.Strings(out)
	return out
}

// AdjustOptions carries the optional audit context of a mutation.
type AdjustOptions struct {
	Reason  string
	ActorID string
}

// AddMoney applies a signed delta to one balance side. Positive deltas
// accumulate into earnedTotal, negative into spentTotal. A delta that
// would push the balance below zero is rejected whole.
func (s *Service) AddMoney(ctx context.Context, userID string, amount int64, kind models.BalanceKind, opts AdjustOptions) (*models.UserAccount, error) {
	if amount == 0 {
		return nil, models.ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if err := s.gate.CheckUser(userID, true); err != nil {
		return nil, err
	}

	var out *models.UserAccount
	var after int64
	err := s.store.Mutate(func(f *File) error {
		acc := s.accountLocked(f, userID)
		before := acc.Wallet.Get(kind)
		after = before + amount
		if after < 0 {
			return fmt.Errorf("%s %s: %w", userID, kind, models.ErrInsufficientFunds)
		}
		acc.Wallet.Set(kind, after)

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

	s.recordUser(userID, models.HistoryEntry{
		Type:         history.TypeAdjustment,
		Amount:       amount,
		BalanceAfter: after,
		Description:  opts.Reason,
		ActorID:      opts.ActorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.BalanceAdjusted, events.TransactionCreatedEvent{
		UserID:       userID,
		Type:         history.TypeAdjustment,
		Kind:         string(kind),
		Amount:       amount,
		BalanceAfter: after,
		ActorID:      opts.ActorID,
	})
	return out, nil
}

// MoveCashToBank deposits cash into the bank balance of the same user.
func (s *Service) MoveCashToBank(ctx context.Context, userID string, amount int64, actorID string) (*models.UserAccount, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if err := s.gate.CheckUser(userID, true); err != nil {
		return nil, err
	}

	var out *models.UserAccount
	var bankAfter int64
	err := s.store.Mutate(func(f *File) error {
		acc := s.accountLocked(f, userID)
		if acc.Wallet.Cash < amount {
			return fmt.Errorf("cash of %s: %w", userID, models.ErrInsufficientFunds)
		}
		acc.Wallet.Cash -= amount
		acc.Wallet.Bank += amount
		bankAfter = acc.Wallet.Bank
		acc.UpdatedAt = s.now().UTC()
		out = acc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordUser(userID, models.HistoryEntry{
		Type:         history.TypeDeposit,
		Amount:       amount,
		BalanceAfter: bankAfter,
		Description:  "Dépôt depuis l’argent liquide.",
		ActorID:      actorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		UserID:       userID,
		Type:         history.TypeDeposit,
		Kind:         string(models.KindBank),
		Amount:       amount,
		BalanceAfter: bankAfter,
		ActorID:      actorID,
	})
	return out, nil
}

// MoveBankToCash withdraws from the bank balance into cash.
func (s *Service) MoveBankToCash(ctx context.Context, userID string, amount int64, actorID string) (*models.UserAccount, error) {
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if err := s.gate.CheckUser(userID, true); err != nil {
		return nil, err
	}

	var out *models.UserAccount
	var bankAfter int64
	err := s.store.Mutate(func(f *File) error {
		acc := s.accountLocked(f, userID)
		if acc.Wallet.Bank < amount {
			return fmt.Errorf("bank of %s: %w", userID, models.ErrInsufficientFunds)
		}
		acc.Wallet.Bank -= amount
		acc.Wallet.Cash += amount
		bankAfter = acc.Wallet.Bank
		acc.UpdatedAt = s.now().UTC()
		out = acc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordUser(userID, models.HistoryEntry{
		Type:         history.TypeWithdrawal,
		Amount:       -amount,
		BalanceAfter: bankAfter,
		Description:  "Retrait vers l’argent liquide.",
		ActorID:      actorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.TransactionCreated, events.TransactionCreatedEvent{
		UserID:       userID,
		Type:         history.TypeWithdrawal,
		Kind:         string(models.KindBank),
		Amount:       -amount,
		BalanceAfter: bankAfter,
		ActorID:      actorID,
	})
	return out, nil
}

// TransferResult is the post-transfer view of both ledgers.
type TransferResult struct {
	Amount int64               `json:"amount"`
	From   *models.UserAccount `json:"from"`
	To     *models.UserAccount `json:"to"`
}

// TransferBetweenUsers moves money from one user to another on the
// given balance side. Both legs run in a single store critical section:
// a concurrent reader can never observe the sender debited without the
// receiver credited.
func (s *Service) TransferBetweenUsers(ctx context.Context, fromID, toID string, amount int64, kind models.BalanceKind, actorID string) (*TransferResult, error) {
	if fromID == toID {
		return nil, models.ErrSelfTransfer
	}
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, models.ErrInvalidKind
	}
	if err := s.gate.CheckUser(fromID, true); err != nil {
		return nil, err
	}
	if err := s.gate.CheckUser(toID, true); err != nil {
		return nil, err
	}

	res := &TransferResult{Amount: amount}
	var fromAfter, toAfter int64
	err := s.store.Mutate(func(f *File) error {
		from := s.accountLocked(f, fromID)
		to := s.accountLocked(f, toID)
		if from.Flags.Blacklisted || to.Flags.Blacklisted {
			return models.ErrBlacklisted
		}
		if from.Wallet.Get(kind) < amount {
			return fmt.Errorf("%s of %s: %w", kind, fromID, models.ErrInsufficientFunds)
		}

		now := s.now().UTC()
		from.Wallet.Set(kind, from.Wallet.Get(kind)-amount)
		from.Stats.SpentTotal += amount
		from.Stats.TransfersOut += amount
		from.UpdatedAt = now

		to.Wallet.Set(kind, to.Wallet.Get(kind)+amount)
		to.Stats.EarnedTotal += amount
		to.Stats.TransfersIn += amount
		to.UpdatedAt = now

		fromAfter = from.Wallet.Get(kind)
		toAfter = to.Wallet.Get(kind)
		res.From = from.Clone()
		res.To = to.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordUser(fromID, models.HistoryEntry{
		Type:         history.TypeTransferOut,
		Amount:       -amount,
		BalanceAfter: fromAfter,
		TargetType:   "user",
		TargetID:     toID,
		ActorID:      actorID,
	})
	s.recordUser(toID, models.HistoryEntry{
		Type:         history.TypeTransferIn,
		Amount:       amount,
		BalanceAfter: toAfter,
		TargetType:   "user",
		TargetID:     fromID,
		ActorID:      actorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.TransferCompleted, events.TransferCompletedEvent{
		FromID: fromID,
		ToID:   toID,
		Kind:   string(kind),
		Amount: amount,
	})
	return res, nil
}

// SetBlacklisted flips the blacklist flag; blacklisted ledgers cannot
// send or receive transfers.
func (s *Service) SetBlacklisted(ctx context.Context, userID string, value bool) (*models.UserAccount, error) {
	var out *models.UserAccount
	err := s.store.Mutate(func(f *File) error {
		acc := s.accountLocked(f, userID)
		acc.Flags.Blacklisted = value
		acc.UpdatedAt = s.now().UTC()
		out = acc.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.EconomyEventsStream, events.BlacklistUpdated, events.BlacklistUpdatedEvent{
		UserID:      userID,
		Blacklisted: value,
	})
	return out, nil
}

func pushReason(list []models.ReasonEntry, e models.ReasonEntry) []models.ReasonEntry {
	out := make([]models.ReasonEntry, 0, len(list)+1)
	out = append(out, e)
	out = append(out, list...)
	if len(out) > maxReasons {
		out = out[:maxReasons]
	}
	return out
}

// recordUser appends an audit entry; journal failures are logged, the
// ledger mutation already committed.
func (s *Service) recordUser(userID string, e models.HistoryEntry) {
	if err := s.journal.AddUserHistory(userID, e); err != nil {
		log.Printf("Failed to record history for %s: %v", userID, err)
	}
}

func (s *Service) recordEnterprise(entID string, e models.HistoryEntry) {
	if err := s.journal.AddEnterpriseHistory(entID, e); err != nil {
		log.Printf("Failed to record history for enterprise %s: %v", entID, err)
	}
}

func (s *Service) publish(ctx context.Context, stream, eventType string, data any) {
	if err := s.publisher.Publish(ctx, stream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
