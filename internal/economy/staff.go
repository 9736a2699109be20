package economy

import (
	"context"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

// SetBalance is staff tooling: it sets one balance side to an absolute
// value and journals the implied delta. Unlike AddMoney it bypasses the
// status gate, so staff can fix a frozen account's ledger.
func (s *Service) SetBalance(ctx context.Context, userID string, value int64, kind models.BalanceKind, opts AdjustOptions) (*models.UserAccount, error) {
	if value < 0 {
		return nil, models.ErrInvalidAmount
	}
	if !kind.Valid() {
		return nil, models.ErrInvalidKind
	}

	var out *models.UserAccount
	var delta int64
	err := s.store.Mutate(func(f *File) error {
		acc := s.accountLocked(f, userID)
		delta = value - acc.Wallet.Get(kind)
		acc.Wallet.Set(kind, value)
		if opts.Reason != "" {
			acc.Meta.LastReasons = pushReason(acc.Meta.LastReasons, models.ReasonEntry{
				Reason: opts.Reason,
				Amount: delta,
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
		Amount:       delta,
		BalanceAfter: value,
		Description:  opts.Reason,
		ActorID:      opts.ActorID,
	})
	s.publish(ctx, events.EconomyEventsStream, events.BalanceAdjusted, events.TransactionCreatedEvent{
		UserID:       userID,
		Type:         history.TypeAdjustment,
		Kind:         string(kind),
		Amount:       delta,
		BalanceAfter: value,
		ActorID:      opts.ActorID,
	})
	return out, nil
}
