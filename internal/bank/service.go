// Package bank owns the access-control side of player banking: PIN
// issuance and verification with bounded retry and timed lockout,
// account status gating, enterprise profiles and the audit journals.
// Balances live in the economy ledger, not here.
package bank

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/storage"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/utils"
)

// File is the bank.json aggregate.
type File struct {
	Users       map[string]*models.BankProfile `json:"users"`
	Enterprises map[string]*models.Enterprise  `json:"enterprises"`
	LastSave    *time.Time                     `json:"lastSave"`
}

func (f *File) SetLastSave(t time.Time) { f.LastSave = &t }

func emptyFile() *File {
	return &File{
		Users:       map[string]*models.BankProfile{},
		Enterprises: map[string]*models.Enterprise{},
	}
}

// OpenStore opens (or initializes) bank.json under dataDir.
func OpenStore(dataDir string) (*storage.Store[*File], error) {
	return storage.Open(filepath.Join(dataDir, "bank.json"), emptyFile)
}

// PinReason classifies a failed PIN verification.
type PinReason string

const (
	PinNoPin   PinReason = "no_pin"
	PinLocked  PinReason = "locked"
	PinWrong   PinReason = "wrong"
	PinTooMany PinReason = "too_many"
)

// PinResult reports the outcome of VerifyPin. On "wrong", AttemptsLeft
// tells the caller how many tries remain; on "locked"/"too_many",
// LockedUntil holds the unlock timestamp.
type PinResult struct {
	OK           bool
	Reason       PinReason
	AttemptsLeft int
	LockedUntil  time.Time
}

type Service struct {
	store     *storage.Store[*File]
	publisher events.Publisher

	maxAttempts  int
	lockDuration time.Duration

	now func() time.Time
}

func NewService(store *storage.Store[*File], publisher events.Publisher, maxAttempts int, lockDuration time.Duration) *Service {
	return &Service{
		store:        store,
		publisher:    publisher,
		maxAttempts:  maxAttempts,
		lockDuration: lockDuration,
		now:          time.Now,
	}
}

func (s *Service) profileLocked(f *File, userID string) *models.BankProfile {
	p, ok := f.Users[userID]
	if !ok {
		now := s.now().UTC()
		p = &models.BankProfile{
			ID:        userID,
			CreatedAt: now,
			UpdatedAt: now,
			Status:    models.StatusActive,
			History:   []models.HistoryEntry{},
		}
		f.Users[userID] = p
	}
	return p
}

// GetOrCreateProfile returns a snapshot of the profile, creating it
// lazily on first access.
func (s *Service) GetOrCreateProfile(userID string) *models.BankProfile {
	var out *models.BankProfile
	s.store.View(func(f *File) {
		if p, ok := f.Users[userID]; ok {
			out = p.Clone()
		}
	})
	if out == nil {
		_ = s.store.Mutate(func(f *File) error {
			out = s.profileLocked(f, userID).Clone()
			return nil
		})
	}
	return out
}

// SetPin stores a new PIN as a bcrypt hash and unconditionally clears
// the attempt counter and any lock.
func (s *Service) SetPin(userID, pin string) error {
	if len(pin) < 4 || len(pin) > 8 {
		return fmt.Errorf("pin must be 4 to 8 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("pin must be 4 to 8 digits")
		}
	}
	hash, err := utils.HashSecret(pin)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	return s.store.Mutate(func(f *File) error {
		p := s.profileLocked(f, userID)
		p.PinHash = hash
		p.PinAttempts = 0
		p.PinLockedUntil = nil
		p.UpdatedAt = s.now().UTC()
		return nil
	})
}

// VerifyPin drives the PIN state machine. A correct PIN clears the
// attempt counter; the Nth consecutive wrong PIN (N = maxAttempts)
// starts the lockout window and resets the counter. While locked, the
// timestamp is reported and further attempts do not extend the lock.
func (s *Service) VerifyPin(ctx context.Context, userID, input string) PinResult {
	var res PinResult
	_ = s.store.Mutate(func(f *File) error {
		p := s.profileLocked(f, userID)
		now := s.now().UTC()

		if !p.HasPin() {
			res = PinResult{Reason: PinNoPin}
			return nil
		}
		if p.PinLockedUntil != nil && now.Before(*p.PinLockedUntil) {
			res = PinResult{Reason: PinLocked, LockedUntil: *p.PinLockedUntil}
			return nil
		}

		if utils.CheckSecret(input, p.PinHash) {
			p.PinAttempts = 0
			p.PinLockedUntil = nil
			p.UpdatedAt = now
			res = PinResult{OK: true}
			return nil
		}

		p.PinAttempts++
		p.UpdatedAt = now
		if p.PinAttempts >= s.maxAttempts {
			until := now.Add(s.lockDuration)
			p.PinLockedUntil = &until
			p.PinAttempts = 0
			res = PinResult{Reason: PinTooMany, LockedUntil: until}
			return nil
		}
		res = PinResult{Reason: PinWrong, AttemptsLeft: s.maxAttempts - p.PinAttempts}
		return nil
	})

	if res.Reason == PinTooMany {
		if err := s.publisher.Publish(ctx, events.BankEventsStream, events.PinLocked, events.PinLockedEvent{
			UserID:      userID,
			LockedUntil: res.LockedUntil,
		}); err != nil {
			log.Printf("Failed to publish pin.locked event: %v", err)
		}
	}
	return res
}

// SetUserStatus is staff tooling: it may apply any transition,
// including reversing frozen/closed.
func (s *Service) SetUserStatus(ctx context.Context, userID string, status models.AccountStatus, actorID string) (*models.BankProfile, error) {
	var out *models.BankProfile
	err := s.store.Mutate(func(f *File) error {
		p := s.profileLocked(f, userID)
		p.Status = status
		p.UpdatedAt = s.now().UTC()
		out = p.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.BankEventsStream, events.AccountStatusChanged, events.AccountStatusChangedEvent{
		UserID:  userID,
		Status:  string(status),
		ActorID: actorID,
	}); err != nil {
		log.Printf("Failed to publish account.status_changed event: %v", err)
	}
	return out, nil
}

// AddUserHistory appends one journal entry to the profile.
func (s *Service) AddUserHistory(userID string, e models.HistoryEntry) error {
	return s.store.Mutate(func(f *File) error {
		p := s.profileLocked(f, userID)
		p.History = history.Append(p.History, e)
		p.UpdatedAt = s.now().UTC()
		return nil
	})
}

// UserHistory returns the journal, newest first.
func (s *Service) UserHistory(userID string) []models.HistoryEntry {
	return s.GetOrCreateProfile(userID).History
}
