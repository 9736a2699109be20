package events

import "time"

// Event types
const (
	TransactionCreated   = "transaction.created"
	TransferCompleted    = "transfer.completed"
	BalanceAdjusted      = "balance.adjusted"
	AccountStatusChanged = "account.status_changed"
	PinLocked            = "pin.locked"
	EnterpriseCreated    = "enterprise.created"
	BlacklistUpdated     = "blacklist.updated"

	ItemAdded    = "item.added"
	ItemRemoved  = "item.removed"
	ItemConsumed = "item.consumed"
)

// Stream names
const (
	BankEventsStream      = "bank.events"
	EconomyEventsStream   = "economy.events"
	InventoryEventsStream = "inventory.events"
)

// Event is the envelope written to the stream. ID is unique per
// delivery attempt's payload so consumers can deduplicate redeliveries.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Bank events
type AccountStatusChangedEvent struct {
	UserID       string `json:"userId,omitempty"`
	EnterpriseID string `json:"enterpriseId,omitempty"`
	Status       string `json:"status"`
	ActorID      string `json:"actorId,omitempty"`
}

type PinLockedEvent struct {
	UserID      string    `json:"userId"`
	LockedUntil time.Time `json:"lockedUntil"`
}

type EnterpriseCreatedEvent struct {
	EnterpriseID  string `json:"enterpriseId"`
	OwnerID       string `json:"ownerId"`
	Name          string `json:"name"`
	AccountNumber string `json:"accountNumber"`
}

// Economy events
type TransactionCreatedEvent struct {
	UserID       string `json:"userId,omitempty"`
	EnterpriseID string `json:"enterpriseId,omitempty"`
	Type         string `json:"type"`
	Kind         string `json:"kind"`
	Amount       int64  `json:"amount"`
	BalanceAfter int64  `json:"balanceAfter"`
	ActorID      string `json:"actorId,omitempty"`
}

type TransferCompletedEvent struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
	Kind   string `json:"kind"`
	Amount int64  `json:"amount"`
}

type BlacklistUpdatedEvent struct {
	UserID      string `json:"userId"`
	Blacklisted bool   `json:"blacklisted"`
}

// Inventory events
type ItemEvent struct {
	UserID   string  `json:"userId"`
	ItemID   string  `json:"itemId"`
	Quantity int     `json:"quantity"`
	Weight   float64 `json:"weight"`
}
