package models

import "time"

// AccountStatus is the lifecycle state shared by bank profiles and
// enterprises. Base flows only ever move active→frozen or active→closed;
// staff tooling may reverse either.
type AccountStatus string

const (
	StatusActive AccountStatus = "active"
	StatusFrozen AccountStatus = "frozen"
	StatusClosed AccountStatus = "closed"
)

// BalanceKind selects one of the two sides of a ledger. The persisted
// value for the bank side is "banque", kept from the original data files.
type BalanceKind string

const (
	KindCash BalanceKind = "cash"
	KindBank BalanceKind = "banque"
)

func (k BalanceKind) Valid() bool {
	return k == KindCash || k == KindBank
}

// Wallet holds the two balances of a ledger, in integer cents.
type Wallet struct {
	Cash int64 `json:"cash"`
	Bank int64 `json:"banque"`
}

func (w Wallet) Get(kind BalanceKind) int64 {
	if kind == KindBank {
		return w.Bank
	}
	return w.Cash
}

func (w *Wallet) Set(kind BalanceKind, v int64) {
	if kind == KindBank {
		w.Bank = v
		return
	}
	w.Cash = v
}

// HistoryEntry is one line of a bounded audit journal. Amount is signed:
// the sign encodes direction relative to the record the entry sits on.
type HistoryEntry struct {
	ID           string    `json:"id"`
	At           time.Time `json:"at"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balanceAfter"`
	Description  string    `json:"description,omitempty"`
	TargetType   string    `json:"targetType,omitempty"`
	TargetID     string    `json:"targetId,omitempty"`
	ActorID      string    `json:"actorId,omitempty"`
}

// BankProfile is the access-control side of a player's bank account.
// Balances live on the economy ledger; this record owns the PIN state
// machine, the account status and the audit journal.
type BankProfile struct {
	ID             string         `json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	Status         AccountStatus  `json:"status"`
	PinHash        string         `json:"pinHash,omitempty"`
	PinSet         bool           `json:"hasPin,omitempty"`
	PinAttempts    int            `json:"pinAttempts"`
	PinLockedUntil *time.Time     `json:"pinLockedUntil,omitempty"`
	History        []HistoryEntry `json:"history"`
}

// HasPin reports whether a PIN has ever been set on the profile. It
// works on both stored profiles (which carry the hash) and snapshots
// (which carry only the flag).
func (p *BankProfile) HasPin() bool { return p.PinHash != "" || p.PinSet }

// Clone returns a deep copy safe to hand to callers. The PIN hash is
// stripped: snapshots cross the API boundary, the hash never does.
func (p *BankProfile) Clone() *BankProfile {
	if p == nil {
		return nil
	}
	out := *p
	out.PinSet = p.HasPin()
	out.PinHash = ""
	if p.PinLockedUntil != nil {
		t := *p.PinLockedUntil
		out.PinLockedUntil = &t
	}
	out.History = append([]HistoryEntry(nil), p.History...)
	return &out
}

// Enterprise is a staff-created business account profile.
type Enterprise struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	Name          string         `json:"name"`
	AccountNumber string         `json:"accountNumber"`
	Status        AccountStatus  `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	History       []HistoryEntry `json:"history"`
}

func (e *Enterprise) Clone() *Enterprise {
	if e == nil {
		return nil
	}
	out := *e
	out.History = append([]HistoryEntry(nil), e.History...)
	return &out
}

// AccountStats accumulates absolute magnitudes over the account's life.
type AccountStats struct {
	EarnedTotal  int64 `json:"earnedTotal"`
	SpentTotal   int64 `json:"spentTotal"`
	TransfersIn  int64 `json:"transfersIn"`
	TransfersOut int64 `json:"transfersOut"`
}

type AccountFlags struct {
	Blacklisted bool `json:"blacklisted"`
}

// ReasonEntry is one line of the bounded staff-adjustment reasons log.
type ReasonEntry struct {
	Reason string      `json:"reason"`
	Amount int64       `json:"amount"`
	Kind   BalanceKind `json:"type"`
	At     time.Time   `json:"at"`
}

type AccountMeta struct {
	LastReasons []ReasonEntry `json:"lastReasons,omitempty"`
}

// UserAccount is a player's economy ledger. The "courant" key is kept
// from the original economy.json layout.
type UserAccount struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Wallet    Wallet       `json:"courant"`
	Stats     AccountStats `json:"stats"`
	Meta      AccountMeta  `json:"meta"`
	Flags     AccountFlags `json:"flags"`
}

func (a *UserAccount) Clone() *UserAccount {
	if a == nil {
		return nil
	}
	out := *a
	out.Meta.LastReasons = append([]ReasonEntry(nil), a.Meta.LastReasons...)
	return &out
}

type EnterpriseStats struct {
	EarnedTotal int64 `json:"earnedTotal"`
	SpentTotal  int64 `json:"spentTotal"`
}

// EnterpriseAccount is the economy ledger of an enterprise, keyed by the
// enterprise id from the bank side.
type EnterpriseAccount struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	OwnerID   string          `json:"ownerId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Balances  Wallet          `json:"balances"`
	Stats     EnterpriseStats `json:"stats"`
	Members   []string        `json:"members"`
	Meta      AccountMeta     `json:"meta"`
}

func (a *EnterpriseAccount) Clone() *EnterpriseAccount {
	if a == nil {
		return nil
	}
	out := *a
	out.Members = append([]string(nil), a.Members...)
	out.Meta.LastReasons = append([]ReasonEntry(nil), a.Meta.LastReasons...)
	return &out
}

// ItemStack is one inventory slot.
type ItemStack struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// InventoryRecord is a player's inventory plus survival stats. Hunger
// and thirst are percentages in [0,100] that decay lazily: every read
// applies the elapsed-time loss and advances LastUpdate.
type InventoryRecord struct {
	ID         string                `json:"id"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
	Items      map[string]*ItemStack `json:"items"`
	Hunger     float64               `json:"hunger"`
	Thirst     float64               `json:"thirst"`
	LastUpdate time.Time             `json:"lastUpdate"`
}

func (r *InventoryRecord) Clone() *InventoryRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Items = make(map[string]*ItemStack, len(r.Items))
	for id, st := range r.Items {
		dup := *st
		out.Items[id] = &dup
	}
	return &out
}

// BalanceSnapshot is the read model returned to the presentation layer.
type BalanceSnapshot struct {
	Cash  int64 `json:"cash"`
	Bank  int64 `json:"banque"`
	Total int64 `json:"total"`
}
