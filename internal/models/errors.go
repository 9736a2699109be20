package models

import "errors"

// Failure taxonomy shared by the ledger, inventory and access-control
// services. Handlers map these to HTTP statuses; the services themselves
// never format user-facing text.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidKind       = errors.New("invalid balance kind")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountFrozen     = errors.New("account frozen")
	ErrAccountClosed     = errors.New("account closed")
	ErrBlacklisted       = errors.New("account blacklisted")
	ErrEnterpriseExists  = errors.New("owner already has an enterprise")
	ErrUnknownItem       = errors.New("unknown item")
	ErrOverweight        = errors.New("inventory over weight capacity")
	ErrNoItem            = errors.New("item not held")
	ErrNotConsumable     = errors.New("item is not consumable")
	ErrSelfTransfer      = errors.New("cannot transfer to self")
)
