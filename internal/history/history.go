// Package history maintains the bounded audit journals attached to bank
// profiles and enterprises: newest first, truncated to the most recent
// MaxEntries, older lines silently discarded.
package history

import (
	"time"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/utils"
)

const MaxEntries = 30

// Entry type labels. Kept in French: they are wire values the existing
// renderers and stored journals already use.
const (
	TypeDeposit            = "dépôt"
	TypeWithdrawal         = "retrait"
	TypeTransferOut        = "virement sortant"
	TypeTransferIn         = "virement entrant"
	TypeEnterpriseTransfer = "virement entreprise"
	TypeAdjustment         = "ajustement"
	TypeClosure            = "cloture"
)

// Append prepends e to journal and trims to MaxEntries. Missing id and
// timestamp are filled in at append time.
func Append(journal []models.HistoryEntry, e models.HistoryEntry) []models.HistoryEntry {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	if e.ID == "" {
		e.ID = utils.GenerateEntryID(e.At)
	}
	out := make([]models.HistoryEntry, 0, len(journal)+1)
	out = append(out, e)
	out = append(out, journal...)
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}
