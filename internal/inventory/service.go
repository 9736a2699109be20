// Package inventory is the per-user item and survival-stat engine.
// Hunger and thirst decay lazily: every access first applies the loss
// accumulated since lastUpdate, so no background timer exists and the
// stats are reproducible from timestamps alone.
package inventory

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/catalog"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/storage"
)

// File is the inventory.json aggregate.
type File struct {
	Users    map[string]*models.InventoryRecord `json:"users"`
	LastSave *time.Time                         `json:"lastSave"`
}

func (f *File) SetLastSave(t time.Time) { f.LastSave = &t }

func emptyFile() *File {
	return &File{Users: map[string]*models.InventoryRecord{}}
}

// OpenStore opens (or initializes) inventory.json under dataDir.
func OpenStore(dataDir string) (*storage.Store[*File], error) {
	return storage.Open(filepath.Join(dataDir, "inventory.json"), emptyFile)
}

// OverweightError carries the weights behind an ErrOverweight rejection
// so the caller can render "7.5/8 kg, +1 kg refused".
type OverweightError struct {
	Current float64
	Added   float64
	Limit   float64
}

func (e *OverweightError) Error() string {
	return fmt.Sprintf("%.2f + %.2f exceeds %.2f kg: %v", e.Current, e.Added, e.Limit, models.ErrOverweight)
}

func (e *OverweightError) Is(target error) bool { return target == models.ErrOverweight }

type Service struct {
	store     *storage.Store[*File]
	publisher events.Publisher

	capacity   float64
	hungerFull time.Duration
	thirstFull time.Duration

	now func() time.Time
}

func NewService(store *storage.Store[*File], publisher events.Publisher, capacity float64, hungerFull, thirstFull time.Duration) *Service {
	return &Service{
		store:      store,
		publisher:  publisher,
		capacity:   capacity,
		hungerFull: hungerFull,
		thirstFull: thirstFull,
		now:        time.Now,
	}
}

// applyDecay charges the elapsed time since lastUpdate against hunger
// and thirst, floors both at zero and advances lastUpdate to now.
func (s *Service) applyDecay(rec *models.InventoryRecord, now time.Time) {
	if rec.LastUpdate.IsZero() {
		rec.LastUpdate = now
		return
	}
	delta := now.Sub(rec.LastUpdate)
	rec.LastUpdate = now
	if delta <= 0 {
		return
	}

	hungerLoss := float64(delta) / float64(s.hungerFull) * 100
	thirstLoss := float64(delta) / float64(s.thirstFull) * 100

	rec.Hunger = max(0, rec.Hunger-hungerLoss)
	rec.Thirst = max(0, rec.Thirst-thirstLoss)
}

func (s *Service) recordLocked(f *File, userID string, now time.Time) *models.InventoryRecord {
	rec, ok := f.Users[userID]
	if !ok {
		rec = &models.InventoryRecord{
			ID:         userID,
			CreatedAt:  now.UTC(),
			UpdatedAt:  now.UTC(),
			Items:      map[string]*models.ItemStack{},
			Hunger:     100,
			Thirst:     100,
			LastUpdate: now,
		}
		f.Users[userID] = rec
	}
	s.applyDecay(rec, now)
	return rec
}

// Snapshot returns a deep copy of the record after applying decay. The
// decay itself is a mutation (lastUpdate advances), so even reads go
// through the store's write path.
func (s *Service) Snapshot(userID string) *models.InventoryRecord {
	var out *models.InventoryRecord
	_ = s.store.Mutate(func(f *File) error {
		out = s.recordLocked(f, userID, s.now()).Clone()
		return nil
	})
	return out
}

func weightLocked(rec *models.InventoryRecord) float64 {
	var total float64
	for itemID, stack := range rec.Items {
		def, ok := catalog.ByID(itemID)
		if !ok {
			// stale ids from an older catalog weigh nothing
			continue
		}
		total += def.Weight * float64(stack.Quantity)
	}
	return total
}

// TotalWeight derives the carried weight from the catalog; it is never
// stored.
func (s *Service) TotalWeight(userID string) float64 {
	var total float64
	_ = s.store.Mutate(func(f *File) error {
		total = weightLocked(s.recordLocked(f, userID, s.now()))
		return nil
	})
	return total
}

// AddResult reports a successful AddItem.
type AddResult struct {
	Inventory *models.InventoryRecord `json:"inventory"`
	NewWeight float64                 `json:"newWeight"`
}

// AddItem adds quantity of an item, enforcing the weight capacity.
// The addition is all-or-nothing: on rejection the inventory is
// untouched.
func (s *Service) AddItem(ctx context.Context, userID, itemID string, quantity int) (*AddResult, error) {
	q := quantity
	if q < 1 {
		q = 1
	}
	def, ok := catalog.ByID(itemID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", itemID, models.ErrUnknownItem)
	}

	res := &AddResult{}
	err := s.store.Mutate(func(f *File) error {
		rec := s.recordLocked(f, userID, s.now())
		current := weightLocked(rec)
		added := def.Weight * float64(q)
		if current+added > s.capacity {
			return &OverweightError{Current: current, Added: added, Limit: s.capacity}
		}

		stack, ok := rec.Items[itemID]
		if !ok {
			stack = &models.ItemStack{ID: itemID}
			rec.Items[itemID] = stack
		}
		stack.Quantity += q
		rec.UpdatedAt = s.now().UTC()

		res.Inventory = rec.Clone()
		res.NewWeight = current + added
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ItemAdded, events.ItemEvent{
		UserID:   userID,
		ItemID:   itemID,
		Quantity: q,
		Weight:   res.NewWeight,
	})
	return res, nil
}

// RemoveResult reports how much was actually removed and what remains.
type RemoveResult struct {
	Removed   int `json:"removed"`
	Remaining int `json:"remaining"`
}

// RemoveItem removes up to quantity of an item, never going below zero,
// and deletes the stack when it empties.
func (s *Service) RemoveItem(ctx context.Context, userID, itemID string, quantity int) (*RemoveResult, error) {
	q := quantity
	if q < 1 {
		q = 1
	}

	res := &RemoveResult{}
	err := s.store.Mutate(func(f *File) error {
		rec := s.recordLocked(f, userID, s.now())
		stack, ok := rec.Items[itemID]
		if !ok || stack.Quantity <= 0 {
			return fmt.Errorf("%q: %w", itemID, models.ErrNoItem)
		}

		removed := q
		if removed > stack.Quantity {
			removed = stack.Quantity
		}
		stack.Quantity -= removed
		if stack.Quantity <= 0 {
			delete(rec.Items, itemID)
		} else {
			res.Remaining = stack.Quantity
		}
		rec.UpdatedAt = s.now().UTC()
		res.Removed = removed
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.ItemRemoved, events.ItemEvent{
		UserID:   userID,
		ItemID:   itemID,
		Quantity: res.Removed,
	})
	return res, nil
}

// ChangeHungerThirst applies decay first, then the deltas, clamping
// both stats to [0,100].
func (s *Service) ChangeHungerThirst(userID string, hungerDelta, thirstDelta float64) *models.InventoryRecord {
	var out *models.InventoryRecord
	_ = s.store.Mutate(func(f *File) error {
		rec := s.recordLocked(f, userID, s.now())
		rec.Hunger = clamp(rec.Hunger + hungerDelta)
		rec.Thirst = clamp(rec.Thirst + thirstDelta)
		rec.UpdatedAt = s.now().UTC()
		out = rec.Clone()
		return nil
	})
	return out
}

// Consume uses one unit of a consumable: the unit is removed, then the
// item's effect is applied to hunger/thirst.
func (s *Service) Consume(ctx context.Context, userID, itemID string) (*models.InventoryRecord, error) {
	def, ok := catalog.ByID(itemID)
	if !ok {
		return nil, fmt.Errorf("%q: %w", itemID, models.ErrUnknownItem)
	}
	if !def.Consumable {
		return nil, fmt.Errorf("%q: %w", itemID, models.ErrNotConsumable)
	}

	if _, err := s.RemoveItem(ctx, userID, itemID, 1); err != nil {
		return nil, err
	}

	var hungerDelta, thirstDelta float64
	if def.Effect != nil {
		hungerDelta = def.Effect.HungerDelta
		thirstDelta = def.Effect.ThirstDelta
	}
	out := s.ChangeHungerThirst(userID, hungerDelta, thirstDelta)

	s.publish(ctx, events.ItemConsumed, events.ItemEvent{
		UserID:   userID,
		ItemID:   itemID,
		Quantity: 1,
	})
	return out, nil
}

// Clear empties the inventory, keeping survival stats. Staff tooling.
func (s *Service) Clear(userID string) *models.InventoryRecord {
	var out *models.InventoryRecord
	_ = s.store.Mutate(func(f *File) error {
		rec := s.recordLocked(f, userID, s.now())
		rec.Items = map[string]*models.ItemStack{}
		rec.UpdatedAt = s.now().UTC()
		out = rec.Clone()
		return nil
	})
	return out
}

func (s *Service) publish(ctx context.Context, eventType string, data any) {
	if err := s.publisher.Publish(ctx, events.InventoryEventsStream, eventType, data); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
