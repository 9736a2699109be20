package inventory

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/events"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

type recordedEvent struct {
	Stream string
	Type   string
	Data   any
}

type capturingPublisher struct {
	events []recordedEvent
}

func (p *capturingPublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	p.events = append(p.events, recordedEvent{Stream: stream, Type: eventType, Data: data})
	return nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T) (*Service, *capturingPublisher, *testClock) {
	t.Helper()
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	pub := &capturingPublisher{}
	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := NewService(store, pub, 8, 90*time.Minute, 60*time.Minute)
	svc.now = clock.Now
	return svc, pub, clock
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestNewRecordStartsFull(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec := svc.Snapshot("user1")
	if rec.Hunger != 100 || rec.Thirst != 100 {
		t.Errorf("new record = %.1f/%.1f, want 100/100", rec.Hunger, rec.Thirst)
	}
	if len(rec.Items) != 0 {
		t.Errorf("new record should hold no items")
	}
}

func TestDecayRates(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Snapshot("user1") // create at t0

	clock.Advance(30 * time.Minute)
	rec := svc.Snapshot("user1")
	if !almostEqual(rec.Hunger, 100-100.0/3) {
		t.Errorf("hunger after 30min = %.2f, want %.2f", rec.Hunger, 100-100.0/3)
	}
	if !almostEqual(rec.Thirst, 50) {
		t.Errorf("thirst after 30min = %.2f, want 50", rec.Thirst)
	}
}

func TestDecayClampsAtZero(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Snapshot("user1")

	clock.Advance(48 * time.Hour)
	rec := svc.Snapshot("user1")
	if rec.Hunger != 0 || rec.Thirst != 0 {
		t.Errorf("after 48h = %.1f/%.1f, want 0/0", rec.Hunger, rec.Thirst)
	}
}

func TestDecayIsIdempotentWithoutElapsedTime(t *testing.T) {
	svc, _, clock := newTestService(t)
	svc.Snapshot("user1")
	clock.Advance(10 * time.Minute)

	first := svc.Snapshot("user1")
	second := svc.Snapshot("user1")
	if first.Hunger != second.Hunger || first.Thirst != second.Thirst {
		t.Errorf("back-to-back reads decayed twice: %.2f vs %.2f", first.Hunger, second.Hunger)
	}
}

func TestAddItem(t *testing.T) {
	svc, pub, _ := newTestService(t)
	ctx := context.Background()

	res, err := svc.AddItem(ctx, "user1", "burger_poulet", 3)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if got := res.Inventory.Items["burger_poulet"].Quantity; got != 3 {
		t.Errorf("quantity = %d, want 3", got)
	}
	if !almostEqual(res.NewWeight, 1.2) {
		t.Errorf("newWeight = %.2f, want 1.2", res.NewWeight)
	}

	// quantity below 1 means 1
	res, err = svc.AddItem(ctx, "user1", "burger_poulet", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Inventory.Items["burger_poulet"].Quantity; got != 4 {
		t.Errorf("quantity = %d, want 4", got)
	}

	if _, err := svc.AddItem(ctx, "user1", "jetpack", 1); !errors.Is(err, models.ErrUnknownItem) {
		t.Errorf("unknown item: err = %v, want ErrUnknownItem", err)
	}

	var seen bool
	for _, e := range pub.events {
		if e.Type == events.ItemAdded && e.Stream == events.InventoryEventsStream {
			seen = true
		}
	}
	if !seen {
		t.Error("expected an item.added event")
	}
}

func TestAddItemRejectsOverweightWholesale(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// 5 x 1.5 kg = 7.5 kg of 8
	if _, err := svc.AddItem(ctx, "user1", "pistolet_combat", 5); err != nil {
		t.Fatal(err)
	}

	// +0.75 kg would reach 8.25: rejected whole, nothing partial
	_, err := svc.AddItem(ctx, "user1", "alcool_bouteille", 1)
	if !errors.Is(err, models.ErrOverweight) {
		t.Fatalf("err = %v, want ErrOverweight", err)
	}
	var ow *OverweightError
	if !errors.As(err, &ow) {
		t.Fatal("expected an *OverweightError with weight details")
	}
	if !almostEqual(ow.Current, 7.5) || !almostEqual(ow.Added, 0.75) || ow.Limit != 8 {
		t.Errorf("details = %+v", ow)
	}

	rec := svc.Snapshot("user1")
	if _, ok := rec.Items["alcool_bouteille"]; ok {
		t.Error("rejected add left a partial stack")
	}
	if w := svc.TotalWeight("user1"); !almostEqual(w, 7.5) {
		t.Errorf("weight after rejection = %.2f, want 7.5", w)
	}

	// exactly at capacity is allowed
	if _, err := svc.AddItem(ctx, "user1", "bouteille_eau", 1); err != nil {
		t.Errorf("add to exactly 8 kg failed: %v", err)
	}
}

func TestZeroWeightItemsNeverOverweight(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.AddItem(context.Background(), "user1", "money_cash", 100000); err != nil {
		t.Errorf("weightless items must always fit: %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "user1", "cola_cup", 5); err != nil {
		t.Fatal(err)
	}

	res, err := svc.RemoveItem(ctx, "user1", "cola_cup", 2)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if res.Removed != 2 || res.Remaining != 3 {
		t.Errorf("removed/remaining = %d/%d, want 2/3", res.Removed, res.Remaining)
	}

	// asking for more than held caps at held and empties the stack
	res, err = svc.RemoveItem(ctx, "user1", "cola_cup", 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Removed != 3 || res.Remaining != 0 {
		t.Errorf("removed/remaining = %d/%d, want 3/0", res.Removed, res.Remaining)
	}
	if _, ok := svc.Snapshot("user1").Items["cola_cup"]; ok {
		t.Error("empty stack should be deleted")
	}

	if _, err := svc.RemoveItem(ctx, "user1", "cola_cup", 1); !errors.Is(err, models.ErrNoItem) {
		t.Errorf("remove from empty: err = %v, want ErrNoItem", err)
	}
}

func TestChangeHungerThirstClamps(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec := svc.ChangeHungerThirst("user1", 50, -150)
	if rec.Hunger != 100 {
		t.Errorf("hunger = %.1f, want clamped to 100", rec.Hunger)
	}
	if rec.Thirst != 0 {
		t.Errorf("thirst = %.1f, want clamped to 0", rec.Thirst)
	}
}

func TestConsume(t *testing.T) {
	svc, pub, clock := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "user1", "burger_poulet", 1); err != nil {
		t.Fatal(err)
	}

	// let hunger drop to ~50 (45 minutes of the 90-minute window)
	clock.Advance(45 * time.Minute)

	rec, err := svc.Consume(ctx, "user1", "burger_poulet")
	if err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if !almostEqual(rec.Hunger, 95) {
		t.Errorf("hunger after burger = %.2f, want 95", rec.Hunger)
	}
	if _, ok := rec.Items["burger_poulet"]; ok {
		t.Error("consumed unit not removed")
	}

	if _, err := svc.Consume(ctx, "user1", "burger_poulet"); !errors.Is(err, models.ErrNoItem) {
		t.Errorf("consume without stock: err = %v, want ErrNoItem", err)
	}
	if _, err := svc.Consume(ctx, "user1", "9mm_gun"); !errors.Is(err, models.ErrNotConsumable) {
		t.Errorf("consume a weapon: err = %v, want ErrNotConsumable", err)
	}
	if _, err := svc.Consume(ctx, "user1", "jetpack"); !errors.Is(err, models.ErrUnknownItem) {
		t.Errorf("consume unknown: err = %v, want ErrUnknownItem", err)
	}

	var seen bool
	for _, e := range pub.events {
		if e.Type == events.ItemConsumed {
			seen = true
		}
	}
	if !seen {
		t.Error("expected an item.consumed event")
	}
}

func TestConsumeEffectClampsAtFull(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "user1", "bouteille_eau", 1); err != nil {
		t.Fatal(err)
	}

	rec, err := svc.Consume(ctx, "user1", "bouteille_eau")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Thirst != 100 {
		t.Errorf("thirst = %.1f, want clamped to 100", rec.Thirst)
	}
}

func TestClearKeepsStats(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "user1", "fries_box", 4); err != nil {
		t.Fatal(err)
	}
	clock.Advance(30 * time.Minute)

	rec := svc.Clear("user1")
	if len(rec.Items) != 0 {
		t.Error("Clear left items behind")
	}
	if rec.Thirst != 50 {
		t.Errorf("thirst = %.1f, want 50 (stats survive a clear)", rec.Thirst)
	}
	if w := svc.TotalWeight("user1"); w != 0 {
		t.Errorf("weight after clear = %.2f, want 0", w)
	}
}

func TestDecayConsistencyAfterHungerConsumption(t *testing.T) {
	// consuming resets the decay anchor: later decay starts from the
	// post-effect value, not from the pre-effect one
	svc, _, clock := newTestService(t)
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, "user1", "double_cheese", 1); err != nil {
		t.Fatal(err)
	}

	clock.Advance(90 * time.Minute) // hunger 0
	if _, err := svc.Consume(ctx, "user1", "double_cheese"); err != nil {
		t.Fatal(err)
	}
	// 0 + 55 = 55
	clock.Advance(9 * time.Minute) // -10 pp
	rec := svc.Snapshot("user1")
	if !almostEqual(rec.Hunger, 45) {
		t.Errorf("hunger = %.2f, want 45", rec.Hunger)
	}
}
