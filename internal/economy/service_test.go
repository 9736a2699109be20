package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

type journalMock struct {
	users       map[string][]models.HistoryEntry
	enterprises map[string][]models.HistoryEntry
}

func newJournalMock() *journalMock {
	return &journalMock{
		users:       map[string][]models.HistoryEntry{},
		enterprises: map[string][]models.HistoryEntry{},
	}
}

func (j *journalMock) AddUserHistory(userID string, e models.HistoryEntry) error {
	j.users[userID] = append(j.users[userID], e)
	return nil
}

func (j *journalMock) AddEnterpriseHistory(entID string, e models.HistoryEntry) error {
	j.enterprises[entID] = append(j.enterprises[entID], e)
	return nil
}

type gateMock struct {
	checkUser       func(userID string, mutating bool) error
	checkEnterprise func(entID string, mutating bool) error
}

func (g *gateMock) CheckUser(userID string, mutating bool) error {
	if g.checkUser != nil {
		return g.checkUser(userID, mutating)
	}
	return nil
}

func (g *gateMock) CheckEnterprise(entID string, mutating bool) error {
	if g.checkEnterprise != nil {
		return g.checkEnterprise(entID, mutating)
	}
	return nil
}

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

func newTestService(t *testing.T, gate *gateMock) (*Service, *journalMock, *capturingPublisher) {
	t.Helper()
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	journal := newJournalMock()
	pub := &capturingPublisher{}
	if gate == nil {
		gate = &gateMock{}
	}
	svc := NewService(store, journal, gate, pub)
	svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return svc, journal, pub
}

func TestGetOrCreateAccountStartsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	acc := svc.GetOrCreateAccount("user1")
	if acc.Wallet.Cash != 0 || acc.Wallet.Bank != 0 {
		t.Errorf("new account should start at zero, got %+v", acc.Wallet)
	}

	bal := svc.Balance("user1")
	if bal.Total != 0 {
		t.Errorf("balance total = %d, want 0", bal.Total)
	}
}

func TestAddMoney(t *testing.T) {
	svc, journal, _ := newTestService(t, nil)
	ctx := context.Background()

	acc, err := svc.AddMoney(ctx, "user1", 10000, models.KindCash, AdjustOptions{Reason: "starter", ActorID: "staff1"})
	if err != nil {
		t.Fatalf("AddMoney failed: %v", err)
	}
	if acc.Wallet.Cash != 10000 {
		t.Errorf("cash = %d, want 10000", acc.Wallet.Cash)
	}
	if acc.Stats.EarnedTotal != 10000 {
		t.Errorf("earnedTotal = %d, want 10000", acc.Stats.EarnedTotal)
	}
	if len(acc.Meta.LastReasons) != 1 || acc.Meta.LastReasons[0].Reason != "starter" {
		t.Errorf("reason not recorded: %+v", acc.Meta.LastReasons)
	}

	acc, err = svc.AddMoney(ctx, "user1", -4000, models.KindCash, AdjustOptions{})
	if err != nil {
		t.Fatalf("negative AddMoney failed: %v", err)
	}
	if acc.Wallet.Cash != 6000 {
		t.Errorf("cash = %d, want 6000", acc.Wallet.Cash)
	}
	if acc.Stats.SpentTotal != 4000 {
		t.Errorf("spentTotal = %d, want 4000", acc.Stats.SpentTotal)
	}

	entries := journal.users["user1"]
	if len(entries) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(entries))
	}
	if entries[0].Type != history.TypeAdjustment || entries[0].BalanceAfter != 10000 {
		t.Errorf("first entry: %+v", entries[0])
	}
}

func TestAddMoneyRejectsOverdraft(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.AddMoney(ctx, "user1", 5000, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}
	_, err := svc.AddMoney(ctx, "user1", -6000, models.KindBank, AdjustOptions{})
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	// rejected whole, nothing clamped
	if bal := svc.Balance("user1"); bal.Bank != 5000 {
		t.Errorf("bank = %d after rejected overdraft, want 5000", bal.Bank)
	}
}

func TestAddMoneyValidation(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.AddMoney(ctx, "user1", 0, models.KindCash, AdjustOptions{}); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.AddMoney(ctx, "user1", 100, models.BalanceKind("gold"), AdjustOptions{}); !errors.Is(err, models.ErrInvalidKind) {
		t.Errorf("bad kind: err = %v, want ErrInvalidKind", err)
	}
}

func TestAddMoneyGateBlocks(t *testing.T) {
	gate := &gateMock{
		checkUser: func(string, bool) error { return models.ErrAccountFrozen },
	}
	svc, _, _ := newTestService(t, gate)

	if _, err := svc.AddMoney(context.Background(), "user1", 100, models.KindCash, AdjustOptions{}); !errors.Is(err, models.ErrAccountFrozen) {
		t.Errorf("err = %v, want ErrAccountFrozen", err)
	}
}

func TestReasonsBounded(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if _, err := svc.AddMoney(ctx, "user1", 100, models.KindCash, AdjustOptions{Reason: "r"}); err != nil {
			t.Fatal(err)
		}
	}
	acc := svc.GetOrCreateAccount("user1")
	if len(acc.Meta.LastReasons) != maxReasons {
		t.Errorf("reasons = %d, want %d", len(acc.Meta.LastReasons), maxReasons)
	}
}

func TestMoveCashToBank(t *testing.T) {
	svc, journal, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.AddMoney(ctx, "user1", 10000, models.KindCash, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	acc, err := svc.MoveCashToBank(ctx, "user1", 5000, "user1")
	if err != nil {
		t.Fatalf("MoveCashToBank failed: %v", err)
	}
	if acc.Wallet.Cash != 5000 || acc.Wallet.Bank != 5000 {
		t.Errorf("wallet = %+v, want 5000/5000", acc.Wallet)
	}

	entries := journal.users["user1"]
	last := entries[len(entries)-1]
	if last.Type != history.TypeDeposit {
		t.Errorf("entry type = %q, want %q", last.Type, history.TypeDeposit)
	}
	if last.Amount != 5000 || last.BalanceAfter != 5000 {
		t.Errorf("entry amount/after = %d/%d, want 5000/5000", last.Amount, last.BalanceAfter)
	}

	if _, err := svc.MoveCashToBank(ctx, "user1", 6000, "user1"); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("overdeposit: err = %v, want ErrInsufficientFunds", err)
	}
}

func TestMoveBankToCash(t *testing.T) {
	svc, journal, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.AddMoney(ctx, "user1", 8000, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	acc, err := svc.MoveBankToCash(ctx, "user1", 3000, "user1")
	if err != nil {
		t.Fatalf("MoveBankToCash failed: %v", err)
	}
	if acc.Wallet.Cash != 3000 || acc.Wallet.Bank != 5000 {
		t.Errorf("wallet = %+v, want 3000 cash / 5000 bank", acc.Wallet)
	}

	entries := journal.users["user1"]
	last := entries[len(entries)-1]
	if last.Type != history.TypeWithdrawal || last.Amount != -3000 || last.BalanceAfter != 5000 {
		t.Errorf("withdrawal entry: %+v", last)
	}

	if _, err := svc.MoveBankToCash(ctx, "user1", 5001, "user1"); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("overdraw: err = %v, want ErrInsufficientFunds", err)
	}
}

func TestTransferBetweenUsers(t *testing.T) {
	svc, journal, pub := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.AddMoney(ctx, "alice", 20000, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.TransferBetweenUsers(ctx, "alice", "bob", 15000, models.KindBank, "alice")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.From.Wallet.Bank != 5000 {
		t.Errorf("sender bank = %d, want 5000", res.From.Wallet.Bank)
	}
	if res.To.Wallet.Bank != 15000 {
		t.Errorf("receiver bank = %d, want 15000", res.To.Wallet.Bank)
	}

	out := journal.users["alice"][len(journal.users["alice"])-1]
	if out.Type != history.TypeTransferOut || out.Amount != -15000 || out.BalanceAfter != 5000 || out.TargetID != "bob" {
		t.Errorf("sender entry: %+v", out)
	}
	in := journal.users["bob"][0]
	if in.Type != history.TypeTransferIn || in.Amount != 15000 || in.BalanceAfter != 15000 || in.TargetID != "alice" {
		t.Errorf("receiver entry: %+v", in)
	}

	var seen bool
	for _, e := range pub.events {
		if e.Type == "transfer.completed" {
			seen = true
		}
	}
	if !seen {
		t.Error("expected a transfer.completed event")
	}
}

func TestTransferRejectionsLeaveStateUntouched(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.AddMoney(ctx, "alice", 100, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.TransferBetweenUsers(ctx, "alice", "alice", 50, models.KindBank, ""); !errors.Is(err, models.ErrSelfTransfer) {
		t.Errorf("self transfer: err = %v, want ErrSelfTransfer", err)
	}
	if _, err := svc.TransferBetweenUsers(ctx, "alice", "bob", 0, models.KindBank, ""); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("zero amount: err = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.TransferBetweenUsers(ctx, "alice", "bob", 200, models.KindBank, ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("insufficient: err = %v, want ErrInsufficientFunds", err)
	}

	if bal := svc.Balance("alice"); bal.Bank != 100 {
		t.Errorf("sender mutated by rejected transfer: bank = %d", bal.Bank)
	}
	if bal := svc.Balance("bob"); bal.Bank != 0 {
		t.Errorf("receiver mutated by rejected transfer: bank = %d", bal.Bank)
	}
}

func TestTransferBlockedByBlacklist(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.AddMoney(ctx, "alice", 1000, models.KindCash, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SetBlacklisted(ctx, "bob", true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TransferBetweenUsers(ctx, "alice", "bob", 500, models.KindCash, ""); !errors.Is(err, models.ErrBlacklisted) {
		t.Errorf("transfer to blacklisted: err = %v, want ErrBlacklisted", err)
	}

	if _, err := svc.SetBlacklisted(ctx, "bob", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetBlacklisted(ctx, "alice", true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.TransferBetweenUsers(ctx, "alice", "bob", 500, models.KindCash, ""); !errors.Is(err, models.ErrBlacklisted) {
		t.Errorf("transfer from blacklisted: err = %v, want ErrBlacklisted", err)
	}

	// adjustments are not transfers, the flag does not block them
	if _, err := svc.AddMoney(ctx, "alice", 100, models.KindCash, AdjustOptions{}); err != nil {
		t.Errorf("AddMoney on blacklisted account failed: %v", err)
	}
}

func TestSetBalanceBypassesGate(t *testing.T) {
	gate := &gateMock{
		checkUser: func(string, bool) error { return models.ErrAccountFrozen },
	}
	svc, journal, _ := newTestService(t, gate)
	ctx := context.Background()

	acc, err := svc.SetBalance(ctx, "user1", 7500, models.KindBank, AdjustOptions{Reason: "fix", ActorID: "staff1"})
	if err != nil {
		t.Fatalf("SetBalance on frozen account failed: %v", err)
	}
	if acc.Wallet.Bank != 7500 {
		t.Errorf("bank = %d, want 7500", acc.Wallet.Bank)
	}

	entry := journal.users["user1"][0]
	if entry.Amount != 7500 || entry.BalanceAfter != 7500 {
		t.Errorf("delta journaled wrong: %+v", entry)
	}

	// second set journals the delta, not the absolute value
	if _, err := svc.SetBalance(ctx, "user1", 5000, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}
	entry = journal.users["user1"][1]
	if entry.Amount != -2500 || entry.BalanceAfter != 5000 {
		t.Errorf("second delta: %+v", entry)
	}

	if _, err := svc.SetBalance(ctx, "user1", -1, models.KindBank, AdjustOptions{}); !errors.Is(err, models.ErrInvalidAmount) {
		t.Errorf("negative set: err = %v, want ErrInvalidAmount", err)
	}
}
