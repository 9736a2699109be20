package economy

import (
	"context"
	"errors"
	"testing"

	"github.com/zoowprime/South-Los-Angeles-RP/internal/history"
	"github.com/zoowprime/South-Los-Angeles-RP/internal/models"
)

func TestCreateEnterpriseAccount(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	acc, err := svc.CreateEnterpriseAccount("ent_1", "Garage", "owner1")
	if err != nil {
		t.Fatalf("CreateEnterpriseAccount failed: %v", err)
	}
	if acc.Balances.Cash != 0 || acc.Balances.Bank != 0 {
		t.Errorf("new ledger should start at zero: %+v", acc.Balances)
	}

	if _, err := svc.CreateEnterpriseAccount("ent_1", "Garage", "owner1"); !errors.Is(err, models.ErrEnterpriseExists) {
		t.Errorf("duplicate: err = %v, want ErrEnterpriseExists", err)
	}

	if _, err := svc.GetEnterpriseAccount("ent_missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing ledger: err = %v, want ErrNotFound", err)
	}
}

func TestAddEnterpriseMoney(t *testing.T) {
	svc, journal, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.CreateEnterpriseAccount("ent_1", "Garage", "owner1"); err != nil {
		t.Fatal(err)
	}

	acc, err := svc.AddEnterpriseMoney(ctx, "ent_1", 50000, models.KindBank, AdjustOptions{Reason: "capital", ActorID: "staff1"})
	if err != nil {
		t.Fatalf("AddEnterpriseMoney failed: %v", err)
	}
	if acc.Balances.Bank != 50000 {
		t.Errorf("bank = %d, want 50000", acc.Balances.Bank)
	}

	if _, err := svc.AddEnterpriseMoney(ctx, "ent_1", -60000, models.KindBank, AdjustOptions{}); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("overdraft: err = %v, want ErrInsufficientFunds", err)
	}
	if _, err := svc.AddEnterpriseMoney(ctx, "ent_missing", 100, models.KindBank, AdjustOptions{}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing ledger: err = %v, want ErrNotFound", err)
	}

	entry := journal.enterprises["ent_1"][0]
	if entry.Type != history.TypeAdjustment || entry.BalanceAfter != 50000 {
		t.Errorf("journal entry: %+v", entry)
	}
}

func TestTransferUserToEnterprise(t *testing.T) {
	svc, journal, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.CreateEnterpriseAccount("ent_1", "Garage", "owner1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddMoney(ctx, "alice", 10000, models.KindCash, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.TransferUserToEnterprise(ctx, "alice", "ent_1", 4000, models.KindCash, "alice")
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.User.Wallet.Cash != 6000 {
		t.Errorf("user cash = %d, want 6000", res.User.Wallet.Cash)
	}
	// enterprise always receives on its bank side
	if res.Enterprise.Balances.Bank != 4000 {
		t.Errorf("enterprise bank = %d, want 4000", res.Enterprise.Balances.Bank)
	}
	if len(res.Enterprise.Meta.LastReasons) == 0 {
		t.Error("expected a payment reason on the enterprise")
	}

	userEntries := journal.users["alice"]
	last := userEntries[len(userEntries)-1]
	if last.Type != history.TypeEnterpriseTransfer || last.Amount != -4000 || last.TargetID != "ent_1" {
		t.Errorf("user entry: %+v", last)
	}
	entEntry := journal.enterprises["ent_1"][0]
	if entEntry.Type != history.TypeTransferIn || entEntry.Amount != 4000 {
		t.Errorf("enterprise entry: %+v", entEntry)
	}

	if _, err := svc.TransferUserToEnterprise(ctx, "alice", "ent_1", 7000, models.KindCash, ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("insufficient: err = %v, want ErrInsufficientFunds", err)
	}
}

func TestTransferEnterpriseToUser(t *testing.T) {
	svc, journal, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.CreateEnterpriseAccount("ent_1", "Garage", "owner1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddEnterpriseMoney(ctx, "ent_1", 30000, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.TransferEnterpriseToUser(ctx, "ent_1", "bob", 12000, models.KindCash, "owner1")
	if err != nil {
		t.Fatalf("salary failed: %v", err)
	}
	if res.Enterprise.Balances.Bank != 18000 {
		t.Errorf("enterprise bank = %d, want 18000", res.Enterprise.Balances.Bank)
	}
	if res.User.Wallet.Cash != 12000 {
		t.Errorf("user cash = %d, want 12000", res.User.Wallet.Cash)
	}
	if len(res.User.Meta.LastReasons) == 0 {
		t.Error("expected a salary reason on the user")
	}

	entries := journal.enterprises["ent_1"]
	last := entries[len(entries)-1]
	if last.Type != history.TypeTransferOut || last.Amount != -12000 || last.BalanceAfter != 18000 {
		t.Errorf("enterprise entry: %+v", last)
	}

	if _, err := svc.TransferEnterpriseToUser(ctx, "ent_1", "bob", 99999, models.KindBank, ""); !errors.Is(err, models.ErrInsufficientFunds) {
		t.Errorf("insufficient: err = %v, want ErrInsufficientFunds", err)
	}
}

func TestEnterpriseTransferBlockedByBlacklist(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()
	if _, err := svc.CreateEnterpriseAccount("ent_1", "Garage", "owner1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddEnterpriseMoney(ctx, "ent_1", 5000, models.KindBank, AdjustOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.SetBlacklisted(ctx, "bob", true); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.TransferEnterpriseToUser(ctx, "ent_1", "bob", 100, models.KindCash, ""); !errors.Is(err, models.ErrBlacklisted) {
		t.Errorf("salary to blacklisted: err = %v, want ErrBlacklisted", err)
	}
	if _, err := svc.TransferUserToEnterprise(ctx, "bob", "ent_1", 100, models.KindCash, ""); !errors.Is(err, models.ErrBlacklisted) {
		t.Errorf("payment from blacklisted: err = %v, want ErrBlacklisted", err)
	}
}
