package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func TestBalanceFromSnapshot_JSON(t *testing.T) {
	resp := BalanceFromSnapshot(&domain.BalanceSnapshot{Number: 12345, Balance: 25050})

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if got, want := string(raw), `{"conta":12345,"saldo":250.50}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestTransactionsFromDomain(t *testing.T) {
	now := time.Now()
	entries := []*domain.TransactionLogEntry{
		{ID: "e2", Kind: domain.TransactionWithdraw, Amount: 5000, CreatedAt: now},
		{ID: "e1", Kind: domain.TransactionDeposit, Amount: 20000, CreatedAt: now},
	}

	got := TransactionsFromDomain(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].ID != "e2" || got[0].Kind != "WITHDRAW" || got[0].Amount != 5000 {
		t.Fatalf("unexpected first entry: %+v", got[0])
	}
	if got[1].Kind != "DEPOSIT" || !got[1].CreatedAt.Equal(now) {
		t.Fatalf("unexpected second entry: %+v", got[1])
	}
}

func TestReportFromUseCase(t *testing.T) {
	checked := time.Now()
	report := &usecase.ReconciliationReport{
		TotalAccounts:      3,
		ReconciledAccounts: 2,
		Discrepancies: []*usecase.ReconciliationResult{
			{Number: 20, RecordedBalance: 2500, CalculatedBalance: 2400, Difference: 100},
		},
		LedgerConsistent: true,
		CheckedAt:        checked,
	}

	resp := ReportFromUseCase(report)
	if resp.TotalAccounts != 3 || resp.ReconciledAccounts != 2 || !resp.LedgerConsistent {
		t.Fatalf("unexpected report: %+v", resp)
	}
	if len(resp.Discrepancies) != 1 || resp.Discrepancies[0].Difference != 100 {
		t.Fatalf("unexpected discrepancies: %+v", resp.Discrepancies)
	}
	if !resp.CheckedAt.Equal(checked) {
		t.Fatalf("CheckedAt not carried over")
	}
}
