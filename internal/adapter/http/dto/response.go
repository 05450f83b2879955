package dto

import (
	"time"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// BalanceResponse is the {conta, saldo} payload.
type BalanceResponse struct {
	Number  int64        `json:"conta"`
	Balance domain.Money `json:"saldo"`
}

// BalanceFromSnapshot converts a domain snapshot to response.
func BalanceFromSnapshot(s *domain.BalanceSnapshot) *BalanceResponse {
	return &BalanceResponse{Number: s.Number, Balance: s.Balance}
}

// TransactionResponse represents a transaction log entry in API responses.
type TransactionResponse struct {
	ID        string       `json:"id"`
	Kind      string       `json:"tipo"`
	Amount    domain.Money `json:"valor"`
	CreatedAt time.Time    `json:"created_at"`
}

// TransactionFromDomain converts a domain log entry to response.
func TransactionFromDomain(e *domain.TransactionLogEntry) *TransactionResponse {
	return &TransactionResponse{
		ID:        e.ID,
		Kind:      string(e.Kind),
		Amount:    e.Amount,
		CreatedAt: e.CreatedAt,
	}
}

// ListTransactionsResponse represents a page of an account's history.
type ListTransactionsResponse struct {
	Number       int64                  `json:"conta"`
	Transactions []*TransactionResponse `json:"transactions"`
	Limit        int                    `json:"limit"`
	Offset       int                    `json:"offset"`
}

// TransactionsFromDomain converts log entries to responses.
func TransactionsFromDomain(entries []*domain.TransactionLogEntry) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		result[i] = TransactionFromDomain(e)
	}
	return result
}

// DiscrepancyResponse describes an account whose balance drifted from its log.
type DiscrepancyResponse struct {
	Number            int64        `json:"conta"`
	RecordedBalance   domain.Money `json:"recorded_balance"`
	CalculatedBalance domain.Money `json:"calculated_balance"`
	Difference        domain.Money `json:"difference"`
}

// ReconciliationReportResponse represents a reconciliation run.
type ReconciliationReportResponse struct {
	TotalAccounts      int                    `json:"total_accounts"`
	ReconciledAccounts int                    `json:"reconciled_accounts"`
	Discrepancies      []*DiscrepancyResponse `json:"discrepancies"`
	LedgerConsistent   bool                   `json:"ledger_consistent"`
	CheckedAt          time.Time              `json:"checked_at"`
}

// ReportFromUseCase converts a reconciliation report to response.
func ReportFromUseCase(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*DiscrepancyResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = &DiscrepancyResponse{
			Number:            d.Number,
			RecordedBalance:   d.RecordedBalance,
			CalculatedBalance: d.CalculatedBalance,
			Difference:        d.Difference,
		}
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error    string `json:"error"`
	Code     string `json:"code"`
	Category string `json:"category,omitempty"`
}
