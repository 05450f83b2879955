package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/bankledger/internal/usecase"
)

type reconciliationStub struct {
	report *usecase.ReconciliationReport
	err    error
}

func (s *reconciliationStub) GenerateReconciliationReport(context.Context) (*usecase.ReconciliationReport, error) {
	return s.report, s.err
}

func (s *reconciliationStub) CheckLedgerConsistency(context.Context) error {
	return s.err
}

func TestLedgerHandler_Reconciliation(t *testing.T) {
	tests := []struct {
		name   string
		stub   *reconciliationStub
		status int
	}{
		{
			name:   "clean ledger",
			stub:   &reconciliationStub{report: &usecase.ReconciliationReport{TotalAccounts: 1, ReconciledAccounts: 1, LedgerConsistent: true, CheckedAt: time.Now()}},
			status: http.StatusOK,
		},
		{
			name: "drifted account",
			stub: &reconciliationStub{report: &usecase.ReconciliationReport{
				TotalAccounts:    1,
				Discrepancies:    []*usecase.ReconciliationResult{{Number: 1, Difference: 5}},
				LedgerConsistent: true,
			}},
			status: http.StatusConflict,
		},
		{
			name:   "failure",
			stub:   &reconciliationStub{err: errors.New("db down")},
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewLedgerHandler(tt.stub).Reconciliation(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestLedgerHandler_CheckConsistency(t *testing.T) {
	rec := httptest.NewRecorder()
	NewLedgerHandler(&reconciliationStub{}).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewLedgerHandler(&reconciliationStub{err: usecase.ErrInconsistentLedger}).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewLedgerHandler(&reconciliationStub{err: errors.New("boom")}).CheckConsistency(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	rec := httptest.NewRecorder()
	NewHealthHandler(nil).Liveness(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"database": ok, "redis": nil}).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"database": ok, "redis": down}).Readiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
