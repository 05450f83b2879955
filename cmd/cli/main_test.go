package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/infrastructure/auth"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

func newTestAPI(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var seen []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.RequestURI(), Header: r.Header.Clone()}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			dec := json.NewDecoder(bytes.NewReader(raw))
			dec.UseNumber()
			require.NoError(t, dec.Decode(&rec.Body))
		}
		seen = append(seen, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return srv, &seen
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, json.RawMessage(`{"a":1}`)))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())

	buf.Reset()
	require.NoError(t, printJSON(&buf, json.RawMessage(`not json`)))
	assert.Equal(t, "not json\n", buf.String())
}

func TestAccountCreate(t *testing.T) {
	srv, seen := newTestAPI(t, http.StatusCreated, `{"conta":12345,"saldo":"100.50"}`)

	out, err := execute(t, "--url", srv.URL, "--token", "tkn", "account", "create", "12345", "--initial", "100.50")
	require.NoError(t, err)
	assert.Contains(t, out, `"saldo": "100.50"`)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/v1/accounts", req.Path)
	assert.Equal(t, "Bearer tkn", req.Header.Get("Authorization"))
	assert.Equal(t, json.Number("12345"), req.Body["conta"])
	assert.Equal(t, json.Number("100.5"), req.Body["saldoInicial"])
}

func TestAccountDepositSendsIdempotencyKey(t *testing.T) {
	srv, seen := newTestAPI(t, http.StatusOK, `{"conta":12345,"saldo":"300.50"}`)

	_, err := execute(t, "--url", srv.URL, "account", "deposit", "12345", "200", "--idempotency-key", "k1")
	require.NoError(t, err)

	req := (*seen)[0]
	assert.Equal(t, "/api/v1/accounts/12345/deposit", req.Path)
	assert.Equal(t, "k1", req.Header.Get("Idempotency-Key"))
	assert.Equal(t, json.Number("200"), req.Body["valor"])
}

func TestAccountWithdrawReportsAPIError(t *testing.T) {
	srv, _ := newTestAPI(t, http.StatusUnprocessableEntity,
		`{"error":"insufficient funds","code":"INSUFFICIENT_FUNDS","category":"business"}`)

	_, err := execute(t, "--url", srv.URL, "account", "withdraw", "12345", "9999")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INSUFFICIENT_FUNDS", apiErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
}

func TestAccountBalanceAndHistory(t *testing.T) {
	srv, seen := newTestAPI(t, http.StatusOK, `{}`)

	_, err := execute(t, "--url", srv.URL+"/", "account", "balance", "7")
	require.NoError(t, err)
	_, err = execute(t, "--url", srv.URL, "account", "history", "7", "--limit", "5", "--offset", "10")
	require.NoError(t, err)

	require.Len(t, *seen, 2)
	assert.Equal(t, "/api/v1/accounts/7/balance", (*seen)[0].Path)
	assert.Equal(t, "/api/v1/accounts/7/transactions?limit=5&offset=10", (*seen)[1].Path)
}

func TestAccountRejectsBadInput(t *testing.T) {
	_, err := execute(t, "account", "balance", "abc")
	assert.ErrorContains(t, err, "invalid account number")

	_, err = execute(t, "account", "deposit", "1", "ten")
	assert.ErrorContains(t, err, "invalid amount")
}

func TestLedgerConsistency(t *testing.T) {
	srv, _ := newTestAPI(t, http.StatusOK, `{"status":"consistent","consistent":true}`)

	out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
	require.NoError(t, err)
	assert.Contains(t, out, "Consistency check PASSED")
	assert.Contains(t, out, "Consistent: true")
}

func TestLedgerConsistencyFailure(t *testing.T) {
	srv, _ := newTestAPI(t, http.StatusConflict, `{"status":"inconsistent","consistent":false}`)

	out, err := execute(t, "--url", srv.URL, "ledger", "consistency")
	assert.EqualError(t, err, "ledger is inconsistent")
	assert.Contains(t, out, "Consistency check FAILED")
}

func TestLedgerReconcile(t *testing.T) {
	srv, seen := newTestAPI(t, http.StatusOK, `{"total_accounts":1}`)

	out, err := execute(t, "--url", srv.URL, "ledger", "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, `"total_accounts": 1`)
	assert.Equal(t, "/api/v1/ledger/reconciliation", (*seen)[0].Path)
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "token", "user-1", "--secret", "s3cret")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("s3cret", 0).Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokenCmdRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := execute(t, "token", "user-1")
	assert.ErrorContains(t, err, "secret is required")
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := execute(t, "migrate", "up")
	assert.ErrorContains(t, err, "database url is required")
}
