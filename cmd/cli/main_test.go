package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/iho/optiledger/internal/adapter/http"
	"github.com/iho/optiledger/internal/adapter/http/dto"
	"github.com/iho/optiledger/internal/adapter/http/handler"
	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/uow"
	"github.com/iho/optiledger/internal/usecase"
	"github.com/iho/optiledger/internal/usecase/mocks"
)

func newLedgerServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := mocks.NewStore()
	reg, err := uow.NewRegistry(
		uow.Bind[*domain.Account](domain.KindAccount, store.Accounts()),
		uow.Bind[*domain.Transfer](domain.KindTransfer, store.Transfers()),
	)
	require.NoError(t, err)

	unitOfWork := uow.New(store, reg, uow.WithBackoff(0, 0))
	ids := mocks.NewMockIDGenerator()

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(usecase.NewAccountUseCase(unitOfWork, store.Accounts(), ids, false)),
		TransferHandler: handler.NewTransferHandler(usecase.NewTransferUseCase(unitOfWork, store.Accounts(), store.Transfers(), ids, false)),
		LedgerHandler:   handler.NewLedgerHandler(usecase.NewLedgerUseCase(store.Ledger())),
		HealthHandler:   handler.NewHealthHandler(nil),
		Logger:          zerolog.Nop(),
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func execute(t *testing.T, url string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--url", url}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func createAccount(t *testing.T, url string, balance string) dto.AccountResponse {
	t.Helper()

	out, err := execute(t, url, "-o", "json", "accounts", "create", "--currency", "usd", "--balance", balance)
	require.NoError(t, err, out)

	var account dto.AccountResponse
	require.NoError(t, json.Unmarshal([]byte(out), &account))
	return account
}

func TestAccountsAndTransfers(t *testing.T) {
	srv := newLedgerServer(t)

	from := createAccount(t, srv.URL, "1000")
	to := createAccount(t, srv.URL, "0")
	assert.Equal(t, "USD", from.Currency)

	out, err := execute(t, srv.URL, "transfers", "create",
		"--from", from.ID.String(), "--to", to.ID.String(), "--amount", "300")
	require.NoError(t, err, out)
	assert.Contains(t, out, "300")

	out, err = execute(t, srv.URL, "accounts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, from.ID.String())
	assert.Contains(t, out, "700")

	out, err = execute(t, srv.URL, "-o", "json", "transfers", "list", "--account", to.ID.String())
	require.NoError(t, err)
	var transfers dto.ListTransfersResponse
	require.NoError(t, json.Unmarshal([]byte(out), &transfers))
	assert.Len(t, transfers.Transfers, 1)

	out, err = execute(t, srv.URL, "ledger", "consistency")
	require.NoError(t, err)
	assert.Contains(t, out, "consistent")
}

func TestTransferErrorsSurface(t *testing.T) {
	srv := newLedgerServer(t)
	account := createAccount(t, srv.URL, "10")

	_, err := execute(t, srv.URL, "transfers", "create",
		"--from", account.ID.String(), "--to", account.ID.String(), "--amount", "1")
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestTransferCreateRequiresFlags(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", "transfers", "create", "--from", "x")
	assert.Error(t, err)
}

func TestLedgerConsistencyFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(dto.ConsistencyResponse{Status: "inconsistent", TotalBalance: 9, TotalOpeningBalance: 10})
	}))
	t.Cleanup(srv.Close)

	out, err := execute(t, srv.URL, "ledger", "consistency")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAILED")
	assert.Contains(t, out, "inconsistent")
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "http://127.0.0.1:1", "-o", "yaml", "accounts", "list")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "lon...", truncate("longerstring", 6))
	assert.Equal(t, "lo", truncate("longerstring", 2))
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, struct {
		A int `json:"a"`
	}{A: 1}))

	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}

func TestPageQuery(t *testing.T) {
	q := pageQuery(5, 10, nil)
	assert.True(t, strings.HasPrefix(q, "?"))
	assert.Contains(t, q, "limit=5")
	assert.Contains(t, q, "offset=10")
}
