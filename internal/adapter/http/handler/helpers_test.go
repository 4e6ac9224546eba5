package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/adapter/http/dto"
	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/usecase"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestDecodeBody(t *testing.T) {
	var dst dto.CreateAccountRequest
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(`{"currency":"USD","balance":5}`))
	if !decodeBody(rec, req, &dst) {
		t.Fatalf("expected body to decode, got %d", rec.Code)
	}
	if dst.Currency != "USD" || dst.Balance != 5 {
		t.Fatalf("unexpected request %+v", dst)
	}

	rec = httptest.NewRecorder()
	oversized := `{"currency":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(oversized))
	if decodeBody(rec, req, &dst) {
		t.Fatalf("expected oversized body to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPage(t *testing.T) {
	limit, offset := page(httptest.NewRequest(http.MethodGet, "/transfers?offset=40", nil))
	if limit != usecase.DefaultListLimit || offset != 40 {
		t.Fatalf("expected default limit and offset 40, got %d/%d", limit, offset)
	}
}

func TestParseIDParam(t *testing.T) {
	id := uuid.New()

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	got, err := parseIDParam(req, "id")
	if err != nil || got != id {
		t.Fatalf("expected %s, got %s (%v)", id, got, err)
	}

	req = setChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope")
	if _, err := parseIDParam(req, "id"); err == nil {
		t.Fatalf("expected malformed id to fail")
	}

	req = setChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "")
	if _, err := parseIDParam(req, "id"); err == nil {
		t.Fatalf("expected missing id to fail")
	}
}

func TestMapDomainError(t *testing.T) {
	conflict := &domain.ConflictError{Kind: domain.KindAccount, ID: uuid.New(), Version: 1}

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"account not found", &domain.NotFoundError{Kind: domain.KindAccount, ID: uuid.New()}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrNotFound), http.StatusNotFound},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"amount too large", domain.ErrAmountTooLarge, http.StatusBadRequest},
		{"currency mismatch", domain.ErrCurrencyMismatch, http.StatusBadRequest},
		{"invalid currency", domain.ErrInvalidCurrency, http.StatusBadRequest},
		{"negative opening balance", usecase.ErrNegativeOpeningBalance, http.StatusBadRequest},
		{"balance overflow", fmt.Errorf("credit: %w", domain.ErrBalanceOverflow), http.StatusBadRequest},
		{"retries exhausted", &domain.RetriesExhaustedError{Attempts: 10, Last: conflict}, http.StatusServiceUnavailable},
		{"bare conflict", conflict, http.StatusConflict},
		{"storage", domain.NewStorageError("commit", errors.New("io")), http.StatusInternalServerError},
		{"unsupported", domain.ErrUnsupportedOperation, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" || resp.Message != "detail" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
