package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/adapter/http/dto"
	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/usecase"
)

type transferServiceStub struct {
	createFn func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*domain.Transfer, error)
	listFn   func(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error)
}

func (s *transferServiceStub) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
	return s.createFn(ctx, input)
}

func (s *transferServiceStub) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error) {
	return s.getFn(ctx, id)
}

func (s *transferServiceStub) ListTransfers(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error) {
	return s.listFn(ctx, input)
}

func TestTransferHandler_Create_Success(t *testing.T) {
	from, to := uuid.New(), uuid.New()
	transfer := &domain.Transfer{ID: uuid.New(), FromAccountID: from, ToAccountID: to, Amount: 300, Currency: "USD"}
	var captured usecase.CreateTransferInput

	handler := NewTransferHandler(&transferServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
			captured = input
			return transfer, nil
		},
	})

	body, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: from.String(),
		ToAccountID:   to.String(),
		Amount:        300,
	})
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.FromAccountID != from || captured.ToAccountID != to || captured.Amount != 300 {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != transfer.ID || resp.Amount != 300 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransferHandler_Create_Errors(t *testing.T) {
	valid, _ := json.Marshal(dto.CreateTransferRequest{
		FromAccountID: uuid.NewString(),
		ToAccountID:   uuid.NewString(),
		Amount:        10,
	})
	badID, _ := json.Marshal(dto.CreateTransferRequest{FromAccountID: "x", ToAccountID: uuid.NewString(), Amount: 10})

	tests := []struct {
		name   string
		body   []byte
		err    error
		status int
	}{
		{"invalid json", []byte("{"), nil, http.StatusBadRequest},
		{"invalid id", badID, nil, http.StatusBadRequest},
		{"same account", valid, domain.ErrSameAccount, http.StatusBadRequest},
		{"account missing", valid, &domain.NotFoundError{Kind: domain.KindAccount, ID: uuid.New()}, http.StatusNotFound},
		{"contention", valid, &domain.RetriesExhaustedError{Attempts: 10, Last: domain.ErrConflict}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransferHandler(&transferServiceStub{
				createFn: func(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
					if tt.err == nil {
						t.Fatal("CreateTransfer should not be called")
					}
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewReader(tt.body))
			rec := httptest.NewRecorder()

			handler.Create(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestTransferHandler_Get_NotFound(t *testing.T) {
	id := uuid.New()
	handler := NewTransferHandler(&transferServiceStub{
		getFn: func(ctx context.Context, got uuid.UUID) (*domain.Transfer, error) {
			if got != id {
				t.Fatalf("expected id %s, got %s", id, got)
			}
			return nil, &domain.NotFoundError{Kind: domain.KindTransfer, ID: got}
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/transfers/"+id.String(), nil), "id", id.String())
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTransferHandler_List_FiltersByAccount(t *testing.T) {
	accountID := uuid.New()
	handler := NewTransferHandler(&transferServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error) {
			if input.AccountID == nil || *input.AccountID != accountID {
				t.Fatalf("expected account filter %s, got %+v", accountID, input.AccountID)
			}
			if input.Limit != 3 {
				t.Fatalf("expected limit 3, got %d", input.Limit)
			}
			return &usecase.TransferPage{Transfers: []*domain.Transfer{{ID: uuid.New()}}, Total: 7}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transfers?limit=3&account_id="+accountID.String(), nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.ListTransfersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transfers) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(resp.Transfers))
	}
	if resp.Total != 7 {
		t.Fatalf("expected total 7 across pages, got %d", resp.Total)
	}
}

func TestTransferHandler_List_InvalidAccountFilter(t *testing.T) {
	handler := NewTransferHandler(&transferServiceStub{})

	req := httptest.NewRequest(http.MethodGet, "/transfers?account_id=nope", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransferHandler_ListByAccount(t *testing.T) {
	accountID := uuid.New()
	handler := NewTransferHandler(&transferServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error) {
			if input.AccountID == nil || *input.AccountID != accountID {
				t.Fatalf("expected account filter %s", accountID)
			}
			return &usecase.TransferPage{}, nil
		},
	})

	req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", accountID.String())
	rec := httptest.NewRecorder()

	handler.ListByAccount(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
