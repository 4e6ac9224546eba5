package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/adapter/http/dto"
	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*domain.Transfer, error)
	ListTransfers(ctx context.Context, input usecase.ListTransfersInput) (*usecase.TransferPage, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create creates a new transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if !decodeBody(w, r, &req) {
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	transfer, err := h.transferUC.CreateTransfer(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(transfer))
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transfer ID", err.Error())
		return
	}

	transfer, err := h.transferUC.GetTransfer(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get transfer", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// List lists transfers, optionally filtered by ?account_id=.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)
	input := usecase.ListTransfersInput{Limit: limit, Offset: offset}

	if raw := r.URL.Query().Get("account_id"); raw != "" {
		accountID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
			return
		}
		input.AccountID = &accountID
	}

	h.list(w, r, input)
}

// ListByAccount lists transfers touching the account in the path.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	limit, offset := page(r)
	h.list(w, r, usecase.ListTransfersInput{AccountID: &accountID, Limit: limit, Offset: offset})
}

func (h *TransferHandler) list(w http.ResponseWriter, r *http.Request, input usecase.ListTransfersInput) {
	result, err := h.transferUC.ListTransfers(r.Context(), input)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListTransfersResponse{
		Transfers: dto.TransfersFromDomain(result.Transfers),
		Total:     result.Total,
	})
}
