package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/iho/optiledger/internal/adapter/http/dto"
	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/usecase"
)

// AccountService is the account use case surface exposed over HTTP.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListAccounts(ctx context.Context, input usecase.ListAccountsInput) ([]*domain.Account, error)
}

// AccountHandler serves /accounts.
type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Create opens an account with its opening balance.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.accounts.CreateAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to create account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(created))
}

// Get returns the committed state of one account, version included.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account ID", err.Error())
		return
	}

	found, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(found))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	found, err := h.accounts.ListAccounts(r.Context(), usecase.ListAccountsInput{Limit: limit, Offset: offset})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(found),
		Total:    int64(len(found)),
	})
}
