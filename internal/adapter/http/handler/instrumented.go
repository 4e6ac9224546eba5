package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/infrastructure/metrics"
	"github.com/iho/optiledger/internal/usecase"
)

// InstrumentAccounts counts created accounts.
func InstrumentAccounts(svc AccountService, m *metrics.Metrics) AccountService {
	return &instrumentedAccounts{AccountService: svc, m: m}
}

type instrumentedAccounts struct {
	AccountService
	m *metrics.Metrics
}

func (s *instrumentedAccounts) CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error) {
	account, err := s.AccountService.CreateAccount(ctx, input)
	if err == nil {
		s.m.AccountsCreated.Inc()
	}
	return account, err
}

// InstrumentTransfers counts created transfers and classifies failures.
func InstrumentTransfers(svc TransferService, m *metrics.Metrics) TransferService {
	return &instrumentedTransfers{TransferService: svc, m: m}
}

type instrumentedTransfers struct {
	TransferService
	m *metrics.Metrics
}

func (s *instrumentedTransfers) CreateTransfer(ctx context.Context, input usecase.CreateTransferInput) (*domain.Transfer, error) {
	transfer, err := s.TransferService.CreateTransfer(ctx, input)
	if err != nil {
		s.m.TransferErrors.WithLabelValues(errorType(err)).Inc()
		return nil, err
	}

	s.m.TransfersCreated.Inc()
	s.m.TransferAmount.Observe(float64(transfer.Amount))
	return transfer, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrRetriesExhausted):
		return "retries_exhausted"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrStorage):
		return "storage"
	case mapDomainError(err) == http.StatusBadRequest:
		return "validation"
	default:
		return "other"
	}
}
