package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/optiledger/internal/domain"
	"github.com/iho/optiledger/internal/infrastructure/postgres/generated"
	"github.com/iho/optiledger/internal/uow"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	queries *generated.Queries
	now     func() time.Time
}

// NewAccountRepository creates a new AccountRepository. Reads go through db
// directly; writes use the transaction handed in by the unit of work.
func NewAccountRepository(db generated.DBTX) *AccountRepository {
	return &AccountRepository{
		queries: generated.New(db),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save inserts a new account.
func (r *AccountRepository) Save(ctx context.Context, tx uow.Transaction, account *domain.Account) (*domain.Account, error) {
	q, err := queriesFor(tx)
	if err != nil {
		return nil, err
	}

	row, err := q.CreateAccount(ctx, generated.CreateAccountParams{
		ID:             account.ID,
		Currency:       account.Currency,
		Balance:        account.Balance,
		OpeningBalance: account.OpeningBalance,
		Version:        account.Version,
		CreatedAt:      timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:      timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return nil, classifyInsert("insert account", err)
	}

	return rowToAccount(row), nil
}

// Update writes the new balance only if the stored version still matches
// the version the account was read at.
func (r *AccountRepository) Update(ctx context.Context, tx uow.Transaction, account *domain.Account) error {
	q, err := queriesFor(tx)
	if err != nil {
		return err
	}

	updatedAt := account.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = r.now()
	}

	rows, err := q.UpdateAccountBalanceIfVersion(ctx, generated.UpdateAccountBalanceIfVersionParams{
		ID:        account.ID,
		Balance:   account.Balance,
		Version:   account.Version,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		if isConcurrencyFailure(err) {
			return domain.NewConflictError(account)
		}
		return domain.NewStorageError("update account", err)
	}

	if rows == 0 {
		return domain.NewConflictError(account)
	}

	return nil
}

// FindByID retrieves an account by ID.
func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	row, err := r.queries.GetAccountByID(ctx, id)
	if err != nil {
		return nil, classify("get account", domain.KindAccount, id, err)
	}

	return rowToAccount(row), nil
}

// FindAll lists every account ordered by ID.
func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	rows, err := r.queries.ListAccounts(ctx)
	if err != nil {
		return nil, domain.NewStorageError("list accounts", err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:             row.ID,
		Currency:       row.Currency,
		Balance:        row.Balance,
		OpeningBalance: row.OpeningBalance,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}
