package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayo6706/banking-core/internal/domain"
	"github.com/ayo6706/banking-core/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same repository methods run pooled or inside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	db DBTX
}

func NewRepository(db DBTX) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *Repository) WithTx(tx pgx.Tx) *Repository {
	return &Repository{db: tx}
}

// --- users ---

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, role, is_active, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, TRUE, NOW()) RETURNING created_at`
	err := r.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, user.PasswordHash, user.Role).Scan(&user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.IsActive = true
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, COALESCE(email, ''), password_hash, role, is_active, created_at FROM users WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, username, COALESCE(email, ''), password_hash, role, is_active, created_at FROM users WHERE username = $1`
	err := r.db.QueryRow(ctx, query, username).Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

func (r *Repository) UpdateUserPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

// --- accounts ---

const accountColumns = `id, user_id, account_number, account_type, currency, balance_micros, status, created_at, updated_at`

func scanAccount(row pgx.Row, a *models.Account) error {
	return row.Scan(&a.ID, &a.UserID, &a.AccountNumber, &a.AccountType, &a.Currency, &a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt)
}

func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `INSERT INTO accounts (id, user_id, account_number, account_type, currency, balance_micros, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		account.ID, account.UserID, account.AccountNumber, account.AccountType,
		account.Currency, account.Balance, account.Status,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *Repository) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	if err := scanAccount(r.db.QueryRow(ctx, query, id), account); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetAccountForUpdate locks the account row for the remainder of the
// enclosing transaction. Callers lock multi-account operations in
// ascending id order.
func (r *Repository) GetAccountForUpdate(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	if err := scanAccount(r.db.QueryRow(ctx, query, id), account); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return account, nil
}

func (r *Repository) ListAccountsForUser(ctx context.Context, userID uuid.UUID) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND status = $2 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID, domain.AccountStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *Repository) ListAccountIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, `SELECT id FROM accounts WHERE user_id = $1 AND status = $2`, userID, domain.AccountStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number: %w", err)
	}
	return exists, nil
}

// UpdateAccountBalance writes an absolute balance computed under a row
// lock held by the caller's transaction.
func (r *Repository) UpdateAccountBalance(ctx context.Context, id uuid.UUID, balance int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET balance_micros = $1, updated_at = NOW() WHERE id = $2`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update balance affected %d rows", tag.RowsAffected())
	}
	return nil
}

func (r *Repository) UpdateAccountDetails(ctx context.Context, id uuid.UUID, accountType, currency string) (*models.Account, error) {
	account := &models.Account{}
	query := `UPDATE accounts SET account_type = $1, currency = $2, updated_at = NOW() WHERE id = $3
		RETURNING ` + accountColumns
	if err := scanAccount(r.db.QueryRow(ctx, query, accountType, currency, id), account); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	return account, nil
}

func (r *Repository) DeactivateAccount(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET status = $1, updated_at = NOW() WHERE id = $2`, domain.AccountStatusInactive, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrAccountNotFound
	}
	return nil
}

// --- transactions ---

const transactionColumns = `id, account_id, type, amount_micros, description, reference_number, status, related_transaction_id, created_at`

func scanTransaction(row pgx.Row, t *models.Transaction) error {
	return row.Scan(&t.ID, &t.AccountID, &t.Type, &t.Amount, &t.Description, &t.ReferenceNumber, &t.Status, &t.RelatedTransactionID, &t.CreatedAt)
}

func (r *Repository) InsertTransaction(ctx context.Context, txn *models.Transaction) error {
	query := `INSERT INTO transactions (id, account_id, type, amount_micros, description, reference_number, status, related_transaction_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW()) RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		txn.ID, txn.AccountID, txn.Type, txn.Amount, txn.Description,
		txn.ReferenceNumber, txn.Status, txn.RelatedTransactionID,
	).Scan(&txn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// SetRelatedTransaction back-links an already inserted transfer leg to
// its counterpart.
func (r *Repository) SetRelatedTransaction(ctx context.Context, id, relatedID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE transactions SET related_transaction_id = $1 WHERE id = $2`, relatedID, id)
	if err != nil {
		return fmt.Errorf("failed to link transactions: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("link transactions affected %d rows", tag.RowsAffected())
	}
	return nil
}

func (r *Repository) ReferenceNumberExists(ctx context.Context, ref string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM transactions WHERE reference_number = $1)`, ref).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check reference number: %w", err)
	}
	return exists, nil
}

func (r *Repository) GetTransaction(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn := &models.Transaction{}
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	if err := scanTransaction(r.db.QueryRow(ctx, query, id), txn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

// ListTransactions returns one page of history for the given accounts,
// newest first.
func (r *Repository) ListTransactions(ctx context.Context, accountIDs []uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = ANY($1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, accountIDs, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

func (r *Repository) CountTransactions(ctx context.Context, accountIDs []uuid.UUID) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = ANY($1)`, accountIDs).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}

// TransactionStats aggregates counts and signed sums grouped by type
// over the given accounts and optional date range.
func (r *Repository) TransactionStats(ctx context.Context, accountIDs []uuid.UUID, from, to *time.Time) (*models.TransactionStats, error) {
	query := `SELECT type, COUNT(*), COALESCE(SUM(amount_micros), 0)
		FROM transactions
		WHERE account_id = ANY($1)`
	args := []any{accountIDs}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	query += " GROUP BY type"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction stats: %w", err)
	}
	defer rows.Close()

	stats := &models.TransactionStats{}
	for rows.Next() {
		var txType string
		var count, sum int64
		if err := rows.Scan(&txType, &count, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan transaction stats: %w", err)
		}
		stats.TotalTransactions += count
		stats.NetAmount += sum
		switch txType {
		case domain.TxTypeDeposit:
			stats.TotalDeposits = count
			stats.TotalDeposited = sum
		case domain.TxTypeWithdrawal:
			stats.TotalWithdrawals = count
			if sum < 0 {
				sum = -sum
			}
			stats.TotalWithdrawn = sum
		case domain.TxTypeTransfer:
			stats.TotalTransfers = count
		}
	}
	return stats, rows.Err()
}

// TransferNet returns the net signed sum across all transfer legs,
// which must be zero when the ledger is balanced.
func (r *Repository) TransferNet(ctx context.Context) (int64, error) {
	var net int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount_micros), 0) FROM transactions WHERE type = $1`, domain.TxTypeTransfer).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to compute transfer net: %w", err)
	}
	return net, nil
}

type CurrencyImbalance struct {
	Currency  string
	NetAmount int64
}

// TransferNetByCurrency breaks the transfer net down per currency for
// imbalance reporting.
func (r *Repository) TransferNetByCurrency(ctx context.Context) ([]CurrencyImbalance, error) {
	query := `SELECT a.currency, COALESCE(SUM(t.amount_micros), 0)
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		WHERE t.type = $1
		GROUP BY a.currency
		HAVING COALESCE(SUM(t.amount_micros), 0) <> 0`
	rows, err := r.db.Query(ctx, query, domain.TxTypeTransfer)
	if err != nil {
		return nil, fmt.Errorf("failed to compute transfer net by currency: %w", err)
	}
	defer rows.Close()

	var out []CurrencyImbalance
	for rows.Next() {
		var row CurrencyImbalance
		if err := rows.Scan(&row.Currency, &row.NetAmount); err != nil {
			return nil, fmt.Errorf("failed to scan currency imbalance: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
