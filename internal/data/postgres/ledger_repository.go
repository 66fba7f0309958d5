package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collective-funds-ledger/internal/domain/ledger"
	"github.com/collective-funds-ledger/internal/platform/persistence"
)

// LedgerRepository implements the ledger.Repository interface for
// PostgreSQL. Entries are append-only; no update or delete is exposed.
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. CreatePair must always
// run through a transactional copy.
func (r *LedgerRepository) WithTx(tx pgx.Tx) ledger.Repository {
	return &LedgerRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const entryColumns = `id, type, order_id, from_collective_id, collective_id, host_collective_id, payment_method_id, created_by_id, amount, currency, host_currency, host_currency_fx_rate, amount_in_host_currency, host_fee_in_host_currency, platform_fee_in_host_currency, payment_processor_fee_in_host_currency, net_amount_in_collective_currency, correlation_id, created_at`

const insertEntryQuery = `
	INSERT INTO ledger_entries (id, type, order_id, from_collective_id, collective_id, host_collective_id, payment_method_id, created_by_id, amount, currency, host_currency, host_currency_fx_rate, amount_in_host_currency, host_fee_in_host_currency, platform_fee_in_host_currency, payment_processor_fee_in_host_currency, net_amount_in_collective_currency, correlation_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
`

// CreatePair inserts both entries of a realized order. The pair is
// re-validated first so an unbalanced pair can never reach the database,
// whatever produced it.
func (r *LedgerRepository) CreatePair(ctx context.Context, pair *ledger.EntryPair) error {
	if err := pair.Validate(); err != nil {
		return err
	}

	for _, entry := range []*ledger.Entry{pair.Credit, pair.Debit} {
		if err := r.insertEntry(ctx, entry); err != nil {
			return err
		}
	}

	return nil
}

func (r *LedgerRepository) insertEntry(ctx context.Context, entry *ledger.Entry) error {
	_, err := r.querier.Exec(ctx, insertEntryQuery,
		entry.ID,
		entry.Type,
		entry.OrderID,
		entry.FromCollectiveID,
		entry.CollectiveID,
		entry.HostCollectiveID,
		entry.PaymentMethodID,
		entry.CreatedByID,
		entry.Amount,
		entry.Currency,
		entry.HostCurrency,
		entry.HostCurrencyFxRate,
		entry.AmountInHostCurrency,
		entry.HostFeeInHostCurrency,
		entry.PlatformFeeInHostCurrency,
		entry.PaymentProcessorFeeInHostCurrency,
		entry.NetAmountInCollectiveCurrency,
		entry.CorrelationID,
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger entry",
			"id", entry.ID.String(),
			"order_id", entry.OrderID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByID retrieves a ledger entry by its ID
func (r *LedgerRepository) GetByID(ctx context.Context, id uuid.UUID) (*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE id = $1
	`

	entry, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrEntryNotFound{EntryID: id}
		}
		r.logger.Error("Failed to get ledger entry", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return entry, nil
}

// GetByOrderID retrieves both entries realized for an order
func (r *LedgerRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE order_id = $1
		ORDER BY type ASC
	`

	rows, err := r.querier.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error("Failed to get ledger entries by order", "order_id", orderID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries by order: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// GetByCollectiveID retrieves the collective's entries, newest first
func (r *LedgerRepository) GetByCollectiveID(ctx context.Context, collectiveID uuid.UUID, limit, offset int) ([]*ledger.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM ledger_entries
		WHERE collective_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, collectiveID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get ledger entries by collective", "collective_id", collectiveID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries by collective: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// CountByCollectiveID counts the collective's entries for pagination
func (r *LedgerRepository) CountByCollectiveID(ctx context.Context, collectiveID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM ledger_entries WHERE collective_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, collectiveID).Scan(&count); err != nil {
		r.logger.Error("Failed to count ledger entries", "collective_id", collectiveID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

// balanceExpr sums an entry's host currency figures, fees included (fees
// are stored negative so plain addition deducts them), and converts the
// sum into the requested currency via the entry's own stored inverse rate
// when the host currency differs. ROUND on numeric is half away from
// zero, matching how the figures were derived at realization.
const balanceExpr = `
	COALESCE(SUM(
		CASE WHEN host_currency = $2
			THEN amount_in_host_currency + host_fee_in_host_currency + platform_fee_in_host_currency + payment_processor_fee_in_host_currency
			ELSE ROUND((amount_in_host_currency + host_fee_in_host_currency + platform_fee_in_host_currency + payment_processor_fee_in_host_currency) * host_currency_fx_rate)
		END
	), 0)::bigint
`

// CollectiveBalance computes the collective's spendable balance in the
// given currency with a single read-only aggregate. Each row is one
// perspective of a movement, so summing a collective's rows nets its
// credits against its debits.
func (r *LedgerRepository) CollectiveBalance(ctx context.Context, collectiveID uuid.UUID, currency string) (int64, error) {
	query := `
		SELECT ` + balanceExpr + `
		FROM ledger_entries
		WHERE collective_id = $1
	`

	var balance int64
	if err := r.querier.QueryRow(ctx, query, collectiveID, currency).Scan(&balance); err != nil {
		r.logger.Error("Failed to compute collective balance", "collective_id", collectiveID.String(), "error", err)
		return 0, fmt.Errorf("failed to compute collective balance: %w", err)
	}

	return balance, nil
}

// PaymentMethodBalance is the same aggregation scoped to the entries a
// single payment method funded, from the owning collective's perspective.
// Both rows of a pair carry the payment method with sign-mirrored figures;
// the collective_id filter keeps exactly one side of each movement.
func (r *LedgerRepository) PaymentMethodBalance(ctx context.Context, paymentMethodID, ownerCollectiveID uuid.UUID, currency string) (int64, error) {
	query := `
		SELECT ` + balanceExpr + `
		FROM ledger_entries
		WHERE payment_method_id = $1 AND collective_id = $3
	`

	var balance int64
	if err := r.querier.QueryRow(ctx, query, paymentMethodID, currency, ownerCollectiveID).Scan(&balance); err != nil {
		r.logger.Error("Failed to compute payment method balance", "payment_method_id", paymentMethodID.String(), "error", err)
		return 0, fmt.Errorf("failed to compute payment method balance: %w", err)
	}

	return balance, nil
}

func (r *LedgerRepository) scanOne(row pgx.Row) (*ledger.Entry, error) {
	var entry ledger.Entry
	err := row.Scan(
		&entry.ID,
		&entry.Type,
		&entry.OrderID,
		&entry.FromCollectiveID,
		&entry.CollectiveID,
		&entry.HostCollectiveID,
		&entry.PaymentMethodID,
		&entry.CreatedByID,
		&entry.Amount,
		&entry.Currency,
		&entry.HostCurrency,
		&entry.HostCurrencyFxRate,
		&entry.AmountInHostCurrency,
		&entry.HostFeeInHostCurrency,
		&entry.PlatformFeeInHostCurrency,
		&entry.PaymentProcessorFeeInHostCurrency,
		&entry.NetAmountInCollectiveCurrency,
		&entry.CorrelationID,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *LedgerRepository) scanAll(rows pgx.Rows) ([]*ledger.Entry, error) {
	var entries []*ledger.Entry
	for rows.Next() {
		entry, err := r.scanOne(rows)
		if err != nil {
			r.logger.Error("Failed to scan ledger entry", "error", err)
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ledger entries: %w", err)
	}

	return entries, nil
}
