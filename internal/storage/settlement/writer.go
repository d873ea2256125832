package settlement

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

const (
	constraintUnappliedTxn = "cari_unapplied_cash_txn_key"
	constraintUnappliedUID = "cari_unapplied_cash_integration_uid_key"
)

type Writer struct {
	tx bob.Tx
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// InsertUnapplied records unapplied cash, idempotent per cash transaction and
// per integration event uid. Replays return the winning row.
func (w *Writer) InsertUnapplied(ctx context.Context, create *UnappliedCreate) (*UnappliedCash, bool, error) {
	if _, err := bob.Exec(ctx, w.tx, psql.RawQuery("SAVEPOINT unapplied_insert")); err != nil {
		return nil, false, err
	}

	query := psql.Insert(
		im.Into(unappliedTable,
			"tenant_id", "cash_transaction_id", "counterparty_type", "counterparty_id",
			"amount", "currency_code", "status", "integration_event_uid",
		),
		im.Values(psql.Arg(
			create.TenantID, create.CashTransactionID, create.CounterpartyType,
			create.CounterpartyID, create.Amount, create.CurrencyCode,
			UnappliedStatusOpen, create.IntegrationEventUID,
		)),
		im.Returning(
			"id", "tenant_id", "cash_transaction_id", "counterparty_type",
			"counterparty_id", "amount", "currency_code", "status",
			"integration_event_uid", "created_at",
		),
	)

	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[UnappliedCash]())
	if err == nil {
		if _, rerr := bob.Exec(ctx, w.tx, psql.RawQuery("RELEASE SAVEPOINT unapplied_insert")); rerr != nil {
			return nil, false, rerr
		}
		return &row, false, nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return nil, false, err
	}
	if _, rerr := bob.Exec(ctx, w.tx, psql.RawQuery("ROLLBACK TO SAVEPOINT unapplied_insert")); rerr != nil {
		return nil, false, rerr
	}

	switch pqErr.Constraint {
	case constraintUnappliedTxn, constraintUnappliedUID:
		winner, findErr := w.FindUnappliedByTxn(ctx, create.TenantID, create.CashTransactionID)
		if findErr != nil {
			return nil, false, findErr
		}
		if winner != nil {
			return winner, true, nil
		}
	}
	return nil, false, err
}

// InsertBatch creates a settlement batch header with its allocation lines.
// The allocation arithmetic itself lives with the cari settler.
func (w *Writer) InsertBatch(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, currency string, allocations []AllocationCreate) (*Batch, error) {
	query := psql.Insert(
		im.Into(batchesTable, "tenant_id", "total_amount", "currency_code"),
		im.Values(psql.Arg(tenantID, total, currency)),
		im.Returning("id", "tenant_id", "cash_transaction_id", "total_amount", "currency_code", "created_at"),
	)
	batch, err := bob.One(ctx, w.tx, query, scan.StructMapper[Batch]())
	if err != nil {
		return nil, err
	}

	for _, alloc := range allocations {
		_, err = bob.Exec(ctx, w.tx, psql.Insert(
			im.Into(allocationsTable, "tenant_id", "batch_id", "open_item_id", "amount"),
			im.Values(psql.Arg(tenantID, batch.ID, alloc.OpenItemID, alloc.Amount)),
		))
		if err != nil {
			return nil, err
		}
	}
	return &batch, nil
}

// ClaimBatch ties a batch to its cash transaction, but only if the batch is
// not claimed yet. False means another transaction holds the batch.
func (w *Writer) ClaimBatch(ctx context.Context, tenantID, batchID, cashTransactionID uuid.UUID) (bool, error) {
	result, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(batchesTable),
		um.SetCol("cash_transaction_id").ToArg(cashTransactionID),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(batchID))),
		um.Where(psql.Quote("cash_transaction_id").IsNull()),
	))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
