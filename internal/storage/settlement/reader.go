package settlement

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

const (
	unappliedTable   = "cari_unapplied_cash"
	batchesTable     = "cari_settlement_batches"
	allocationsTable = "cari_settlement_allocations"
)

func unappliedColumns() bob.Mod[*dialect.SelectQuery] {
	return sm.Columns(
		"id", "tenant_id", "cash_transaction_id", "counterparty_type",
		"counterparty_id", "amount", "currency_code", "status",
		"integration_event_uid", "created_at",
	)
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindUnappliedByTxn returns the unapplied-cash record for a cash
// transaction, or (nil, nil). The unique constraint guarantees at most one.
func (r *Reader) FindUnappliedByTxn(ctx context.Context, tenantID, cashTransactionID uuid.UUID) (*UnappliedCash, error) {
	query := psql.Select(
		unappliedColumns(),
		sm.From(unappliedTable),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("cash_transaction_id").EQ(psql.Arg(cashTransactionID))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[UnappliedCash]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindBatchForTenant retrieves a settlement batch header, guarded by tenant.
func (r *Reader) FindBatchForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error) {
	query := psql.Select(
		sm.Columns("id", "tenant_id", "cash_transaction_id", "total_amount", "currency_code", "created_at"),
		sm.From(batchesTable),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[Batch]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListUnapplied returns open unapplied-cash records for the tenant, newest
// first.
func (r *Reader) ListUnapplied(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*UnappliedCash, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		unappliedColumns(),
		sm.From(unappliedTable),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("status").EQ(psql.Arg(UnappliedStatusOpen))),
		sm.OrderBy("created_at").Desc(),
		sm.OrderBy("id").Desc(),
	}
	if limit > 0 {
		queryMods = append(queryMods, sm.Limit(limit+1))
	}
	if offset > 0 {
		queryMods = append(queryMods, sm.Offset(offset))
	}
	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[UnappliedCash]())
	if err != nil {
		return nil, err
	}
	result := make([]*UnappliedCash, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
