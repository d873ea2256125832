package cashtxn

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

const tableName = "cash_transactions"

func txnColumns() bob.Mod[*dialect.SelectQuery] {
	return sm.Columns(
		"id", "tenant_id", "legal_entity_id", "operating_unit_id", "register_id",
		"session_id", "txn_no", "txn_type", "status", "amount", "currency_code",
		"counterparty_type", "counterparty_id", "counter_account_id",
		"counter_cash_register_id", "source_module", "source_entity_type",
		"source_entity_id", "integration_link_status", "idempotency_key",
		"integration_event_uid", "transfer_id", "reversal_of_transaction_id",
		"posted_journal_entry_id", "linked_cari_settlement_batch_id",
		"linked_cari_unapplied_cash_id", "created_at", "posted_at",
	)
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) one(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*CashTransaction, error) {
	queryMods := append([]bob.Mod[*dialect.SelectQuery]{txnColumns(), sm.From(tableName)}, mods...)
	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[CashTransaction]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindForTenant retrieves a transaction by id, guarded by tenant.
func (r *Reader) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashTransaction, error) {
	return r.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
}

// FindByIntegrationEventUID resolves the transaction created by an upstream
// business event, across all idempotency-key namespaces of the tenant.
func (r *Reader) FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*CashTransaction, error) {
	return r.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("integration_event_uid").EQ(psql.Arg(eventUID))),
	)
}

// FindReversalOf returns the reversal transaction of originalID, if any. The
// unique constraint guarantees at most one.
func (r *Reader) FindReversalOf(ctx context.Context, tenantID, originalID uuid.UUID) (*CashTransaction, error) {
	return r.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("reversal_of_transaction_id").EQ(psql.Arg(originalID))),
	)
}

// List returns transactions matching the filter, newest first. One extra row
// beyond the limit is returned so callers can detect another page.
func (r *Reader) List(ctx context.Context, filter *Filter) ([]*CashTransaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		txnColumns(),
		sm.From(tableName),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(filter.TenantID))),
	}
	if filter.RegisterID != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("register_id").EQ(psql.Arg(*filter.RegisterID))))
	}
	if filter.Status != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("status").EQ(psql.Arg(*filter.Status))))
	}
	if filter.TxnType != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("txn_type").EQ(psql.Arg(*filter.TxnType))))
	}
	if filter.LegalEntityIDs != nil {
		if len(filter.LegalEntityIDs) == 0 {
			// Caller has a scope covering nothing; match no rows.
			queryMods = append(queryMods, sm.Where(psql.Raw("FALSE")))
		} else {
			args := make([]any, len(filter.LegalEntityIDs))
			for i, id := range filter.LegalEntityIDs {
				args[i] = id
			}
			queryMods = append(queryMods, sm.Where(psql.Quote("legal_entity_id").In(psql.Arg(args...))))
		}
	}
	if filter.MaxCreationTime != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime))))
	}
	if filter.Limit > 0 {
		queryMods = append(queryMods, sm.Limit(filter.Limit+1))
	}
	if filter.Offset > 0 {
		queryMods = append(queryMods, sm.Offset(filter.Offset))
	}
	queryMods = append(queryMods,
		sm.OrderBy("created_at").Desc(),
		sm.OrderBy("id").Desc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[CashTransaction]())
	if err != nil {
		return nil, err
	}
	result := make([]*CashTransaction, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
