package transfer

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

const tableName = "cash_transit_transfers"

func transferColumns() bob.Mod[*dialect.SelectQuery] {
	return sm.Columns(
		"id", "tenant_id", "legal_entity_id", "source_register_id",
		"target_register_id", "source_operating_unit_id", "target_operating_unit_id",
		"transfer_out_txn_id", "transfer_in_txn_id", "status", "amount",
		"currency_code", "transit_account_id", "idempotency_key",
		"integration_event_uid", "created_at", "received_at",
	)
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) one(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*CashTransitTransfer, error) {
	queryMods := append([]bob.Mod[*dialect.SelectQuery]{transferColumns(), sm.From(tableName)}, mods...)
	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[CashTransitTransfer]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindForTenant retrieves a transfer by id, guarded by tenant.
func (r *Reader) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashTransitTransfer, error) {
	return r.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
}

// FindByIntegrationEventUID resolves the transfer created by an upstream
// business event.
func (r *Reader) FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*CashTransitTransfer, error) {
	return r.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("integration_event_uid").EQ(psql.Arg(eventUID))),
	)
}

// FindByOutTxn returns the transfer whose out-leg is outTxnID, if any.
func (r *Reader) FindByOutTxn(ctx context.Context, tenantID, outTxnID uuid.UUID) (*CashTransitTransfer, error) {
	return r.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("transfer_out_txn_id").EQ(psql.Arg(outTxnID))),
	)
}

// List returns transfers matching the filter, newest first, with one extra
// row beyond the limit for page detection.
func (r *Reader) List(ctx context.Context, filter *Filter) ([]*CashTransitTransfer, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		transferColumns(),
		sm.From(tableName),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(filter.TenantID))),
	}
	if filter.SourceRegister != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("source_register_id").EQ(psql.Arg(*filter.SourceRegister))))
	}
	if filter.TargetRegister != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("target_register_id").EQ(psql.Arg(*filter.TargetRegister))))
	}
	if filter.Status != nil {
		queryMods = append(queryMods, sm.Where(psql.Quote("status").EQ(psql.Arg(*filter.Status))))
	}
	if filter.LegalEntityIDs != nil {
		if len(filter.LegalEntityIDs) == 0 {
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

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[CashTransitTransfer]())
	if err != nil {
		return nil, err
	}
	result := make([]*CashTransitTransfer, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
