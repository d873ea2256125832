package cashtxn

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

// Constraint names inspected when an insert loses a duplicate-key race.
const (
	constraintIdemKey        = "cash_transactions_idem_key"
	constraintIntegrationUID = "cash_transactions_integration_uid_key"
	constraintReversalOf     = "cash_transactions_reversal_of_key"
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

// FindForTenantForUpdate locks the transaction row for the remainder of the
// unit of work. When the transaction belongs to a transfer, the transfer row
// must already be locked (fixed acquisition order).
func (w *Writer) FindForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashTransaction, error) {
	return w.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
}

// FindByIdempotencyKeyForUpdate re-checks the idempotency key under a row
// lock before an insert is attempted.
func (w *Writer) FindByIdempotencyKeyForUpdate(ctx context.Context, tenantID, registerID uuid.UUID, key string) (*CashTransaction, error) {
	return w.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("register_id").EQ(psql.Arg(registerID))),
		sm.Where(psql.Quote("idempotency_key").EQ(psql.Arg(key))),
		sm.ForUpdate(),
	)
}

// NextTxnSeq advances the per-legal-entity-year counter inside the current
// transaction. Numbers are never duplicated under concurrency; gaps appear
// when the enclosing transaction rolls back.
func (w *Writer) NextTxnSeq(ctx context.Context, tenantID, legalEntityID uuid.UUID, year int) (int64, error) {
	query := psql.RawQuery(
		`INSERT INTO txn_counters (tenant_id, legal_entity_id, year, last_no)
		 VALUES ($1, $2, $3, 1)
		 ON CONFLICT (tenant_id, legal_entity_id, year)
		 DO UPDATE SET last_no = txn_counters.last_no + 1
		 RETURNING last_no`,
		tenantID, legalEntityID, year,
	)
	return bob.One(ctx, w.tx, query, scan.SingleColumnMapper[int64])
}

// Insert attempts the create and resolves duplicate-key races into replays.
// The second return is true when the returned row was written by an earlier
// or concurrent request with the same idempotency key, integration event uid,
// or reversal target. Unrecognized constraint violations surface unchanged.
//
// The insert runs under a savepoint so a violation does not poison the
// enclosing transaction before the winning row is re-fetched.
func (w *Writer) Insert(ctx context.Context, create *CreateRow) (*CashTransaction, bool, error) {
	if _, err := bob.Exec(ctx, w.tx, psql.RawQuery("SAVEPOINT cash_txn_insert")); err != nil {
		return nil, false, err
	}

	query := psql.Insert(
		im.Into(tableName,
			"tenant_id", "legal_entity_id", "operating_unit_id", "register_id",
			"session_id", "txn_no", "txn_type", "status", "amount", "currency_code",
			"counterparty_type", "counterparty_id", "counter_account_id",
			"counter_cash_register_id", "source_module", "source_entity_type",
			"source_entity_id", "idempotency_key", "integration_event_uid",
			"transfer_id", "reversal_of_transaction_id",
		),
		im.Values(psql.Arg(
			create.TenantID, create.LegalEntityID, create.OperatingUnitID,
			create.RegisterID, create.SessionID, create.TxnNo, create.TxnType,
			create.Status, create.Amount, create.CurrencyCode,
			create.CounterpartyType, create.CounterpartyID, create.CounterAccountID,
			create.CounterCashRegisterID, create.SourceModule, create.SourceEntityType,
			create.SourceEntityID, create.IdempotencyKey, create.IntegrationEventUID,
			create.TransferID, create.ReversalOfTransactionID,
		)),
		im.Returning(
			"id", "tenant_id", "legal_entity_id", "operating_unit_id", "register_id",
			"session_id", "txn_no", "txn_type", "status", "amount", "currency_code",
			"counterparty_type", "counterparty_id", "counter_account_id",
			"counter_cash_register_id", "source_module", "source_entity_type",
			"source_entity_id", "integration_link_status", "idempotency_key",
			"integration_event_uid", "transfer_id", "reversal_of_transaction_id",
			"posted_journal_entry_id", "linked_cari_settlement_batch_id",
			"linked_cari_unapplied_cash_id", "created_at", "posted_at",
		),
	)

	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[CashTransaction]())
	if err == nil {
		if _, rerr := bob.Exec(ctx, w.tx, psql.RawQuery("RELEASE SAVEPOINT cash_txn_insert")); rerr != nil {
			return nil, false, rerr
		}
		return &row, false, nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return nil, false, err
	}
	if _, rerr := bob.Exec(ctx, w.tx, psql.RawQuery("ROLLBACK TO SAVEPOINT cash_txn_insert")); rerr != nil {
		return nil, false, rerr
	}

	var winner *CashTransaction
	var findErr error
	switch pqErr.Constraint {
	case constraintIdemKey:
		winner, findErr = w.FindByIdempotencyKeyForUpdate(ctx, create.TenantID, create.RegisterID, create.IdempotencyKey)
	case constraintIntegrationUID:
		if create.IntegrationEventUID != nil {
			winner, findErr = w.FindByIntegrationEventUID(ctx, create.TenantID, *create.IntegrationEventUID)
		}
	case constraintReversalOf:
		if create.ReversalOfTransactionID != nil {
			winner, findErr = w.FindReversalOf(ctx, create.TenantID, *create.ReversalOfTransactionID)
		}
	}
	if findErr != nil {
		return nil, false, findErr
	}
	if winner == nil {
		// Constraint fired but no matching row is visible; re-raise.
		return nil, false, err
	}
	return winner, true, nil
}

// MarkPosted transitions the row to POSTED with its journal entry reference.
func (w *Writer) MarkPosted(ctx context.Context, tenantID, id, journalEntryID uuid.UUID, sessionID *uuid.UUID, postedAt time.Time) error {
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(tableName),
		um.SetCol("status").ToArg(StatusPosted),
		um.SetCol("posted_journal_entry_id").ToArg(journalEntryID),
		um.SetCol("posted_at").ToArg(postedAt),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if sessionID != nil {
		mods = append(mods, um.SetCol("session_id").ToArg(*sessionID))
	}
	_, err := bob.Exec(ctx, w.tx, psql.Update(mods...))
	return err
}

// UpdateStatus sets the row's status without touching anything else.
func (w *Writer) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error {
	_, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(tableName),
		um.SetCol("status").ToArg(status),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	))
	return err
}

// SetTransferID back-links a transfer leg to its transfer row.
func (w *Writer) SetTransferID(ctx context.Context, tenantID, id, transferID uuid.UUID) error {
	_, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(tableName),
		um.SetCol("transfer_id").ToArg(transferID),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	))
	return err
}

// ClaimUnappliedLink links the transaction to an unapplied-cash row, but only
// if no link exists yet. The affected-row count closes the read-then-write
// race; false means another request claimed the slot first.
func (w *Writer) ClaimUnappliedLink(ctx context.Context, tenantID, id, unappliedID uuid.UUID) (bool, error) {
	result, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(tableName),
		um.SetCol("linked_cari_unapplied_cash_id").ToArg(unappliedID),
		um.SetCol("integration_link_status").ToArg(LinkStatusLinked),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("linked_cari_unapplied_cash_id").IsNull()),
		um.Where(psql.Quote("linked_cari_settlement_batch_id").IsNull()),
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

// ClaimBatchLink links the transaction to a settlement batch under the same
// affected-row-count discipline as ClaimUnappliedLink.
func (w *Writer) ClaimBatchLink(ctx context.Context, tenantID, id, batchID uuid.UUID) (bool, error) {
	result, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(tableName),
		um.SetCol("linked_cari_settlement_batch_id").ToArg(batchID),
		um.SetCol("integration_link_status").ToArg(LinkStatusLinked),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("linked_cari_settlement_batch_id").IsNull()),
		um.Where(psql.Quote("linked_cari_unapplied_cash_id").IsNull()),
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
