package transfer

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

const (
	constraintIdemKey        = "cash_transit_transfers_idem_key"
	constraintIntegrationUID = "cash_transit_transfers_integration_uid_key"
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

// FindForTenantForUpdate locks the transfer row. Transfer rows are always
// locked before their linked transaction rows.
func (w *Writer) FindForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashTransitTransfer, error) {
	return w.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
}

// FindByIdempotencyKeyForUpdate re-checks the initiate idempotency key under
// a row lock before an insert is attempted.
func (w *Writer) FindByIdempotencyKeyForUpdate(ctx context.Context, tenantID, sourceRegisterID uuid.UUID, key string) (*CashTransitTransfer, error) {
	return w.one(ctx,
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("source_register_id").EQ(psql.Arg(sourceRegisterID))),
		sm.Where(psql.Quote("idempotency_key").EQ(psql.Arg(key))),
		sm.ForUpdate(),
	)
}

// Insert attempts the create and resolves duplicate-key races into replays,
// mirroring the cash transaction insert discipline.
func (w *Writer) Insert(ctx context.Context, create *CreateRow) (*CashTransitTransfer, bool, error) {
	if _, err := bob.Exec(ctx, w.tx, psql.RawQuery("SAVEPOINT transfer_insert")); err != nil {
		return nil, false, err
	}

	query := psql.Insert(
		im.Into(tableName,
			"tenant_id", "legal_entity_id", "source_register_id", "target_register_id",
			"source_operating_unit_id", "target_operating_unit_id", "transfer_out_txn_id",
			"status", "amount", "currency_code", "transit_account_id",
			"idempotency_key", "integration_event_uid",
		),
		im.Values(psql.Arg(
			create.TenantID, create.LegalEntityID, create.SourceRegisterID,
			create.TargetRegisterID, create.SourceOperatingUnitID,
			create.TargetOperatingUnitID, create.TransferOutTxnID,
			StatusInitiated, create.Amount, create.CurrencyCode,
			create.TransitAccountID, create.IdempotencyKey, create.IntegrationEventUID,
		)),
		im.Returning(
			"id", "tenant_id", "legal_entity_id", "source_register_id",
			"target_register_id", "source_operating_unit_id", "target_operating_unit_id",
			"transfer_out_txn_id", "transfer_in_txn_id", "status", "amount",
			"currency_code", "transit_account_id", "idempotency_key",
			"integration_event_uid", "created_at", "received_at",
		),
	)

	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[CashTransitTransfer]())
	if err == nil {
		if _, rerr := bob.Exec(ctx, w.tx, psql.RawQuery("RELEASE SAVEPOINT transfer_insert")); rerr != nil {
			return nil, false, rerr
		}
		return &row, false, nil
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code.Name() != "unique_violation" {
		return nil, false, err
	}
	if _, rerr := bob.Exec(ctx, w.tx, psql.RawQuery("ROLLBACK TO SAVEPOINT transfer_insert")); rerr != nil {
		return nil, false, rerr
	}

	var winner *CashTransitTransfer
	var findErr error
	switch pqErr.Constraint {
	case constraintIdemKey:
		winner, findErr = w.FindByIdempotencyKeyForUpdate(ctx, create.TenantID, create.SourceRegisterID, create.IdempotencyKey)
	case constraintIntegrationUID:
		if create.IntegrationEventUID != nil {
			winner, findErr = w.FindByIntegrationEventUID(ctx, create.TenantID, *create.IntegrationEventUID)
		}
	}
	if findErr != nil {
		return nil, false, findErr
	}
	if winner == nil {
		return nil, false, err
	}
	return winner, true, nil
}

// UpdateStatus sets the transfer status.
func (w *Writer) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error {
	_, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(tableName),
		um.SetCol("status").ToArg(status),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	))
	return err
}

// MarkReceived records the in-leg and completes the transfer.
func (w *Writer) MarkReceived(ctx context.Context, tenantID, id, inTxnID uuid.UUID, receivedAt time.Time) error {
	_, err := bob.Exec(ctx, w.tx, psql.Update(
		um.Table(tableName),
		um.SetCol("status").ToArg(StatusReceived),
		um.SetCol("transfer_in_txn_id").ToArg(inTxnID),
		um.SetCol("received_at").ToArg(receivedAt),
		um.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	))
	return err
}
