package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/scope"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// CancelTransfer cancels an INITIATED transfer together with its transfer-out
// leg, atomically.
type CancelTransfer struct {
	TenantID   uuid.UUID
	TransferID uuid.UUID

	Result TransferBundle

	eventRecorder
}

func (a *CancelTransfer) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	tr, err := writer.Transfers.FindForTenantForUpdate(ctx, a.TenantID, a.TransferID)
	if err != nil {
		return err
	}
	if tr == nil {
		return apperr.NotFound("cash transit transfer", a.TransferID)
	}
	if err := scope.Assert(ctx, scope.TypeLegalEntity, tr.LegalEntityID, "cash transit transfer"); err != nil {
		return err
	}
	if err := scope.Assert(ctx, scope.TypeOperatingUnit, tr.SourceOperatingUnitID, "source operating unit"); err != nil {
		return err
	}

	if tr.Status == transfer.StatusCanceled {
		a.Result, err = loadTransferBundle(ctx, writer, tr)
		return err
	}
	if tr.Status != transfer.StatusInitiated {
		return apperr.Validation("Only INITIATED transfers can be cancelled; transfer %s is %s", tr.ID, tr.Status)
	}

	outTxn, err := writer.Transactions.FindForTenantForUpdate(ctx, a.TenantID, tr.TransferOutTxnID)
	if err != nil {
		return err
	}
	if outTxn == nil {
		return apperr.NotFound("transfer-out transaction", tr.TransferOutTxnID)
	}
	if !outTxn.Status.Cancelable() {
		return apperr.Validation("transfer-out leg %s is %s and can no longer be cancelled", outTxn.TxnNo, outTxn.Status)
	}

	if err := writer.Transactions.UpdateStatus(ctx, a.TenantID, outTxn.ID, cashtxn.StatusCanceled); err != nil {
		return err
	}
	if err := writer.Transfers.UpdateStatus(ctx, a.TenantID, tr.ID, transfer.StatusCanceled); err != nil {
		return err
	}
	outTxn.Status = cashtxn.StatusCanceled
	tr.Status = transfer.StatusCanceled

	a.emit(events.Event{
		Name:       events.NameTransferCanceled,
		TenantID:   a.TenantID,
		EntityID:   tr.ID,
		OccurredAt: deps.now(),
	})
	a.Result = TransferBundle{Transfer: tr, OutTxn: outTxn}
	return nil
}
