package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// CancelCashTransaction cancels a DRAFT or SUBMITTED transaction. Cancelling
// a transfer-out leg cancels its transfer as well; transfer-in legs must be
// reversed instead.
type CancelCashTransaction struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID

	Result CancelCashTransactionResult

	eventRecorder
}

type CancelCashTransactionResult struct {
	Transaction *cashtxn.CashTransaction
	Replayed    bool
}

func (a *CancelCashTransaction) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	txn, linkedTransfer, err := lockTransactionWithTransfer(ctx, writer, a.TenantID, a.TransactionID)
	if err != nil {
		return err
	}

	if txn.Status == cashtxn.StatusCanceled {
		a.Result = CancelCashTransactionResult{Transaction: txn, Replayed: true}
		return nil
	}

	if txn.TxnType == cashtxn.TypeTransferIn {
		return apperr.Validation("transfer-in legs cannot be cancelled; reverse the transfer instead")
	}
	if !txn.Status.Cancelable() {
		return apperr.Validation("only DRAFT or SUBMITTED transactions can be cancelled; %s is %s", txn.TxnNo, txn.Status)
	}

	if txn.TxnType == cashtxn.TypeTransferOut && linkedTransfer != nil {
		if linkedTransfer.Status != transfer.StatusInitiated {
			return apperr.Validation("transfer-out leg cannot be cancelled once its transfer is %s", linkedTransfer.Status)
		}
		if err := writer.Transfers.UpdateStatus(ctx, a.TenantID, linkedTransfer.ID, transfer.StatusCanceled); err != nil {
			return err
		}
		linkedTransfer.Status = transfer.StatusCanceled
	}

	if err := writer.Transactions.UpdateStatus(ctx, a.TenantID, txn.ID, cashtxn.StatusCanceled); err != nil {
		return err
	}
	txn.Status = cashtxn.StatusCanceled

	a.Result = CancelCashTransactionResult{Transaction: txn}
	return nil
}
