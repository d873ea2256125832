package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/journal"
	"github.com/carson-networks/cashdesk-server/internal/scope"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// PostCashTransaction posts a transaction to the journal. Posting an
// already-POSTED transaction is an idempotent no-op returning the original
// journal entry id.
type PostCashTransaction struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID

	Result PostCashTransactionResult

	eventRecorder
}

type PostCashTransactionResult struct {
	Transaction    *cashtxn.CashTransaction
	JournalEntryID uuid.UUID
	Replayed       bool
}

func (a *PostCashTransaction) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	txn, linkedTransfer, err := lockTransactionWithTransfer(ctx, writer, a.TenantID, a.TransactionID)
	if err != nil {
		return err
	}

	if txn.Status == cashtxn.StatusPosted {
		if txn.PostedJournalEntryID == nil {
			return apperr.Conflict("transaction %s is POSTED without a journal entry", txn.ID)
		}
		a.Result = PostCashTransactionResult{Transaction: txn, JournalEntryID: *txn.PostedJournalEntryID, Replayed: true}
		return nil
	}
	if !txn.Status.Postable() {
		return apperr.Validation("only DRAFT, SUBMITTED or APPROVED transactions can be posted; %s is %s", txn.TxnNo, txn.Status)
	}

	reg, err := writer.Registers.FindForTenant(ctx, a.TenantID, txn.RegisterID)
	if err != nil {
		return err
	}
	if reg == nil {
		return apperr.NotFound("cash register", txn.RegisterID)
	}
	if reg.Status != register.StatusActive {
		return apperr.Validation("cash register %s is not active", reg.Name)
	}

	sessionID := txn.SessionID
	if reg.SessionMode == register.SessionModeRequired {
		sessionID, err = resolveSession(ctx, writer, reg, txn.SessionID)
		if err != nil {
			return err
		}
	}

	now := deps.now()
	journalEntryID, err := deps.Journal.Post(ctx, writer, journal.Context{
		TenantID:      txn.TenantID,
		TransactionID: txn.ID,
		TxnType:       txn.TxnType.String(),
		Description:   txn.TxnNo,
		Amount:        txn.Amount,
		CurrencyCode:  txn.CurrencyCode,
		EntryDate:     now,
	})
	if err != nil {
		return err
	}

	if err := writer.Transactions.MarkPosted(ctx, a.TenantID, txn.ID, journalEntryID, sessionID, now); err != nil {
		return err
	}
	txn.Status = cashtxn.StatusPosted
	txn.PostedJournalEntryID = &journalEntryID
	txn.SessionID = sessionID
	txn.PostedAt = &now

	if txn.TxnType == cashtxn.TypeTransferOut && linkedTransfer != nil {
		if err := advanceTransferInTransit(ctx, writer, linkedTransfer); err != nil {
			return err
		}
	}

	a.emit(events.Event{
		Name:       events.NameTransactionPosted,
		TenantID:   a.TenantID,
		EntityID:   txn.ID,
		OccurredAt: now,
	})
	a.Result = PostCashTransactionResult{Transaction: txn, JournalEntryID: journalEntryID}
	return nil
}

// lockTransactionWithTransfer acquires locks in the fixed order: the linked
// transfer row first (when one exists), then the transaction row. The
// transaction is re-read under its lock so state observed before locking
// cannot go stale.
func lockTransactionWithTransfer(ctx context.Context, writer *storage.Writer, tenantID, transactionID uuid.UUID) (*cashtxn.CashTransaction, *transfer.CashTransitTransfer, error) {
	peek, err := writer.Transactions.FindForTenant(ctx, tenantID, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if peek == nil {
		return nil, nil, apperr.NotFound("cash transaction", transactionID)
	}

	var linkedTransfer *transfer.CashTransitTransfer
	if peek.TransferID != nil {
		linkedTransfer, err = writer.Transfers.FindForTenantForUpdate(ctx, tenantID, *peek.TransferID)
		if err != nil {
			return nil, nil, err
		}
	}

	txn, err := writer.Transactions.FindForTenantForUpdate(ctx, tenantID, transactionID)
	if err != nil {
		return nil, nil, err
	}
	if txn == nil {
		return nil, nil, apperr.NotFound("cash transaction", transactionID)
	}

	if err := scope.Assert(ctx, scope.TypeLegalEntity, txn.LegalEntityID, "cash transaction "+txn.TxnNo); err != nil {
		return nil, nil, err
	}
	if err := scope.Assert(ctx, scope.TypeOperatingUnit, txn.OperatingUnitID, "cash transaction "+txn.TxnNo); err != nil {
		return nil, nil, err
	}
	return txn, linkedTransfer, nil
}

// advanceTransferInTransit moves the transfer forward when its out-leg posts.
// IN_TRANSIT and RECEIVED states mean a retry; anything else is a conflict
// with a concurrent cancel.
func advanceTransferInTransit(ctx context.Context, writer *storage.Writer, tr *transfer.CashTransitTransfer) error {
	switch tr.Status {
	case transfer.StatusInitiated:
		return writer.Transfers.UpdateStatus(ctx, tr.TenantID, tr.ID, transfer.StatusInTransit)
	case transfer.StatusInTransit, transfer.StatusReceived:
		return nil
	default:
		return apperr.Validation("transfer %s is %s and its out-leg can no longer be posted", tr.ID, tr.Status)
	}
}
