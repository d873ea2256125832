package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/journal"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// ReverseCashTransaction reverses a POSTED transaction by creating and
// posting a compensating transaction. A transaction has at most one reversal;
// repeat calls replay it.
type ReverseCashTransaction struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID

	Result ReverseCashTransactionResult

	eventRecorder
}

type ReverseCashTransactionResult struct {
	Original *cashtxn.CashTransaction
	Reversal *cashtxn.CashTransaction
	Replayed bool
}

func (a *ReverseCashTransaction) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	txn, linkedTransfer, err := lockTransactionWithTransfer(ctx, writer, a.TenantID, a.TransactionID)
	if err != nil {
		return err
	}

	if txn.ReversalOfTransactionID != nil {
		return apperr.Validation("transaction %s is itself a reversal and cannot be reversed", txn.TxnNo)
	}

	existing, err := writer.Transactions.FindReversalOf(ctx, a.TenantID, txn.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		a.Result = ReverseCashTransactionResult{Original: txn, Reversal: existing, Replayed: true}
		return nil
	}

	if txn.Status != cashtxn.StatusPosted {
		return apperr.Validation("only POSTED transactions can be reversed; %s is %s", txn.TxnNo, txn.Status)
	}
	if txn.TxnType == cashtxn.TypeTransferOut && linkedTransfer != nil && linkedTransfer.Status == transfer.StatusReceived {
		return apperr.Validation("transfer %s is RECEIVED; reverse the transfer-in leg first", linkedTransfer.ID)
	}

	year := deps.now().Year()
	seq, err := writer.Transactions.NextTxnSeq(ctx, a.TenantID, txn.LegalEntityID, year)
	if err != nil {
		return err
	}

	reversal, replayed, err := writer.Transactions.Insert(ctx, &cashtxn.CreateRow{
		TenantID:                a.TenantID,
		LegalEntityID:           txn.LegalEntityID,
		OperatingUnitID:         txn.OperatingUnitID,
		RegisterID:              txn.RegisterID,
		TxnNo:                   cashtxn.FormatTxnNo(year, seq),
		TxnType:                 txn.TxnType,
		Status:                  cashtxn.StatusDraft,
		Amount:                  txn.Amount,
		CurrencyCode:            txn.CurrencyCode,
		CounterpartyType:        txn.CounterpartyType,
		CounterpartyID:          txn.CounterpartyID,
		CounterAccountID:        txn.CounterAccountID,
		CounterCashRegisterID:   txn.CounterCashRegisterID,
		SourceModule:            txn.SourceModule,
		SourceEntityType:        txn.SourceEntityType,
		SourceEntityID:          txn.SourceEntityID,
		IdempotencyKey:          childKey("REV", txn.IdempotencyKey),
		IntegrationEventUID:     childUID("REV", txn.IntegrationEventUID),
		TransferID:              txn.TransferID,
		ReversalOfTransactionID: &txn.ID,
	})
	if err != nil {
		return err
	}
	if replayed {
		a.Result = ReverseCashTransactionResult{Original: txn, Reversal: reversal, Replayed: true}
		return nil
	}

	now := deps.now()
	journalEntryID, err := deps.Journal.Post(ctx, writer, journal.Context{
		TenantID:      a.TenantID,
		TransactionID: reversal.ID,
		TxnType:       reversal.TxnType.String(),
		Description:   "reversal of " + txn.TxnNo,
		Amount:        reversal.Amount,
		CurrencyCode:  reversal.CurrencyCode,
		EntryDate:     now,
	})
	if err != nil {
		return err
	}
	if err := writer.Transactions.MarkPosted(ctx, a.TenantID, reversal.ID, journalEntryID, nil, now); err != nil {
		return err
	}
	reversal.Status = cashtxn.StatusPosted
	reversal.PostedJournalEntryID = &journalEntryID
	reversal.PostedAt = &now

	if err := writer.Transactions.UpdateStatus(ctx, a.TenantID, txn.ID, cashtxn.StatusReversed); err != nil {
		return err
	}
	txn.Status = cashtxn.StatusReversed
	if linkedTransfer != nil {
		if err := writer.Transfers.UpdateStatus(ctx, a.TenantID, linkedTransfer.ID, transfer.StatusReversed); err != nil {
			return err
		}
		linkedTransfer.Status = transfer.StatusReversed
	}

	a.emit(events.Event{
		Name:       events.NameTransactionReversed,
		TenantID:   a.TenantID,
		EntityID:   txn.ID,
		OccurredAt: now,
	})
	a.Result = ReverseCashTransactionResult{Original: txn, Reversal: reversal}
	return nil
}
