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
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// ReceiveTransfer completes an IN_TRANSIT transfer: creates the transfer-in
// leg on the target register, posts it immediately, and marks the transfer
// RECEIVED. An already-RECEIVED transfer with an in-leg replays.
type ReceiveTransfer struct {
	TenantID   uuid.UUID
	TransferID uuid.UUID

	Result TransferBundle

	eventRecorder
}

func (a *ReceiveTransfer) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	// Transfer row first, then transaction rows: the fixed lock order.
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
	if err := scope.Assert(ctx, scope.TypeOperatingUnit, tr.TargetOperatingUnitID, "target operating unit"); err != nil {
		return err
	}

	if tr.Status == transfer.StatusReceived && tr.TransferInTxnID != nil {
		a.Result, err = loadTransferBundle(ctx, writer, tr)
		return err
	}
	if tr.Status != transfer.StatusInTransit {
		return apperr.Validation("only IN_TRANSIT transfers can be received; transfer %s is %s", tr.ID, tr.Status)
	}

	outTxn, err := writer.Transactions.FindForTenantForUpdate(ctx, a.TenantID, tr.TransferOutTxnID)
	if err != nil {
		return err
	}
	if outTxn == nil {
		return apperr.NotFound("transfer-out transaction", tr.TransferOutTxnID)
	}
	if outTxn.Status != cashtxn.StatusPosted {
		return apperr.Validation("transfer-out leg %s must be POSTED before receiving; it is %s", outTxn.TxnNo, outTxn.Status)
	}

	target, err := requireRegister(ctx, writer, a.TenantID, tr.TargetRegisterID)
	if err != nil {
		return err
	}
	if target.CurrencyCode != tr.CurrencyCode {
		return apperr.Validation("target register currency %s no longer matches transfer currency %s", target.CurrencyCode, tr.CurrencyCode)
	}

	sessionID, err := resolveSession(ctx, writer, target, nil)
	if err != nil {
		return err
	}

	year := deps.now().Year()
	seq, err := writer.Transactions.NextTxnSeq(ctx, a.TenantID, tr.LegalEntityID, year)
	if err != nil {
		return err
	}

	inTxn, replayed, err := writer.Transactions.Insert(ctx, &cashtxn.CreateRow{
		TenantID:              a.TenantID,
		LegalEntityID:         tr.LegalEntityID,
		OperatingUnitID:       target.OperatingUnitID,
		RegisterID:            tr.TargetRegisterID,
		SessionID:             sessionID,
		TxnNo:                 cashtxn.FormatTxnNo(year, seq),
		TxnType:               cashtxn.TypeTransferIn,
		Status:                cashtxn.StatusDraft,
		Amount:                tr.Amount,
		CurrencyCode:          tr.CurrencyCode,
		CounterAccountID:      &tr.TransitAccountID,
		CounterCashRegisterID: &tr.SourceRegisterID,
		IdempotencyKey:        childKey("TRI", tr.IdempotencyKey),
		IntegrationEventUID:   childUID("TRI", tr.IntegrationEventUID),
		TransferID:            &tr.ID,
	})
	if err != nil {
		return err
	}
	if replayed && inTxn.Status == cashtxn.StatusPosted {
		// A concurrent receive finished the leg; only the transfer row may
		// still need closing.
		if tr.TransferInTxnID == nil {
			now := deps.now()
			if err := writer.Transfers.MarkReceived(ctx, a.TenantID, tr.ID, inTxn.ID, now); err != nil {
				return err
			}
			tr.Status = transfer.StatusReceived
			tr.TransferInTxnID = &inTxn.ID
			tr.ReceivedAt = &now
		}
		a.Result = TransferBundle{Transfer: tr, OutTxn: outTxn, InTxn: inTxn, Replayed: true}
		return nil
	}

	now := deps.now()
	journalEntryID, err := deps.Journal.Post(ctx, writer, journal.Context{
		TenantID:      a.TenantID,
		TransactionID: inTxn.ID,
		TxnType:       inTxn.TxnType.String(),
		Description:   inTxn.TxnNo,
		Amount:        inTxn.Amount,
		CurrencyCode:  inTxn.CurrencyCode,
		EntryDate:     now,
	})
	if err != nil {
		return err
	}
	if err := writer.Transactions.MarkPosted(ctx, a.TenantID, inTxn.ID, journalEntryID, sessionID, now); err != nil {
		return err
	}
	inTxn.Status = cashtxn.StatusPosted
	inTxn.PostedJournalEntryID = &journalEntryID
	inTxn.PostedAt = &now

	if err := writer.Transfers.MarkReceived(ctx, a.TenantID, tr.ID, inTxn.ID, now); err != nil {
		return err
	}
	tr.Status = transfer.StatusReceived
	tr.TransferInTxnID = &inTxn.ID
	tr.ReceivedAt = &now

	a.emit(events.Event{
		Name:       events.NameTransferReceived,
		TenantID:   a.TenantID,
		EntityID:   tr.ID,
		OccurredAt: now,
	})
	a.Result = TransferBundle{Transfer: tr, OutTxn: outTxn, InTxn: inTxn}
	return nil
}
