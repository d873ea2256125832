package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// TransferBundle is the result shape shared by the transfer actions: the
// transfer row plus whichever legs exist.
type TransferBundle struct {
	Transfer *transfer.CashTransitTransfer
	OutTxn   *cashtxn.CashTransaction
	InTxn    *cashtxn.CashTransaction
	Replayed bool
}

// loadTransferBundle assembles the bundle for replays.
func loadTransferBundle(ctx context.Context, writer *storage.Writer, tr *transfer.CashTransitTransfer) (TransferBundle, error) {
	bundle := TransferBundle{Transfer: tr, Replayed: true}

	outTxn, err := writer.Transactions.FindForTenant(ctx, tr.TenantID, tr.TransferOutTxnID)
	if err != nil {
		return bundle, err
	}
	bundle.OutTxn = outTxn

	if tr.TransferInTxnID != nil {
		inTxn, err := writer.Transactions.FindForTenant(ctx, tr.TenantID, *tr.TransferInTxnID)
		if err != nil {
			return bundle, err
		}
		bundle.InTxn = inTxn
	}
	return bundle, nil
}

// InitiateTransfer opens a cash transit transfer: the transfer row plus its
// DRAFT transfer-out leg, created together. Duplicate deliveries replay the
// existing bundle.
type InitiateTransfer struct {
	TenantID            uuid.UUID
	SourceRegisterID    uuid.UUID
	TargetRegisterID    uuid.UUID
	Amount              decimal.Decimal
	CurrencyCode        string
	TransitAccountID    uuid.UUID
	IdempotencyKey      string
	IntegrationEventUID *string

	Result TransferBundle

	eventRecorder
}

func (a *InitiateTransfer) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	if a.IntegrationEventUID != nil {
		existing, err := writer.Transfers.FindByIntegrationEventUID(ctx, a.TenantID, *a.IntegrationEventUID)
		if err != nil {
			return err
		}
		if existing != nil {
			a.Result, err = loadTransferBundle(ctx, writer, existing)
			return err
		}
	}

	source, err := requireRegister(ctx, writer, a.TenantID, a.SourceRegisterID)
	if err != nil {
		return err
	}
	target, err := requireRegister(ctx, writer, a.TenantID, a.TargetRegisterID)
	if err != nil {
		return err
	}

	if source.LegalEntityID != target.LegalEntityID {
		return apperr.Validation("source and target registers must belong to the same legal entity")
	}
	if source.OperatingUnitID == target.OperatingUnitID {
		return apperr.Validation("source and target registers must be in different operating units")
	}
	if source.CurrencyCode != target.CurrencyCode {
		return apperr.Validation("source register currency %s does not match target register currency %s", source.CurrencyCode, target.CurrencyCode)
	}
	if a.CurrencyCode != source.CurrencyCode {
		return apperr.Validation("currency %s does not match register currency %s", a.CurrencyCode, source.CurrencyCode)
	}
	if err := checkAmount(source, a.Amount); err != nil {
		return err
	}

	transitAccount, err := writer.Accounts.FindForTenant(ctx, a.TenantID, a.TransitAccountID)
	if err != nil {
		return err
	}
	if transitAccount == nil {
		return apperr.NotFound("transit clearing account", a.TransitAccountID)
	}
	if !transitAccount.IsTransitCash {
		return apperr.Validation("account %s is not a cash transit clearing account", transitAccount.Code)
	}

	existing, err := writer.Transfers.FindByIdempotencyKeyForUpdate(ctx, a.TenantID, a.SourceRegisterID, a.IdempotencyKey)
	if err != nil {
		return err
	}
	if existing != nil {
		a.Result, err = loadTransferBundle(ctx, writer, existing)
		return err
	}

	year := deps.now().Year()
	seq, err := writer.Transactions.NextTxnSeq(ctx, a.TenantID, source.LegalEntityID, year)
	if err != nil {
		return err
	}

	outTxn, replayed, err := writer.Transactions.Insert(ctx, &cashtxn.CreateRow{
		TenantID:              a.TenantID,
		LegalEntityID:         source.LegalEntityID,
		OperatingUnitID:       source.OperatingUnitID,
		RegisterID:            a.SourceRegisterID,
		TxnNo:                 cashtxn.FormatTxnNo(year, seq),
		TxnType:               cashtxn.TypeTransferOut,
		Status:                cashtxn.StatusDraft,
		Amount:                a.Amount,
		CurrencyCode:          a.CurrencyCode,
		CounterAccountID:      &a.TransitAccountID,
		CounterCashRegisterID: &a.TargetRegisterID,
		IdempotencyKey:        childKey("TRO", a.IdempotencyKey),
		IntegrationEventUID:   childUID("TRO", a.IntegrationEventUID),
	})
	if err != nil {
		return err
	}
	if replayed {
		// A parallel initiate with the same key got here first; its transfer
		// row carries the authoritative bundle.
		winner, err := writer.Transfers.FindByOutTxn(ctx, a.TenantID, outTxn.ID)
		if err != nil {
			return err
		}
		if winner == nil {
			return apperr.Conflict("transfer-out leg %s exists without its transfer", outTxn.ID)
		}
		a.Result, err = loadTransferBundle(ctx, writer, winner)
		return err
	}

	tr, replayed, err := writer.Transfers.Insert(ctx, &transfer.CreateRow{
		TenantID:              a.TenantID,
		LegalEntityID:         source.LegalEntityID,
		SourceRegisterID:      a.SourceRegisterID,
		TargetRegisterID:      a.TargetRegisterID,
		SourceOperatingUnitID: source.OperatingUnitID,
		TargetOperatingUnitID: target.OperatingUnitID,
		TransferOutTxnID:      outTxn.ID,
		Amount:                a.Amount,
		CurrencyCode:          a.CurrencyCode,
		TransitAccountID:      a.TransitAccountID,
		IdempotencyKey:        a.IdempotencyKey,
		IntegrationEventUID:   a.IntegrationEventUID,
	})
	if err != nil {
		return err
	}
	if replayed {
		a.Result, err = loadTransferBundle(ctx, writer, tr)
		return err
	}

	if err := writer.Transactions.SetTransferID(ctx, a.TenantID, outTxn.ID, tr.ID); err != nil {
		return err
	}
	outTxn.TransferID = &tr.ID

	a.emit(events.Event{
		Name:       events.NameTransferInitiated,
		TenantID:   a.TenantID,
		EntityID:   tr.ID,
		OccurredAt: deps.now(),
	})
	a.Result = TransferBundle{Transfer: tr, OutTxn: outTxn}
	return nil
}
