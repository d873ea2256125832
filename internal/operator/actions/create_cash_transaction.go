package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
)

// CreateCashTransaction creates a DRAFT cash transaction, resolving repeated
// deliveries of the same request into replays.
type CreateCashTransaction struct {
	TenantID              uuid.UUID
	RegisterID            uuid.UUID
	SessionID             *uuid.UUID
	TxnType               cashtxn.TxnType
	Amount                decimal.Decimal
	CurrencyCode          string
	CounterpartyType      *string
	CounterpartyID        *uuid.UUID
	CounterAccountID      *uuid.UUID
	CounterCashRegisterID *uuid.UUID
	SourceModule          *string
	SourceEntityType      *string
	SourceEntityID        *uuid.UUID
	IdempotencyKey        string
	IntegrationEventUID   *string

	Result CreateCashTransactionResult

	eventRecorder
}

type CreateCashTransactionResult struct {
	Transaction *cashtxn.CashTransaction
	Replayed    bool
}

func (a *CreateCashTransaction) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	// Integration event uid wins over everything: same upstream event, same
	// transaction, regardless of idempotency-key namespace.
	if a.IntegrationEventUID != nil {
		existing, err := writer.Transactions.FindByIntegrationEventUID(ctx, a.TenantID, *a.IntegrationEventUID)
		if err != nil {
			return err
		}
		if existing != nil {
			a.Result = CreateCashTransactionResult{Transaction: existing, Replayed: true}
			return nil
		}
	}

	reg, err := requireRegister(ctx, writer, a.TenantID, a.RegisterID)
	if err != nil {
		return err
	}

	if a.TxnType == cashtxn.TypeVariance {
		return apperr.Validation("VARIANCE transactions are system generated and cannot be created manually")
	}
	if a.CurrencyCode != reg.CurrencyCode {
		return apperr.Validation("currency %s does not match register currency %s", a.CurrencyCode, reg.CurrencyCode)
	}
	if err := checkAmount(reg, a.Amount); err != nil {
		return err
	}
	if err := a.validateTypeRequirements(ctx, writer); err != nil {
		return err
	}

	sessionID, err := resolveSession(ctx, writer, reg, a.SessionID)
	if err != nil {
		return err
	}

	// Re-check the idempotency key under a row lock; a finished earlier
	// attempt replays here without touching the counter.
	existing, err := writer.Transactions.FindByIdempotencyKeyForUpdate(ctx, a.TenantID, a.RegisterID, a.IdempotencyKey)
	if err != nil {
		return err
	}
	if existing != nil {
		a.Result = CreateCashTransactionResult{Transaction: existing, Replayed: true}
		return nil
	}

	year := deps.now().Year()
	seq, err := writer.Transactions.NextTxnSeq(ctx, a.TenantID, reg.LegalEntityID, year)
	if err != nil {
		return err
	}

	txn, replayed, err := writer.Transactions.Insert(ctx, &cashtxn.CreateRow{
		TenantID:              a.TenantID,
		LegalEntityID:         reg.LegalEntityID,
		OperatingUnitID:       reg.OperatingUnitID,
		RegisterID:            a.RegisterID,
		SessionID:             sessionID,
		TxnNo:                 cashtxn.FormatTxnNo(year, seq),
		TxnType:               a.TxnType,
		Status:                cashtxn.StatusDraft,
		Amount:                a.Amount,
		CurrencyCode:          a.CurrencyCode,
		CounterpartyType:      a.CounterpartyType,
		CounterpartyID:        a.CounterpartyID,
		CounterAccountID:      a.CounterAccountID,
		CounterCashRegisterID: a.CounterCashRegisterID,
		SourceModule:          a.SourceModule,
		SourceEntityType:      a.SourceEntityType,
		SourceEntityID:        a.SourceEntityID,
		IdempotencyKey:        a.IdempotencyKey,
		IntegrationEventUID:   a.IntegrationEventUID,
	})
	if err != nil {
		return err
	}

	if !replayed {
		if err := a.claimSourceBatch(ctx, writer, txn); err != nil {
			return err
		}
	}

	a.Result = CreateCashTransactionResult{Transaction: txn, Replayed: replayed}
	return nil
}

// validateTypeRequirements enforces the per-type reference requirements.
func (a *CreateCashTransaction) validateTypeRequirements(ctx context.Context, writer *storage.Writer) error {
	if a.TxnType.RequiresCounterRegister() {
		if a.CounterCashRegisterID == nil {
			return apperr.Validation("%s transactions require a counter cash register", a.TxnType)
		}
		counter, err := writer.Registers.FindForTenant(ctx, a.TenantID, *a.CounterCashRegisterID)
		if err != nil {
			return err
		}
		if counter == nil {
			return apperr.NotFound("counter cash register", *a.CounterCashRegisterID)
		}
	}

	if a.TxnType.RequiresCounterAccount() {
		if a.CounterAccountID == nil {
			return apperr.Validation("%s transactions require a counter account", a.TxnType)
		}
		counterAccount, err := writer.Accounts.FindForTenant(ctx, a.TenantID, *a.CounterAccountID)
		if err != nil {
			return err
		}
		if counterAccount == nil {
			return apperr.NotFound("counter account", *a.CounterAccountID)
		}
	}

	if a.SourceModule != nil && *a.SourceModule == cashtxn.SourceModuleCari {
		role := ""
		if a.CounterpartyType != nil {
			role = *a.CounterpartyType
		}
		switch a.TxnType {
		case cashtxn.TypeReceipt:
			if role != cashtxn.CounterpartyCustomer {
				return apperr.Validation("cari-sourced RECEIPT requires a CUSTOMER counterparty")
			}
		case cashtxn.TypePayout:
			if role != cashtxn.CounterpartyVendor {
				return apperr.Validation("cari-sourced PAYOUT requires a VENDOR counterparty")
			}
		}
	}
	return nil
}

// claimSourceBatch enforces exclusive linkage when the transaction was
// created out of a cari settlement batch.
func (a *CreateCashTransaction) claimSourceBatch(ctx context.Context, writer *storage.Writer, txn *cashtxn.CashTransaction) error {
	if a.SourceModule == nil || *a.SourceModule != cashtxn.SourceModuleCari {
		return nil
	}
	if a.SourceEntityType == nil || *a.SourceEntityType != cashtxn.SourceEntitySettlementBatch || a.SourceEntityID == nil {
		return nil
	}

	batch, err := writer.Settlements.FindBatchForTenant(ctx, a.TenantID, *a.SourceEntityID)
	if err != nil {
		return err
	}
	if batch == nil {
		return apperr.NotFound("settlement batch", *a.SourceEntityID)
	}

	claimed, err := writer.Settlements.ClaimBatch(ctx, a.TenantID, batch.ID, txn.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return apperr.Conflict("settlement batch %s is already linked to another cash transaction", batch.ID)
	}

	claimed, err = writer.Transactions.ClaimBatchLink(ctx, a.TenantID, txn.ID, batch.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return apperr.Conflict("cash transaction %s already carries a cari linkage", txn.ID)
	}
	return nil
}
