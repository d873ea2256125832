package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/cari"
	"github.com/carson-networks/cashdesk-server/internal/scope"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
)

// ApplyCariResult reports the outcome of applying a cash transaction to cari.
// Exactly one of BatchID and UnappliedID is set.
type ApplyCariResult struct {
	Transaction *cashtxn.CashTransaction
	BatchID     *uuid.UUID
	UnappliedID *uuid.UUID
	Replayed    bool
}

// ApplyCari settles a posted RECEIPT against AR, or a posted PAYOUT against
// AP. With no allocations and no auto-allocation the full amount is deferred
// as unapplied cash instead.
type ApplyCari struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	Allocations   []settlement.AllocationCreate
	AutoAllocate  bool

	Result ApplyCariResult
}

func (a *ApplyCari) Perform(ctx context.Context, deps *Deps, writer *storage.Writer) error {
	txn, err := writer.Transactions.FindForTenantForUpdate(ctx, a.TenantID, a.TransactionID)
	if err != nil {
		return err
	}
	if txn == nil {
		return apperr.NotFound("cash transaction", a.TransactionID)
	}
	if err := scope.Assert(ctx, scope.TypeLegalEntity, txn.LegalEntityID, "cash transaction"); err != nil {
		return err
	}
	if err := scope.Assert(ctx, scope.TypeOperatingUnit, txn.OperatingUnitID, "cash transaction"); err != nil {
		return err
	}

	if txn.Status != cashtxn.StatusPosted {
		return apperr.Validation("only POSTED transactions can be applied; transaction %s is %s", txn.TxnNo, txn.Status)
	}
	if !txn.TxnType.CariEligible() {
		return apperr.Validation("%s transactions cannot be applied to cari", txn.TxnType)
	}

	// A prior apply already linked the transaction; replay its outcome.
	if txn.LinkedCariSettlementBatchID != nil {
		a.Result = ApplyCariResult{Transaction: txn, BatchID: txn.LinkedCariSettlementBatchID, Replayed: true}
		return nil
	}
	if txn.LinkedCariUnappliedCashID != nil {
		a.Result = ApplyCariResult{Transaction: txn, UnappliedID: txn.LinkedCariUnappliedCashID, Replayed: true}
		return nil
	}

	if len(a.Allocations) == 0 && !a.AutoAllocate {
		return a.deferUnapplied(ctx, writer, txn)
	}

	batchID, err := deps.Settler.Apply(ctx, writer, cari.ApplyInput{
		TenantID:          a.TenantID,
		CashTransactionID: txn.ID,
		CounterpartyType:  txn.CounterpartyType,
		CounterpartyID:    txn.CounterpartyID,
		Amount:            txn.Amount,
		CurrencyCode:      txn.CurrencyCode,
		Allocations:       a.Allocations,
		AutoAllocate:      a.AutoAllocate,
	})
	if err != nil {
		return err
	}

	claimed, err := writer.Settlements.ClaimBatch(ctx, a.TenantID, batchID, txn.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return apperr.Conflict("settlement batch %s is already linked to another cash transaction", batchID)
	}
	linked, err := writer.Transactions.ClaimBatchLink(ctx, a.TenantID, txn.ID, batchID)
	if err != nil {
		return err
	}
	if !linked {
		return apperr.Conflict("cash transaction %s is already linked to a cari settlement", txn.TxnNo)
	}

	a.Result = ApplyCariResult{Transaction: txn, BatchID: &batchID}
	return nil
}

// deferUnapplied records the full amount as unapplied cash. The insert and the
// back-link are both idempotent, so a concurrent duplicate resolves to the
// winner's row.
func (a *ApplyCari) deferUnapplied(ctx context.Context, writer *storage.Writer, txn *cashtxn.CashTransaction) error {
	unapplied, replayed, err := writer.Settlements.InsertUnapplied(ctx, &settlement.UnappliedCreate{
		TenantID:            a.TenantID,
		CashTransactionID:   txn.ID,
		CounterpartyType:    txn.CounterpartyType,
		CounterpartyID:      txn.CounterpartyID,
		Amount:              txn.Amount,
		CurrencyCode:        txn.CurrencyCode,
		IntegrationEventUID: childUID("CARI", txn.IntegrationEventUID),
	})
	if err != nil {
		return err
	}

	if !replayed {
		linked, err := writer.Transactions.ClaimUnappliedLink(ctx, a.TenantID, txn.ID, unapplied.ID)
		if err != nil {
			return err
		}
		if !linked {
			return apperr.Conflict("cash transaction %s is already linked to a cari settlement", txn.TxnNo)
		}
	}

	a.Result = ApplyCariResult{Transaction: txn, UnappliedID: &unapplied.ID, Replayed: replayed}
	return nil
}
