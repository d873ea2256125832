package cari

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
)

// ApplyInput describes one settlement request against AR (receipts) or AP
// (payouts).
type ApplyInput struct {
	TenantID          uuid.UUID
	CashTransactionID uuid.UUID
	CounterpartyType  *string
	CounterpartyID    *uuid.UUID
	Amount            decimal.Decimal
	CurrencyCode      string
	Allocations       []settlement.AllocationCreate
	AutoAllocate      bool
}

// Settler applies a posted cash transaction against cari open items and
// returns the settlement batch id. The allocation algorithm lives behind this
// interface.
type Settler interface {
	Apply(ctx context.Context, writer *storage.Writer, input ApplyInput) (uuid.UUID, error)
}

// BatchSettler records explicitly allocated batches in the shared store.
// Auto-allocation needs the cari engine and is rejected here.
type BatchSettler struct{}

func NewBatchSettler() *BatchSettler {
	return &BatchSettler{}
}

func (s *BatchSettler) Apply(ctx context.Context, writer *storage.Writer, input ApplyInput) (uuid.UUID, error) {
	if input.AutoAllocate {
		return uuid.Nil, apperr.Validation("auto-allocation requires the cari settlement engine")
	}

	total := decimal.Zero
	for _, alloc := range input.Allocations {
		if alloc.Amount.LessThanOrEqual(decimal.Zero) {
			return uuid.Nil, apperr.Validation("allocation amount must be positive")
		}
		total = total.Add(alloc.Amount)
	}
	if total.GreaterThan(input.Amount) {
		return uuid.Nil, apperr.Validation("allocations exceed the cash transaction amount")
	}

	batch, err := writer.Settlements.InsertBatch(ctx, input.TenantID, total, input.CurrencyCode, input.Allocations)
	if err != nil {
		return uuid.Nil, err
	}
	return batch.ID, nil
}
