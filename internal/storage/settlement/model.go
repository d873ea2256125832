package settlement

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// UnappliedStatus is the lifecycle of an unapplied-cash record.
type UnappliedStatus int16

const (
	UnappliedStatusOpen UnappliedStatus = iota
	UnappliedStatusSettled
)

func (s UnappliedStatus) String() string {
	if s == UnappliedStatusSettled {
		return "SETTLED"
	}
	return "OPEN"
}

// UnappliedCash is cash posted without allocations; deferred settlement is a
// normal, queryable state rather than an error.
type UnappliedCash struct {
	ID                  uuid.UUID       `db:"id"`
	TenantID            uuid.UUID       `db:"tenant_id"`
	CashTransactionID   uuid.UUID       `db:"cash_transaction_id"`
	CounterpartyType    *string         `db:"counterparty_type"`
	CounterpartyID      *uuid.UUID      `db:"counterparty_id"`
	Amount              decimal.Decimal `db:"amount"`
	CurrencyCode        string          `db:"currency_code"`
	Status              UnappliedStatus `db:"status"`
	IntegrationEventUID *string         `db:"integration_event_uid"`
	CreatedAt           time.Time       `db:"created_at"`
}

// UnappliedCreate is the input for recording unapplied cash.
type UnappliedCreate struct {
	TenantID            uuid.UUID
	CashTransactionID   uuid.UUID
	CounterpartyType    *string
	CounterpartyID      *uuid.UUID
	Amount              decimal.Decimal
	CurrencyCode        string
	IntegrationEventUID *string
}

// Batch is a cari settlement batch header. CashTransactionID is claimed by
// at most one cash transaction via conditional update.
type Batch struct {
	ID                uuid.UUID       `db:"id"`
	TenantID          uuid.UUID       `db:"tenant_id"`
	CashTransactionID *uuid.UUID      `db:"cash_transaction_id"`
	TotalAmount       decimal.Decimal `db:"total_amount"`
	CurrencyCode      string          `db:"currency_code"`
	CreatedAt         time.Time       `db:"created_at"`
}

// Allocation applies part of a batch against one AR/AP open item.
type Allocation struct {
	ID         uuid.UUID       `db:"id"`
	TenantID   uuid.UUID       `db:"tenant_id"`
	BatchID    uuid.UUID       `db:"batch_id"`
	OpenItemID uuid.UUID       `db:"open_item_id"`
	Amount     decimal.Decimal `db:"amount"`
}

// AllocationCreate is the input for one allocation line.
type AllocationCreate struct {
	OpenItemID uuid.UUID
	Amount     decimal.Decimal
}

// ISettlementTable defines cari linkage storage operations. Missing rows come
// back as (nil, nil).
type ISettlementTable interface {
	FindUnappliedByTxn(ctx context.Context, tenantID, cashTransactionID uuid.UUID) (*UnappliedCash, error)
	InsertUnapplied(ctx context.Context, create *UnappliedCreate) (*UnappliedCash, bool, error)
	FindBatchForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Batch, error)
	InsertBatch(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, currency string, allocations []AllocationCreate) (*Batch, error)
	ClaimBatch(ctx context.Context, tenantID, batchID, cashTransactionID uuid.UUID) (bool, error)
}
