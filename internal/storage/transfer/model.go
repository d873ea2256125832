package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Status is the transfer state machine's closed state set.
type Status int16

const (
	StatusInitiated Status = iota
	StatusInTransit
	StatusReceived
	StatusCanceled
	StatusReversed
)

func (s Status) String() string {
	switch s {
	case StatusInitiated:
		return "INITIATED"
	case StatusInTransit:
		return "IN_TRANSIT"
	case StatusReceived:
		return "RECEIVED"
	case StatusCanceled:
		return "CANCELED"
	case StatusReversed:
		return "REVERSED"
	}
	return "UNKNOWN"
}

// ParseStatus converts the wire name of a transfer status.
func ParseStatus(s string) (Status, error) {
	for st := StatusInitiated; st <= StatusReversed; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown transfer status %q", s)
}

// CashTransitTransfer is a two-leg cash movement between registers of the
// same legal entity in different operating units.
type CashTransitTransfer struct {
	ID                    uuid.UUID       `db:"id"`
	TenantID              uuid.UUID       `db:"tenant_id"`
	LegalEntityID         uuid.UUID       `db:"legal_entity_id"`
	SourceRegisterID      uuid.UUID       `db:"source_register_id"`
	TargetRegisterID      uuid.UUID       `db:"target_register_id"`
	SourceOperatingUnitID uuid.UUID       `db:"source_operating_unit_id"`
	TargetOperatingUnitID uuid.UUID       `db:"target_operating_unit_id"`
	TransferOutTxnID      uuid.UUID       `db:"transfer_out_txn_id"`
	TransferInTxnID       *uuid.UUID      `db:"transfer_in_txn_id"`
	Status                Status          `db:"status"`
	Amount                decimal.Decimal `db:"amount"`
	CurrencyCode          string          `db:"currency_code"`
	TransitAccountID      uuid.UUID       `db:"transit_account_id"`
	IdempotencyKey        string          `db:"idempotency_key"`
	IntegrationEventUID   *string         `db:"integration_event_uid"`
	CreatedAt             time.Time       `db:"created_at"`
	ReceivedAt            *time.Time      `db:"received_at"`
}

// CreateRow is the input for inserting a new transfer.
type CreateRow struct {
	TenantID              uuid.UUID
	LegalEntityID         uuid.UUID
	SourceRegisterID      uuid.UUID
	TargetRegisterID      uuid.UUID
	SourceOperatingUnitID uuid.UUID
	TargetOperatingUnitID uuid.UUID
	TransferOutTxnID      uuid.UUID
	Amount                decimal.Decimal
	CurrencyCode          string
	TransitAccountID      uuid.UUID
	IdempotencyKey        string
	IntegrationEventUID   *string
}

// Filter narrows List results.
type Filter struct {
	TenantID        uuid.UUID
	SourceRegister  *uuid.UUID
	TargetRegister  *uuid.UUID
	Status          *Status
	LegalEntityIDs  []uuid.UUID
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// ITransferTable defines transfer storage operations available inside a unit
// of work. Missing rows come back as (nil, nil).
type ITransferTable interface {
	FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashTransitTransfer, error)
	FindForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashTransitTransfer, error)
	FindByIdempotencyKeyForUpdate(ctx context.Context, tenantID, sourceRegisterID uuid.UUID, key string) (*CashTransitTransfer, error)
	FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*CashTransitTransfer, error)
	FindByOutTxn(ctx context.Context, tenantID, outTxnID uuid.UUID) (*CashTransitTransfer, error)
	Insert(ctx context.Context, create *CreateRow) (*CashTransitTransfer, bool, error)
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error
	MarkReceived(ctx context.Context, tenantID, id, inTxnID uuid.UUID, receivedAt time.Time) error
}
