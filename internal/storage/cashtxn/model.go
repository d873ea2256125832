package cashtxn

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// TxnType is the closed set of cash transaction types.
type TxnType int16

const (
	TypeReceipt TxnType = iota
	TypePayout
	TypeDepositToBank
	TypeWithdrawalFromBank
	TypeTransferOut
	TypeTransferIn
	TypeOpeningFloat
	TypeClosingAdjustment
	// TypeVariance is system-generated during session close; manual creation
	// is rejected.
	TypeVariance
)

func (t TxnType) String() string {
	switch t {
	case TypeReceipt:
		return "RECEIPT"
	case TypePayout:
		return "PAYOUT"
	case TypeDepositToBank:
		return "DEPOSIT_TO_BANK"
	case TypeWithdrawalFromBank:
		return "WITHDRAWAL_FROM_BANK"
	case TypeTransferOut:
		return "TRANSFER_OUT"
	case TypeTransferIn:
		return "TRANSFER_IN"
	case TypeOpeningFloat:
		return "OPENING_FLOAT"
	case TypeClosingAdjustment:
		return "CLOSING_ADJUSTMENT"
	case TypeVariance:
		return "VARIANCE"
	}
	return "UNKNOWN"
}

// ParseTxnType converts the wire name of a transaction type.
func ParseTxnType(s string) (TxnType, error) {
	for t := TypeReceipt; t <= TypeVariance; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

// RequiresCounterRegister reports whether the type is a transfer leg.
func (t TxnType) RequiresCounterRegister() bool {
	return t == TypeTransferOut || t == TypeTransferIn
}

// RequiresCounterAccount reports whether the type moves value against a GL
// account outside the register (bank movements and cari-eligible types).
func (t TxnType) RequiresCounterAccount() bool {
	switch t {
	case TypeReceipt, TypePayout, TypeDepositToBank, TypeWithdrawalFromBank:
		return true
	}
	return false
}

// CariEligible reports whether a posted transaction of this type can be
// applied to AR/AP open items.
func (t TxnType) CariEligible() bool {
	return t == TypeReceipt || t == TypePayout
}

// Status is the cash transaction state machine's closed state set.
type Status int16

const (
	StatusDraft Status = iota
	StatusSubmitted
	StatusApproved
	StatusPosted
	StatusCanceled
	StatusReversed
)

func (s Status) String() string {
	switch s {
	case StatusDraft:
		return "DRAFT"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusApproved:
		return "APPROVED"
	case StatusPosted:
		return "POSTED"
	case StatusCanceled:
		return "CANCELED"
	case StatusReversed:
		return "REVERSED"
	}
	return "UNKNOWN"
}

// ParseStatus converts the wire name of a transaction status.
func ParseStatus(s string) (Status, error) {
	for st := StatusDraft; st <= StatusReversed; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown transaction status %q", s)
}

// Postable reports whether post may run from this status.
func (s Status) Postable() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved:
		return true
	}
	return false
}

// Cancelable reports whether cancel may run from this status.
func (s Status) Cancelable() bool {
	return s == StatusDraft || s == StatusSubmitted
}

// LinkStatus tracks downstream integration linkage of a transaction.
type LinkStatus int16

const (
	LinkStatusNone LinkStatus = iota
	LinkStatusPending
	LinkStatusLinked
)

func (s LinkStatus) String() string {
	switch s {
	case LinkStatusPending:
		return "PENDING"
	case LinkStatusLinked:
		return "LINKED"
	}
	return "NONE"
}

// CashTransaction is one row of the cash ledger. Amount is always positive;
// direction comes from the type.
type CashTransaction struct {
	ID                          uuid.UUID       `db:"id"`
	TenantID                    uuid.UUID       `db:"tenant_id"`
	LegalEntityID               uuid.UUID       `db:"legal_entity_id"`
	OperatingUnitID             uuid.UUID       `db:"operating_unit_id"`
	RegisterID                  uuid.UUID       `db:"register_id"`
	SessionID                   *uuid.UUID      `db:"session_id"`
	TxnNo                       string          `db:"txn_no"`
	TxnType                     TxnType         `db:"txn_type"`
	Status                      Status          `db:"status"`
	Amount                      decimal.Decimal `db:"amount"`
	CurrencyCode                string          `db:"currency_code"`
	CounterpartyType            *string         `db:"counterparty_type"`
	CounterpartyID              *uuid.UUID      `db:"counterparty_id"`
	CounterAccountID            *uuid.UUID      `db:"counter_account_id"`
	CounterCashRegisterID       *uuid.UUID      `db:"counter_cash_register_id"`
	SourceModule                *string         `db:"source_module"`
	SourceEntityType            *string         `db:"source_entity_type"`
	SourceEntityID              *uuid.UUID      `db:"source_entity_id"`
	IntegrationLinkStatus       LinkStatus      `db:"integration_link_status"`
	IdempotencyKey              string          `db:"idempotency_key"`
	IntegrationEventUID         *string         `db:"integration_event_uid"`
	TransferID                  *uuid.UUID      `db:"transfer_id"`
	ReversalOfTransactionID     *uuid.UUID      `db:"reversal_of_transaction_id"`
	PostedJournalEntryID        *uuid.UUID      `db:"posted_journal_entry_id"`
	LinkedCariSettlementBatchID *uuid.UUID      `db:"linked_cari_settlement_batch_id"`
	LinkedCariUnappliedCashID   *uuid.UUID      `db:"linked_cari_unapplied_cash_id"`
	CreatedAt                   time.Time       `db:"created_at"`
	PostedAt                    *time.Time      `db:"posted_at"`
}

// CreateRow is the input for inserting a new cash transaction.
type CreateRow struct {
	TenantID                uuid.UUID
	LegalEntityID           uuid.UUID
	OperatingUnitID         uuid.UUID
	RegisterID              uuid.UUID
	SessionID               *uuid.UUID
	TxnNo                   string
	TxnType                 TxnType
	Status                  Status
	Amount                  decimal.Decimal
	CurrencyCode            string
	CounterpartyType        *string
	CounterpartyID          *uuid.UUID
	CounterAccountID        *uuid.UUID
	CounterCashRegisterID   *uuid.UUID
	SourceModule            *string
	SourceEntityType        *string
	SourceEntityID          *uuid.UUID
	IdempotencyKey          string
	IntegrationEventUID     *string
	TransferID              *uuid.UUID
	ReversalOfTransactionID *uuid.UUID
}

// Filter narrows List results. Nil pointer fields are not applied.
// LegalEntityIDs non-nil restricts to the caller's scope.
type Filter struct {
	TenantID        uuid.UUID
	RegisterID      *uuid.UUID
	Status          *Status
	TxnType         *TxnType
	LegalEntityIDs  []uuid.UUID
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// FormatTxnNo renders the human-facing transaction number from the
// per-legal-entity-year sequence.
func FormatTxnNo(year int, seq int64) string {
	return fmt.Sprintf("CSH-%d-%06d", year, seq)
}

// ICashTransactionTable defines cash transaction storage operations available
// inside a unit of work. Missing rows come back as (nil, nil).
type ICashTransactionTable interface {
	FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashTransaction, error)
	FindForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*CashTransaction, error)
	FindByIdempotencyKeyForUpdate(ctx context.Context, tenantID, registerID uuid.UUID, key string) (*CashTransaction, error)
	FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*CashTransaction, error)
	FindReversalOf(ctx context.Context, tenantID, originalID uuid.UUID) (*CashTransaction, error)
	NextTxnSeq(ctx context.Context, tenantID, legalEntityID uuid.UUID, year int) (int64, error)
	Insert(ctx context.Context, create *CreateRow) (*CashTransaction, bool, error)
	MarkPosted(ctx context.Context, tenantID, id, journalEntryID uuid.UUID, sessionID *uuid.UUID, postedAt time.Time) error
	UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status Status) error
	SetTransferID(ctx context.Context, tenantID, id, transferID uuid.UUID) error
	ClaimUnappliedLink(ctx context.Context, tenantID, id, unappliedID uuid.UUID) (bool, error)
	ClaimBatchLink(ctx context.Context, tenantID, id, batchID uuid.UUID) (bool, error)
}
