package register

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a cash register.
type Status int16

const (
	StatusActive Status = iota
	StatusInactive
)

func (s Status) String() string {
	if s == StatusInactive {
		return "INACTIVE"
	}
	return "ACTIVE"
}

// SessionMode controls whether posting against the register needs an open
// cash session.
type SessionMode int16

const (
	SessionModeDisabled SessionMode = iota
	SessionModeOptional
	SessionModeRequired
)

func (m SessionMode) String() string {
	switch m {
	case SessionModeOptional:
		return "OPTIONAL"
	case SessionModeRequired:
		return "REQUIRED"
	}
	return "DISABLED"
}

// SessionStatus is the lifecycle state of a cash session.
type SessionStatus int16

const (
	SessionStatusOpen SessionStatus = iota
	SessionStatusClosed
)

func (s SessionStatus) String() string {
	if s == SessionStatusClosed {
		return "CLOSED"
	}
	return "OPEN"
}

// CashRegister is a cash-holding point tied to a cash-controlled GL account.
type CashRegister struct {
	ID              uuid.UUID           `db:"id"`
	TenantID        uuid.UUID           `db:"tenant_id"`
	LegalEntityID   uuid.UUID           `db:"legal_entity_id"`
	OperatingUnitID uuid.UUID           `db:"operating_unit_id"`
	Name            string              `db:"name"`
	CurrencyCode    string              `db:"currency_code"`
	Status          Status              `db:"status"`
	CashControlled  bool                `db:"cash_controlled"`
	SessionMode     SessionMode         `db:"session_mode"`
	MaxTxnAmount    decimal.NullDecimal `db:"max_txn_amount"`
	GLAccountID     uuid.UUID           `db:"gl_account_id"`
	CreatedAt       time.Time           `db:"created_at"`
}

// CashSession is a register's working period.
type CashSession struct {
	ID         uuid.UUID     `db:"id"`
	TenantID   uuid.UUID     `db:"tenant_id"`
	RegisterID uuid.UUID     `db:"register_id"`
	Status     SessionStatus `db:"status"`
	OpenedAt   time.Time     `db:"opened_at"`
	ClosedAt   *time.Time    `db:"closed_at"`
}

// IRegisterTable defines register and session lookups. Missing rows come back
// as (nil, nil); callers decide the error kind.
type IRegisterTable interface {
	FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashRegister, error)
	FindSessionForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashSession, error)
	FindOpenSession(ctx context.Context, tenantID, registerID uuid.UUID) (*CashSession, error)
}
