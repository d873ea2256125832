package account

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// AccountType is the GL category of an account.
type AccountType int16

const (
	AccountTypeAsset AccountType = iota
	AccountTypeLiability
	AccountTypeEquity
	AccountTypeRevenue
	AccountTypeExpense
)

func (t AccountType) String() string {
	switch t {
	case AccountTypeAsset:
		return "ASSET"
	case AccountTypeLiability:
		return "LIABILITY"
	case AccountTypeEquity:
		return "EQUITY"
	case AccountTypeRevenue:
		return "REVENUE"
	case AccountTypeExpense:
		return "EXPENSE"
	}
	return "UNKNOWN"
}

// Account represents a GL account record.
type Account struct {
	ID            uuid.UUID   `db:"id"`
	TenantID      uuid.UUID   `db:"tenant_id"`
	Code          string      `db:"code"`
	Name          string      `db:"name"`
	Type          AccountType `db:"account_type"`
	IsCashAccount bool        `db:"is_cash_account"`
	IsTransitCash bool        `db:"is_transit_cash"`
	CurrencyCode  *string     `db:"currency_code"`
	CreatedAt     time.Time   `db:"created_at"`
}

// IAccountTable defines the interface for GL account lookups. Missing rows
// come back as (nil, nil); callers decide the error kind.
type IAccountTable interface {
	FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error)
}
