package actions

import (
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/storage/account"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

func newUUID() uuid.UUID {
	return uuid.Must(uuid.NewV4())
}

func strptr(s string) *string {
	return &s
}

// activeRegister builds a cash-controlled EUR register with sessions disabled.
func activeRegister(tenantID uuid.UUID) *register.CashRegister {
	return &register.CashRegister{
		ID:              newUUID(),
		TenantID:        tenantID,
		LegalEntityID:   newUUID(),
		OperatingUnitID: newUUID(),
		Name:            "Front Desk",
		CurrencyCode:    "EUR",
		Status:          register.StatusActive,
		CashControlled:  true,
		SessionMode:     register.SessionModeDisabled,
		GLAccountID:     newUUID(),
	}
}

func glAccount(tenantID uuid.UUID) *account.Account {
	return &account.Account{
		ID:       newUUID(),
		TenantID: tenantID,
		Code:     "1100",
		Name:     "Trade Receivables",
		Type:     account.AccountTypeAsset,
	}
}

func transitAccount(tenantID uuid.UUID) *account.Account {
	acc := glAccount(tenantID)
	acc.Code = "1190"
	acc.Name = "Cash In Transit"
	acc.IsCashAccount = true
	acc.IsTransitCash = true
	return acc
}

func draftTransaction(tenantID uuid.UUID, txnType cashtxn.TxnType) *cashtxn.CashTransaction {
	return &cashtxn.CashTransaction{
		ID:              newUUID(),
		TenantID:        tenantID,
		LegalEntityID:   newUUID(),
		OperatingUnitID: newUUID(),
		RegisterID:      newUUID(),
		TxnNo:           "CSH-2026-000001",
		TxnType:         txnType,
		Status:          cashtxn.StatusDraft,
		Amount:          decimal.RequireFromString("100.00"),
		CurrencyCode:    "EUR",
		IdempotencyKey:  "key-1",
	}
}

func postedTransaction(tenantID uuid.UUID, txnType cashtxn.TxnType) *cashtxn.CashTransaction {
	txn := draftTransaction(tenantID, txnType)
	journalEntryID := newUUID()
	txn.Status = cashtxn.StatusPosted
	txn.PostedJournalEntryID = &journalEntryID
	return txn
}

func initiatedTransfer(tenantID uuid.UUID) *transfer.CashTransitTransfer {
	return &transfer.CashTransitTransfer{
		ID:                    newUUID(),
		TenantID:              tenantID,
		LegalEntityID:         newUUID(),
		SourceRegisterID:      newUUID(),
		TargetRegisterID:      newUUID(),
		SourceOperatingUnitID: newUUID(),
		TargetOperatingUnitID: newUUID(),
		TransferOutTxnID:      newUUID(),
		Status:                transfer.StatusInitiated,
		Amount:                decimal.RequireFromString("250.00"),
		CurrencyCode:          "EUR",
		TransitAccountID:      newUUID(),
		IdempotencyKey:        "tr-key-1",
	}
}

// assertErrKind fails unless err is an apperr.Error of the given kind.
func assertErrKind(t *testing.T, err error, kind apperr.Kind) *apperr.Error {
	t.Helper()
	assert.Error(t, err)
	appErr, ok := apperr.As(err)
	if !assert.True(t, ok, "expected an apperr.Error, got %v", err) {
		t.FailNow()
	}
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}
