package actions

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// transferRegisters builds a source/target pair valid for a transit transfer:
// same legal entity, different operating units, same currency.
func transferRegisters(tenantID uuid.UUID) (*register.CashRegister, *register.CashRegister) {
	source := activeRegister(tenantID)
	target := activeRegister(tenantID)
	target.LegalEntityID = source.LegalEntityID
	target.Name = "Back Office"
	return source, target
}

func TestInitiateTransfer_Success(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	transit := transitAccount(tenantID)
	outTxn := draftTransaction(tenantID, cashtxn.TypeTransferOut)
	tr := initiatedTransfer(tenantID)

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)
	tm.accounts.On("FindForTenant", mock.Anything, tenantID, transit.ID).Return(transit, nil)
	tm.transfers.On("FindByIdempotencyKeyForUpdate", mock.Anything, tenantID, source.ID, "tr-key-1").
		Return(nil, nil)
	tm.transactions.On("NextTxnSeq", mock.Anything, tenantID, source.LegalEntityID, testClock.Year()).
		Return(int64(3), nil)
	tm.transactions.On("Insert", mock.Anything, mock.MatchedBy(func(c *cashtxn.CreateRow) bool {
		return c.TxnType == cashtxn.TypeTransferOut &&
			c.RegisterID == source.ID &&
			c.IdempotencyKey == "TRO:tr-key-1" &&
			c.CounterAccountID != nil && *c.CounterAccountID == transit.ID &&
			c.CounterCashRegisterID != nil && *c.CounterCashRegisterID == target.ID
	})).Return(outTxn, false, nil)
	tm.transfers.On("Insert", mock.Anything, mock.MatchedBy(func(c *transfer.CreateRow) bool {
		return c.SourceRegisterID == source.ID &&
			c.TargetRegisterID == target.ID &&
			c.SourceOperatingUnitID == source.OperatingUnitID &&
			c.TargetOperatingUnitID == target.OperatingUnitID &&
			c.TransferOutTxnID == outTxn.ID &&
			c.IdempotencyKey == "tr-key-1"
	})).Return(tr, false, nil)
	tm.transactions.On("SetTransferID", mock.Anything, tenantID, outTxn.ID, tr.ID).Return(nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("250.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: transit.ID,
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.Equal(t, tr, action.Result.Transfer)
	assert.Equal(t, outTxn, action.Result.OutTxn)
	assert.Nil(t, action.Result.InTxn)
	assert.False(t, action.Result.Replayed)
	if assert.NotNil(t, outTxn.TransferID) {
		assert.Equal(t, tr.ID, *outTxn.TransferID)
	}
	if assert.Len(t, action.Events(), 1) {
		assert.Equal(t, events.NameTransferInitiated, action.Events()[0].Name)
	}
	tm.transfers.AssertExpectations(t)
}

func TestInitiateTransfer_SameOperatingUnitRejected(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	target.OperatingUnitID = source.OperatingUnitID

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("1.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: newUUID(),
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "different operating units")
}

func TestInitiateTransfer_DifferentLegalEntityRejected(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	target.LegalEntityID = newUUID()

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("1.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: newUUID(),
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "same legal entity")
}

func TestInitiateTransfer_RegisterCurrencyMismatch(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	target.CurrencyCode = "USD"

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("1.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: newUUID(),
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "does not match target register currency")
}

func TestInitiateTransfer_NonTransitAccountRejected(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	acc := glAccount(tenantID)

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)
	tm.accounts.On("FindForTenant", mock.Anything, tenantID, acc.ID).Return(acc, nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("1.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: acc.ID,
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "is not a cash transit clearing account")
}

func TestInitiateTransfer_IntegrationUIDReplay(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)
	outTxn := draftTransaction(tenantID, cashtxn.TypeTransferOut)
	tr.TransferOutTxnID = outTxn.ID

	tm.transfers.On("FindByIntegrationEventUID", mock.Anything, tenantID, "evt-9").Return(tr, nil)
	tm.transactions.On("FindForTenant", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)

	action := &InitiateTransfer{
		TenantID:            tenantID,
		SourceRegisterID:    newUUID(),
		TargetRegisterID:    newUUID(),
		Amount:              decimal.RequireFromString("1.00"),
		CurrencyCode:        "EUR",
		TransitAccountID:    newUUID(),
		IdempotencyKey:      "tr-key-1",
		IntegrationEventUID: strptr("evt-9"),
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	assert.Equal(t, tr, action.Result.Transfer)
	assert.Equal(t, outTxn, action.Result.OutTxn)
	tm.registers.AssertNotCalled(t, "FindForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestInitiateTransfer_IdempotencyKeyReplay(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	transit := transitAccount(tenantID)
	tr := initiatedTransfer(tenantID)
	outTxn := draftTransaction(tenantID, cashtxn.TypeTransferOut)
	tr.TransferOutTxnID = outTxn.ID

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)
	tm.accounts.On("FindForTenant", mock.Anything, tenantID, transit.ID).Return(transit, nil)
	tm.transfers.On("FindByIdempotencyKeyForUpdate", mock.Anything, tenantID, source.ID, "tr-key-1").
		Return(tr, nil)
	tm.transactions.On("FindForTenant", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("250.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: transit.ID,
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	tm.transactions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestInitiateTransfer_OutLegReplayResolvesWinner(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	source, target := transferRegisters(tenantID)
	transit := transitAccount(tenantID)
	outTxn := draftTransaction(tenantID, cashtxn.TypeTransferOut)
	winner := initiatedTransfer(tenantID)
	winner.TransferOutTxnID = outTxn.ID

	tm.registers.On("FindForTenant", mock.Anything, tenantID, source.ID).Return(source, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, target.ID).Return(target, nil)
	tm.accounts.On("FindForTenant", mock.Anything, tenantID, transit.ID).Return(transit, nil)
	tm.transfers.On("FindByIdempotencyKeyForUpdate", mock.Anything, tenantID, source.ID, "tr-key-1").
		Return(nil, nil)
	tm.transactions.On("NextTxnSeq", mock.Anything, tenantID, source.LegalEntityID, testClock.Year()).
		Return(int64(3), nil)
	tm.transactions.On("Insert", mock.Anything, mock.Anything).Return(outTxn, true, nil)
	tm.transfers.On("FindByOutTxn", mock.Anything, tenantID, outTxn.ID).Return(winner, nil)
	tm.transactions.On("FindForTenant", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)

	action := &InitiateTransfer{
		TenantID:         tenantID,
		SourceRegisterID: source.ID,
		TargetRegisterID: target.ID,
		Amount:           decimal.RequireFromString("250.00"),
		CurrencyCode:     "EUR",
		TransitAccountID: transit.ID,
		IdempotencyKey:   "tr-key-1",
	}

	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	assert.Equal(t, winner, action.Result.Transfer)
	tm.transfers.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}
