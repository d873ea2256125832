package actions

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/cari"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
)

func TestApplyCari_DeferUnapplied(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypeReceipt)
	txn.IntegrationEventUID = strptr("evt-1")
	unapplied := &settlement.UnappliedCash{ID: newUUID(), TenantID: tenantID, CashTransactionID: txn.ID}

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)
	tm.settlements.On("InsertUnapplied", mock.Anything, mock.MatchedBy(func(c *settlement.UnappliedCreate) bool {
		return c.TenantID == tenantID &&
			c.CashTransactionID == txn.ID &&
			c.Amount.Equal(txn.Amount) &&
			c.IntegrationEventUID != nil && *c.IntegrationEventUID == "CARI:evt-1"
	})).Return(unapplied, false, nil)
	tm.transactions.On("ClaimUnappliedLink", mock.Anything, tenantID, txn.ID, unapplied.ID).
		Return(true, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.False(t, action.Result.Replayed)
	assert.Nil(t, action.Result.BatchID)
	if assert.NotNil(t, action.Result.UnappliedID) {
		assert.Equal(t, unapplied.ID, *action.Result.UnappliedID)
	}
	tm.settler.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyCari_DeferReplaySkipsClaim(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypeReceipt)
	unapplied := &settlement.UnappliedCash{ID: newUUID(), TenantID: tenantID, CashTransactionID: txn.ID}

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)
	tm.settlements.On("InsertUnapplied", mock.Anything, mock.Anything).Return(unapplied, true, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	tm.transactions.AssertNotCalled(t, "ClaimUnappliedLink", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyCari_AllocationsSettleBatch(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypePayout)
	txn.CounterpartyType = strptr(cashtxn.CounterpartyVendor)
	batchID := newUUID()
	allocations := []settlement.AllocationCreate{
		{OpenItemID: newUUID(), Amount: decimal.RequireFromString("60.00")},
		{OpenItemID: newUUID(), Amount: decimal.RequireFromString("40.00")},
	}

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)
	tm.settler.On("Apply", mock.Anything, mock.Anything, mock.MatchedBy(func(input cari.ApplyInput) bool {
		return input.TenantID == tenantID &&
			input.CashTransactionID == txn.ID &&
			input.Amount.Equal(txn.Amount) &&
			len(input.Allocations) == 2 &&
			!input.AutoAllocate
	})).Return(batchID, nil)
	tm.settlements.On("ClaimBatch", mock.Anything, tenantID, batchID, txn.ID).Return(true, nil)
	tm.transactions.On("ClaimBatchLink", mock.Anything, tenantID, txn.ID, batchID).Return(true, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID, Allocations: allocations}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.Nil(t, action.Result.UnappliedID)
	if assert.NotNil(t, action.Result.BatchID) {
		assert.Equal(t, batchID, *action.Result.BatchID)
	}
	tm.settler.AssertExpectations(t)
}

func TestApplyCari_LinkedBatchReplays(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypeReceipt)
	batchID := newUUID()
	txn.LinkedCariSettlementBatchID = &batchID

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	assert.Equal(t, &batchID, action.Result.BatchID)
	tm.settler.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyCari_LinkedUnappliedReplays(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypeReceipt)
	unappliedID := newUUID()
	txn.LinkedCariUnappliedCashID = &unappliedID

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	assert.Equal(t, &unappliedID, action.Result.UnappliedID)
	tm.settlements.AssertNotCalled(t, "InsertUnapplied", mock.Anything, mock.Anything)
}

func TestApplyCari_NotPostedRejected(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := draftTransaction(tenantID, cashtxn.TypeReceipt)

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "only POSTED transactions can be applied")
}

func TestApplyCari_IneligibleTypeRejected(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypeDepositToBank)

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txn.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "cannot be applied to cari")
}

func TestApplyCari_BatchClaimConflict(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txn := postedTransaction(tenantID, cashtxn.TypeReceipt)
	batchID := newUUID()

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txn.ID).Return(txn, nil)
	tm.settler.On("Apply", mock.Anything, mock.Anything, mock.Anything).Return(batchID, nil)
	tm.settlements.On("ClaimBatch", mock.Anything, tenantID, batchID, txn.ID).Return(false, nil)

	action := &ApplyCari{
		TenantID:      tenantID,
		TransactionID: txn.ID,
		Allocations: []settlement.AllocationCreate{
			{OpenItemID: newUUID(), Amount: decimal.RequireFromString("10.00")},
		},
	}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindConflict)
	assert.Contains(t, appErr.Message, "already linked to another cash transaction")
}

func TestApplyCari_NotFound(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	txnID := newUUID()

	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, txnID).Return(nil, nil)

	action := &ApplyCari{TenantID: tenantID, TransactionID: txnID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assertErrKind(t, err, apperr.KindNotFound)
}
