package actions

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/events"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

func TestReceiveTransfer_Success(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)
	tr.Status = transfer.StatusInTransit
	outTxn := postedTransaction(tenantID, cashtxn.TypeTransferOut)
	tr.TransferOutTxnID = outTxn.ID
	target := activeRegister(tenantID)
	target.ID = tr.TargetRegisterID
	inTxn := draftTransaction(tenantID, cashtxn.TypeTransferIn)
	journalEntryID := newUUID()

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, tr.ID).Return(tr, nil)
	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, tr.TargetRegisterID).Return(target, nil)
	tm.transactions.On("NextTxnSeq", mock.Anything, tenantID, tr.LegalEntityID, testClock.Year()).
		Return(int64(4), nil)
	tm.transactions.On("Insert", mock.Anything, mock.MatchedBy(func(c *cashtxn.CreateRow) bool {
		return c.TxnType == cashtxn.TypeTransferIn &&
			c.RegisterID == tr.TargetRegisterID &&
			c.OperatingUnitID == target.OperatingUnitID &&
			c.IdempotencyKey == "TRI:tr-key-1" &&
			c.Amount.Equal(tr.Amount) &&
			c.TransferID != nil && *c.TransferID == tr.ID &&
			c.CounterAccountID != nil && *c.CounterAccountID == tr.TransitAccountID &&
			c.CounterCashRegisterID != nil && *c.CounterCashRegisterID == tr.SourceRegisterID
	})).Return(inTxn, false, nil)
	tm.poster.On("Post", mock.Anything, mock.Anything, mock.Anything).Return(journalEntryID, nil)
	tm.transactions.On("MarkPosted", mock.Anything, tenantID, inTxn.ID, journalEntryID, (*uuid.UUID)(nil), testClock).
		Return(nil)
	tm.transfers.On("MarkReceived", mock.Anything, tenantID, tr.ID, inTxn.ID, testClock).Return(nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: tr.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.Equal(t, inTxn, action.Result.InTxn)
	assert.False(t, action.Result.Replayed)
	assert.Equal(t, transfer.StatusReceived, action.Result.Transfer.Status)
	if assert.NotNil(t, action.Result.Transfer.TransferInTxnID) {
		assert.Equal(t, inTxn.ID, *action.Result.Transfer.TransferInTxnID)
	}
	if assert.NotNil(t, action.Result.Transfer.ReceivedAt) {
		assert.True(t, action.Result.Transfer.ReceivedAt.Equal(testClock))
	}
	assert.Equal(t, cashtxn.StatusPosted, action.Result.InTxn.Status)
	if assert.NotNil(t, action.Result.InTxn.PostedJournalEntryID) {
		assert.Equal(t, journalEntryID, *action.Result.InTxn.PostedJournalEntryID)
	}
	if assert.Len(t, action.Events(), 1) {
		assert.Equal(t, events.NameTransferReceived, action.Events()[0].Name)
	}
	tm.transfers.AssertExpectations(t)
}

func TestReceiveTransfer_AlreadyReceivedReplays(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)
	tr.Status = transfer.StatusReceived
	outTxn := postedTransaction(tenantID, cashtxn.TypeTransferOut)
	inTxn := postedTransaction(tenantID, cashtxn.TypeTransferIn)
	tr.TransferOutTxnID = outTxn.ID
	tr.TransferInTxnID = &inTxn.ID

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, tr.ID).Return(tr, nil)
	tm.transactions.On("FindForTenant", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)
	tm.transactions.On("FindForTenant", mock.Anything, tenantID, inTxn.ID).Return(inTxn, nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: tr.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	assert.Equal(t, inTxn, action.Result.InTxn)
	tm.transactions.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestReceiveTransfer_OnlyInTransitReceivable(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, tr.ID).Return(tr, nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: tr.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "only IN_TRANSIT transfers can be received")
}

func TestReceiveTransfer_OutLegNotPosted(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)
	tr.Status = transfer.StatusInTransit
	outTxn := draftTransaction(tenantID, cashtxn.TypeTransferOut)
	tr.TransferOutTxnID = outTxn.ID

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, tr.ID).Return(tr, nil)
	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: tr.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "must be POSTED before receiving")
}

func TestReceiveTransfer_TargetCurrencyDrift(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)
	tr.Status = transfer.StatusInTransit
	outTxn := postedTransaction(tenantID, cashtxn.TypeTransferOut)
	tr.TransferOutTxnID = outTxn.ID
	target := activeRegister(tenantID)
	target.ID = tr.TargetRegisterID
	target.CurrencyCode = "USD"

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, tr.ID).Return(tr, nil)
	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, tr.TargetRegisterID).Return(target, nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: tr.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	appErr := assertErrKind(t, err, apperr.KindValidation)
	assert.Contains(t, appErr.Message, "no longer matches transfer currency")
}

func TestReceiveTransfer_InLegReplayClosesTransfer(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	tr := initiatedTransfer(tenantID)
	tr.Status = transfer.StatusInTransit
	outTxn := postedTransaction(tenantID, cashtxn.TypeTransferOut)
	tr.TransferOutTxnID = outTxn.ID
	target := activeRegister(tenantID)
	target.ID = tr.TargetRegisterID
	inTxn := postedTransaction(tenantID, cashtxn.TypeTransferIn)

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, tr.ID).Return(tr, nil)
	tm.transactions.On("FindForTenantForUpdate", mock.Anything, tenantID, outTxn.ID).Return(outTxn, nil)
	tm.registers.On("FindForTenant", mock.Anything, tenantID, tr.TargetRegisterID).Return(target, nil)
	tm.transactions.On("NextTxnSeq", mock.Anything, tenantID, tr.LegalEntityID, testClock.Year()).
		Return(int64(4), nil)
	tm.transactions.On("Insert", mock.Anything, mock.Anything).Return(inTxn, true, nil)
	tm.transfers.On("MarkReceived", mock.Anything, tenantID, tr.ID, inTxn.ID, testClock).Return(nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: tr.ID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assert.NoError(t, err)
	assert.True(t, action.Result.Replayed)
	assert.Equal(t, transfer.StatusReceived, action.Result.Transfer.Status)
	if assert.NotNil(t, action.Result.Transfer.TransferInTxnID) {
		assert.Equal(t, inTxn.ID, *action.Result.Transfer.TransferInTxnID)
	}
	tm.poster.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	tm.transfers.AssertExpectations(t)
}

func TestReceiveTransfer_NotFound(t *testing.T) {
	tm := newTestMocks()
	tenantID := newUUID()
	transferID := newUUID()

	tm.transfers.On("FindForTenantForUpdate", mock.Anything, tenantID, transferID).Return(nil, nil)

	action := &ReceiveTransfer{TenantID: tenantID, TransferID: transferID}
	err := action.Perform(context.Background(), tm.deps(), tm.writer())

	assertErrKind(t, err, apperr.KindNotFound)
}
