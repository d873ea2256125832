package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/carson-networks/cashdesk-server/internal/cari"
	"github.com/carson-networks/cashdesk-server/internal/journal"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/account"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	journalstore "github.com/carson-networks/cashdesk-server/internal/storage/journal"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// mockTransactionTable is a hand-written mock for cashtxn.ICashTransactionTable.
type mockTransactionTable struct {
	mock.Mock
}

func (m *mockTransactionTable) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashtxn.CashTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	txn, _ := args.Get(0).(*cashtxn.CashTransaction)
	return txn, args.Error(1)
}

func (m *mockTransactionTable) FindForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*cashtxn.CashTransaction, error) {
	args := m.Called(ctx, tenantID, id)
	txn, _ := args.Get(0).(*cashtxn.CashTransaction)
	return txn, args.Error(1)
}

func (m *mockTransactionTable) FindByIdempotencyKeyForUpdate(ctx context.Context, tenantID, registerID uuid.UUID, key string) (*cashtxn.CashTransaction, error) {
	args := m.Called(ctx, tenantID, registerID, key)
	txn, _ := args.Get(0).(*cashtxn.CashTransaction)
	return txn, args.Error(1)
}

func (m *mockTransactionTable) FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*cashtxn.CashTransaction, error) {
	args := m.Called(ctx, tenantID, eventUID)
	txn, _ := args.Get(0).(*cashtxn.CashTransaction)
	return txn, args.Error(1)
}

func (m *mockTransactionTable) FindReversalOf(ctx context.Context, tenantID, originalID uuid.UUID) (*cashtxn.CashTransaction, error) {
	args := m.Called(ctx, tenantID, originalID)
	txn, _ := args.Get(0).(*cashtxn.CashTransaction)
	return txn, args.Error(1)
}

func (m *mockTransactionTable) NextTxnSeq(ctx context.Context, tenantID, legalEntityID uuid.UUID, year int) (int64, error) {
	args := m.Called(ctx, tenantID, legalEntityID, year)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTransactionTable) Insert(ctx context.Context, create *cashtxn.CreateRow) (*cashtxn.CashTransaction, bool, error) {
	args := m.Called(ctx, create)
	txn, _ := args.Get(0).(*cashtxn.CashTransaction)
	return txn, args.Bool(1), args.Error(2)
}

func (m *mockTransactionTable) MarkPosted(ctx context.Context, tenantID, id, journalEntryID uuid.UUID, sessionID *uuid.UUID, postedAt time.Time) error {
	args := m.Called(ctx, tenantID, id, journalEntryID, sessionID, postedAt)
	return args.Error(0)
}

func (m *mockTransactionTable) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status cashtxn.Status) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *mockTransactionTable) SetTransferID(ctx context.Context, tenantID, id, transferID uuid.UUID) error {
	args := m.Called(ctx, tenantID, id, transferID)
	return args.Error(0)
}

func (m *mockTransactionTable) ClaimUnappliedLink(ctx context.Context, tenantID, id, unappliedID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id, unappliedID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTransactionTable) ClaimBatchLink(ctx context.Context, tenantID, id, batchID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id, batchID)
	return args.Bool(0), args.Error(1)
}

// mockTransferTable is a hand-written mock for transfer.ITransferTable.
type mockTransferTable struct {
	mock.Mock
}

func (m *mockTransferTable) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*transfer.CashTransitTransfer, error) {
	args := m.Called(ctx, tenantID, id)
	tr, _ := args.Get(0).(*transfer.CashTransitTransfer)
	return tr, args.Error(1)
}

func (m *mockTransferTable) FindForTenantForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*transfer.CashTransitTransfer, error) {
	args := m.Called(ctx, tenantID, id)
	tr, _ := args.Get(0).(*transfer.CashTransitTransfer)
	return tr, args.Error(1)
}

func (m *mockTransferTable) FindByIdempotencyKeyForUpdate(ctx context.Context, tenantID, sourceRegisterID uuid.UUID, key string) (*transfer.CashTransitTransfer, error) {
	args := m.Called(ctx, tenantID, sourceRegisterID, key)
	tr, _ := args.Get(0).(*transfer.CashTransitTransfer)
	return tr, args.Error(1)
}

func (m *mockTransferTable) FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*transfer.CashTransitTransfer, error) {
	args := m.Called(ctx, tenantID, eventUID)
	tr, _ := args.Get(0).(*transfer.CashTransitTransfer)
	return tr, args.Error(1)
}

func (m *mockTransferTable) FindByOutTxn(ctx context.Context, tenantID, outTxnID uuid.UUID) (*transfer.CashTransitTransfer, error) {
	args := m.Called(ctx, tenantID, outTxnID)
	tr, _ := args.Get(0).(*transfer.CashTransitTransfer)
	return tr, args.Error(1)
}

func (m *mockTransferTable) Insert(ctx context.Context, create *transfer.CreateRow) (*transfer.CashTransitTransfer, bool, error) {
	args := m.Called(ctx, create)
	tr, _ := args.Get(0).(*transfer.CashTransitTransfer)
	return tr, args.Bool(1), args.Error(2)
}

func (m *mockTransferTable) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, status transfer.Status) error {
	args := m.Called(ctx, tenantID, id, status)
	return args.Error(0)
}

func (m *mockTransferTable) MarkReceived(ctx context.Context, tenantID, id, inTxnID uuid.UUID, receivedAt time.Time) error {
	args := m.Called(ctx, tenantID, id, inTxnID, receivedAt)
	return args.Error(0)
}

// mockRegisterTable is a hand-written mock for register.IRegisterTable.
type mockRegisterTable struct {
	mock.Mock
}

func (m *mockRegisterTable) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*register.CashRegister, error) {
	args := m.Called(ctx, tenantID, id)
	reg, _ := args.Get(0).(*register.CashRegister)
	return reg, args.Error(1)
}

func (m *mockRegisterTable) FindSessionForTenant(ctx context.Context, tenantID, id uuid.UUID) (*register.CashSession, error) {
	args := m.Called(ctx, tenantID, id)
	session, _ := args.Get(0).(*register.CashSession)
	return session, args.Error(1)
}

func (m *mockRegisterTable) FindOpenSession(ctx context.Context, tenantID, registerID uuid.UUID) (*register.CashSession, error) {
	args := m.Called(ctx, tenantID, registerID)
	session, _ := args.Get(0).(*register.CashSession)
	return session, args.Error(1)
}

// mockAccountTable is a hand-written mock for account.IAccountTable.
type mockAccountTable struct {
	mock.Mock
}

func (m *mockAccountTable) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*account.Account, error) {
	args := m.Called(ctx, tenantID, id)
	acc, _ := args.Get(0).(*account.Account)
	return acc, args.Error(1)
}

// mockSettlementTable is a hand-written mock for settlement.ISettlementTable.
type mockSettlementTable struct {
	mock.Mock
}

func (m *mockSettlementTable) FindUnappliedByTxn(ctx context.Context, tenantID, cashTransactionID uuid.UUID) (*settlement.UnappliedCash, error) {
	args := m.Called(ctx, tenantID, cashTransactionID)
	rec, _ := args.Get(0).(*settlement.UnappliedCash)
	return rec, args.Error(1)
}

func (m *mockSettlementTable) InsertUnapplied(ctx context.Context, create *settlement.UnappliedCreate) (*settlement.UnappliedCash, bool, error) {
	args := m.Called(ctx, create)
	rec, _ := args.Get(0).(*settlement.UnappliedCash)
	return rec, args.Bool(1), args.Error(2)
}

func (m *mockSettlementTable) FindBatchForTenant(ctx context.Context, tenantID, id uuid.UUID) (*settlement.Batch, error) {
	args := m.Called(ctx, tenantID, id)
	batch, _ := args.Get(0).(*settlement.Batch)
	return batch, args.Error(1)
}

func (m *mockSettlementTable) InsertBatch(ctx context.Context, tenantID uuid.UUID, total decimal.Decimal, currency string, allocations []settlement.AllocationCreate) (*settlement.Batch, error) {
	args := m.Called(ctx, tenantID, total, currency, allocations)
	batch, _ := args.Get(0).(*settlement.Batch)
	return batch, args.Error(1)
}

func (m *mockSettlementTable) ClaimBatch(ctx context.Context, tenantID, batchID, cashTransactionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, batchID, cashTransactionID)
	return args.Bool(0), args.Error(1)
}

// mockJournalTable is a hand-written mock for journal.IJournalTable.
type mockJournalTable struct {
	mock.Mock
}

func (m *mockJournalTable) Insert(ctx context.Context, create *journalstore.EntryCreate) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// mockJournalPoster is a hand-written mock for journal.Poster.
type mockJournalPoster struct {
	mock.Mock
}

func (m *mockJournalPoster) Post(ctx context.Context, writer *storage.Writer, txnCtx journal.Context) (uuid.UUID, error) {
	args := m.Called(ctx, writer, txnCtx)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// mockSettler is a hand-written mock for cari.Settler.
type mockSettler struct {
	mock.Mock
}

func (m *mockSettler) Apply(ctx context.Context, writer *storage.Writer, input cari.ApplyInput) (uuid.UUID, error) {
	args := m.Called(ctx, writer, input)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// testMocks bundles every table mock behind one writer.
type testMocks struct {
	transactions *mockTransactionTable
	transfers    *mockTransferTable
	registers    *mockRegisterTable
	accounts     *mockAccountTable
	settlements  *mockSettlementTable
	journal      *mockJournalTable
	poster       *mockJournalPoster
	settler      *mockSettler
}

func newTestMocks() *testMocks {
	return &testMocks{
		transactions: new(mockTransactionTable),
		transfers:    new(mockTransferTable),
		registers:    new(mockRegisterTable),
		accounts:     new(mockAccountTable),
		settlements:  new(mockSettlementTable),
		journal:      new(mockJournalTable),
		poster:       new(mockJournalPoster),
		settler:      new(mockSettler),
	}
}

func (tm *testMocks) writer() *storage.Writer {
	return &storage.Writer{
		Accounts:     tm.accounts,
		Registers:    tm.registers,
		Transactions: tm.transactions,
		Transfers:    tm.transfers,
		Settlements:  tm.settlements,
		Journal:      tm.journal,
	}
}

var testClock = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func (tm *testMocks) deps() *Deps {
	return &Deps{
		Journal: tm.poster,
		Settler: tm.settler,
		Now:     func() time.Time { return testClock },
	}
}
