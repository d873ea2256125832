package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/cashdesk-server/internal/storage/account"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/journal"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// Writer is one unit of work. Fields are interfaces so action tests can swap
// in mocks without a database.
type Writer struct {
	tx           bob.Tx
	Accounts     account.IAccountTable
	Registers    register.IRegisterTable
	Transactions cashtxn.ICashTransactionTable
	Transfers    transfer.ITransferTable
	Settlements  settlement.ISettlementTable
	Journal      journal.IJournalTable
}

func NewWriter(tx bob.Tx) Writer {
	return Writer{
		tx:           tx,
		Accounts:     account.NewReader(tx),
		Registers:    register.NewReader(tx),
		Transactions: cashtxn.NewWriter(tx),
		Transfers:    transfer.NewWriter(tx),
		Settlements:  settlement.NewWriter(tx),
		Journal:      journal.NewWriter(tx),
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
