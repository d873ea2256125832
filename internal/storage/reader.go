package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/cashdesk-server/internal/storage/account"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

type Reader struct {
	Accounts     *account.Reader
	Registers    *register.Reader
	Transactions *cashtxn.Reader
	Transfers    *transfer.Reader
	Settlements  *settlement.Reader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Accounts:     account.NewReader(exec),
		Registers:    register.NewReader(exec),
		Transactions: cashtxn.NewReader(exec),
		Transfers:    transfer.NewReader(exec),
		Settlements:  settlement.NewReader(exec),
	}
}
