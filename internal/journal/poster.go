package journal

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/storage"
	journalstore "github.com/carson-networks/cashdesk-server/internal/storage/journal"
)

// Context describes the transaction being journaled. The posting arithmetic
// (line balancing) belongs to the ledger service behind the Poster.
type Context struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	TxnType       string
	Description   string
	Amount        decimal.Decimal
	CurrencyCode  string
	EntryDate     time.Time
}

// Poster turns one cash transaction into a balanced ledger entry. A failure
// aborts the enclosing unit of work.
type Poster interface {
	Post(ctx context.Context, writer *storage.Writer, txnCtx Context) (uuid.UUID, error)
}

// LedgerPoster writes journal entry headers into the shared store. Line
// generation is delegated downstream off the header row.
type LedgerPoster struct{}

func NewLedgerPoster() *LedgerPoster {
	return &LedgerPoster{}
}

func (p *LedgerPoster) Post(ctx context.Context, writer *storage.Writer, txnCtx Context) (uuid.UUID, error) {
	return writer.Journal.Insert(ctx, &journalstore.EntryCreate{
		TenantID:       txnCtx.TenantID,
		SourceModule:   "CASH",
		SourceEntityID: txnCtx.TransactionID,
		Description:    txnCtx.Description,
		Amount:         txnCtx.Amount,
		CurrencyCode:   txnCtx.CurrencyCode,
		EntryDate:      txnCtx.EntryDate,
	})
}
