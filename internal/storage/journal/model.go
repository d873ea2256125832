package journal

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Entry is a journal entry header. Line-level balancing arithmetic belongs to
// the ledger service, not this subsystem.
type Entry struct {
	ID             uuid.UUID       `db:"id"`
	TenantID       uuid.UUID       `db:"tenant_id"`
	SourceModule   string          `db:"source_module"`
	SourceEntityID uuid.UUID       `db:"source_entity_id"`
	Description    string          `db:"description"`
	Amount         decimal.Decimal `db:"amount"`
	CurrencyCode   string          `db:"currency_code"`
	EntryDate      time.Time       `db:"entry_date"`
	CreatedAt      time.Time       `db:"created_at"`
}

// EntryCreate is the input for writing a journal entry header.
type EntryCreate struct {
	TenantID       uuid.UUID
	SourceModule   string
	SourceEntityID uuid.UUID
	Description    string
	Amount         decimal.Decimal
	CurrencyCode   string
	EntryDate      time.Time
}

// IJournalTable defines journal entry storage operations.
type IJournalTable interface {
	Insert(ctx context.Context, create *EntryCreate) (uuid.UUID, error)
}
