package journal

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"
)

const tableName = "journal_entries"

type Writer struct {
	tx bob.Tx
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{tx: tx}
}

// Insert writes a journal entry header and returns its id.
func (w *Writer) Insert(ctx context.Context, create *EntryCreate) (uuid.UUID, error) {
	query := psql.Insert(
		im.Into(tableName,
			"tenant_id", "source_module", "source_entity_id", "description",
			"amount", "currency_code", "entry_date",
		),
		im.Values(psql.Arg(
			create.TenantID, create.SourceModule, create.SourceEntityID,
			create.Description, create.Amount, create.CurrencyCode, create.EntryDate,
		)),
		im.Returning("id"),
	)
	return bob.One(ctx, w.tx, query, scan.SingleColumnMapper[uuid.UUID])
}
