package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

const tableName = "gl_accounts"

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindForTenant retrieves a GL account, guarded by tenant. Returns (nil, nil)
// when no such account exists for the tenant.
func (r *Reader) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Account, error) {
	query := psql.Select(
		sm.Columns(
			"id", "tenant_id", "code", "name", "account_type",
			"is_cash_account", "is_transit_cash", "currency_code", "created_at",
		),
		sm.From(tableName),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[Account]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
