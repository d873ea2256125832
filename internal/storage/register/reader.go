package register

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

const (
	registersTable = "cash_registers"
	sessionsTable  = "cash_sessions"
)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func registerColumns() bob.Mod[*dialect.SelectQuery] {
	return sm.Columns(
		"id", "tenant_id", "legal_entity_id", "operating_unit_id", "name",
		"currency_code", "status", "cash_controlled", "session_mode",
		"max_txn_amount", "gl_account_id", "created_at",
	)
}

// FindForTenant retrieves a register, guarded by tenant. Returns (nil, nil)
// when the register does not exist for the tenant.
func (r *Reader) FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashRegister, error) {
	query := psql.Select(
		registerColumns(),
		sm.From(registersTable),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[CashRegister]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindSessionForTenant retrieves a session by id, guarded by tenant.
func (r *Reader) FindSessionForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CashSession, error) {
	query := psql.Select(
		sm.Columns("id", "tenant_id", "register_id", "status", "opened_at", "closed_at"),
		sm.From(sessionsTable),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)

	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[CashSession]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// FindOpenSession returns the register's open session, or (nil, nil) when no
// session is open.
func (r *Reader) FindOpenSession(ctx context.Context, tenantID, registerID uuid.UUID) (*CashSession, error) {
	query := psql.Select(
		sm.Columns("id", "tenant_id", "register_id", "status", "opened_at", "closed_at"),
		sm.From(sessionsTable),
		sm.Where(psql.Quote("tenant_id").EQ(psql.Arg(tenantID))),
		sm.Where(psql.Quote("register_id").EQ(psql.Arg(registerID))),
		sm.Where(psql.Quote("status").EQ(psql.Arg(SessionStatusOpen))),
		sm.OrderBy("opened_at").Desc(),
		sm.Limit(1),
	)

	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[CashSession]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
