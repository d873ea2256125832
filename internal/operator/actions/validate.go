package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/scope"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/register"
)

// requireRegister loads a register, asserts the caller's scope over it, and
// confirms it can hold cash movements.
func requireRegister(ctx context.Context, writer *storage.Writer, tenantID, registerID uuid.UUID) (*register.CashRegister, error) {
	reg, err := writer.Registers.FindForTenant(ctx, tenantID, registerID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, apperr.NotFound("cash register", registerID)
	}
	if err := scope.Assert(ctx, scope.TypeLegalEntity, reg.LegalEntityID, "cash register "+reg.Name); err != nil {
		return nil, err
	}
	if err := scope.Assert(ctx, scope.TypeOperatingUnit, reg.OperatingUnitID, "cash register "+reg.Name); err != nil {
		return nil, err
	}
	if reg.Status != register.StatusActive {
		return nil, apperr.Validation("cash register %s is not active", reg.Name)
	}
	if !reg.CashControlled {
		return nil, apperr.Validation("cash register %s is not cash-controlled", reg.Name)
	}
	return reg, nil
}

// checkAmount validates the amount against the register's cap.
func checkAmount(reg *register.CashRegister, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validation("amount must be positive")
	}
	if reg.MaxTxnAmount.Valid && amount.GreaterThan(reg.MaxTxnAmount.Decimal) {
		return apperr.Validation("amount %s exceeds the register cap of %s", amount, reg.MaxTxnAmount.Decimal)
	}
	return nil
}

// resolveSession validates an explicit session or, when the register requires
// sessions, resolves the open one. Returns nil when no session applies.
func resolveSession(ctx context.Context, writer *storage.Writer, reg *register.CashRegister, sessionID *uuid.UUID) (*uuid.UUID, error) {
	if sessionID != nil {
		session, err := writer.Registers.FindSessionForTenant(ctx, reg.TenantID, *sessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperr.NotFound("cash session", *sessionID)
		}
		if session.RegisterID != reg.ID {
			return nil, apperr.Validation("cash session %s does not belong to register %s", session.ID, reg.Name)
		}
		if session.Status != register.SessionStatusOpen {
			return nil, apperr.Validation("cash session %s is not open", session.ID)
		}
		return &session.ID, nil
	}

	if reg.SessionMode != register.SessionModeRequired {
		return nil, nil
	}
	session, err := writer.Registers.FindOpenSession(ctx, reg.TenantID, reg.ID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.Validation("register %s requires an open cash session", reg.Name)
	}
	return &session.ID, nil
}
