package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/scope"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
)

const defaultLimit = 20

// Cursor identifies a position in a paginated result set and carries the
// limit and maxCreationTime so subsequent pages are consistent.
type Cursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

// CashTransactionFilter narrows transaction listings. Nil fields are ignored.
type CashTransactionFilter struct {
	RegisterID *uuid.UUID
	Status     *cashtxn.Status
	TxnType    *cashtxn.TxnType
}

// transactionReader is the slice of the storage reader the service needs.
type transactionReader interface {
	FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*cashtxn.CashTransaction, error)
	FindByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*cashtxn.CashTransaction, error)
	List(ctx context.Context, filter *cashtxn.Filter) ([]*cashtxn.CashTransaction, error)
}

// CashTransactionService handles cash transaction read paths.
type CashTransactionService struct {
	transactions transactionReader
}

// NewCashTransactionService creates a new CashTransactionService.
func NewCashTransactionService(store *storage.Storage) *CashTransactionService {
	return &CashTransactionService{transactions: store.Reader.Transactions}
}

// Get retrieves one transaction, guarded by tenant and caller scope.
func (s *CashTransactionService) Get(ctx context.Context, tenantID, id uuid.UUID) (*cashtxn.CashTransaction, error) {
	txn, err := s.transactions.FindForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperr.NotFound("cash transaction", id)
	}
	if err := scope.Assert(ctx, scope.TypeLegalEntity, txn.LegalEntityID, "cash transaction"); err != nil {
		return nil, err
	}
	if err := scope.Assert(ctx, scope.TypeOperatingUnit, txn.OperatingUnitID, "cash transaction"); err != nil {
		return nil, err
	}
	return txn, nil
}

// GetByIntegrationEventUID resolves the transaction created by an upstream
// business event, for replay lookups by integrating modules.
func (s *CashTransactionService) GetByIntegrationEventUID(ctx context.Context, tenantID uuid.UUID, eventUID string) (*cashtxn.CashTransaction, error) {
	txn, err := s.transactions.FindByIntegrationEventUID(ctx, tenantID, eventUID)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperr.NotFound("cash transaction", uuid.Nil)
	}
	if err := scope.Assert(ctx, scope.TypeLegalEntity, txn.LegalEntityID, "cash transaction"); err != nil {
		return nil, err
	}
	return txn, nil
}

// List returns a page of transactions using cursor-based pagination, filtered
// to the caller's legal-entity scope.
func (s *CashTransactionService) List(ctx context.Context, tenantID uuid.UUID, filter CashTransactionFilter, cursor *Cursor) ([]*cashtxn.CashTransaction, *Cursor, error) {
	limit := defaultLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = &cursor.MaxCreationTime
	}

	storageFilter := &cashtxn.Filter{
		TenantID:        tenantID,
		RegisterID:      filter.RegisterID,
		Status:          filter.Status,
		TxnType:         filter.TxnType,
		LegalEntityIDs:  scope.FromContext(ctx).AllowedIDs(scope.TypeLegalEntity),
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	}

	rows, err := s.transactions.List(ctx, storageFilter)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *Cursor
	if len(rows) > limit {
		rows = rows[:limit]

		cursorMaxCreationTime := rows[0].CreatedAt
		if maxCreationTime != nil {
			cursorMaxCreationTime = *maxCreationTime
		}

		nextCursor = &Cursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: cursorMaxCreationTime,
		}
	}

	return rows, nextCursor, nil
}
