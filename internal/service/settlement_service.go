package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
)

// settlementReader is the slice of the storage reader the service needs.
type settlementReader interface {
	ListUnapplied(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*settlement.UnappliedCash, error)
}

// SettlementService exposes deferred-settlement state for review queues.
type SettlementService struct {
	settlements settlementReader
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(store *storage.Storage) *SettlementService {
	return &SettlementService{settlements: store.Reader.Settlements}
}

// ListUnapplied returns a page of open unapplied-cash records, newest first.
func (s *SettlementService) ListUnapplied(ctx context.Context, tenantID uuid.UUID, cursor *Cursor) ([]*settlement.UnappliedCash, *Cursor, error) {
	limit := defaultLimit
	offset := 0
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
	}

	rows, err := s.settlements.ListUnapplied(ctx, tenantID, limit, offset)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &Cursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	return rows, nextCursor, nil
}
