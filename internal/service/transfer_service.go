package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
	"github.com/carson-networks/cashdesk-server/internal/scope"
	"github.com/carson-networks/cashdesk-server/internal/storage"
	"github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	"github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// TransferDetail is a transfer with both legs resolved. InTxn is nil until
// the transfer is received.
type TransferDetail struct {
	Transfer *transfer.CashTransitTransfer
	OutTxn   *cashtxn.CashTransaction
	InTxn    *cashtxn.CashTransaction
}

// TransferFilter narrows transfer listings. Nil fields are ignored.
type TransferFilter struct {
	SourceRegister *uuid.UUID
	TargetRegister *uuid.UUID
	Status         *transfer.Status
}

// transferReader is the slice of the storage reader the service needs.
type transferReader interface {
	FindForTenant(ctx context.Context, tenantID, id uuid.UUID) (*transfer.CashTransitTransfer, error)
	List(ctx context.Context, filter *transfer.Filter) ([]*transfer.CashTransitTransfer, error)
}

// TransferService handles cash transit transfer read paths.
type TransferService struct {
	transfers    transferReader
	transactions transactionReader
}

// NewTransferService creates a new TransferService.
func NewTransferService(store *storage.Storage) *TransferService {
	return &TransferService{
		transfers:    store.Reader.Transfers,
		transactions: store.Reader.Transactions,
	}
}

// Get retrieves one transfer with its legs, guarded by tenant and caller
// scope.
func (s *TransferService) Get(ctx context.Context, tenantID, id uuid.UUID) (*TransferDetail, error) {
	tr, err := s.transfers.FindForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, apperr.NotFound("cash transit transfer", id)
	}
	if err := scope.Assert(ctx, scope.TypeLegalEntity, tr.LegalEntityID, "cash transit transfer"); err != nil {
		return nil, err
	}

	detail := &TransferDetail{Transfer: tr}
	detail.OutTxn, err = s.transactions.FindForTenant(ctx, tenantID, tr.TransferOutTxnID)
	if err != nil {
		return nil, err
	}
	if tr.TransferInTxnID != nil {
		detail.InTxn, err = s.transactions.FindForTenant(ctx, tenantID, *tr.TransferInTxnID)
		if err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// List returns a page of transfers using cursor-based pagination, filtered to
// the caller's legal-entity scope.
func (s *TransferService) List(ctx context.Context, tenantID uuid.UUID, filter TransferFilter, cursor *Cursor) ([]*transfer.CashTransitTransfer, *Cursor, error) {
	limit := defaultLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = &cursor.MaxCreationTime
	}

	storageFilter := &transfer.Filter{
		TenantID:        tenantID,
		SourceRegister:  filter.SourceRegister,
		TargetRegister:  filter.TargetRegister,
		Status:          filter.Status,
		LegalEntityIDs:  scope.FromContext(ctx).AllowedIDs(scope.TypeLegalEntity),
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	}

	rows, err := s.transfers.List(ctx, storageFilter)
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
