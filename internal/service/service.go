package service

import (
	"github.com/carson-networks/cashdesk-server/internal/storage"
)

// Service holds all read-side business logic services. Mutations go through
// the operator instead.
type Service struct {
	CashTransaction *CashTransactionService
	Transfer        *TransferService
	Settlement      *SettlementService
}

// NewService creates a new Service with the given storage.
func NewService(store *storage.Storage) *Service {
	return &Service{
		CashTransaction: NewCashTransactionService(store),
		Transfer:        NewTransferService(store),
		Settlement:      NewSettlementService(store),
	}
}
