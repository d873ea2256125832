package cashtxn

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
)

// actionProcessor is the slice of the operator the handlers need.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// CashTransaction is the API response model for a cash transaction.
// It is used only for responses, not for request bodies.
type CashTransaction struct {
	ID                    string  `json:"id" doc:"Transaction UUID"`
	TxnNo                 string  `json:"txnNo" doc:"Human-facing transaction number"`
	RegisterID            string  `json:"registerID" doc:"Register UUID"`
	SessionID             *string `json:"sessionID,omitempty" doc:"Session UUID when tied to a cash session"`
	TxnType               string  `json:"txnType" doc:"Transaction type"`
	Status                string  `json:"status" doc:"Transaction status"`
	Amount                string  `json:"amount" doc:"Decimal amount, always positive"`
	CurrencyCode          string  `json:"currencyCode" doc:"ISO currency code"`
	CounterpartyType      *string `json:"counterpartyType,omitempty" doc:"Counterparty role"`
	CounterpartyID        *string `json:"counterpartyID,omitempty" doc:"Counterparty UUID"`
	CounterAccountID      *string `json:"counterAccountID,omitempty" doc:"Counter GL account UUID"`
	CounterCashRegisterID *string `json:"counterCashRegisterID,omitempty" doc:"Counter register UUID for transfer legs"`
	TransferID            *string `json:"transferID,omitempty" doc:"Owning transfer UUID for transfer legs"`
	ReversalOfID          *string `json:"reversalOfID,omitempty" doc:"Original transaction UUID when this is a reversal"`
	JournalEntryID        *string `json:"journalEntryID,omitempty" doc:"Posted journal entry UUID"`
	CreatedAt             string  `json:"createdAt" doc:"RFC3339 creation time"`
	PostedAt              *string `json:"postedAt,omitempty" doc:"RFC3339 posting time"`
}

func toAPITransaction(txn *storagetxn.CashTransaction) CashTransaction {
	return CashTransaction{
		ID:                    txn.ID.String(),
		TxnNo:                 txn.TxnNo,
		RegisterID:            txn.RegisterID.String(),
		SessionID:             uuidString(txn.SessionID),
		TxnType:               txn.TxnType.String(),
		Status:                txn.Status.String(),
		Amount:                txn.Amount.String(),
		CurrencyCode:          txn.CurrencyCode,
		CounterpartyType:      txn.CounterpartyType,
		CounterpartyID:        uuidString(txn.CounterpartyID),
		CounterAccountID:      uuidString(txn.CounterAccountID),
		CounterCashRegisterID: uuidString(txn.CounterCashRegisterID),
		TransferID:            uuidString(txn.TransferID),
		ReversalOfID:          uuidString(txn.ReversalOfTransactionID),
		JournalEntryID:        uuidString(txn.PostedJournalEntryID),
		CreatedAt:             txn.CreatedAt.Format(time.RFC3339),
		PostedAt:              timeString(txn.PostedAt),
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func timeString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func parseUUID(value, field string) (uuid.UUID, error) {
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}

func parseOptionalUUID(value *string, field string) (*uuid.UUID, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	id, err := parseUUID(*value, field)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
