package transfer

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
	storagetransfer "github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// actionProcessor is the slice of the operator the handlers need.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Transfer is the API response model for a cash transit transfer.
// It is used only for responses, not for request bodies.
type Transfer struct {
	ID               string  `json:"id" doc:"Transfer UUID"`
	SourceRegisterID string  `json:"sourceRegisterID" doc:"Source register UUID"`
	TargetRegisterID string  `json:"targetRegisterID" doc:"Target register UUID"`
	TransferOutTxnID string  `json:"transferOutTxnID" doc:"Transfer-out leg UUID"`
	TransferInTxnID  *string `json:"transferInTxnID,omitempty" doc:"Transfer-in leg UUID once received"`
	Status           string  `json:"status" doc:"Transfer status"`
	Amount           string  `json:"amount" doc:"Decimal amount"`
	CurrencyCode     string  `json:"currencyCode" doc:"ISO currency code"`
	TransitAccountID string  `json:"transitAccountID" doc:"Transit GL account UUID"`
	CreatedAt        string  `json:"createdAt" doc:"RFC3339 creation time"`
	ReceivedAt       *string `json:"receivedAt,omitempty" doc:"RFC3339 receive time"`
}

// TransferLeg is the API response model for one leg of a transfer.
type TransferLeg struct {
	ID         string `json:"id" doc:"Transaction UUID"`
	TxnNo      string `json:"txnNo" doc:"Human-facing transaction number"`
	RegisterID string `json:"registerID" doc:"Register UUID"`
	TxnType    string `json:"txnType" doc:"TRANSFER_OUT or TRANSFER_IN"`
	Status     string `json:"status" doc:"Transaction status"`
	Amount     string `json:"amount" doc:"Decimal amount"`
}

func toAPITransfer(tr *storagetransfer.CashTransitTransfer) Transfer {
	out := Transfer{
		ID:               tr.ID.String(),
		SourceRegisterID: tr.SourceRegisterID.String(),
		TargetRegisterID: tr.TargetRegisterID.String(),
		TransferOutTxnID: tr.TransferOutTxnID.String(),
		Status:           tr.Status.String(),
		Amount:           tr.Amount.String(),
		CurrencyCode:     tr.CurrencyCode,
		TransitAccountID: tr.TransitAccountID.String(),
		CreatedAt:        tr.CreatedAt.Format(time.RFC3339),
	}
	if tr.TransferInTxnID != nil {
		s := tr.TransferInTxnID.String()
		out.TransferInTxnID = &s
	}
	if tr.ReceivedAt != nil {
		s := tr.ReceivedAt.Format(time.RFC3339)
		out.ReceivedAt = &s
	}
	return out
}

func toAPILeg(txn *storagetxn.CashTransaction) *TransferLeg {
	if txn == nil {
		return nil
	}
	return &TransferLeg{
		ID:         txn.ID.String(),
		TxnNo:      txn.TxnNo,
		RegisterID: txn.RegisterID.String(),
		TxnType:    txn.TxnType.String(),
		Status:     txn.Status.String(),
		Amount:     txn.Amount.String(),
	}
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
