package cashtxn

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
)

// CancelCashTransactionInput is the Huma input for cancelling a cash
// transaction.
type CancelCashTransactionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transaction UUID"`
}

// CancelCashTransactionResponseBody is the response body for cancelling a
// cash transaction.
type CancelCashTransactionResponseBody struct {
	Transaction CashTransaction `json:"transaction" doc:"The cancelled transaction"`
	Replayed    bool            `json:"replayed" doc:"True when the transaction was already cancelled"`
}

// CancelCashTransactionOutput is the Huma output for cancelling a cash
// transaction.
type CancelCashTransactionOutput struct {
	Body CancelCashTransactionResponseBody
}

// CancelCashTransactionHandler handles POST /v1/cash-transaction/{id}/cancel.
type CancelCashTransactionHandler struct {
	Operator actionProcessor
}

// NewCancelCashTransactionHandler creates a new CancelCashTransactionHandler.
func NewCancelCashTransactionHandler(op actionProcessor) *CancelCashTransactionHandler {
	return &CancelCashTransactionHandler{Operator: op}
}

// Register registers the cancel endpoint with the Huma API.
func (h *CancelCashTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "cancel-cash-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transaction/{id}/cancel",
		Summary:     "Cancel cash transaction",
		Description: "Cancels a DRAFT or SUBMITTED transaction. A transfer-out leg cancels its transfer as well.",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

func (h *CancelCashTransactionHandler) handle(ctx context.Context, input *CancelCashTransactionInput) (*CancelCashTransactionOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	action := &actions.CancelCashTransaction{
		TenantID:      tenantID,
		TransactionID: id,
	}
	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to cancel cash transaction")
	}

	return &CancelCashTransactionOutput{
		Body: CancelCashTransactionResponseBody{
			Transaction: toAPITransaction(action.Result.Transaction),
			Replayed:    action.Result.Replayed,
		},
	}, nil
}
