package cashtxn

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
)

// ReverseCashTransactionInput is the Huma input for reversing a cash
// transaction.
type ReverseCashTransactionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transaction UUID"`
}

// ReverseCashTransactionResponseBody is the response body for reversing a
// cash transaction.
type ReverseCashTransactionResponseBody struct {
	Original CashTransaction `json:"original" doc:"The reversed transaction"`
	Reversal CashTransaction `json:"reversal" doc:"The posted compensating transaction"`
	Replayed bool            `json:"replayed" doc:"True when a reversal already existed"`
}

// ReverseCashTransactionOutput is the Huma output for reversing a cash
// transaction.
type ReverseCashTransactionOutput struct {
	Body ReverseCashTransactionResponseBody
}

// ReverseCashTransactionHandler handles POST /v1/cash-transaction/{id}/reverse.
type ReverseCashTransactionHandler struct {
	Operator actionProcessor
}

// NewReverseCashTransactionHandler creates a new ReverseCashTransactionHandler.
func NewReverseCashTransactionHandler(op actionProcessor) *ReverseCashTransactionHandler {
	return &ReverseCashTransactionHandler{Operator: op}
}

// Register registers the reverse endpoint with the Huma API.
func (h *ReverseCashTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "reverse-cash-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transaction/{id}/reverse",
		Summary:     "Reverse cash transaction",
		Description: "Reverses a POSTED transaction by posting a compensating transaction. A transaction has at most one reversal; repeat calls replay it.",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

func (h *ReverseCashTransactionHandler) handle(ctx context.Context, input *ReverseCashTransactionInput) (*ReverseCashTransactionOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	action := &actions.ReverseCashTransaction{
		TenantID:      tenantID,
		TransactionID: id,
	}
	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to reverse cash transaction")
	}

	return &ReverseCashTransactionOutput{
		Body: ReverseCashTransactionResponseBody{
			Original: toAPITransaction(action.Result.Original),
			Reversal: toAPITransaction(action.Result.Reversal),
			Replayed: action.Result.Replayed,
		},
	}, nil
}
