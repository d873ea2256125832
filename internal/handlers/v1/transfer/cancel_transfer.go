package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
)

// CancelTransferInput is the Huma input for cancelling a transfer.
type CancelTransferInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transfer UUID"`
}

// CancelTransferResponseBody is the response body for cancelling a transfer.
type CancelTransferResponseBody struct {
	Transfer Transfer     `json:"transfer" doc:"The cancelled transfer"`
	OutTxn   *TransferLeg `json:"outTxn,omitempty" doc:"The cancelled transfer-out leg"`
	Replayed bool         `json:"replayed" doc:"True when the transfer was already cancelled"`
}

// CancelTransferOutput is the Huma output for cancelling a transfer.
type CancelTransferOutput struct {
	Body CancelTransferResponseBody
}

// CancelTransferHandler handles POST /v1/cash-transfer/{id}/cancel.
type CancelTransferHandler struct {
	Operator actionProcessor
}

// NewCancelTransferHandler creates a new CancelTransferHandler.
func NewCancelTransferHandler(op actionProcessor) *CancelTransferHandler {
	return &CancelTransferHandler{Operator: op}
}

// Register registers the cancel endpoint with the Huma API.
func (h *CancelTransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "cancel-cash-transfer",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transfer/{id}/cancel",
		Summary:     "Cancel cash transfer",
		Description: "Cancels an INITIATED transfer together with its transfer-out leg.",
		Tags:        []string{"CashTransfers"},
	}, h.handle)
}

func (h *CancelTransferHandler) handle(ctx context.Context, input *CancelTransferInput) (*CancelTransferOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	action := &actions.CancelTransfer{
		TenantID:   tenantID,
		TransferID: id,
	}
	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to cancel cash transfer")
	}

	return &CancelTransferOutput{
		Body: CancelTransferResponseBody{
			Transfer: toAPITransfer(action.Result.Transfer),
			OutTxn:   toAPILeg(action.Result.OutTxn),
			Replayed: action.Result.Replayed,
		},
	}, nil
}
