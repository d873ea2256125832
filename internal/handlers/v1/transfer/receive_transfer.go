package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
)

// ReceiveTransferInput is the Huma input for receiving a transfer.
type ReceiveTransferInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transfer UUID"`
}

// ReceiveTransferResponseBody is the response body for receiving a transfer.
type ReceiveTransferResponseBody struct {
	Transfer Transfer     `json:"transfer" doc:"The received transfer"`
	OutTxn   *TransferLeg `json:"outTxn,omitempty" doc:"The transfer-out leg"`
	InTxn    *TransferLeg `json:"inTxn,omitempty" doc:"The posted transfer-in leg"`
	Replayed bool         `json:"replayed" doc:"True when the transfer was already received"`
}

// ReceiveTransferOutput is the Huma output for receiving a transfer.
type ReceiveTransferOutput struct {
	Body ReceiveTransferResponseBody
}

// ReceiveTransferHandler handles POST /v1/cash-transfer/{id}/receive.
type ReceiveTransferHandler struct {
	Operator actionProcessor
}

// NewReceiveTransferHandler creates a new ReceiveTransferHandler.
func NewReceiveTransferHandler(op actionProcessor) *ReceiveTransferHandler {
	return &ReceiveTransferHandler{Operator: op}
}

// Register registers the receive endpoint with the Huma API.
func (h *ReceiveTransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "receive-cash-transfer",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transfer/{id}/receive",
		Summary:     "Receive cash transfer",
		Description: "Receives an IN_TRANSIT transfer at the target register, creating and posting the TRANSFER_IN leg.",
		Tags:        []string{"CashTransfers"},
	}, h.handle)
}

func (h *ReceiveTransferHandler) handle(ctx context.Context, input *ReceiveTransferInput) (*ReceiveTransferOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	action := &actions.ReceiveTransfer{
		TenantID:   tenantID,
		TransferID: id,
	}
	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to receive cash transfer")
	}

	return &ReceiveTransferOutput{
		Body: ReceiveTransferResponseBody{
			Transfer: toAPITransfer(action.Result.Transfer),
			OutTxn:   toAPILeg(action.Result.OutTxn),
			InTxn:    toAPILeg(action.Result.InTxn),
			Replayed: action.Result.Replayed,
		},
	}, nil
}
