package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/service"
)

// GetTransferInput is the Huma input for fetching one transfer.
type GetTransferInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transfer UUID"`
}

// GetTransferResponseBody is the response body for fetching one transfer.
type GetTransferResponseBody struct {
	Transfer Transfer     `json:"transfer" doc:"The transfer"`
	OutTxn   *TransferLeg `json:"outTxn,omitempty" doc:"The transfer-out leg"`
	InTxn    *TransferLeg `json:"inTxn,omitempty" doc:"The transfer-in leg once received"`
}

// GetTransferOutput is the Huma output for fetching one transfer.
type GetTransferOutput struct {
	Body GetTransferResponseBody
}

// transferGetter is the slice of the service the handler needs.
type transferGetter interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*service.TransferDetail, error)
}

// GetTransferHandler handles GET /v1/cash-transfer/{id}.
type GetTransferHandler struct {
	TransferService transferGetter
}

// NewGetTransferHandler creates a new GetTransferHandler.
func NewGetTransferHandler(svc transferGetter) *GetTransferHandler {
	return &GetTransferHandler{TransferService: svc}
}

// Register registers the get endpoint with the Huma API.
func (h *GetTransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-cash-transfer",
		Method:      http.MethodGet,
		Path:        "/v1/cash-transfer/{id}",
		Summary:     "Get cash transfer",
		Tags:        []string{"CashTransfers"},
	}, h.handle)
}

func (h *GetTransferHandler) handle(ctx context.Context, input *GetTransferInput) (*GetTransferOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	detail, err := h.TransferService.Get(ctx, tenantID, id)
	if err != nil {
		return nil, httperr.Map(err, "failed to get cash transfer")
	}
	return &GetTransferOutput{
		Body: GetTransferResponseBody{
			Transfer: toAPITransfer(detail.Transfer),
			OutTxn:   toAPILeg(detail.OutTxn),
			InTxn:    toAPILeg(detail.InTxn),
		},
	}, nil
}
