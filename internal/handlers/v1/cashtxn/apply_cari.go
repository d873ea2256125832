package cashtxn

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	"github.com/carson-networks/cashdesk-server/internal/storage/settlement"
)

// ApplyCariAllocation is one explicit allocation line in an apply request.
type ApplyCariAllocation struct {
	OpenItemID string `json:"openItemID" required:"true" doc:"AR/AP open item UUID"`
	Amount     string `json:"amount" required:"true" doc:"Positive decimal amount applied to the open item"`
}

// ApplyCariBody is the request body for applying a transaction to cari.
type ApplyCariBody struct {
	Allocations  []ApplyCariAllocation `json:"allocations,omitempty" doc:"Explicit allocations; empty defers the amount as unapplied cash"`
	AutoAllocate bool                  `json:"autoAllocate,omitempty" doc:"Let the cari engine allocate oldest-first"`
}

// ApplyCariInput is the Huma input for applying a transaction to cari.
type ApplyCariInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transaction UUID"`
	Body     ApplyCariBody
}

// ApplyCariResponseBody is the response body for applying a transaction to
// cari.
type ApplyCariResponseBody struct {
	Transaction     CashTransaction `json:"transaction" doc:"The applied transaction"`
	BatchID         *string         `json:"batchID,omitempty" doc:"Settlement batch UUID when allocations were applied"`
	UnappliedCashID *string         `json:"unappliedCashID,omitempty" doc:"Unapplied-cash record UUID when the amount was deferred"`
	Replayed        bool            `json:"replayed" doc:"True when a prior apply already linked the transaction"`
}

// ApplyCariOutput is the Huma output for applying a transaction to cari.
type ApplyCariOutput struct {
	Body ApplyCariResponseBody
}

// ApplyCariHandler handles POST /v1/cash-transaction/{id}/apply-cari.
type ApplyCariHandler struct {
	Operator actionProcessor
}

// NewApplyCariHandler creates a new ApplyCariHandler.
func NewApplyCariHandler(op actionProcessor) *ApplyCariHandler {
	return &ApplyCariHandler{Operator: op}
}

// Register registers the apply-cari endpoint with the Huma API.
func (h *ApplyCariHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "apply-cash-transaction-cari",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transaction/{id}/apply-cari",
		Summary:     "Apply cash transaction to cari",
		Description: "Applies a POSTED RECEIPT to AR or a POSTED PAYOUT to AP open items, or defers the full amount as unapplied cash.",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

func parseApplyCariInput(input *ApplyCariInput) (*actions.ApplyCari, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	allocations := make([]settlement.AllocationCreate, len(input.Body.Allocations))
	for i, alloc := range input.Body.Allocations {
		openItemID, err := parseUUID(alloc.OpenItemID, "allocations openItemID")
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(alloc.Amount)
		if err != nil {
			return nil, huma.NewError(http.StatusBadRequest, "invalid allocation amount", err)
		}
		allocations[i] = settlement.AllocationCreate{
			OpenItemID: openItemID,
			Amount:     amount,
		}
	}

	return &actions.ApplyCari{
		TenantID:      tenantID,
		TransactionID: id,
		Allocations:   allocations,
		AutoAllocate:  input.Body.AutoAllocate,
	}, nil
}

func (h *ApplyCariHandler) handle(ctx context.Context, input *ApplyCariInput) (*ApplyCariOutput, error) {
	action, err := parseApplyCariInput(input)
	if err != nil {
		return nil, err
	}

	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to apply cash transaction to cari")
	}

	return &ApplyCariOutput{
		Body: ApplyCariResponseBody{
			Transaction:     toAPITransaction(action.Result.Transaction),
			BatchID:         uuidString(action.Result.BatchID),
			UnappliedCashID: uuidString(action.Result.UnappliedID),
			Replayed:        action.Result.Replayed,
		},
	}, nil
}
