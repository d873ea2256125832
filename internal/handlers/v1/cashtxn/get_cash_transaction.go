package cashtxn

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
)

// GetCashTransactionInput is the Huma input for fetching one transaction.
type GetCashTransactionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transaction UUID"`
}

// GetCashTransactionOutput is the Huma output for fetching one transaction.
type GetCashTransactionOutput struct {
	Body CashTransaction
}

// cashTransactionGetter is the slice of the service the handler needs.
type cashTransactionGetter interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (*storagetxn.CashTransaction, error)
}

// GetCashTransactionHandler handles GET /v1/cash-transaction/{id}.
type GetCashTransactionHandler struct {
	CashTransactionService cashTransactionGetter
}

// NewGetCashTransactionHandler creates a new GetCashTransactionHandler.
func NewGetCashTransactionHandler(svc cashTransactionGetter) *GetCashTransactionHandler {
	return &GetCashTransactionHandler{CashTransactionService: svc}
}

// Register registers the get endpoint with the Huma API.
func (h *GetCashTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-cash-transaction",
		Method:      http.MethodGet,
		Path:        "/v1/cash-transaction/{id}",
		Summary:     "Get cash transaction",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

func (h *GetCashTransactionHandler) handle(ctx context.Context, input *GetCashTransactionInput) (*GetCashTransactionOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	txn, err := h.CashTransactionService.Get(ctx, tenantID, id)
	if err != nil {
		return nil, httperr.Map(err, "failed to get cash transaction")
	}
	return &GetCashTransactionOutput{Body: toAPITransaction(txn)}, nil
}
