package transfer

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
)

// InitiateTransferBody is the request body for initiating a transfer.
type InitiateTransferBody struct {
	SourceRegisterID    string  `json:"sourceRegisterID" required:"true" doc:"Source register UUID"`
	TargetRegisterID    string  `json:"targetRegisterID" required:"true" doc:"Target register UUID, same legal entity, different operating unit"`
	Amount              string  `json:"amount" required:"true" doc:"Positive decimal amount"`
	CurrencyCode        string  `json:"currencyCode" required:"true" minLength:"3" maxLength:"3" doc:"ISO currency code, must match both registers"`
	TransitAccountID    string  `json:"transitAccountID" required:"true" doc:"Transit-cash GL account UUID"`
	IdempotencyKey      string  `json:"idempotencyKey" required:"true" maxLength:"100" doc:"Caller-chosen key, unique per source register"`
	IntegrationEventUID *string `json:"integrationEventUID,omitempty" maxLength:"100" doc:"Upstream business event uid, unique per tenant"`
}

// InitiateTransferInput is the Huma input for initiating a transfer.
type InitiateTransferInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	Body     InitiateTransferBody
}

// InitiateTransferResponseBody is the response body for initiating a
// transfer.
type InitiateTransferResponseBody struct {
	Transfer Transfer     `json:"transfer" doc:"The created or replayed transfer"`
	OutTxn   *TransferLeg `json:"outTxn,omitempty" doc:"The transfer-out leg"`
	Replayed bool         `json:"replayed" doc:"True when an earlier delivery of the same request won"`
}

// InitiateTransferOutput is the Huma output for initiating a transfer.
type InitiateTransferOutput struct {
	Status int
	Body   InitiateTransferResponseBody
}

// InitiateTransferHandler handles POST /v1/cash-transfer.
type InitiateTransferHandler struct {
	Operator actionProcessor
}

// NewInitiateTransferHandler creates a new InitiateTransferHandler.
func NewInitiateTransferHandler(op actionProcessor) *InitiateTransferHandler {
	return &InitiateTransferHandler{Operator: op}
}

// Register registers the initiate endpoint with the Huma API.
func (h *InitiateTransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "initiate-cash-transfer",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transfer",
		Summary:     "Initiate cash transfer",
		Description: "Opens a cash transit transfer between two registers, creating the DRAFT transfer-out leg together with it.",
		Tags:        []string{"CashTransfers"},
	}, h.handle)
}

// parseInitiateTransferInput parses and validates the API input into an
// action.
func parseInitiateTransferInput(input *InitiateTransferInput) (*actions.InitiateTransfer, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	sourceRegisterID, err := parseUUID(input.Body.SourceRegisterID, "sourceRegisterID")
	if err != nil {
		return nil, err
	}
	targetRegisterID, err := parseUUID(input.Body.TargetRegisterID, "targetRegisterID")
	if err != nil {
		return nil, err
	}
	transitAccountID, err := parseUUID(input.Body.TransitAccountID, "transitAccountID")
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	return &actions.InitiateTransfer{
		TenantID:            tenantID,
		SourceRegisterID:    sourceRegisterID,
		TargetRegisterID:    targetRegisterID,
		Amount:              amount,
		CurrencyCode:        input.Body.CurrencyCode,
		TransitAccountID:    transitAccountID,
		IdempotencyKey:      input.Body.IdempotencyKey,
		IntegrationEventUID: input.Body.IntegrationEventUID,
	}, nil
}

func (h *InitiateTransferHandler) handle(ctx context.Context, input *InitiateTransferInput) (*InitiateTransferOutput, error) {
	action, err := parseInitiateTransferInput(input)
	if err != nil {
		return nil, err
	}

	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to initiate cash transfer")
	}

	status := http.StatusCreated
	if action.Result.Replayed {
		status = http.StatusOK
	}
	return &InitiateTransferOutput{
		Status: status,
		Body: InitiateTransferResponseBody{
			Transfer: toAPITransfer(action.Result.Transfer),
			OutTxn:   toAPILeg(action.Result.OutTxn),
			Replayed: action.Result.Replayed,
		},
	}, nil
}
