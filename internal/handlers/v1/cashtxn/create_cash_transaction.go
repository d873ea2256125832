package cashtxn

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
)

// CreateCashTransactionBody is the request body for creating a cash
// transaction.
type CreateCashTransactionBody struct {
	RegisterID            string  `json:"registerID" required:"true" doc:"Register UUID"`
	SessionID             *string `json:"sessionID,omitempty" doc:"Cash session UUID, required only when the register demands sessions and none is open"`
	TxnType               string  `json:"txnType" required:"true" doc:"Transaction type, e.g. RECEIPT or PAYOUT"`
	Amount                string  `json:"amount" required:"true" doc:"Positive decimal amount"`
	CurrencyCode          string  `json:"currencyCode" required:"true" minLength:"3" maxLength:"3" doc:"ISO currency code, must match the register"`
	CounterpartyType      *string `json:"counterpartyType,omitempty" doc:"Counterparty role: CUSTOMER, VENDOR, EMPLOYEE or OTHER"`
	CounterpartyID        *string `json:"counterpartyID,omitempty" doc:"Counterparty UUID"`
	CounterAccountID      *string `json:"counterAccountID,omitempty" doc:"Counter GL account UUID"`
	CounterCashRegisterID *string `json:"counterCashRegisterID,omitempty" doc:"Counter register UUID for transfer legs"`
	SourceModule          *string `json:"sourceModule,omitempty" doc:"Originating module, e.g. CARI"`
	SourceEntityType      *string `json:"sourceEntityType,omitempty" doc:"Originating entity type"`
	SourceEntityID        *string `json:"sourceEntityID,omitempty" doc:"Originating entity UUID"`
	IdempotencyKey        string  `json:"idempotencyKey" required:"true" maxLength:"100" doc:"Caller-chosen key, unique per register"`
	IntegrationEventUID   *string `json:"integrationEventUID,omitempty" maxLength:"100" doc:"Upstream business event uid, unique per tenant"`
}

// CreateCashTransactionInput is the Huma input for creating a cash
// transaction.
type CreateCashTransactionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	Body     CreateCashTransactionBody
}

// CreateCashTransactionResponseBody is the response body for creating a cash
// transaction.
type CreateCashTransactionResponseBody struct {
	Transaction CashTransaction `json:"transaction" doc:"The created or replayed transaction"`
	Replayed    bool            `json:"replayed" doc:"True when an earlier delivery of the same request won"`
}

// CreateCashTransactionOutput is the Huma output for creating a cash
// transaction.
type CreateCashTransactionOutput struct {
	Status int
	Body   CreateCashTransactionResponseBody
}

// CreateCashTransactionHandler handles POST /v1/cash-transaction.
type CreateCashTransactionHandler struct {
	Operator actionProcessor
}

// NewCreateCashTransactionHandler creates a new CreateCashTransactionHandler.
func NewCreateCashTransactionHandler(op actionProcessor) *CreateCashTransactionHandler {
	return &CreateCashTransactionHandler{Operator: op}
}

// Register registers the create endpoint with the Huma API.
func (h *CreateCashTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-cash-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transaction",
		Summary:     "Create cash transaction",
		Description: "Creates a DRAFT cash transaction. Repeated deliveries with the same idempotency key replay the original result.",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

// parseCreateCashTransactionInput parses and validates the API input into an
// action.
func parseCreateCashTransactionInput(input *CreateCashTransactionInput) (*actions.CreateCashTransaction, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	registerID, err := parseUUID(input.Body.RegisterID, "registerID")
	if err != nil {
		return nil, err
	}
	sessionID, err := parseOptionalUUID(input.Body.SessionID, "sessionID")
	if err != nil {
		return nil, err
	}
	txnType, err := storagetxn.ParseTxnType(input.Body.TxnType)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid txnType", err)
	}
	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}
	counterpartyID, err := parseOptionalUUID(input.Body.CounterpartyID, "counterpartyID")
	if err != nil {
		return nil, err
	}
	counterAccountID, err := parseOptionalUUID(input.Body.CounterAccountID, "counterAccountID")
	if err != nil {
		return nil, err
	}
	counterRegisterID, err := parseOptionalUUID(input.Body.CounterCashRegisterID, "counterCashRegisterID")
	if err != nil {
		return nil, err
	}
	sourceEntityID, err := parseOptionalUUID(input.Body.SourceEntityID, "sourceEntityID")
	if err != nil {
		return nil, err
	}

	return &actions.CreateCashTransaction{
		TenantID:              tenantID,
		RegisterID:            registerID,
		SessionID:             sessionID,
		TxnType:               txnType,
		Amount:                amount,
		CurrencyCode:          input.Body.CurrencyCode,
		CounterpartyType:      input.Body.CounterpartyType,
		CounterpartyID:        counterpartyID,
		CounterAccountID:      counterAccountID,
		CounterCashRegisterID: counterRegisterID,
		SourceModule:          input.Body.SourceModule,
		SourceEntityType:      input.Body.SourceEntityType,
		SourceEntityID:        sourceEntityID,
		IdempotencyKey:        input.Body.IdempotencyKey,
		IntegrationEventUID:   input.Body.IntegrationEventUID,
	}, nil
}

func (h *CreateCashTransactionHandler) handle(ctx context.Context, input *CreateCashTransactionInput) (*CreateCashTransactionOutput, error) {
	action, err := parseCreateCashTransactionInput(input)
	if err != nil {
		return nil, err
	}

	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to create cash transaction")
	}

	status := http.StatusCreated
	if action.Result.Replayed {
		status = http.StatusOK
	}
	return &CreateCashTransactionOutput{
		Status: status,
		Body: CreateCashTransactionResponseBody{
			Transaction: toAPITransaction(action.Result.Transaction),
			Replayed:    action.Result.Replayed,
		},
	}, nil
}
