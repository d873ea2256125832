package cashtxn

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/service"
	storagetxn "github.com/carson-networks/cashdesk-server/internal/storage/cashtxn"
)

// ListCashTransactionsCursor represents a pagination cursor in request and
// response bodies. It bundles position, limit, and maxCreationTime so
// subsequent pages use consistent parameters.
type ListCashTransactionsCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Upper bound on created_at locked in from the first page"`
}

// ListCashTransactionsBody is the request body for listing transactions.
type ListCashTransactionsBody struct {
	RegisterID *string                     `json:"registerID,omitempty" doc:"Restrict to one register"`
	Status     *string                     `json:"status,omitempty" doc:"Restrict to one status"`
	TxnType    *string                     `json:"txnType,omitempty" doc:"Restrict to one transaction type"`
	Cursor     *ListCashTransactionsCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

// ListCashTransactionsInput is the Huma input for listing transactions.
type ListCashTransactionsInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	Body     ListCashTransactionsBody
}

// ListCashTransactionsResponseBody is the response body for listing
// transactions.
type ListCashTransactionsResponseBody struct {
	Transactions []CashTransaction           `json:"transactions" doc:"Page of transactions, newest first"`
	NextCursor   *ListCashTransactionsCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListCashTransactionsOutput is the Huma output for listing transactions.
type ListCashTransactionsOutput struct {
	Body ListCashTransactionsResponseBody
}

// cashTransactionLister is the slice of the service the handler needs.
type cashTransactionLister interface {
	List(ctx context.Context, tenantID uuid.UUID, filter service.CashTransactionFilter, cursor *service.Cursor) ([]*storagetxn.CashTransaction, *service.Cursor, error)
}

// ListCashTransactionsHandler handles POST /v1/cash-transaction/list.
type ListCashTransactionsHandler struct {
	CashTransactionService cashTransactionLister
}

// NewListCashTransactionsHandler creates a new ListCashTransactionsHandler.
func NewListCashTransactionsHandler(svc cashTransactionLister) *ListCashTransactionsHandler {
	return &ListCashTransactionsHandler{CashTransactionService: svc}
}

// Register registers the list endpoint with the Huma API.
func (h *ListCashTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-cash-transactions",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transaction/list",
		Summary:     "List cash transactions",
		Description: "Returns a paginated list of cash transactions using cursor-based pagination.",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

// parseListCashTransactionsInput parses and validates the API input. When a
// cursor is provided, limit and maxCreationTime come from it.
func parseListCashTransactionsInput(input *ListCashTransactionsInput) (uuid.UUID, service.CashTransactionFilter, *service.Cursor, error) {
	var filter service.CashTransactionFilter

	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return uuid.Nil, filter, nil, err
	}
	filter.RegisterID, err = parseOptionalUUID(input.Body.RegisterID, "registerID")
	if err != nil {
		return uuid.Nil, filter, nil, err
	}
	if input.Body.Status != nil {
		status, err := storagetxn.ParseStatus(*input.Body.Status)
		if err != nil {
			return uuid.Nil, filter, nil, huma.NewError(http.StatusBadRequest, "invalid status", err)
		}
		filter.Status = &status
	}
	if input.Body.TxnType != nil {
		txnType, err := storagetxn.ParseTxnType(*input.Body.TxnType)
		if err != nil {
			return uuid.Nil, filter, nil, huma.NewError(http.StatusBadRequest, "invalid txnType", err)
		}
		filter.TxnType = &txnType
	}

	if input.Body.Cursor == nil {
		return tenantID, filter, nil, nil
	}
	maxCreationTime, err := time.Parse(time.RFC3339, input.Body.Cursor.MaxCreationTime)
	if err != nil {
		return uuid.Nil, filter, nil, huma.NewError(http.StatusBadRequest, "invalid cursor maxCreationTime", err)
	}
	cursor := &service.Cursor{
		Position:        input.Body.Cursor.Position,
		Limit:           input.Body.Cursor.Limit,
		MaxCreationTime: maxCreationTime,
	}
	return tenantID, filter, cursor, nil
}

func (h *ListCashTransactionsHandler) handle(ctx context.Context, input *ListCashTransactionsInput) (*ListCashTransactionsOutput, error) {
	tenantID, filter, requestCursor, err := parseListCashTransactionsInput(input)
	if err != nil {
		return nil, err
	}

	transactions, nextCursor, err := h.CashTransactionService.List(ctx, tenantID, filter, requestCursor)
	if err != nil {
		return nil, httperr.Map(err, "failed to list cash transactions")
	}

	resp := ListCashTransactionsResponseBody{
		Transactions: make([]CashTransaction, len(transactions)),
	}
	for i, txn := range transactions {
		resp.Transactions[i] = toAPITransaction(txn)
	}
	if nextCursor != nil {
		resp.NextCursor = &ListCashTransactionsCursor{
			Position:        nextCursor.Position,
			Limit:           nextCursor.Limit,
			MaxCreationTime: nextCursor.MaxCreationTime.Format(time.RFC3339),
		}
	}

	return &ListCashTransactionsOutput{Body: resp}, nil
}
