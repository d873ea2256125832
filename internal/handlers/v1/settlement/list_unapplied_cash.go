package settlement

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/service"
	storagesettlement "github.com/carson-networks/cashdesk-server/internal/storage/settlement"
)

// UnappliedCash is the API response model for an unapplied-cash record.
type UnappliedCash struct {
	ID                string  `json:"id" doc:"Unapplied-cash record UUID"`
	CashTransactionID string  `json:"cashTransactionID" doc:"Originating cash transaction UUID"`
	CounterpartyType  *string `json:"counterpartyType,omitempty" doc:"Counterparty role"`
	CounterpartyID    *string `json:"counterpartyID,omitempty" doc:"Counterparty UUID"`
	Amount            string  `json:"amount" doc:"Decimal amount awaiting settlement"`
	CurrencyCode      string  `json:"currencyCode" doc:"ISO currency code"`
	Status            string  `json:"status" doc:"OPEN or SETTLED"`
	CreatedAt         string  `json:"createdAt" doc:"RFC3339 creation time"`
}

// ListUnappliedCashCursor represents a pagination cursor in request and
// response bodies.
type ListUnappliedCashCursor struct {
	Position int `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit    int `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
}

// ListUnappliedCashBody is the request body for listing unapplied cash.
type ListUnappliedCashBody struct {
	Cursor *ListUnappliedCashCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

// ListUnappliedCashInput is the Huma input for listing unapplied cash.
type ListUnappliedCashInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	Body     ListUnappliedCashBody
}

// ListUnappliedCashResponseBody is the response body for listing unapplied
// cash.
type ListUnappliedCashResponseBody struct {
	Records    []UnappliedCash          `json:"records" doc:"Page of open unapplied-cash records, newest first"`
	NextCursor *ListUnappliedCashCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListUnappliedCashOutput is the Huma output for listing unapplied cash.
type ListUnappliedCashOutput struct {
	Body ListUnappliedCashResponseBody
}

// unappliedLister is the slice of the service the handler needs.
type unappliedLister interface {
	ListUnapplied(ctx context.Context, tenantID uuid.UUID, cursor *service.Cursor) ([]*storagesettlement.UnappliedCash, *service.Cursor, error)
}

// ListUnappliedCashHandler handles POST /v1/unapplied-cash/list.
type ListUnappliedCashHandler struct {
	SettlementService unappliedLister
}

// NewListUnappliedCashHandler creates a new ListUnappliedCashHandler.
func NewListUnappliedCashHandler(svc unappliedLister) *ListUnappliedCashHandler {
	return &ListUnappliedCashHandler{SettlementService: svc}
}

// Register registers the list endpoint with the Huma API.
func (h *ListUnappliedCashHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-unapplied-cash",
		Method:      http.MethodPost,
		Path:        "/v1/unapplied-cash/list",
		Summary:     "List unapplied cash",
		Description: "Returns a paginated list of open unapplied-cash records awaiting settlement.",
		Tags:        []string{"Settlements"},
	}, h.handle)
}

func (h *ListUnappliedCashHandler) handle(ctx context.Context, input *ListUnappliedCashInput) (*ListUnappliedCashOutput, error) {
	tenantID, err := uuid.FromString(input.TenantID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid tenant", err)
	}

	var requestCursor *service.Cursor
	if input.Body.Cursor != nil {
		requestCursor = &service.Cursor{
			Position: input.Body.Cursor.Position,
			Limit:    input.Body.Cursor.Limit,
		}
	}

	records, nextCursor, err := h.SettlementService.ListUnapplied(ctx, tenantID, requestCursor)
	if err != nil {
		return nil, httperr.Map(err, "failed to list unapplied cash")
	}

	resp := ListUnappliedCashResponseBody{
		Records: make([]UnappliedCash, len(records)),
	}
	for i, rec := range records {
		record := UnappliedCash{
			ID:                rec.ID.String(),
			CashTransactionID: rec.CashTransactionID.String(),
			CounterpartyType:  rec.CounterpartyType,
			Amount:            rec.Amount.String(),
			CurrencyCode:      rec.CurrencyCode,
			Status:            rec.Status.String(),
			CreatedAt:         rec.CreatedAt.Format(time.RFC3339),
		}
		if rec.CounterpartyID != nil {
			s := rec.CounterpartyID.String()
			record.CounterpartyID = &s
		}
		resp.Records[i] = record
	}
	if nextCursor != nil {
		resp.NextCursor = &ListUnappliedCashCursor{
			Position: nextCursor.Position,
			Limit:    nextCursor.Limit,
		}
	}

	return &ListUnappliedCashOutput{Body: resp}, nil
}
