package transfer

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/service"
	storagetransfer "github.com/carson-networks/cashdesk-server/internal/storage/transfer"
)

// ListTransfersCursor represents a pagination cursor in request and response
// bodies.
type ListTransfersCursor struct {
	Position        int    `json:"position" minimum:"0" doc:"Numeric offset position for the next page"`
	Limit           int    `json:"limit" minimum:"1" maximum:"100" doc:"Page size used for this cursor"`
	MaxCreationTime string `json:"maxCreationTime" format:"date-time" doc:"Upper bound on created_at locked in from the first page"`
}

// ListTransfersBody is the request body for listing transfers.
type ListTransfersBody struct {
	SourceRegisterID *string              `json:"sourceRegisterID,omitempty" doc:"Restrict to one source register"`
	TargetRegisterID *string              `json:"targetRegisterID,omitempty" doc:"Restrict to one target register"`
	Status           *string              `json:"status,omitempty" doc:"Restrict to one status"`
	Cursor           *ListTransfersCursor `json:"cursor,omitempty" doc:"Cursor from a previous response to fetch the next page"`
}

// ListTransfersInput is the Huma input for listing transfers.
type ListTransfersInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	Body     ListTransfersBody
}

// ListTransfersResponseBody is the response body for listing transfers.
type ListTransfersResponseBody struct {
	Transfers  []Transfer           `json:"transfers" doc:"Page of transfers, newest first"`
	NextCursor *ListTransfersCursor `json:"nextCursor,omitempty" doc:"Cursor to fetch the next page, absent on the last page"`
}

// ListTransfersOutput is the Huma output for listing transfers.
type ListTransfersOutput struct {
	Body ListTransfersResponseBody
}

// transferLister is the slice of the service the handler needs.
type transferLister interface {
	List(ctx context.Context, tenantID uuid.UUID, filter service.TransferFilter, cursor *service.Cursor) ([]*storagetransfer.CashTransitTransfer, *service.Cursor, error)
}

// ListTransfersHandler handles POST /v1/cash-transfer/list.
type ListTransfersHandler struct {
	TransferService transferLister
}

// NewListTransfersHandler creates a new ListTransfersHandler.
func NewListTransfersHandler(svc transferLister) *ListTransfersHandler {
	return &ListTransfersHandler{TransferService: svc}
}

// Register registers the list endpoint with the Huma API.
func (h *ListTransfersHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-cash-transfers",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transfer/list",
		Summary:     "List cash transfers",
		Description: "Returns a paginated list of cash transit transfers using cursor-based pagination.",
		Tags:        []string{"CashTransfers"},
	}, h.handle)
}

func parseListTransfersInput(input *ListTransfersInput) (uuid.UUID, service.TransferFilter, *service.Cursor, error) {
	var filter service.TransferFilter

	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return uuid.Nil, filter, nil, err
	}
	filter.SourceRegister, err = parseOptionalUUID(input.Body.SourceRegisterID, "sourceRegisterID")
	if err != nil {
		return uuid.Nil, filter, nil, err
	}
	filter.TargetRegister, err = parseOptionalUUID(input.Body.TargetRegisterID, "targetRegisterID")
	if err != nil {
		return uuid.Nil, filter, nil, err
	}
	if input.Body.Status != nil {
		status, err := storagetransfer.ParseStatus(*input.Body.Status)
		if err != nil {
			return uuid.Nil, filter, nil, huma.NewError(http.StatusBadRequest, "invalid status", err)
		}
		filter.Status = &status
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

func (h *ListTransfersHandler) handle(ctx context.Context, input *ListTransfersInput) (*ListTransfersOutput, error) {
	tenantID, filter, requestCursor, err := parseListTransfersInput(input)
	if err != nil {
		return nil, err
	}

	transfers, nextCursor, err := h.TransferService.List(ctx, tenantID, filter, requestCursor)
	if err != nil {
		return nil, httperr.Map(err, "failed to list cash transfers")
	}

	resp := ListTransfersResponseBody{
		Transfers: make([]Transfer, len(transfers)),
	}
	for i, tr := range transfers {
		resp.Transfers[i] = toAPITransfer(tr)
	}
	if nextCursor != nil {
		resp.NextCursor = &ListTransfersCursor{
			Position:        nextCursor.Position,
			Limit:           nextCursor.Limit,
			MaxCreationTime: nextCursor.MaxCreationTime.Format(time.RFC3339),
		}
	}

	return &ListTransfersOutput{Body: resp}, nil
}
