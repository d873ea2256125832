package cashtxn

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/cashdesk-server/internal/handlers/v1/httperr"
	"github.com/carson-networks/cashdesk-server/internal/operator/actions"
)

// PostCashTransactionInput is the Huma input for posting a cash transaction.
type PostCashTransactionInput struct {
	TenantID string `header:"X-Tenant-ID" required:"true" doc:"Tenant UUID"`
	ID       string `path:"id" doc:"Transaction UUID"`
}

// PostCashTransactionResponseBody is the response body for posting a cash
// transaction.
type PostCashTransactionResponseBody struct {
	Transaction    CashTransaction `json:"transaction" doc:"The posted transaction"`
	JournalEntryID string          `json:"journalEntryID" doc:"Journal entry created by posting"`
	Replayed       bool            `json:"replayed" doc:"True when the transaction was already posted"`
}

// PostCashTransactionOutput is the Huma output for posting a cash
// transaction.
type PostCashTransactionOutput struct {
	Body PostCashTransactionResponseBody
}

// PostCashTransactionHandler handles POST /v1/cash-transaction/{id}/post.
type PostCashTransactionHandler struct {
	Operator actionProcessor
}

// NewPostCashTransactionHandler creates a new PostCashTransactionHandler.
func NewPostCashTransactionHandler(op actionProcessor) *PostCashTransactionHandler {
	return &PostCashTransactionHandler{Operator: op}
}

// Register registers the post endpoint with the Huma API.
func (h *PostCashTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "post-cash-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/cash-transaction/{id}/post",
		Summary:     "Post cash transaction",
		Description: "Posts a transaction to the journal. Posting an already-POSTED transaction replays the original journal entry.",
		Tags:        []string{"CashTransactions"},
	}, h.handle)
}

func (h *PostCashTransactionHandler) handle(ctx context.Context, input *PostCashTransactionInput) (*PostCashTransactionOutput, error) {
	tenantID, err := parseUUID(input.TenantID, "tenant")
	if err != nil {
		return nil, err
	}
	id, err := parseUUID(input.ID, "id")
	if err != nil {
		return nil, err
	}

	action := &actions.PostCashTransaction{
		TenantID:      tenantID,
		TransactionID: id,
	}
	if err := h.Operator.Process(ctx, action); err != nil {
		return nil, httperr.Map(err, "failed to post cash transaction")
	}

	return &PostCashTransactionOutput{
		Body: PostCashTransactionResponseBody{
			Transaction:    toAPITransaction(action.Result.Transaction),
			JournalEntryID: action.Result.JournalEntryID.String(),
			Replayed:       action.Result.Replayed,
		},
	}, nil
}
