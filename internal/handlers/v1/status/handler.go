package status

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Output is the Huma output for the status endpoint.
type Output struct {
	Body struct {
		Status string `json:"status" doc:"Always ok while the server is up"`
	}
}

// Handler handles GET /status.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// Register registers the status endpoint with the Huma API.
func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Service status",
		Tags:        []string{"Status"},
	}, h.handle)
}

func (h *Handler) handle(_ context.Context, _ *struct{}) (*Output, error) {
	out := &Output{}
	out.Body.Status = "ok"
	return out, nil
}
