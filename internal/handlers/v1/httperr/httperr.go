// Package httperr maps business errors to transport errors at the handler
// boundary.
package httperr

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
)

// Map converts a business error into a huma error with the right status.
// Anything that is not an apperr becomes a 500 with the fallback message.
func Map(err error, fallback string) error {
	if ae, ok := apperr.As(err); ok {
		return huma.NewError(ae.Status(), ae.Message)
	}
	return huma.NewError(http.StatusInternalServerError, fallback, err)
}
