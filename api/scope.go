package api

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/scope"
)

const (
	headerScopeLegalEntities  = "X-Scope-Legal-Entities"
	headerScopeOperatingUnits = "X-Scope-Operating-Units"
)

// scopeMiddleware reads the caller's resolved scope set from headers into the
// request context. The upstream gateway resolves roles to id sets; an absent
// header means the caller is unrestricted on that axis.
func scopeMiddleware(api huma.API) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		legalEntityIDs, err := parseScopeHeader(ctx.Header(headerScopeLegalEntities))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "invalid "+headerScopeLegalEntities+" header", err)
			return
		}
		operatingUnitIDs, err := parseScopeHeader(ctx.Header(headerScopeOperatingUnits))
		if err != nil {
			_ = huma.WriteErr(api, ctx, http.StatusBadRequest, "invalid "+headerScopeOperatingUnits+" header", err)
			return
		}

		if legalEntityIDs == nil && operatingUnitIDs == nil {
			next(ctx)
			return
		}

		access := &scope.Access{
			LegalEntityIDs:   legalEntityIDs,
			OperatingUnitIDs: operatingUnitIDs,
		}
		next(huma.WithContext(ctx, scope.WithAccess(ctx.Context(), access)))
	}
}

// parseScopeHeader parses a comma-separated uuid list. An empty header means
// unrestricted (nil); an explicit empty value is not representable on purpose.
func parseScopeHeader(value string) ([]uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, part := range parts {
		id, err := uuid.FromString(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
