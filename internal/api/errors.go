package api

import (
	"errors"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/store"
)

// mapError maps a policy/pipeline/store error to an echo.HTTPError per
// spec.md §6.3 and §7 kind 1-2: transport/auth failures carry {detail},
// pipeline ordering failures carry {message, expected_next} (built
// separately by the caller, which has the session in hand).
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errAdminRequired):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Admin role required"})
	case errors.Is(err, policy.ErrUnauthenticated):
		return echo.NewHTTPError(http.StatusUnauthorized, ErrorResponse{Detail: "Missing or unrecognized API key"})
	case errors.Is(err, policy.ErrKeyRevoked):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "API key revoked"})
	case errors.Is(err, policy.ErrKeyExpired):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "API key expired"})
	case errors.Is(err, policy.ErrWrongTenant):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Tenant mismatch"})
	case errors.Is(err, policy.ErrTenantForbidden):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Tenant not permitted for this API key"})
	case errors.Is(err, policy.ErrUnknownTool):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Unrecognized tool"})
	case errors.Is(err, policy.ErrToolForbidden):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Tool not permitted for this API key"})
	case errors.Is(err, policy.ErrBranchForbidden):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Branch not permitted for this API key"})
	case errors.Is(err, policy.ErrBudgetPerRequest):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Per-request token budget exceeded"})
	case errors.Is(err, policy.ErrBudgetDaily):
		return echo.NewHTTPError(http.StatusForbidden, ErrorResponse{Detail: "Daily token budget exceeded"})
	case errors.Is(err, policy.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, ErrorResponse{Detail: "Rate limit exceeded"})
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrorResponse{Detail: "Not found"})
	case errors.Is(err, store.ErrAlreadyExists):
		return echo.NewHTTPError(http.StatusConflict, ErrorResponse{Detail: "Already exists"})
	case errors.Is(err, pipeline.ErrToolNotAllowed), errors.Is(err, pipeline.ErrBudgetExhausted):
		// Callers that can supply expected_next build the 409 body
		// themselves (see invokeEyeHandler); this branch only covers
		// callers with no session in hand to enumerate the allowlist from.
		return echo.NewHTTPError(http.StatusConflict, ErrorResponse{Detail: "Pipeline out of order"})
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{Detail: "Internal error"})
	}
}
