package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eyeward-labs/overseer/internal/pipeline"
	"github.com/eyeward-labs/overseer/internal/policy"
	"github.com/eyeward-labs/overseer/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthenticated", policy.ErrUnauthenticated, http.StatusUnauthorized},
		{"key revoked", policy.ErrKeyRevoked, http.StatusForbidden},
		{"key expired", policy.ErrKeyExpired, http.StatusForbidden},
		{"wrong tenant", policy.ErrWrongTenant, http.StatusForbidden},
		{"tenant forbidden", policy.ErrTenantForbidden, http.StatusForbidden},
		{"unknown tool", policy.ErrUnknownTool, http.StatusForbidden},
		{"tool forbidden", policy.ErrToolForbidden, http.StatusForbidden},
		{"branch forbidden", policy.ErrBranchForbidden, http.StatusForbidden},
		{"budget per request", policy.ErrBudgetPerRequest, http.StatusForbidden},
		{"budget daily", policy.ErrBudgetDaily, http.StatusForbidden},
		{"rate limited", policy.ErrRateLimited, http.StatusTooManyRequests},
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"tool not allowed", pipeline.ErrToolNotAllowed, http.StatusConflict},
		{"budget exhausted", pipeline.ErrBudgetExhausted, http.StatusConflict},
		{"admin required", errAdminRequired, http.StatusForbidden},
		{"unrecognized", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := mapError(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.Code)
		})
	}
}
