package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type errorResponse struct {
	Code    string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP. Messages stay
// generic for 401 and 403 so failures do not leak which check rejected.
func writeError(c *gin.Context, log *zap.Logger, err error) {
	var moduleErr *domain.ModuleDisabledError
	if errors.As(err, &moduleErr) {
		writeErrorCode(c, http.StatusForbidden, "MODULE_DISABLED", "module not enabled for this tenant", map[string]any{
			"module": string(moduleErr.Module),
		})
		return
	}
	var featureErr *domain.FeatureNotIncludedError
	if errors.As(err, &featureErr) {
		writeErrorCode(c, http.StatusForbidden, "FEATURE_NOT_INCLUDED", "feature not included in subscription tier", map[string]any{
			"feature": string(featureErr.Feature),
			"tier":    string(featureErr.Tier),
		})
		return
	}
	var limitErr *domain.LimitExceededError
	if errors.As(err, &limitErr) {
		writeErrorCode(c, http.StatusTooManyRequests, "LIMIT_EXCEEDED", "usage limit reached", map[string]any{
			"limit":   string(limitErr.Limit),
			"max":     limitErr.Max,
			"current": limitErr.Current,
		})
		return
	}
	if authz, ok := domain.IsAuthzError(err); ok {
		writeErrorCode(c, http.StatusForbidden, authz.Code, "forbidden", nil)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
	case errors.Is(err, domain.ErrTenantNotFound):
		writeErrorCode(c, http.StatusNotFound, "TENANT_NOT_FOUND", "no tenant for user", nil)
	case errors.Is(err, domain.ErrNotAMember):
		writeErrorCode(c, http.StatusForbidden, "NOT_A_MEMBER", "forbidden", nil)
	case errors.Is(err, domain.ErrSuspended):
		writeErrorCode(c, http.StatusForbidden, "MEMBERSHIP_SUSPENDED", "forbidden", nil)
	case errors.Is(err, domain.ErrForbidden):
		writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden", nil)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found", nil)
	case errors.Is(err, domain.ErrConflict):
		writeErrorCode(c, http.StatusConflict, "CONFLICT", "conflict", nil)
	case errors.Is(err, domain.ErrInfrastructure):
		log.Error("request failed on infrastructure", zap.Error(err))
		writeErrorCode(c, http.StatusServiceUnavailable, "UNAVAILABLE", "service temporarily unavailable", nil)
	default:
		log.Error("unhandled error", zap.Error(err))
		writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error", nil)
	}
}

func writeErrorCode(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, errorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}
