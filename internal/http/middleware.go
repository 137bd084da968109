package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
	"github.com/theorem6/WISPTools-sub003/internal/infra/ratelimit"
)

const (
	identityContextKey = "identity"
	tenantContextKey   = "tenant_context"

	tenantHeader     = "X-Tenant-ID"
	tenantQueryParam = "tenantId"
	apiClientHeader  = "X-API-Client"

	maxHintBodyBytes = 1 << 20
)

// authMiddleware verifies the bearer credential. It fails closed: no
// verifiable identity, no request.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, s.log, domain.ErrUnauthenticated)
			c.Abort()
			return
		}
		identity, err := s.identity.Verify(c.Request.Context(), token)
		if err != nil {
			writeError(c, s.log, domain.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// tenantMiddleware resolves the tenant and builds the authorization
// context. Hint precedence is header, then query, then request body; the
// path param wins on admin routes because the operator names the tenant
// explicitly there.
func (s *Server) tenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := getIdentity(c)
		if !ok {
			writeError(c, s.log, domain.ErrUnauthenticated)
			c.Abort()
			return
		}
		hint := s.tenantHint(c)
		tc, err := s.contexts.Build(c.Request.Context(), identity, hint)
		if err != nil {
			writeError(c, s.log, err)
			c.Abort()
			return
		}
		c.Set(tenantContextKey, tc)
		c.Next()
	}
}

func (s *Server) tenantHint(c *gin.Context) string {
	if param := strings.TrimSpace(c.Param("tenantID")); param != "" {
		return param
	}
	if header := strings.TrimSpace(c.GetHeader(tenantHeader)); header != "" {
		return header
	}
	if q := strings.TrimSpace(c.Query(tenantQueryParam)); q != "" {
		return q
	}
	return s.tenantHintFromBody(c)
}

// tenantHintFromBody peeks at a JSON body for a tenantId field and
// restores the body for the handler.
func (s *Server) tenantHintFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	if ct := c.ContentType(); ct != "" && ct != "application/json" {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxHintBodyBytes))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	var payload struct {
		TenantID string `json:"tenantId"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.TenantID)
}

// apiAccessMiddleware gates programmatic clients behind the apiAccess
// feature. Requests without the client header are interactive traffic and
// pass regardless of tier.
func (s *Server) apiAccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.entitlements == nil || strings.TrimSpace(c.GetHeader(apiClientHeader)) == "" {
			c.Next()
			return
		}
		tc, ok := getTenantContext(c)
		if !ok {
			c.Next()
			return
		}
		if err := s.entitlements.RequireFeature(c.Request.Context(), tc.TenantID, domain.FeatureAPIAccess); err != nil {
			writeError(c, s.log, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// rateLimitMiddleware enforces the per-tenant request budget. The budget
// comes from the tenant's tier; the configured value is the fallback when
// no tier budget is known. Limiter outages fail open: throttling is
// protection, not isolation.
func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rateLimiter == nil || s.rateLimitRequests <= 0 {
			c.Next()
			return
		}
		tc, ok := getTenantContext(c)
		if !ok {
			c.Next()
			return
		}
		budget := s.rateLimitRequests
		if s.entitlements != nil {
			budget = s.entitlements.RequestBudget(c.Request.Context(), tc.TenantID, s.rateLimitRequests)
		}
		if budget <= 0 {
			// unlimited tier
			c.Next()
			return
		}
		decision, err := s.rateLimiter.Allow(c.Request.Context(), ratelimit.TenantKey(tc.TenantID), budget, s.rateLimitWindow)
		if err != nil {
			s.log.Warn("rate limiter unavailable, failing open",
				zap.String("tenant_id", tc.TenantID),
				zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		if !decision.Allowed {
			if wait := time.Until(decision.ResetAt); wait > 0 {
				c.Header("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			}
			writeErrorCode(c, http.StatusTooManyRequests, "RATE_LIMITED", "tenant request budget exhausted", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}

func getIdentity(c *gin.Context) (domain.Identity, bool) {
	raw, ok := c.Get(identityContextKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := raw.(domain.Identity)
	return identity, ok
}

func getTenantContext(c *gin.Context) (*domain.TenantContext, bool) {
	raw, ok := c.Get(tenantContextKey)
	if !ok {
		return nil, false
	}
	tc, ok := raw.(*domain.TenantContext)
	return tc, ok && tc != nil
}
