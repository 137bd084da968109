package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type tenantResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func (s *Server) handleListTenants(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	if !s.contexts.IsPlatformAdmin(identity) {
		writeErrorCode(c, http.StatusForbidden, domain.CodePlatformAdminOnly, "forbidden", nil)
		return
	}
	if s.tenants == nil {
		writeError(c, s.log, domain.ErrInfrastructure)
		return
	}
	tenants, err := s.tenants.List(c.Request.Context())
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, tenantResponse{
			ID:        t.ID,
			Name:      t.Name,
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tenants": out})
}

// targetTenant picks the tenant being administered: the admin surface
// names it in the path, the tenant-scoped surface implies the caller's own.
func targetTenant(c *gin.Context, tc *domain.TenantContext) string {
	if id := c.Param("tenantID"); id != "" {
		return id
	}
	return tc.TenantID
}

type applyTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

func (s *Server) handleApplyTier(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req applyTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "tier is required", nil)
		return
	}
	cfg, err := s.tenantConfig.ApplyTier(c.Request.Context(), tc, targetTenant(c, tc), domain.Tier(req.Tier))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, configFromDomain(cfg))
}

type updateConfigRequest struct {
	EnabledModules map[domain.Module]bool  `json:"enabledModules"`
	ModuleLimits   map[domain.Limit]int    `json:"moduleLimits"`
	Features       map[domain.Feature]bool `json:"features"`
}

func (s *Server) handleUpdateConfig(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req updateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", nil)
		return
	}
	cfg, err := s.tenantConfig.Update(c.Request.Context(), tc, targetTenant(c, tc), req.EnabledModules, req.ModuleLimits, req.Features)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, configFromDomain(cfg))
}
