package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type configResponse struct {
	TenantID         string                  `json:"tenantId"`
	EnabledModules   map[domain.Module]bool  `json:"enabledModules"`
	ModuleLimits     map[domain.Limit]int    `json:"moduleLimits"`
	SubscriptionTier string                  `json:"subscriptionTier"`
	Features         map[domain.Feature]bool `json:"features"`
	UpdatedAt        time.Time               `json:"updatedAt"`
	UpdatedBy        string                  `json:"updatedBy,omitempty"`
}

func configFromDomain(cfg domain.TenantConfiguration) configResponse {
	return configResponse{
		TenantID:         cfg.TenantID,
		EnabledModules:   cfg.EnabledModules,
		ModuleLimits:     cfg.ModuleLimits,
		SubscriptionTier: string(cfg.SubscriptionTier),
		Features:         cfg.Features,
		UpdatedAt:        cfg.UpdatedAt,
		UpdatedBy:        cfg.UpdatedBy,
	}
}

func (s *Server) handleGetConfig(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	cfg, err := s.tenantConfig.Get(c.Request.Context(), tc)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, configFromDomain(cfg))
}
