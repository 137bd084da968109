package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type siteResponse struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func siteFromDomain(site domain.Site) siteResponse {
	return siteResponse{
		ID:        site.ID,
		TenantID:  site.TenantID,
		Name:      site.Name,
		Latitude:  site.Latitude,
		Longitude: site.Longitude,
		Status:    site.Status,
		CreatedAt: site.CreatedAt,
		UpdatedAt: site.UpdatedAt,
	}
}

func (s *Server) handleListSites(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	sites, err := s.sites.List(c.Request.Context(), tc)
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	out := make([]siteResponse, 0, len(sites))
	for _, site := range sites {
		out = append(out, siteFromDomain(site))
	}
	c.JSON(http.StatusOK, gin.H{"sites": out})
}

func (s *Server) handleGetSite(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	site, err := s.sites.Get(c.Request.Context(), tc, c.Param("id"))
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, siteFromDomain(site))
}

type siteRequest struct {
	Name      string  `json:"name" binding:"required"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Status    string  `json:"status"`
}

func (s *Server) handleCreateSite(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
		return
	}
	site, err := s.sites.Create(c.Request.Context(), tc, domain.Site{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Status:    req.Status,
	})
	if err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusCreated, siteFromDomain(site))
}

func (s *Server) handleUpdateSite(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil || len(req) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", nil)
		return
	}
	// only known columns pass through; the scoped store strips tenant_id
	changes := map[string]any{}
	for _, field := range []string{"name", "latitude", "longitude", "status"} {
		if v, ok := req[field]; ok {
			changes[field] = v
		}
	}
	if len(changes) == 0 {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "no updatable fields", nil)
		return
	}
	if err := s.sites.Update(c.Request.Context(), tc, c.Param("id"), changes); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleDeleteSite(c *gin.Context) {
	tc, ok := getTenantContext(c)
	if !ok {
		writeError(c, s.log, domain.ErrUnauthenticated)
		return
	}
	if err := s.sites.Delete(c.Request.Context(), tc, c.Param("id")); err != nil {
		writeError(c, s.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
