package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/config"
	"github.com/theorem6/WISPTools-sub003/internal/domain"
	"github.com/theorem6/WISPTools-sub003/internal/usecase"
)

type Server struct {
	cfg config.Config
	r   *gin.Engine
	log *zap.Logger

	identity domain.IdentityProvider
	contexts *usecase.ContextService

	membership   *usecase.MembershipService
	tenantConfig *usecase.TenantConfigService
	sites        *usecase.SiteService
	tenants      domain.TenantStore
	entitlements *usecase.Entitlements

	rateLimiter       domain.RateLimiter
	rateLimitRequests int
	rateLimitWindow   time.Duration
}

type ServerDeps struct {
	Identity     domain.IdentityProvider
	Contexts     *usecase.ContextService
	Membership   *usecase.MembershipService
	TenantConfig *usecase.TenantConfigService
	Sites        *usecase.SiteService
	Tenants      domain.TenantStore
	Entitlements *usecase.Entitlements
	RateLimiter  domain.RateLimiter
	Logger       *zap.Logger
}

func NewServerWithDeps(cfg config.Config, deps ServerDeps) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		cfg:               cfg,
		r:                 r,
		log:               deps.Logger,
		identity:          deps.Identity,
		contexts:          deps.Contexts,
		membership:        deps.Membership,
		tenantConfig:      deps.TenantConfig,
		sites:             deps.Sites,
		tenants:           deps.Tenants,
		entitlements:      deps.Entitlements,
		rateLimiter:       deps.RateLimiter,
		rateLimitRequests: cfg.RateLimitRequests,
		rateLimitWindow:   cfg.RateLimitWindow(),
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// identity-only routes: no tenant context, no rate limit key yet
	me := s.r.Group("/v1", s.authMiddleware())
	{
		me.GET("/me/tenants", s.handleListMyTenants)
		me.POST("/invitations/:id/accept", s.handleAcceptInvite)
	}

	// tenant-scoped routes
	v1 := s.r.Group("/v1", s.authMiddleware(), s.tenantMiddleware(), s.apiAccessMiddleware(), s.rateLimitMiddleware())
	{
		v1.GET("/members", s.handleListMembers)
		v1.POST("/members/invite", s.handleInvite)
		v1.PUT("/members/:userID/role", s.handleUpdateRole)
		v1.POST("/members/:userID/suspend", s.handleSuspend)
		v1.POST("/members/:userID/activate", s.handleActivate)
		v1.DELETE("/members/:userID", s.handleRemove)
		v1.POST("/members/transfer-ownership", s.handleTransferOwnership)

		v1.GET("/tenant/config", s.handleGetConfig)
		v1.PUT("/tenant/config", s.handleUpdateConfig)
		v1.POST("/tenant/tier", s.handleApplyTier)

		v1.GET("/sites", s.handleListSites)
		v1.POST("/sites", s.handleCreateSite)
		v1.GET("/sites/:id", s.handleGetSite)
		v1.PUT("/sites/:id", s.handleUpdateSite)
		v1.DELETE("/sites/:id", s.handleDeleteSite)
	}

	// platform operator routes: the override context still flows through
	// tenantMiddleware, the named tenant just comes from the path
	admin := s.r.Group("/v1/admin", s.authMiddleware(), s.tenantMiddleware())
	{
		admin.POST("/tenants/:tenantID/tier", s.handleApplyTier)
		admin.PUT("/tenants/:tenantID/config", s.handleUpdateConfig)
		admin.POST("/tenants/:tenantID/transfer-ownership", s.handleTransferOwnership)
	}

	// tenant listing has no target tenant; the allow-list is checked in
	// the handler instead of via a tenant context
	s.r.GET("/v1/admin/tenants", s.authMiddleware(), s.handleListTenants)
}

func (s *Server) Run() error {
	return s.r.Run(s.cfg.HTTPAddr)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.r
}
