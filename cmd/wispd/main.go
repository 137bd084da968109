package main

import (
	"log"
	"strings"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/config"
	"github.com/theorem6/WISPTools-sub003/internal/domain"
	httpapi "github.com/theorem6/WISPTools-sub003/internal/http"
	"github.com/theorem6/WISPTools-sub003/internal/infra/auth/hs256"
	"github.com/theorem6/WISPTools-sub003/internal/infra/auth/oidc"
	"github.com/theorem6/WISPTools-sub003/internal/infra/configcache"
	"github.com/theorem6/WISPTools-sub003/internal/infra/db"
	"github.com/theorem6/WISPTools-sub003/internal/infra/ratelimit"
	"github.com/theorem6/WISPTools-sub003/internal/usecase"
)

func main() {
	cfg := config.FromEnv()

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	store, err := db.NewStore(cfg)
	if err != nil {
		logger.Fatal("failed to init store", zap.Error(err))
	}
	if err := store.AutoMigrate(); err != nil {
		logger.Fatal("failed to migrate schema", zap.Error(err))
	}

	identity, err := newIdentityProvider(cfg)
	if err != nil {
		logger.Fatal("failed to init identity provider", zap.Error(err))
	}

	tenants := db.NewTenantRepository(store.DB)
	assocs := db.NewAssociationRepository(store.DB)
	invites := db.NewInvitationRepository(store.DB)
	configs := db.NewTenantConfigRepository(store.DB)
	sites := db.NewSiteRepository(store.DB, logger)

	cache := configcache.New(configs, cfg.ConfigCacheTTL(), logger)

	resolver := usecase.NewTenantResolver(assocs, logger)
	contexts := usecase.NewContextService(resolver, tenants, cfg.PlatformAdminEmails, logger)
	entitlements := usecase.NewEntitlements(cache,
		failurePolicy(cfg.ModuleGateFailOpen),
		failurePolicy(cfg.LimitCheckFailOpen),
		logger)
	membership := usecase.NewMembershipService(assocs, invites, entitlements, logger)
	tenantConfig := usecase.NewTenantConfigService(configs, cache, logger)
	siteService := usecase.NewSiteService(sites, entitlements, logger)

	limiter := newRateLimiter(cfg, logger)

	srv := httpapi.NewServerWithDeps(cfg, httpapi.ServerDeps{
		Identity:     identity,
		Contexts:     contexts,
		Membership:   membership,
		TenantConfig: tenantConfig,
		Sites:        siteService,
		Tenants:      tenants,
		Entitlements: entitlements,
		RateLimiter:  limiter,
		Logger:       logger,
	})

	logger.Info("starting server", zap.String("addr", cfg.HTTPAddr))
	if err := srv.Run(); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(strings.ToLower(level)); err == nil {
		zcfg.Level = lvl
	}
	return zcfg.Build()
}

func newIdentityProvider(cfg config.Config) (domain.IdentityProvider, error) {
	switch cfg.AuthMode {
	case "hs256":
		return hs256.NewAuthenticator(cfg.HS256Secret)
	default:
		return oidc.NewAuthenticator(cfg)
	}
}

func newRateLimiter(cfg config.Config, logger *zap.Logger) domain.RateLimiter {
	if cfg.RateLimitRequests <= 0 {
		return nil
	}
	if cfg.RedisAddr != "" {
		limiter, err := ratelimit.NewRedisLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
		if err == nil {
			return limiter
		}
		logger.Warn("redis limiter unavailable, using in-memory limiter", zap.Error(err))
	}
	return ratelimit.NewMemoryLimiter(ratelimit.MemoryLimiterConfig{MaxKeys: cfg.RateLimitMaxKeys})
}

func failurePolicy(failOpen bool) domain.FailurePolicy {
	if failOpen {
		return domain.FailOpen
	}
	return domain.FailClosed
}
