package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// SiteService manages tower sites. Every operation sits behind the
// coverage map module gate; writes additionally need the site capability
// and creation is bounded by the site quota.
type SiteService struct {
	sites        domain.SiteStore
	entitlements *Entitlements
	now          func() time.Time
	log          *zap.Logger
}

func NewSiteService(sites domain.SiteStore, entitlements *Entitlements, log *zap.Logger) *SiteService {
	return &SiteService{sites: sites, entitlements: entitlements, now: time.Now, log: log}
}

func (s *SiteService) List(ctx context.Context, tc *domain.TenantContext) ([]domain.Site, error) {
	if err := s.entitlements.RequireModule(ctx, tc.TenantID, domain.ModuleCoverageMap); err != nil {
		return nil, err
	}
	return s.sites.List(ctx, tc.TenantID)
}

func (s *SiteService) Get(ctx context.Context, tc *domain.TenantContext, id string) (domain.Site, error) {
	if err := s.entitlements.RequireModule(ctx, tc.TenantID, domain.ModuleCoverageMap); err != nil {
		return domain.Site{}, err
	}
	return s.sites.GetByID(ctx, tc.TenantID, id)
}

func (s *SiteService) Create(ctx context.Context, tc *domain.TenantContext, site domain.Site) (domain.Site, error) {
	if err := s.entitlements.RequireModule(ctx, tc.TenantID, domain.ModuleCoverageMap); err != nil {
		return domain.Site{}, err
	}
	if !tc.Can(domain.CapManageSites) {
		return domain.Site{}, &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	if err := s.entitlements.CheckLimit(ctx, tc.TenantID, domain.LimitMaxSites, func(ctx context.Context) (int64, error) {
		return s.sites.Count(ctx, tc.TenantID)
	}); err != nil {
		return domain.Site{}, err
	}

	now := s.now()
	site.ID = uuid.NewString()
	site.TenantID = ""
	site.CreatedAt = now
	site.UpdatedAt = now
	if site.Status == "" {
		site.Status = "planned"
	}
	if err := s.sites.Create(ctx, tc.TenantID, &site); err != nil {
		return domain.Site{}, err
	}
	s.log.Info("site created",
		zap.String("tenant_id", tc.TenantID),
		zap.String("site_id", site.ID),
		zap.String("created_by", tc.UserID))
	return site, nil
}

func (s *SiteService) Update(ctx context.Context, tc *domain.TenantContext, id string, changes map[string]any) error {
	if err := s.entitlements.RequireModule(ctx, tc.TenantID, domain.ModuleCoverageMap); err != nil {
		return err
	}
	if !tc.Can(domain.CapManageSites) {
		return &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	changes["updated_at"] = s.now()
	n, err := s.sites.Update(ctx, tc.TenantID, id, changes)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *SiteService) Delete(ctx context.Context, tc *domain.TenantContext, id string) error {
	if err := s.entitlements.RequireModule(ctx, tc.TenantID, domain.ModuleCoverageMap); err != nil {
		return err
	}
	if !tc.Can(domain.CapManageSites) {
		return &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	n, err := s.sites.Delete(ctx, tc.TenantID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
