package db

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
	"github.com/theorem6/WISPTools-sub003/internal/infra/tenantfilter"
)

// SiteRepository is built entirely on the scoped store, so every read and
// write carries the tenant predicate and ownership stamp.
type SiteRepository struct {
	scoped *tenantfilter.Store[*SiteModel]
}

func NewSiteRepository(db *gorm.DB, log *zap.Logger) *SiteRepository {
	return &SiteRepository{
		scoped: tenantfilter.NewStore(db, log, func() *SiteModel { return &SiteModel{} }),
	}
}

func (r *SiteRepository) List(ctx context.Context, tenantID string) ([]domain.Site, error) {
	models, err := r.scoped.Find(ctx, tenantID, nil)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Site, 0, len(models))
	for _, m := range models {
		out = append(out, siteFromModel(m))
	}
	return out, nil
}

func (r *SiteRepository) GetByID(ctx context.Context, tenantID, id string) (domain.Site, error) {
	model, err := r.scoped.First(ctx, tenantID, map[string]any{"id": id})
	if err != nil {
		return domain.Site{}, err
	}
	return siteFromModel(model), nil
}

func (r *SiteRepository) Create(ctx context.Context, tenantID string, site *domain.Site) error {
	model := siteToModel(site)
	if err := r.scoped.Create(ctx, tenantID, model); err != nil {
		return err
	}
	site.TenantID = model.TenantID
	site.TenantUpdatedAt = model.TenantUpdatedAt
	return nil
}

func (r *SiteRepository) Update(ctx context.Context, tenantID, id string, changes map[string]any) (int64, error) {
	return r.scoped.Updates(ctx, tenantID, map[string]any{"id": id}, changes)
}

func (r *SiteRepository) Delete(ctx context.Context, tenantID, id string) (int64, error) {
	return r.scoped.Delete(ctx, tenantID, map[string]any{"id": id})
}

func (r *SiteRepository) Count(ctx context.Context, tenantID string) (int64, error) {
	return r.scoped.Count(ctx, tenantID, nil)
}

func siteFromModel(m *SiteModel) domain.Site {
	return domain.Site{
		ID:              m.ID,
		TenantID:        m.TenantID,
		TenantUpdatedAt: m.TenantUpdatedAt,
		Name:            m.Name,
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		Status:          m.Status,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func siteToModel(s *domain.Site) *SiteModel {
	return &SiteModel{
		ID:              s.ID,
		TenantID:        s.TenantID,
		TenantUpdatedAt: s.TenantUpdatedAt,
		Name:            s.Name,
		Latitude:        s.Latitude,
		Longitude:       s.Longitude,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
