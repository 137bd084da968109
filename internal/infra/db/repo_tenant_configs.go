package db

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type TenantConfigRepository struct {
	db *gorm.DB
}

func NewTenantConfigRepository(db *gorm.DB) *TenantConfigRepository {
	return &TenantConfigRepository{db: db}
}

func (r *TenantConfigRepository) Get(ctx context.Context, tenantID string) (domain.TenantConfiguration, error) {
	if r.db == nil {
		return domain.TenantConfiguration{}, errDBUnavailable
	}
	var model TenantConfigModel
	err := r.db.WithContext(ctx).First(&model, "tenant_id = ?", tenantID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.TenantConfiguration{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.TenantConfiguration{}, errors.Join(domain.ErrInfrastructure, err)
	}
	return configFromModel(model)
}

func (r *TenantConfigRepository) Upsert(ctx context.Context, cfg domain.TenantConfiguration) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model, err := configToModel(cfg)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"enabled_modules", "module_limits", "subscription_tier",
				"features", "updated_at", "updated_by",
			}),
		}).
		Create(&model).Error
	if err != nil {
		return errors.Join(domain.ErrInfrastructure, err)
	}
	return nil
}

func configFromModel(m TenantConfigModel) (domain.TenantConfiguration, error) {
	cfg := domain.TenantConfiguration{
		TenantID:         m.TenantID,
		SubscriptionTier: domain.Tier(m.SubscriptionTier),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
		UpdatedBy:        m.UpdatedBy,
	}
	if err := json.Unmarshal(m.EnabledModules, &cfg.EnabledModules); err != nil {
		return domain.TenantConfiguration{}, errors.Join(domain.ErrInfrastructure, err)
	}
	if err := json.Unmarshal(m.ModuleLimits, &cfg.ModuleLimits); err != nil {
		return domain.TenantConfiguration{}, errors.Join(domain.ErrInfrastructure, err)
	}
	if err := json.Unmarshal(m.Features, &cfg.Features); err != nil {
		return domain.TenantConfiguration{}, errors.Join(domain.ErrInfrastructure, err)
	}
	return cfg, nil
}

func configToModel(cfg domain.TenantConfiguration) (TenantConfigModel, error) {
	modules, err := json.Marshal(cfg.EnabledModules)
	if err != nil {
		return TenantConfigModel{}, err
	}
	limits, err := json.Marshal(cfg.ModuleLimits)
	if err != nil {
		return TenantConfigModel{}, err
	}
	features, err := json.Marshal(cfg.Features)
	if err != nil {
		return TenantConfigModel{}, err
	}
	return TenantConfigModel{
		TenantID:         cfg.TenantID,
		EnabledModules:   modules,
		ModuleLimits:     limits,
		SubscriptionTier: string(cfg.SubscriptionTier),
		Features:         features,
		CreatedAt:        cfg.CreatedAt,
		UpdatedAt:        cfg.UpdatedAt,
		UpdatedBy:        cfg.UpdatedBy,
	}, nil
}
