package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// List returns every provisioned tenant, oldest first.
func (r *TenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []TenantModel
	if err := r.db.WithContext(ctx).Order("created_at asc, id asc").Find(&models).Error; err != nil {
		return nil, errors.Join(domain.ErrInfrastructure, err)
	}
	out := make([]domain.Tenant, 0, len(models))
	for _, m := range models {
		out = append(out, tenantFromModel(m))
	}
	return out, nil
}

func (r *TenantRepository) Get(ctx context.Context, id string) (domain.Tenant, error) {
	if r.db == nil {
		return domain.Tenant{}, errDBUnavailable
	}
	var model TenantModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Tenant{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Tenant{}, errors.Join(domain.ErrInfrastructure, err)
	}
	return tenantFromModel(model), nil
}

func tenantFromModel(m TenantModel) domain.Tenant {
	return domain.Tenant{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
	}
}
