package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type InvitationRepository struct {
	db *gorm.DB
}

func NewInvitationRepository(db *gorm.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) Get(ctx context.Context, id string) (domain.Invitation, error) {
	if r.db == nil {
		return domain.Invitation{}, errDBUnavailable
	}
	var model InvitationModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Invitation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Invitation{}, errors.Join(domain.ErrInfrastructure, err)
	}
	return invitationFromModel(model), nil
}

// FindPending matches on tenant and email with no accepted_at yet.
func (r *InvitationRepository) FindPending(ctx context.Context, tenantID, email string) (domain.Invitation, error) {
	if r.db == nil {
		return domain.Invitation{}, errDBUnavailable
	}
	var model InvitationModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ? AND accepted_at IS NULL", tenantID, email).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Invitation{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Invitation{}, errors.Join(domain.ErrInfrastructure, err)
	}
	return invitationFromModel(model), nil
}

func (r *InvitationRepository) Create(ctx context.Context, inv domain.Invitation) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := InvitationModel{
		ID:         inv.ID,
		TenantID:   inv.TenantID,
		Email:      inv.Email,
		Role:       string(inv.Role),
		InvitedBy:  inv.InvitedBy,
		InvitedAt:  inv.InvitedAt,
		AcceptedAt: inv.AcceptedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return errors.Join(domain.ErrInfrastructure, err)
	}
	return nil
}

func (r *InvitationRepository) MarkAccepted(ctx context.Context, id string, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&InvitationModel{}).
		Where("id = ? AND accepted_at IS NULL", id).
		Update("accepted_at", at)
	if res.Error != nil {
		return errors.Join(domain.ErrInfrastructure, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrConflict
	}
	return nil
}

func (r *InvitationRepository) Delete(ctx context.Context, id string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).Delete(&InvitationModel{}, "id = ?", id)
	if res.Error != nil {
		return errors.Join(domain.ErrInfrastructure, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func invitationFromModel(m InvitationModel) domain.Invitation {
	return domain.Invitation{
		ID:         m.ID,
		TenantID:   m.TenantID,
		Email:      m.Email,
		Role:       domain.Role(m.Role),
		InvitedBy:  m.InvitedBy,
		InvitedAt:  m.InvitedAt,
		AcceptedAt: m.AcceptedAt,
	}
}
