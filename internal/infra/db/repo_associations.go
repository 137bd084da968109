package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type AssociationRepository struct {
	db *gorm.DB
}

func NewAssociationRepository(db *gorm.DB) *AssociationRepository {
	return &AssociationRepository{db: db}
}

var errDBUnavailable = fmt.Errorf("db unavailable: %w", domain.ErrInfrastructure)

func (r *AssociationRepository) Get(ctx context.Context, userID, tenantID string) (domain.UserTenantAssociation, error) {
	if r.db == nil {
		return domain.UserTenantAssociation{}, errDBUnavailable
	}
	var model UserTenantModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.UserTenantAssociation{}, domain.ErrNotAMember
	}
	if err != nil {
		return domain.UserTenantAssociation{}, errors.Join(domain.ErrInfrastructure, err)
	}
	return associationFromModel(model), nil
}

// ListForUser orders by added_at then tenant_id so the default-tenant
// choice is deterministic across replicas.
func (r *AssociationRepository) ListForUser(ctx context.Context, userID string) ([]domain.UserTenantAssociation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []UserTenantModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at asc, tenant_id asc").
		Find(&models).Error
	if err != nil {
		return nil, errors.Join(domain.ErrInfrastructure, err)
	}
	out := make([]domain.UserTenantAssociation, 0, len(models))
	for _, m := range models {
		out = append(out, associationFromModel(m))
	}
	return out, nil
}

func (r *AssociationRepository) ListForTenant(ctx context.Context, tenantID string) ([]domain.UserTenantAssociation, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []UserTenantModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("added_at asc, user_id asc").
		Find(&models).Error
	if err != nil {
		return nil, errors.Join(domain.ErrInfrastructure, err)
	}
	out := make([]domain.UserTenantAssociation, 0, len(models))
	for _, m := range models {
		out = append(out, associationFromModel(m))
	}
	return out, nil
}

func (r *AssociationRepository) Create(ctx context.Context, assoc domain.UserTenantAssociation) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := associationToModel(assoc)
	err := r.db.WithContext(ctx).Create(&model).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrConflict
	}
	if err != nil {
		return errors.Join(domain.ErrInfrastructure, err)
	}
	return nil
}

func (r *AssociationRepository) UpdateRole(ctx context.Context, userID, tenantID string, role domain.Role) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Model(&UserTenantModel{}).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Update("role", string(role))
	if res.Error != nil {
		return errors.Join(domain.ErrInfrastructure, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

func (r *AssociationRepository) UpdateStatus(ctx context.Context, userID, tenantID string, status domain.AssociationStatus, actor string, at time.Time) error {
	if r.db == nil {
		return errDBUnavailable
	}
	changes := map[string]any{"status": string(status)}
	if status == domain.StatusSuspended {
		changes["suspended_at"] = at
		changes["suspended_by"] = actor
	} else {
		changes["suspended_at"] = nil
		changes["suspended_by"] = ""
	}
	res := r.db.WithContext(ctx).
		Model(&UserTenantModel{}).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Updates(changes)
	if res.Error != nil {
		return errors.Join(domain.ErrInfrastructure, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

func (r *AssociationRepository) Delete(ctx context.Context, userID, tenantID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND tenant_id = ?", userID, tenantID).
		Delete(&UserTenantModel{})
	if res.Error != nil {
		return errors.Join(domain.ErrInfrastructure, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotAMember
	}
	return nil
}

func (r *AssociationRepository) CountActive(ctx context.Context, tenantID string) (int64, error) {
	if r.db == nil {
		return 0, errDBUnavailable
	}
	var n int64
	err := r.db.WithContext(ctx).
		Model(&UserTenantModel{}).
		Where("tenant_id = ? AND status = ?", tenantID, string(domain.StatusActive)).
		Count(&n).Error
	if err != nil {
		return 0, errors.Join(domain.ErrInfrastructure, err)
	}
	return n, nil
}

// TransferOwnership promotes newOwner and demotes oldOwner in one
// transaction so the tenant never observes zero or two owners.
func (r *AssociationRepository) TransferOwnership(ctx context.Context, tenantID, oldOwner, newOwner string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&UserTenantModel{}).
			Where("user_id = ? AND tenant_id = ? AND role = ?", oldOwner, tenantID, string(domain.RoleOwner)).
			Update("role", string(domain.RoleAdmin))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotAMember
		}
		res = tx.Model(&UserTenantModel{}).
			Where("user_id = ? AND tenant_id = ? AND status = ?", newOwner, tenantID, string(domain.StatusActive)).
			Update("role", string(domain.RoleOwner))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotAMember
		}
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrNotAMember) {
		return errors.Join(domain.ErrInfrastructure, err)
	}
	return err
}

func associationFromModel(m UserTenantModel) domain.UserTenantAssociation {
	return domain.UserTenantAssociation{
		UserID:      m.UserID,
		TenantID:    m.TenantID,
		Role:        domain.Role(m.Role),
		Status:      domain.AssociationStatus(m.Status),
		InvitedBy:   m.InvitedBy,
		InvitedAt:   m.InvitedAt,
		AcceptedAt:  m.AcceptedAt,
		AddedAt:     m.AddedAt,
		SuspendedAt: m.SuspendedAt,
		SuspendedBy: m.SuspendedBy,
	}
}

func associationToModel(a domain.UserTenantAssociation) UserTenantModel {
	return UserTenantModel{
		UserID:      a.UserID,
		TenantID:    a.TenantID,
		Role:        string(a.Role),
		Status:      string(a.Status),
		InvitedBy:   a.InvitedBy,
		InvitedAt:   a.InvitedAt,
		AcceptedAt:  a.AcceptedAt,
		AddedAt:     a.AddedAt,
		SuspendedAt: a.SuspendedAt,
		SuspendedBy: a.SuspendedBy,
	}
}
