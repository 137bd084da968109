package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// MembershipService owns the user-tenant association lifecycle: invites,
// role changes, suspension and ownership transfer. All role rules funnel
// through the domain capability tables; nothing here compares role strings.
type MembershipService struct {
	assocs       domain.AssociationStore
	invites      domain.InvitationStore
	entitlements *Entitlements
	now          func() time.Time
	log          *zap.Logger
}

func NewMembershipService(assocs domain.AssociationStore, invites domain.InvitationStore, entitlements *Entitlements, log *zap.Logger) *MembershipService {
	return &MembershipService{
		assocs:       assocs,
		invites:      invites,
		entitlements: entitlements,
		now:          time.Now,
		log:          log,
	}
}

func (s *MembershipService) ListMembers(ctx context.Context, tc *domain.TenantContext) ([]domain.UserTenantAssociation, error) {
	if !tc.Can(domain.CapManageUsers) && !tc.Can(domain.CapInviteUsers) {
		return nil, &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	return s.assocs.ListForTenant(ctx, tc.TenantID)
}

// ListTenantsForUser needs no tenant context; it is how a client renders
// the tenant switcher after sign-in.
func (s *MembershipService) ListTenantsForUser(ctx context.Context, identity domain.Identity) ([]domain.UserTenantAssociation, error) {
	return s.assocs.ListForUser(ctx, identity.UserID)
}

// Invite creates a pending invitation. The invited role must be strictly
// below the inviter's own, and the tenant's user quota must have room.
func (s *MembershipService) Invite(ctx context.Context, tc *domain.TenantContext, email string, role domain.Role) (domain.Invitation, error) {
	if !tc.Can(domain.CapInviteUsers) {
		return domain.Invitation{}, &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	if _, ok := domain.ParseRole(string(role)); !ok {
		return domain.Invitation{}, &domain.AuthzError{Code: domain.CodeRoleNotAssignable, Err: domain.ErrForbidden}
	}
	if !domain.CanAssignRole(tc.Role, role) {
		return domain.Invitation{}, &domain.AuthzError{Code: domain.CodeRoleNotAssignable, Err: domain.ErrForbidden}
	}
	if err := s.entitlements.CheckLimit(ctx, tc.TenantID, domain.LimitMaxUsers, func(ctx context.Context) (int64, error) {
		return s.assocs.CountActive(ctx, tc.TenantID)
	}); err != nil {
		return domain.Invitation{}, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.invites.FindPending(ctx, tc.TenantID, email); err == nil {
		return domain.Invitation{}, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.Invitation{}, err
	}

	inv := domain.Invitation{
		ID:        uuid.NewString(),
		TenantID:  tc.TenantID,
		Email:     email,
		Role:      role,
		InvitedBy: tc.UserID,
		InvitedAt: s.now(),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return domain.Invitation{}, err
	}
	s.log.Info("invitation created",
		zap.String("tenant_id", tc.TenantID),
		zap.String("invitation_id", inv.ID),
		zap.String("role", string(role)),
		zap.String("invited_by", tc.UserID))
	return inv, nil
}

// AcceptInvite turns a pending invitation into an active association. The
// accepting identity's email must match the invitation.
func (s *MembershipService) AcceptInvite(ctx context.Context, identity domain.Identity, invitationID string) (domain.UserTenantAssociation, error) {
	inv, err := s.invites.Get(ctx, invitationID)
	if err != nil {
		return domain.UserTenantAssociation{}, err
	}
	if inv.AcceptedAt != nil {
		return domain.UserTenantAssociation{}, domain.ErrConflict
	}
	if !strings.EqualFold(inv.Email, identity.Email) {
		s.log.Warn("security_event: invitation accepted by wrong identity",
			zap.String("invitation_id", invitationID),
			zap.String("user_id", identity.UserID))
		return domain.UserTenantAssociation{}, &domain.AuthzError{Code: domain.CodeInvitationMismatch, Err: domain.ErrForbidden}
	}

	now := s.now()
	assoc := domain.UserTenantAssociation{
		UserID:     identity.UserID,
		TenantID:   inv.TenantID,
		Role:       inv.Role,
		Status:     domain.StatusActive,
		InvitedBy:  inv.InvitedBy,
		InvitedAt:  inv.InvitedAt,
		AcceptedAt: &now,
		AddedAt:    now,
	}
	if err := s.assocs.Create(ctx, assoc); err != nil {
		return domain.UserTenantAssociation{}, err
	}
	if err := s.invites.MarkAccepted(ctx, inv.ID, now); err != nil {
		// association exists; a dangling accepted_at only blocks reuse
		s.log.Error("failed to mark invitation accepted",
			zap.String("invitation_id", inv.ID),
			zap.Error(err))
	}
	return assoc, nil
}

// UpdateRole changes a member's role. Owners are immutable through this
// path, owner cannot be granted here, and the actor must outrank both the
// member's current role and the new one.
func (s *MembershipService) UpdateRole(ctx context.Context, tc *domain.TenantContext, userID string, role domain.Role) error {
	if !tc.Can(domain.CapManageUsers) {
		return &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	if role == domain.RoleOwner {
		return &domain.AuthzError{Code: domain.CodeOwnershipTransfer, Err: domain.ErrForbidden}
	}
	if _, ok := domain.ParseRole(string(role)); !ok || !domain.CanAssignRole(tc.Role, role) {
		return &domain.AuthzError{Code: domain.CodeRoleNotAssignable, Err: domain.ErrForbidden}
	}

	target, err := s.assocs.Get(ctx, userID, tc.TenantID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return &domain.AuthzError{Code: domain.CodeOwnerImmutable, Err: domain.ErrForbidden}
	}
	if !domain.CanAssignRole(tc.Role, target.Role) {
		return &domain.AuthzError{Code: domain.CodeRoleNotAssignable, Err: domain.ErrForbidden}
	}
	if err := s.assocs.UpdateRole(ctx, userID, tc.TenantID, role); err != nil {
		return err
	}
	s.log.Info("member role changed",
		zap.String("tenant_id", tc.TenantID),
		zap.String("user_id", userID),
		zap.String("new_role", string(role)),
		zap.String("changed_by", tc.UserID))
	return nil
}

func (s *MembershipService) Suspend(ctx context.Context, tc *domain.TenantContext, userID string) error {
	return s.setStatus(ctx, tc, userID, domain.StatusSuspended)
}

func (s *MembershipService) Activate(ctx context.Context, tc *domain.TenantContext, userID string) error {
	return s.setStatus(ctx, tc, userID, domain.StatusActive)
}

func (s *MembershipService) setStatus(ctx context.Context, tc *domain.TenantContext, userID string, status domain.AssociationStatus) error {
	if !tc.Can(domain.CapManageUsers) {
		return &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	target, err := s.assocs.Get(ctx, userID, tc.TenantID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return &domain.AuthzError{Code: domain.CodeOwnerImmutable, Err: domain.ErrForbidden}
	}
	if !domain.CanAssignRole(tc.Role, target.Role) {
		return &domain.AuthzError{Code: domain.CodeRoleNotAssignable, Err: domain.ErrForbidden}
	}
	if err := s.assocs.UpdateStatus(ctx, userID, tc.TenantID, status, tc.UserID, s.now()); err != nil {
		return err
	}
	s.log.Info("member status changed",
		zap.String("tenant_id", tc.TenantID),
		zap.String("user_id", userID),
		zap.String("status", string(status)),
		zap.String("changed_by", tc.UserID))
	return nil
}

// Remove deletes a member's association. The owner cannot be removed; use
// TransferOwnership first.
func (s *MembershipService) Remove(ctx context.Context, tc *domain.TenantContext, userID string) error {
	if !tc.Can(domain.CapManageUsers) {
		return &domain.AuthzError{Code: domain.CodeMissingCapability, Err: domain.ErrForbidden}
	}
	target, err := s.assocs.Get(ctx, userID, tc.TenantID)
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		return &domain.AuthzError{Code: domain.CodeOwnerImmutable, Err: domain.ErrForbidden}
	}
	if !domain.CanAssignRole(tc.Role, target.Role) {
		return &domain.AuthzError{Code: domain.CodeRoleNotAssignable, Err: domain.ErrForbidden}
	}
	if err := s.assocs.Delete(ctx, userID, tc.TenantID); err != nil {
		return err
	}
	s.log.Info("member removed",
		zap.String("tenant_id", tc.TenantID),
		zap.String("user_id", userID),
		zap.String("removed_by", tc.UserID))
	return nil
}

// TransferOwnership moves the owner role to an active member. The current
// owner may initiate it, and a platform administrator may reassign
// ownership on a tenant's behalf.
func (s *MembershipService) TransferOwnership(ctx context.Context, tc *domain.TenantContext, newOwnerID string) error {
	if tc.Role != domain.RoleOwner && !tc.PlatformAdmin {
		return &domain.AuthzError{Code: domain.CodeOwnershipTransfer, Err: domain.ErrForbidden}
	}
	oldOwnerID := tc.UserID
	if tc.Role != domain.RoleOwner {
		current, err := s.currentOwner(ctx, tc.TenantID)
		if err != nil {
			return err
		}
		oldOwnerID = current
	}
	if newOwnerID == oldOwnerID {
		return domain.ErrConflict
	}
	target, err := s.assocs.Get(ctx, newOwnerID, tc.TenantID)
	if err != nil {
		return err
	}
	if target.Status != domain.StatusActive {
		return &domain.AuthzError{Code: domain.CodeOwnershipTransfer, Err: domain.ErrForbidden}
	}
	if err := s.assocs.TransferOwnership(ctx, tc.TenantID, oldOwnerID, newOwnerID); err != nil {
		return err
	}
	s.log.Info("ownership transferred",
		zap.String("tenant_id", tc.TenantID),
		zap.String("from", oldOwnerID),
		zap.String("to", newOwnerID),
		zap.String("initiated_by", tc.UserID),
		zap.Bool("platform_admin", tc.PlatformAdmin))
	return nil
}

func (s *MembershipService) currentOwner(ctx context.Context, tenantID string) (string, error) {
	members, err := s.assocs.ListForTenant(ctx, tenantID)
	if err != nil {
		return "", err
	}
	for _, m := range members {
		if m.Role == domain.RoleOwner {
			return m.UserID, nil
		}
	}
	return "", domain.ErrNotFound
}
