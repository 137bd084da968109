package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// ContextService builds the TenantContext a request runs under. This is
// the only place the platform-admin allow-list is consulted.
type ContextService struct {
	resolver       *TenantResolver
	tenants        domain.TenantStore
	platformAdmins map[string]bool
	log            *zap.Logger
}

func NewContextService(resolver *TenantResolver, tenants domain.TenantStore, platformAdminEmails []string, log *zap.Logger) *ContextService {
	admins := make(map[string]bool, len(platformAdminEmails))
	for _, email := range platformAdminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = true
		}
	}
	return &ContextService{resolver: resolver, tenants: tenants, platformAdmins: admins, log: log}
}

func (s *ContextService) isPlatformAdmin(email string) bool {
	return email != "" && s.platformAdmins[strings.ToLower(email)]
}

// IsPlatformAdmin reports whether the verified identity is on the operator
// allow-list. Admin surfaces that run without a tenant context use this
// directly.
func (s *ContextService) IsPlatformAdmin(identity domain.Identity) bool {
	return s.isPlatformAdmin(identity.Email)
}

// Build resolves the tenant and snapshots the caller's role and
// capabilities. Platform admins may enter any tenant they name explicitly;
// the override is audited and the resulting context marked, never silent.
func (s *ContextService) Build(ctx context.Context, identity domain.Identity, hint string) (*domain.TenantContext, error) {
	platformAdmin := s.isPlatformAdmin(identity.Email)

	assoc, err := s.resolver.Resolve(ctx, identity, hint)
	if err != nil {
		if platformAdmin && hint != "" && errors.Is(err, domain.ErrNotAMember) {
			// the override only enters tenants that exist
			if _, lookupErr := s.tenants.Get(ctx, hint); lookupErr != nil {
				if errors.Is(lookupErr, domain.ErrNotFound) {
					return nil, domain.ErrTenantNotFound
				}
				return nil, lookupErr
			}
			s.log.Warn("platform_admin_override: entering tenant without membership",
				zap.String("user_id", identity.UserID),
				zap.String("email", identity.Email),
				zap.String("tenant_id", hint))
			return &domain.TenantContext{
				TenantID:      hint,
				UserID:        identity.UserID,
				UserEmail:     identity.Email,
				Role:          domain.RolePlatformAdmin,
				Permissions:   domain.PermissionSnapshot(domain.RolePlatformAdmin),
				PlatformAdmin: true,
			}, nil
		}
		return nil, err
	}

	if assoc.Status == domain.StatusSuspended {
		return nil, domain.ErrSuspended
	}

	role, ok := domain.ParseRole(string(assoc.Role))
	if !ok {
		// unknown role in storage means no capabilities, not a crash
		s.log.Error("association carries unknown role",
			zap.String("user_id", identity.UserID),
			zap.String("tenant_id", assoc.TenantID),
			zap.String("role", string(assoc.Role)))
		role = domain.RoleViewer
	}

	return &domain.TenantContext{
		TenantID:      assoc.TenantID,
		UserID:        identity.UserID,
		UserEmail:     identity.Email,
		Role:          role,
		Permissions:   domain.PermissionSnapshot(role),
		PlatformAdmin: platformAdmin,
	}, nil
}
