package usecase

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

// TenantResolver picks the tenant a request operates in: the caller's hint
// when one is present, otherwise the user's oldest membership. The choice
// is deterministic so retries and replicas agree.
type TenantResolver struct {
	assocs domain.AssociationStore
	log    *zap.Logger
}

func NewTenantResolver(assocs domain.AssociationStore, log *zap.Logger) *TenantResolver {
	return &TenantResolver{assocs: assocs, log: log}
}

// Resolve returns the association the request runs under. A hint naming a
// tenant the user does not belong to returns ErrNotAMember; whether that
// tenant even exists is not disclosed.
func (r *TenantResolver) Resolve(ctx context.Context, identity domain.Identity, hint string) (domain.UserTenantAssociation, error) {
	if hint != "" {
		assoc, err := r.assocs.Get(ctx, identity.UserID, hint)
		if errors.Is(err, domain.ErrNotAMember) {
			r.log.Warn("security_event: tenant hint rejected",
				zap.String("user_id", identity.UserID),
				zap.String("hinted_tenant_id", hint))
			return domain.UserTenantAssociation{}, domain.ErrNotAMember
		}
		if err != nil {
			return domain.UserTenantAssociation{}, err
		}
		return assoc, nil
	}

	memberships, err := r.assocs.ListForUser(ctx, identity.UserID)
	if err != nil {
		return domain.UserTenantAssociation{}, err
	}
	if len(memberships) == 0 {
		return domain.UserTenantAssociation{}, domain.ErrTenantNotFound
	}
	return memberships[0], nil
}
