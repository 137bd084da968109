package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

type memberKey struct{ user, tenant string }

type fakeAssociations struct {
	mu      sync.Mutex
	members map[memberKey]domain.UserTenantAssociation
	err     error
}

func newFakeAssociations() *fakeAssociations {
	return &fakeAssociations{members: map[memberKey]domain.UserTenantAssociation{}}
}

func (f *fakeAssociations) put(a domain.UserTenantAssociation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[memberKey{a.UserID, a.TenantID}] = a
}

func (f *fakeAssociations) Get(_ context.Context, userID, tenantID string) (domain.UserTenantAssociation, error) {
	if f.err != nil {
		return domain.UserTenantAssociation{}, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.members[memberKey{userID, tenantID}]
	if !ok {
		return domain.UserTenantAssociation{}, domain.ErrNotAMember
	}
	return a, nil
}

func (f *fakeAssociations) ListForUser(_ context.Context, userID string) ([]domain.UserTenantAssociation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.UserTenantAssociation
	for _, a := range f.members {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	// oldest membership first, tenant id as tiebreak
	for i := 1; i < len(out); i++ {
		for j := i; j > 0; j-- {
			prev, cur := out[j-1], out[j]
			if cur.AddedAt.Before(prev.AddedAt) ||
				(cur.AddedAt.Equal(prev.AddedAt) && cur.TenantID < prev.TenantID) {
				out[j-1], out[j] = cur, prev
			}
		}
	}
	return out, nil
}

func (f *fakeAssociations) ListForTenant(_ context.Context, tenantID string) ([]domain.UserTenantAssociation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.UserTenantAssociation
	for _, a := range f.members {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssociations) Create(_ context.Context, a domain.UserTenantAssociation) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{a.UserID, a.TenantID}
	if _, exists := f.members[key]; exists {
		return domain.ErrConflict
	}
	f.members[key] = a
	return nil
}

func (f *fakeAssociations) UpdateRole(_ context.Context, userID, tenantID string, role domain.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{userID, tenantID}
	a, ok := f.members[key]
	if !ok {
		return domain.ErrNotAMember
	}
	a.Role = role
	f.members[key] = a
	return nil
}

func (f *fakeAssociations) UpdateStatus(_ context.Context, userID, tenantID string, status domain.AssociationStatus, actor string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{userID, tenantID}
	a, ok := f.members[key]
	if !ok {
		return domain.ErrNotAMember
	}
	a.Status = status
	if status == domain.StatusSuspended {
		a.SuspendedAt = &at
		a.SuspendedBy = actor
	} else {
		a.SuspendedAt = nil
		a.SuspendedBy = ""
	}
	f.members[key] = a
	return nil
}

func (f *fakeAssociations) Delete(_ context.Context, userID, tenantID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := memberKey{userID, tenantID}
	if _, ok := f.members[key]; !ok {
		return domain.ErrNotAMember
	}
	delete(f.members, key)
	return nil
}

func (f *fakeAssociations) CountActive(_ context.Context, tenantID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, a := range f.members {
		if a.TenantID == tenantID && a.Status == domain.StatusActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeAssociations) TransferOwnership(_ context.Context, tenantID, oldOwner, newOwner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	oldKey := memberKey{oldOwner, tenantID}
	newKey := memberKey{newOwner, tenantID}
	a, ok := f.members[oldKey]
	if !ok || a.Role != domain.RoleOwner {
		return domain.ErrNotAMember
	}
	b, ok := f.members[newKey]
	if !ok {
		return domain.ErrNotAMember
	}
	a.Role = domain.RoleAdmin
	b.Role = domain.RoleOwner
	f.members[oldKey] = a
	f.members[newKey] = b
	return nil
}

type fakeInvitations struct {
	mu      sync.Mutex
	invites map[string]domain.Invitation
}

func newFakeInvitations() *fakeInvitations {
	return &fakeInvitations{invites: map[string]domain.Invitation{}}
}

func (f *fakeInvitations) Get(_ context.Context, id string) (domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok {
		return domain.Invitation{}, domain.ErrNotFound
	}
	return inv, nil
}

func (f *fakeInvitations) FindPending(_ context.Context, tenantID, email string) (domain.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, inv := range f.invites {
		if inv.TenantID == tenantID && inv.Email == email && inv.AcceptedAt == nil {
			return inv, nil
		}
	}
	return domain.Invitation{}, domain.ErrNotFound
}

func (f *fakeInvitations) Create(_ context.Context, inv domain.Invitation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invites[inv.ID] = inv
	return nil
}

func (f *fakeInvitations) MarkAccepted(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.invites[id]
	if !ok || inv.AcceptedAt != nil {
		return domain.ErrConflict
	}
	inv.AcceptedAt = &at
	f.invites[id] = inv
	return nil
}

func (f *fakeInvitations) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.invites[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.invites, id)
	return nil
}

type fakeConfigs struct {
	mu   sync.Mutex
	cfgs map[string]domain.TenantConfiguration
	err  error
}

func newFakeConfigs() *fakeConfigs {
	return &fakeConfigs{cfgs: map[string]domain.TenantConfiguration{}}
}

func (f *fakeConfigs) Get(_ context.Context, tenantID string) (domain.TenantConfiguration, bool, error) {
	if f.err != nil {
		return domain.TenantConfiguration{}, false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.cfgs[tenantID]
	return cfg, ok, nil
}

func (f *fakeConfigs) Invalidate(string) {}

func (f *fakeConfigs) put(cfg domain.TenantConfiguration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfgs[cfg.TenantID] = cfg
}

type fakeSites struct {
	mu    sync.Mutex
	sites map[string]domain.Site
	err   error
}

func newFakeSites() *fakeSites {
	return &fakeSites{sites: map[string]domain.Site{}}
}

func (f *fakeSites) List(_ context.Context, tenantID string) ([]domain.Site, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Site
	for _, s := range f.sites {
		if s.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSites) GetByID(_ context.Context, tenantID, id string) (domain.Site, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sites[id]
	if !ok || s.TenantID != tenantID {
		return domain.Site{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSites) Create(_ context.Context, tenantID string, site *domain.Site) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	site.TenantID = tenantID
	f.sites[site.ID] = *site
	return nil
}

func (f *fakeSites) Update(_ context.Context, tenantID, id string, changes map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sites[id]
	if !ok || s.TenantID != tenantID {
		return 0, nil
	}
	if name, ok := changes["name"].(string); ok {
		s.Name = name
	}
	if status, ok := changes["status"].(string); ok {
		s.Status = status
	}
	f.sites[id] = s
	return 1, nil
}

func (f *fakeSites) Delete(_ context.Context, tenantID, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sites[id]
	if !ok || s.TenantID != tenantID {
		return 0, nil
	}
	delete(f.sites, id)
	return 1, nil
}

func (f *fakeSites) Count(_ context.Context, tenantID string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, s := range f.sites {
		if s.TenantID == tenantID {
			n++
		}
	}
	return n, nil
}

type fakeTenants struct {
	tenants map[string]domain.Tenant
}

func newFakeTenants(ids ...string) *fakeTenants {
	f := &fakeTenants{tenants: map[string]domain.Tenant{}}
	for _, id := range ids {
		f.tenants[id] = domain.Tenant{ID: id, Name: id, CreatedAt: time.Unix(0, 0)}
	}
	return f
}

func (f *fakeTenants) List(context.Context) ([]domain.Tenant, error) {
	out := make([]domain.Tenant, 0, len(f.tenants))
	for _, t := range f.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTenants) Get(_ context.Context, id string) (domain.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return domain.Tenant{}, domain.ErrNotFound
	}
	return t, nil
}

func contextFor(role domain.Role, tenantID, userID string) *domain.TenantContext {
	return &domain.TenantContext{
		TenantID:    tenantID,
		UserID:      userID,
		Role:        role,
		Permissions: domain.PermissionSnapshot(role),
	}
}
