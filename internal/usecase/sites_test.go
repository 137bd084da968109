package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/theorem6/WISPTools-sub003/internal/domain"
)

func newSiteFixture() (*SiteService, *fakeSites, *fakeConfigs) {
	sites := newFakeSites()
	configs := newFakeConfigs()
	entitlements := NewEntitlements(configs, domain.FailOpen, domain.FailOpen, zap.NewNop())
	return NewSiteService(sites, entitlements, zap.NewNop()), sites, configs
}

func TestCreateSite(t *testing.T) {
	svc, sites, configs := newSiteFixture()
	configs.put(domain.TierConfiguration("t1", domain.TierBasic, time.Now()))

	tc := contextFor(domain.RoleEngineer, "t1", "eng1")
	site, err := svc.Create(context.Background(), tc, domain.Site{Name: "north tower", Latitude: 40.1, Longitude: -88.2})
	if err != nil {
		t.Fatal(err)
	}
	if site.ID == "" || site.TenantID != "t1" {
		t.Fatalf("site = %+v", site)
	}
	if site.Status != "planned" {
		t.Fatalf("status = %s, want planned default", site.Status)
	}
	if n, _ := sites.Count(context.Background(), "t1"); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}

func TestCreateSiteModuleDisabled(t *testing.T) {
	svc, _, configs := newSiteFixture()
	cfg := domain.TierConfiguration("t1", domain.TierBasic, time.Now())
	cfg.EnabledModules[domain.ModuleCoverageMap] = false
	configs.put(cfg)

	tc := contextFor(domain.RoleEngineer, "t1", "eng1")
	_, err := svc.Create(context.Background(), tc, domain.Site{Name: "x"})
	if !errors.Is(err, domain.ErrModuleDisabled) {
		t.Fatalf("err = %v, want module disabled", err)
	}
}

func TestCreateSiteRequiresCapability(t *testing.T) {
	svc, _, configs := newSiteFixture()
	configs.put(domain.TierConfiguration("t1", domain.TierBasic, time.Now()))

	tc := contextFor(domain.RoleViewer, "t1", "v1")
	_, err := svc.Create(context.Background(), tc, domain.Site{Name: "x"})
	authz, ok := domain.IsAuthzError(err)
	if !ok || authz.Code != domain.CodeMissingCapability {
		t.Fatalf("err = %v, want missing capability", err)
	}
}

func TestCreateSiteQuota(t *testing.T) {
	svc, sites, configs := newSiteFixture()
	configs.put(domain.TierConfiguration("t1", domain.TierFree, time.Now())) // maxSites 3
	for i, id := range []string{"s1", "s2", "s3"} {
		sites.sites[id] = domain.Site{ID: id, TenantID: "t1", Name: "site", Latitude: float64(i)}
	}

	tc := contextFor(domain.RoleEngineer, "t1", "eng1")
	_, err := svc.Create(context.Background(), tc, domain.Site{Name: "one too many"})
	var limitErr *domain.LimitExceededError
	if !errors.As(err, &limitErr) || limitErr.Limit != domain.LimitMaxSites {
		t.Fatalf("err = %v, want maxSites exceeded", err)
	}
}

func TestListSitesIsTenantScoped(t *testing.T) {
	svc, sites, configs := newSiteFixture()
	configs.put(domain.TierConfiguration("t1", domain.TierBasic, time.Now()))
	sites.sites["a"] = domain.Site{ID: "a", TenantID: "t1"}
	sites.sites["b"] = domain.Site{ID: "b", TenantID: "t2"}

	tc := contextFor(domain.RoleViewer, "t1", "v1")
	got, err := svc.List(context.Background(), tc)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("sites = %+v", got)
	}
}

func TestGetSiteFromOtherTenantIsNotFound(t *testing.T) {
	svc, sites, configs := newSiteFixture()
	configs.put(domain.TierConfiguration("t1", domain.TierBasic, time.Now()))
	sites.sites["b"] = domain.Site{ID: "b", TenantID: "t2"}

	tc := contextFor(domain.RoleViewer, "t1", "v1")
	_, err := svc.Get(context.Background(), tc, "b")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestUpdateAndDeleteSite(t *testing.T) {
	svc, sites, configs := newSiteFixture()
	configs.put(domain.TierConfiguration("t1", domain.TierBasic, time.Now()))
	sites.sites["a"] = domain.Site{ID: "a", TenantID: "t1", Name: "old"}

	tc := contextFor(domain.RoleEngineer, "t1", "eng1")
	if err := svc.Update(context.Background(), tc, "a", map[string]any{"name": "new"}); err != nil {
		t.Fatal(err)
	}
	if sites.sites["a"].Name != "new" {
		t.Fatal("update not applied")
	}

	// foreign record updates report not found, never cross tenants
	sites.sites["b"] = domain.Site{ID: "b", TenantID: "t2"}
	if err := svc.Update(context.Background(), tc, "b", map[string]any{"name": "x"}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	if err := svc.Delete(context.Background(), tc, "a"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(context.Background(), tc, "b"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}
