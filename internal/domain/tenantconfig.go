package domain

import "time"

// Module is a coarse-grained, independently licensable feature area.
type Module string

const (
	ModulePCIResolution     Module = "pciResolution"
	ModuleCBRSManagement    Module = "cbrsManagement"
	ModuleACSManagement     Module = "acsManagement"
	ModuleHSSManagement     Module = "hssManagement"
	ModuleCoverageMap       Module = "coverageMap"
	ModuleInventory         Module = "inventory"
	ModuleWorkOrders        Module = "workOrders"
	ModuleHelpDesk          Module = "helpDesk"
	ModuleDistributedEPC    Module = "distributedEpc"
	ModuleMonitoring        Module = "monitoring"
	ModuleBackendManagement Module = "backendManagement"
)

// Limit names a numeric per-tenant quota.
type Limit string

const (
	LimitMaxSites          Limit = "maxSites"
	LimitMaxSubscribers    Limit = "maxSubscribers"
	LimitMaxCPEs           Limit = "maxCPEs"
	LimitMaxUsers          Limit = "maxUsers"
	LimitMaxInventoryItems Limit = "maxInventoryItems"
	LimitMaxAPIRequests    Limit = "maxApiRequestsPerMinute"
)

// Unlimited disables enforcement for a limit that carries it.
const Unlimited = 999999

// Feature is a tier-gated feature flag.
type Feature string

const (
	FeatureAdvancedReporting  Feature = "advancedReporting"
	FeatureAPIAccess          Feature = "apiAccess"
	FeatureWhiteLabel         Feature = "whiteLabel"
	FeatureCustomIntegrations Feature = "customIntegrations"
	FeaturePrioritySupport    Feature = "prioritySupport"
)

// Tier is a subscription tier name.
type Tier string

const (
	TierFree         Tier = "free"
	TierBasic        Tier = "basic"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
	TierCustom       Tier = "custom"
)

// TenantConfiguration holds a tenant's module enablement, quotas, tier and
// feature flags. Physical absence of the row means "use defaults"; the row
// is never deleted while the tenant exists.
type TenantConfiguration struct {
	TenantID         string
	EnabledModules   map[Module]bool
	ModuleLimits     map[Limit]int
	SubscriptionTier Tier
	Features         map[Feature]bool

	CreatedAt time.Time
	UpdatedAt time.Time
	UpdatedBy string
}

// ModuleEnabled treats an unmentioned module as disabled. Callers that want
// the missing-row backward-compatibility default decide that before asking.
func (c *TenantConfiguration) ModuleEnabled(module Module) bool {
	if c == nil || c.EnabledModules == nil {
		return false
	}
	return c.EnabledModules[module]
}

// LimitFor reports the configured limit and whether one is set at all.
func (c *TenantConfiguration) LimitFor(limit Limit) (int, bool) {
	if c == nil || c.ModuleLimits == nil {
		return 0, false
	}
	value, ok := c.ModuleLimits[limit]
	return value, ok
}

func (c *TenantConfiguration) FeatureEnabled(feature Feature) bool {
	if c == nil || c.Features == nil {
		return false
	}
	return c.Features[feature]
}

type tierTable struct {
	modules  map[Module]bool
	limits   map[Limit]int
	features map[Feature]bool
}

var subscriptionTiers = map[Tier]tierTable{
	TierFree: {
		modules: map[Module]bool{
			ModulePCIResolution: true,
			ModuleACSManagement: true,
			ModuleCoverageMap:   true,
			ModuleInventory:     true,
			ModuleWorkOrders:    true,
		},
		limits: map[Limit]int{
			LimitMaxSites:          3,
			LimitMaxSubscribers:    100,
			LimitMaxCPEs:           50,
			LimitMaxUsers:          1,
			LimitMaxInventoryItems: 100,
			LimitMaxAPIRequests:    60,
		},
		features: map[Feature]bool{},
	},
	TierBasic: {
		modules: map[Module]bool{
			ModulePCIResolution:  true,
			ModuleCBRSManagement: true,
			ModuleACSManagement:  true,
			ModuleHSSManagement:  true,
			ModuleCoverageMap:    true,
			ModuleInventory:      true,
			ModuleWorkOrders:     true,
			ModuleHelpDesk:       true,
			ModuleMonitoring:     true,
		},
		limits: map[Limit]int{
			LimitMaxSites:          10,
			LimitMaxSubscribers:    1000,
			LimitMaxCPEs:           500,
			LimitMaxUsers:          5,
			LimitMaxInventoryItems: 1000,
			LimitMaxAPIRequests:    300,
		},
		features: map[Feature]bool{},
	},
	TierProfessional: {
		modules: map[Module]bool{
			ModulePCIResolution:  true,
			ModuleCBRSManagement: true,
			ModuleACSManagement:  true,
			ModuleHSSManagement:  true,
			ModuleCoverageMap:    true,
			ModuleInventory:      true,
			ModuleWorkOrders:     true,
			ModuleHelpDesk:       true,
			ModuleDistributedEPC: true,
			ModuleMonitoring:     true,
		},
		limits: map[Limit]int{
			LimitMaxSites:          50,
			LimitMaxSubscribers:    10000,
			LimitMaxCPEs:           5000,
			LimitMaxUsers:          20,
			LimitMaxInventoryItems: 10000,
			LimitMaxAPIRequests:    1200,
		},
		features: map[Feature]bool{
			FeatureAdvancedReporting: true,
			FeatureAPIAccess:         true,
			FeaturePrioritySupport:   true,
		},
	},
	TierEnterprise: {
		modules: map[Module]bool{
			ModulePCIResolution:  true,
			ModuleCBRSManagement: true,
			ModuleACSManagement:  true,
			ModuleHSSManagement:  true,
			ModuleCoverageMap:    true,
			ModuleInventory:      true,
			ModuleWorkOrders:     true,
			ModuleHelpDesk:       true,
			ModuleDistributedEPC: true,
			ModuleMonitoring:     true,
		},
		limits: map[Limit]int{
			LimitMaxSites:          Unlimited,
			LimitMaxSubscribers:    Unlimited,
			LimitMaxCPEs:           Unlimited,
			LimitMaxUsers:          Unlimited,
			LimitMaxInventoryItems: Unlimited,
			LimitMaxAPIRequests:    Unlimited,
		},
		features: map[Feature]bool{
			FeatureAdvancedReporting:  true,
			FeatureAPIAccess:          true,
			FeatureWhiteLabel:         true,
			FeatureCustomIntegrations: true,
			FeaturePrioritySupport:    true,
		},
	},
}

// TierConfiguration builds the configuration a tenant receives when the
// given tier is applied. Unknown tiers (including "custom") fall back to
// basic; custom tenants are then edited explicitly.
func TierConfiguration(tenantID string, tier Tier, now time.Time) TenantConfiguration {
	table, ok := subscriptionTiers[tier]
	if !ok {
		table = subscriptionTiers[TierBasic]
		if tier != TierCustom {
			tier = TierBasic
		}
	}
	cfg := TenantConfiguration{
		TenantID:         tenantID,
		EnabledModules:   make(map[Module]bool, len(table.modules)),
		ModuleLimits:     make(map[Limit]int, len(table.limits)),
		SubscriptionTier: tier,
		Features:         make(map[Feature]bool, len(table.features)),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	for module, enabled := range table.modules {
		cfg.EnabledModules[module] = enabled
	}
	for limit, value := range table.limits {
		cfg.ModuleLimits[limit] = value
	}
	for feature, enabled := range table.features {
		cfg.Features[feature] = enabled
	}
	return cfg
}

// DefaultConfiguration is what a freshly provisioned tenant gets.
func DefaultConfiguration(tenantID string, now time.Time) TenantConfiguration {
	return TierConfiguration(tenantID, TierBasic, now)
}
