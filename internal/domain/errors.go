package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrNotAMember         = errors.New("not a member of tenant")
	ErrSuspended          = errors.New("membership suspended")
	ErrForbidden          = errors.New("forbidden")
	ErrModuleDisabled     = errors.New("module disabled")
	ErrFeatureNotIncluded = errors.New("feature not included")
	ErrLimitExceeded      = errors.New("limit exceeded")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInfrastructure     = errors.New("infrastructure error")
)

// AuthzError carries a machine-readable rejection code alongside the
// sentinel it wraps, so clients can distinguish e.g. a missing capability
// from a role-assignment violation.
type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

// Rejection codes used with AuthzError.
const (
	CodeMissingCapability  = "MISSING_CAPABILITY"
	CodeRoleNotAssignable  = "ROLE_NOT_ASSIGNABLE"
	CodeOwnerImmutable     = "OWNER_IMMUTABLE"
	CodeTenantMismatch     = "TENANT_MISMATCH"
	CodePlatformAdminOnly  = "PLATFORM_ADMIN_ONLY"
	CodeOwnershipTransfer  = "OWNERSHIP_TRANSFER_REQUIRED"
	CodeInvitationMismatch = "INVITATION_MISMATCH"
)

// ModuleDisabledError reports a module gate rejection with enough detail
// for a client to render an upgrade prompt.
type ModuleDisabledError struct {
	TenantID string
	Module   Module
}

func (e *ModuleDisabledError) Error() string {
	return fmt.Sprintf("module %q disabled for tenant %q", e.Module, e.TenantID)
}

func (e *ModuleDisabledError) Unwrap() error { return ErrModuleDisabled }

// FeatureNotIncludedError reports a feature flag rejection.
type FeatureNotIncludedError struct {
	TenantID string
	Feature  Feature
	Tier     Tier
}

func (e *FeatureNotIncludedError) Error() string {
	return fmt.Sprintf("feature %q not included in tier %q for tenant %q", e.Feature, e.Tier, e.TenantID)
}

func (e *FeatureNotIncludedError) Unwrap() error { return ErrFeatureNotIncluded }

// LimitExceededError reports a usage quota rejection.
type LimitExceededError struct {
	TenantID string
	Limit    Limit
	Max      int
	Current  int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("limit %q exceeded for tenant %q: %d/%d", e.Limit, e.TenantID, e.Current, e.Max)
}

func (e *LimitExceededError) Unwrap() error { return ErrLimitExceeded }
