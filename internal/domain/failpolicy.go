package domain

// FailurePolicy selects what a guard does when its backing store is
// unreachable. Identity verification and tenant scoping are always
// fail-closed; entitlement checks default to fail-open so a config store
// outage degrades to full access instead of a platform-wide lockout.
type FailurePolicy int

const (
	FailClosed FailurePolicy = iota
	FailOpen
)

func (p FailurePolicy) String() string {
	if p == FailOpen {
		return "fail_open"
	}
	return "fail_closed"
}
