package auth

import (
	"github.com/eduboost-lms/analytics-service/internal/models"
)

// Resources guarded by the admin policy table.
const (
	ResourceAdminAnalytics = "admin.analytics"
	ResourceAdminStats     = "admin.stats"
	ResourceAdminExport    = "admin.export"
)

// Authorizer answers whether a role may access a resource.
type Authorizer interface {
	Allowed(role models.UserRole, resource string) bool
}

// policyAuthorizer is a static allow-list keyed by resource. Anything not in
// the table is denied.
type policyAuthorizer struct {
	policies map[string][]models.UserRole
}

// NewAdminAuthorizer builds the policy table for the admin surface. Every
// admin resource is restricted to the admin role; the table keeps the mapping
// in one place so widening access is a data change, not a code change.
func NewAdminAuthorizer() Authorizer {
	return &policyAuthorizer{
		policies: map[string][]models.UserRole{
			ResourceAdminAnalytics: {models.RoleAdmin},
			ResourceAdminStats:     {models.RoleAdmin},
			ResourceAdminExport:    {models.RoleAdmin},
		},
	}
}

func (a *policyAuthorizer) Allowed(role models.UserRole, resource string) bool {
	allowed, ok := a.policies[resource]
	if !ok {
		return false
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
