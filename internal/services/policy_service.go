package services

import (
	"strings"

	"github.com/casbin/casbin/v2"

	"github.com/you/accountsvc/domain"
)

// rolePrefix is the subject prefix the route middleware matches on.
const rolePrefix = "role_"

// PolicyServiceImpl implements domain.PolicyService on top of Casbin.
// Subjects are stored qualified with rolePrefix; callers may pass the bare
// role name or the qualified form.
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service. *casbin.Enforcer satisfies
// domain.CasbinEnforcer directly.
func NewPolicyService(enforcer *casbin.Enforcer) domain.PolicyService {
	return NewPolicyServiceWithEnforcer(enforcer)
}

// NewPolicyServiceWithEnforcer creates a policy service from the interface,
// for testing.
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{enforcer: enforcer}
}

func qualifyRole(role string) string {
	if strings.HasPrefix(role, rolePrefix) {
		return role
	}
	return rolePrefix + role
}

func validatePolicyRule(role, resource, action string) error {
	var violations []string
	if strings.TrimSpace(role) == "" {
		violations = append(violations, "role is required")
	}
	if !strings.HasPrefix(resource, "/") {
		violations = append(violations, "resource must be an absolute path")
	}
	if strings.TrimSpace(action) == "" {
		violations = append(violations, "action is required")
	}
	if len(violations) > 0 {
		return domain.ValidationError(violations)
	}
	return nil
}

// AddPolicy implements domain.PolicyService. Re-adding an existing rule is a
// no-op and skips persistence.
func (p *PolicyServiceImpl) AddPolicy(role, resource, action string) error {
	if err := validatePolicyRule(role, resource, action); err != nil {
		return err
	}
	added, err := p.enforcer.AddPolicy(qualifyRole(role), resource, action)
	if err != nil {
		return err
	}
	if !added {
		return nil
	}
	return p.enforcer.SavePolicy()
}

// RemovePolicy implements domain.PolicyService. Removing an absent rule is a
// no-op and skips persistence.
func (p *PolicyServiceImpl) RemovePolicy(role, resource, action string) error {
	if err := validatePolicyRule(role, resource, action); err != nil {
		return err
	}
	removed, err := p.enforcer.RemovePolicy(qualifyRole(role), resource, action)
	if err != nil {
		return err
	}
	if !removed {
		return nil
	}
	return p.enforcer.SavePolicy()
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role, resource, action string) (bool, error) {
	return p.enforcer.Enforce(qualifyRole(role), resource, action)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, err := p.enforcer.GetPolicy()
	if err != nil {
		return [][]string{}
	}
	return policies
}
