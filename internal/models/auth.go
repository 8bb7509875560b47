package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the caller roles recognised by the RBAC layer.
// Identity and role assignment live in an external service; this API only
// trusts the role carried by verified claims.
type UserRole string

const (
	RolePlatformOperator UserRole = "PLATFORM_OPERATOR"
	RoleAdmin            UserRole = "ADMIN"
	RoleSecretary        UserRole = "SECRETARY"
	RoleTeacher          UserRole = "TEACHER"
)

// Capability is a fine-grained permission resolved once per request from the
// caller's role and consumed uniformly by the gate and the validators,
// instead of ad-hoc role checks scattered across handlers.
type Capability string

const (
	CapabilityYearClose           Capability = "year:close"
	CapabilityYearManage          Capability = "year:manage"
	CapabilityReopeningManage     Capability = "reopening:manage"
	CapabilityGateBypass          Capability = "gate:bypass"
	CapabilityProgressionManage   Capability = "progression:manage"
	CapabilityProgressionOverride Capability = "progression:override"
	CapabilityAcademicWrite       Capability = "academic:write"
)

var roleCapabilities = map[UserRole][]Capability{
	RolePlatformOperator: {
		CapabilityYearClose, CapabilityYearManage, CapabilityReopeningManage,
		CapabilityGateBypass, CapabilityProgressionManage, CapabilityProgressionOverride,
		CapabilityAcademicWrite,
	},
	RoleAdmin: {
		CapabilityYearClose, CapabilityYearManage, CapabilityReopeningManage,
		CapabilityProgressionManage, CapabilityProgressionOverride, CapabilityAcademicWrite,
	},
	RoleSecretary: {
		CapabilityProgressionManage, CapabilityAcademicWrite,
	},
	RoleTeacher: {
		CapabilityAcademicWrite,
	},
}

// CapabilitySet is the resolved permission set for one request.
type CapabilitySet map[Capability]struct{}

// Has reports whether the set contains the capability.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// CapabilitiesForRole expands a role into its capability set.
func CapabilitiesForRole(role UserRole) CapabilitySet {
	caps := roleCapabilities[role]
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// JWTClaims represents the JWT payload issued by the external identity
// provider: authenticated caller, tenant and role, trusted as verified.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
