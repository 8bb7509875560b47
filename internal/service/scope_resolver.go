package service

import (
	"strings"

	"github.com/dsicola/academic-core-api/internal/models"
)

// routeScopes maps write-route prefixes to the reopening scope that must
// authorize them. Matching is prefix-based on the route template, after the
// API version segment.
var routeScopes = []struct {
	prefix string
	scope  models.ReopeningScope
}{
	{"/lessons", models.ScopeAttendance},
	{"/attendance", models.ScopeAttendance},
	{"/evaluations", models.ScopeEvaluations},
	{"/grades", models.ScopeGrades},
	{"/enrollments", models.ScopeEnrollments},
	{"/teaching-units", models.ScopeGeneral},
}

// exam-scheme institutions register students per exam session rather than
// per class; their enrollment routes count as evaluation writes.
var examRouteScopes = []struct {
	prefix string
	scope  models.ReopeningScope
}{
	{"/enrollments", models.ScopeEvaluations},
}

// ScopeForRoute maps a write operation to the reopening scope category that
// must authorize it. The mapping is institution-type-sensitive because
// enrollment routes differ by type. Unknown routes require GENERAL.
func ScopeForRoute(route, method string, institutionType models.InstitutionType) models.ReopeningScope {
	if method == "GET" || method == "HEAD" || method == "OPTIONS" {
		return ""
	}
	path := route
	if i := strings.Index(path, "/api/v1"); i >= 0 {
		path = path[i+len("/api/v1"):]
	}
	if institutionType == models.InstitutionExam {
		for _, rs := range examRouteScopes {
			if strings.HasPrefix(path, rs.prefix) {
				return rs.scope
			}
		}
	}
	for _, rs := range routeScopes {
		if strings.HasPrefix(path, rs.prefix) {
			return rs.scope
		}
	}
	return models.ScopeGeneral
}

// PermissionCheck reports whether the window's scope set authorizes the
// given operation. GENERAL in the set authorizes everything.
func PermissionCheck(window *models.ReopeningWindow, route, method string, institutionType models.InstitutionType) bool {
	if window == nil {
		return false
	}
	scope := ScopeForRoute(route, method, institutionType)
	if scope == "" {
		return true
	}
	return window.HasScope(scope)
}
