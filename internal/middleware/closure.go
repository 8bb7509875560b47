package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dsicola/academic-core-api/internal/models"
	"github.com/dsicola/academic-core-api/internal/service"
	appErrors "github.com/dsicola/academic-core-api/pkg/errors"
	"github.com/dsicola/academic-core-api/pkg/response"
)

type yearResolver interface {
	Resolve(ctx context.Context, tenantID string, refs service.WriteRefs) (*models.AcademicYear, error)
}

type activeWindowSource interface {
	ActiveWindow(ctx context.Context, tenantID, yearID string) (*models.ReopeningWindow, error)
}

type institutionConfigSource interface {
	FindByTenant(ctx context.Context, tenantID string) (*models.InstitutionConfig, error)
}

type auditRecorder interface {
	Record(ctx context.Context, log *models.AuditLog)
}

type gateMetrics interface {
	ObserveGate(decision, reason string)
}

// ClosureGate intercepts every academic write, resolves the academic year it
// touches and enforces the closed-year rules. The decision order is fixed:
// no resolvable year allows, ACTIVE allows, CLOSED requires either an
// in-scope active reopening window or the elevated bypass.
type ClosureGate struct {
	resolver       yearResolver
	windows        activeWindowSource
	configs        institutionConfigSource
	audit          auditRecorder
	metrics        gateMetrics
	overrideHeader string
	logger         *zap.Logger
}

// NewClosureGate constructs the gate.
func NewClosureGate(
	resolver yearResolver,
	windows activeWindowSource,
	configs institutionConfigSource,
	audit auditRecorder,
	metrics gateMetrics,
	overrideHeader string,
	logger *zap.Logger,
) *ClosureGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClosureGate{
		resolver:       resolver,
		windows:        windows,
		configs:        configs,
		audit:          audit,
		metrics:        metrics,
		overrideHeader: overrideHeader,
		logger:         logger,
	}
}

// Handler returns the gin middleware enforcing the gate.
func (g *ClosureGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		refs := extractWriteRefs(c)
		year, err := g.resolver.Resolve(c.Request.Context(), claims.TenantID, refs)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic year"))
			c.Abort()
			return
		}
		if year == nil {
			// Nothing to attribute the write to; existence checks belong to
			// the handler.
			g.metrics.ObserveGate("allow", "unresolved")
			c.Next()
			return
		}
		if year.Status == models.YearStatusActive {
			g.metrics.ObserveGate("allow", "active_year")
			c.Next()
			return
		}

		// CLOSED year. The explicit operator override bypasses everything and
		// is the single ungated path; every use is verbosely audited.
		if c.GetHeader(g.overrideHeader) == "true" {
			caps := Capabilities(c)
			if !caps.Has(models.CapabilityGateBypass) {
				g.metrics.ObserveGate("reject", "bypass_without_capability")
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "closure override requires the gate:bypass capability"))
				c.Abort()
				return
			}
			g.auditBypass(c, claims, year)
			g.metrics.ObserveGate("allow", "bypass")
			c.Next()
			return
		}

		window, err := g.windows.ActiveWindow(c.Request.Context(), claims.TenantID, year.ID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if window == nil {
			g.metrics.ObserveGate("reject", "no_window")
			response.Error(c, appErrors.ErrYearClosed)
			c.Abort()
			return
		}

		cfg, err := g.configs.FindByTenant(c.Request.Context(), claims.TenantID)
		if err != nil {
			cfg = models.DefaultInstitutionConfig(claims.TenantID)
		}
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		if !service.PermissionCheck(window, route, c.Request.Method, cfg.InstitutionType) {
			g.metrics.ObserveGate("reject", "out_of_scope")
			response.Error(c, appErrors.Clone(appErrors.ErrYearClosed, fmt.Sprintf(
				"the active reopening window does not cover this operation; a window with the %s scope is required",
				service.ScopeForRoute(route, c.Request.Method, cfg.InstitutionType))))
			c.Abort()
			return
		}

		// In scope: the audit event must land before the write proceeds.
		g.auditScopedWrite(c, claims, year, window, route)
		g.metrics.ObserveGate("allow", "scoped_window")
		c.Next()
	}
}

func (g *ClosureGate) auditScopedWrite(c *gin.Context, claims *models.JWTClaims, year *models.AcademicYear, window *models.ReopeningWindow, route string) {
	g.audit.Record(c.Request.Context(), &models.AuditLog{
		TenantID:   claims.TenantID,
		UserID:     &claims.UserID,
		Action:     models.AuditActionScopedWrite,
		Resource:   "reopening_window",
		ResourceID: &window.ID,
		Note:       fmt.Sprintf("scoped write on closed year %s via %s %s, scopes %v", year.ID, c.Request.Method, route, window.Scopes),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
}

func (g *ClosureGate) auditBypass(c *gin.Context, claims *models.JWTClaims, year *models.AcademicYear) {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	g.audit.Record(c.Request.Context(), &models.AuditLog{
		TenantID:   claims.TenantID,
		UserID:     &claims.UserID,
		Action:     models.AuditActionGateBypass,
		Resource:   "academic_year",
		ResourceID: &year.ID,
		Note:       fmt.Sprintf("closure gate bypassed via %s header on %s %s by role %s", g.overrideHeader, c.Request.Method, route, claims.Role),
		IPAddress:  c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	g.logger.Sugar().Warnw("closure gate bypassed",
		"tenant_id", claims.TenantID, "user_id", claims.UserID,
		"year_id", year.ID, "route", route, "method", c.Request.Method)
}

// extractWriteRefs gathers entity references from path parameters, query
// parameters and the JSON body. The body is restored so handler binding
// still works downstream.
func extractWriteRefs(c *gin.Context) service.WriteRefs {
	refs := service.WriteRefs{}

	pick := func(names ...string) string {
		for _, name := range names {
			if v := c.Param(name); v != "" {
				return v
			}
			if v := c.Query(name); v != "" {
				return v
			}
		}
		return ""
	}
	refs.YearID = pick("yearId", "year_id")
	refs.UnitID = pick("unitId", "unit_id")
	refs.GroupID = pick("groupId", "group_id", "class_group_id")
	refs.LessonID = pick("lessonId", "lesson_id")
	refs.MarkID = pick("markId", "mark_id")
	refs.EvaluationID = pick("evaluationId", "evaluation_id")
	refs.EnrollmentID = pick("enrollmentId", "enrollment_id")

	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		raw, err := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(raw))
		if err == nil && len(raw) > 0 {
			var body struct {
				YearID       string `json:"year_id"`
				UnitID       string `json:"unit_id"`
				ClassGroupID string `json:"class_group_id"`
				LessonID     string `json:"lesson_id"`
				MarkID       string `json:"mark_id"`
				EvaluationID string `json:"evaluation_id"`
				EnrollmentID string `json:"enrollment_id"`
			}
			if json.Unmarshal(raw, &body) == nil {
				if refs.YearID == "" {
					refs.YearID = body.YearID
				}
				if refs.UnitID == "" {
					refs.UnitID = body.UnitID
				}
				if refs.GroupID == "" {
					refs.GroupID = body.ClassGroupID
				}
				if refs.LessonID == "" {
					refs.LessonID = body.LessonID
				}
				if refs.MarkID == "" {
					refs.MarkID = body.MarkID
				}
				if refs.EvaluationID == "" {
					refs.EvaluationID = body.EvaluationID
				}
				if refs.EnrollmentID == "" {
					refs.EnrollmentID = body.EnrollmentID
				}
			}
		}
	}
	return refs
}
