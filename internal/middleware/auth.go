package middleware

import (
	"net/http"
	"strings"

	"taskpoints-service/internal/model"
	"taskpoints-service/internal/service"
	"taskpoints-service/pkg/jwtutil"
	"taskpoints-service/pkg/logger"
	"taskpoints-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Extract the token
		tokenString := parts[1]

		// Validate the token
		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Error("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Store user info in context for later use
		c.Set("uid", claims.UID)
		c.Set("email", claims.Email)
		c.Set("is_super_admin", claims.IsSuperAdmin)
		c.Set("profile_complete", claims.ProfileComplete)

		// Store tenant information if available
		if claims.CompanyID != "" {
			c.Set("company_id", claims.CompanyID)
			c.Set("company_name", claims.CompanyName)
			c.Set("user_role", claims.Role)

			// Add tenant ID to request header for downstream services
			c.Request().Header.Set("X-Tenant-ID", claims.CompanyID)
			if claims.CompanyName != "" {
				c.Request().Header.Set("X-Tenant-Name", claims.CompanyName)
			}
			if claims.Role != "" {
				c.Request().Header.Set("X-User-Role", claims.Role)
			}

			log.Debug("Request authenticated with tenant context",
				zap.String("company_id", claims.CompanyID),
				zap.String("company_name", claims.CompanyName),
				zap.String("role", claims.Role))
		}

		// Token is valid, proceed with the request
		return next(c)
	}
}

// RequireRoles allows only callers whose role matches one of the given roles
// within the tenant on the route. Rejections carry the dashboard path the
// caller should be redirected to.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := service.Guard(guardInput(c, roles, false))
			if decision.Action != service.GuardAllow {
				prometheus.RecordAuthError("role_denied")
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":    "insufficient role",
					"redirect": decision.Target,
				})
			}
			return next(c)
		}
	}
}

// RequireSuperAdmin allows only the platform super-admin
func RequireSuperAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		decision := service.Guard(guardInput(c, nil, true))
		if decision.Action != service.GuardAllow {
			prometheus.RecordAuthError("superadmin_denied")
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":    "super admin access required",
				"redirect": decision.Target,
			})
		}
		return next(c)
	}
}

// guardInput reconstructs the route guard input from the claims AuthMiddleware
// stored on the context. AuthMiddleware must run first.
func guardInput(c echo.Context, roles []string, superAdmin bool) service.GuardInput {
	in := service.GuardInput{
		Authenticated:     c.Get("uid") != nil,
		RequiredRoles:     roles,
		RequireSuperAdmin: superAdmin,
	}
	if tenant := c.Param("companyID"); tenant != "" {
		in.RouteTenantID = tenant
	} else if companyID, ok := c.Get("company_id").(string); ok {
		in.RouteTenantID = companyID
	}
	if complete, ok := c.Get("profile_complete").(bool); ok && complete {
		profile := &model.UserProfile{
			UID:       c.Get("uid").(string),
			Role:      asString(c.Get("user_role")),
			CompanyID: asString(c.Get("company_id")),
		}
		if isSuper, ok := c.Get("is_super_admin").(bool); ok {
			profile.IsSuperAdmin = isSuper
		}
		in.Profile = profile
	}
	return in
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}
