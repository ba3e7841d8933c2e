package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireRole allows the request only when the principal holds one of roles.
// ADMIN gets no implicit pass: routes open to admins list RoleAdmin.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFromContext(c.Request().Context())
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentification requise")
			}
			if !p.HasRole(roles...) {
				return echo.NewHTTPError(http.StatusForbidden, "Accès refusé: rôle insuffisant")
			}
			return next(c)
		}
	}
}

// RequireHospitalAccess checks the hospital named by the path parameter, or
// failing that by the "hopital_id" field of a JSON body, against the
// principal's scope. Requests naming no hospital pass through.
func RequireHospitalAccess(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFromContext(c.Request().Context())
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentification requise")
			}
			if p.IsAdmin() {
				return next(c)
			}

			raw := c.Param(param)
			if raw == "" {
				raw = hospitalFromBody(c)
			}
			if raw == "" {
				return next(c)
			}

			id, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "Identifiant d'hôpital invalide")
			}
			if !p.CanAccessHospital(id) {
				return echo.NewHTTPError(http.StatusForbidden, "Accès refusé: ressource d'un autre hôpital")
			}
			return next(c)
		}
	}
}

// hospitalFromBody peeks at the JSON body and restores it for the handler.
func hospitalFromBody(c echo.Context) string {
	req := c.Request()
	if req.Body == nil || req.ContentLength == 0 {
		return ""
	}
	body, err := io.ReadAll(req.Body)
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var probe struct {
		HopitalID string `json:"hopital_id"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return ""
	}
	return probe.HopitalID
}
