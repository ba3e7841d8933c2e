package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/senemedecine/api/internal/platform/auth"
)

// Audit logs every authenticated write on /api with who did it, to which
// resource, and the resulting status. Reads are not audited.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isWrite(req.Method) || !strings.HasPrefix(req.URL.Path, "/api/") {
				return next(c)
			}

			err := next(c)

			p := auth.PrincipalFromContext(c.Request().Context())
			if p == nil {
				return err
			}
			rid, _ := c.Get("request_id").(string)

			evt := logger.Info().
				Str("type", "audit").
				Str("request_id", rid).
				Str("user_id", p.ID.String()).
				Str("role", string(p.Role)).
				Str("action", actionFor(req.Method)).
				Str("resource", resourceOf(req.URL.Path)).
				Str("path", req.URL.Path).
				Int("status", c.Response().Status).
				Str("remote_ip", c.RealIP())
			if p.HospitalID != nil {
				evt = evt.Str("hopital_id", p.HospitalID.String())
			}
			evt.Msg("write")

			return err
		}
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodDelete:
		return "delete"
	default:
		return "update"
	}
}

// resourceOf returns the first path segment after /api/,
// e.g. "patients" for /api/patients/123.
func resourceOf(path string) string {
	rest := strings.TrimPrefix(path, "/api/")
	seg, _, _ := strings.Cut(rest, "/")
	if seg == "" {
		return "unknown"
	}
	return seg
}
