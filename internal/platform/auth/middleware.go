package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ClaimsKey is the echo context key holding the validated *Claims.
const ClaimsKey = "jwt_claims"

// JWTMiddleware authenticates the bearer token, rejects revoked tokens
// (by JTI or by subject cut-off) and stores the resulting Principal on the request context.
func JWTMiddleware(issuer *TokenIssuer, revocations RevocationStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token d'authentification manquant")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Format d'autorisation invalide")
			}

			claims, err := issuer.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token invalide ou expiré")
			}

			ctx := c.Request().Context()
			if revocations != nil && claims.ID != "" {
				revoked, err := revocations.IsRevoked(ctx, claims.ID)
				if err != nil {
					return err
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token révoqué")
				}
			}
			if revocations != nil && claims.Subject != "" {
				cutoff, err := revocations.SubjectRevokedAt(ctx, claims.Subject)
				if err != nil {
					return err
				}
				if !cutoff.IsZero() && (claims.IssuedAt == nil || !claims.IssuedAt.Time.After(cutoff)) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Token révoqué")
				}
			}

			p, err := claims.Principal()
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Token invalide ou expiré")
			}

			c.Set(ClaimsKey, claims)
			c.SetRequest(c.Request().WithContext(WithPrincipal(ctx, p)))
			return next(c)
		}
	}
}

// ClaimsFromEcho returns the claims stored by JWTMiddleware.
func ClaimsFromEcho(c echo.Context) *Claims {
	claims, _ := c.Get(ClaimsKey).(*Claims)
	return claims
}
