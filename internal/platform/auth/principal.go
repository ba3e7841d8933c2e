package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
)

type contextKey string

const PrincipalKey contextKey = "principal"

// Principal is the authenticated caller, decoded from the bearer token.
type Principal struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	HospitalID *uuid.UUID `json:"hopital_id,omitempty"`
}

func (p *Principal) IsAdmin() bool   { return p.Role == RoleAdmin }
func (p *Principal) IsPatient() bool { return p.Role == RolePatient }

// HasRole reports whether the principal holds one of roles.
func (p *Principal) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// CanAccessHospital is the hospital scoping rule: admins see every
// hospital, everyone else only their own.
func (p *Principal) CanAccessHospital(hospitalID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.HospitalID != nil && *p.HospitalID == hospitalID
}

// AuthorizeHospital returns a forbidden error when the hospital is out of scope.
func (p *Principal) AuthorizeHospital(hospitalID uuid.UUID) error {
	if !p.CanAccessHospital(hospitalID) {
		return apperr.Forbidden("Accès refusé: ressource d'un autre hôpital")
	}
	return nil
}

// ResolveHospitalScope returns the hospital filter a list query must apply.
// Admins get the requested hospital, or nil for all. Other roles always get
// their own hospital, and asking for another one is forbidden.
func (p *Principal) ResolveHospitalScope(requested *uuid.UUID) (*uuid.UUID, error) {
	if p.IsAdmin() {
		return requested, nil
	}
	if p.HospitalID == nil {
		return nil, apperr.Forbidden("Accès refusé: aucun hôpital associé à ce compte")
	}
	if requested != nil && *requested != *p.HospitalID {
		return nil, apperr.Forbidden("Accès refusé: ressource d'un autre hôpital")
	}
	own := *p.HospitalID
	return &own, nil
}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext returns the principal set by JWTMiddleware, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(PrincipalKey).(*Principal)
	return p
}

// RequirePrincipal is PrincipalFromContext for service code, which must
// never run unauthenticated.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p := PrincipalFromContext(ctx)
	if p == nil {
		return nil, apperr.Unauthorized("Authentification requise")
	}
	return p, nil
}
