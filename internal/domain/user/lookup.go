package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
)

// Reader is the lookup other packages use to validate references to users.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

// RequireMember loads id and checks it is an active account of hospitalID
// holding role. label names the reference in error messages, e.g. "médecin".
func RequireMember(ctx context.Context, r Reader, id uuid.UUID, role auth.Role, hospitalID uuid.UUID, label string) (*User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("Le %s indiqué est introuvable", label)
		}
		return nil, err
	}
	if u.Role != role || !u.Actif {
		return nil, apperr.Validation("Le %s indiqué n'est pas un compte %s actif", label, role)
	}
	if u.HopitalID == nil || *u.HopitalID != hospitalID {
		return nil, apperr.Validation("Le %s indiqué n'appartient pas à cet hôpital", label)
	}
	return u, nil
}
