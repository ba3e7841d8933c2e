package auth

import (
	"strings"

	"github.com/senemedecine/api/internal/platform/apperr"
)

// Role is a user's role within SeneMedecine.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleMedecin    Role = "MEDECIN"
	RoleSecretaire Role = "SECRETAIRE"
	RolePatient    Role = "PATIENT"
)

// StaffRoles are the roles working inside a hospital.
var StaffRoles = []Role{RoleAdmin, RoleMedecin, RoleSecretaire}

// AllRoles lists every role.
var AllRoles = []Role{RoleAdmin, RoleMedecin, RoleSecretaire, RolePatient}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMedecin, RoleSecretaire, RolePatient:
		return true
	}
	return false
}

// ParseRole accepts the role name in any case ("medecin", "MEDECIN").
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", apperr.Validation("Rôle invalide: %q", s)
	}
	return r, nil
}
