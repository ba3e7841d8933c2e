package hospital

import (
	"time"

	"github.com/google/uuid"
)

type Hospital struct {
	ID        uuid.UUID `json:"id"`
	Nom       string    `json:"nom"`
	Adresse   *string   `json:"adresse,omitempty"`
	Telephone *string   `json:"telephone,omitempty"`
	Email     *string   `json:"email,omitempty"`
	Actif     bool      `json:"actif"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the create/update payload. Nil fields are left unchanged on update.
type Input struct {
	Nom       *string `json:"nom"`
	Adresse   *string `json:"adresse"`
	Telephone *string `json:"telephone"`
	Email     *string `json:"email"`
	Actif     *bool   `json:"actif"`
}

// Filter narrows a hospital listing. ID restricts to a single hospital and is
// how non-admin scope is applied.
type Filter struct {
	ID     *uuid.UUID
	Search string
	Actif  *bool
}

// Dependents counts the rows that prevent a hard delete.
type Dependents struct {
	Users         int `json:"users"`
	Patients      int `json:"patients"`
	Consultations int `json:"consultations"`
	RendezVous    int `json:"rendez_vous"`
	Medicaments   int `json:"medicaments"`
}

func (d Dependents) Any() bool {
	return d.Users > 0 || d.Patients > 0 || d.Consultations > 0 || d.RendezVous > 0 || d.Medicaments > 0
}
