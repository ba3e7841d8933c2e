package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID            uuid.UUID  `json:"id"`
	NumeroPatient string     `json:"numero_patient"`
	Nom           string     `json:"nom"`
	Prenom        string     `json:"prenom"`
	DateNaissance *string    `json:"date_naissance,omitempty"`
	Sexe          *string    `json:"sexe,omitempty"`
	Telephone     *string    `json:"telephone,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Adresse       *string    `json:"adresse,omitempty"`
	GroupeSanguin *string    `json:"groupe_sanguin,omitempty"`
	Allergies     *string    `json:"allergies,omitempty"`
	HopitalID     uuid.UUID  `json:"hopital_id"`
	MedecinID     *uuid.UUID `json:"medecin_id,omitempty"`
	UserID        *uuid.UUID `json:"user_id,omitempty"`
	Actif         bool       `json:"actif"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Input is the create/update payload. Nil fields are left unchanged on update.
type Input struct {
	NumeroPatient *string    `json:"numero_patient"`
	Nom           *string    `json:"nom"`
	Prenom        *string    `json:"prenom"`
	DateNaissance *string    `json:"date_naissance"`
	Sexe          *string    `json:"sexe"`
	Telephone     *string    `json:"telephone"`
	Email         *string    `json:"email"`
	Adresse       *string    `json:"adresse"`
	GroupeSanguin *string    `json:"groupe_sanguin"`
	Allergies     *string    `json:"allergies"`
	HopitalID     *uuid.UUID `json:"hopital_id"`
	MedecinID     *uuid.UUID `json:"medecin_id"`
	UserID        *uuid.UUID `json:"user_id"`
	Actif         *bool      `json:"actif"`
}

type Filter struct {
	HopitalID *uuid.UUID
	MedecinID *uuid.UUID
	UserID    *uuid.UUID
	Search    string
	// Actif defaults to true when nil; deactivated patients are listed only
	// on request.
	Actif *bool
}
