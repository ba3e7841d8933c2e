package consultation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
)

type Statut string

const (
	StatutScheduled  Statut = "SCHEDULED"
	StatutInProgress Statut = "IN_PROGRESS"
	StatutCompleted  Statut = "COMPLETED"
	StatutCancelled  Statut = "CANCELLED"
)

func ParseStatut(s string) (Statut, error) {
	switch st := Statut(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatutScheduled, StatutInProgress, StatutCompleted, StatutCancelled:
		return st, nil
	}
	return "", apperr.Validation("Statut de consultation invalide: %q", s)
}

type Consultation struct {
	ID               uuid.UUID `json:"id"`
	PatientID        uuid.UUID `json:"patient_id"`
	MedecinID        uuid.UUID `json:"medecin_id"`
	HopitalID        uuid.UUID `json:"hopital_id"`
	DateConsultation time.Time `json:"date_consultation"`
	Motif            string    `json:"motif"`
	Diagnostic       *string   `json:"diagnostic,omitempty"`
	Traitement       *string   `json:"traitement,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	Statut           Statut    `json:"statut"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Input is the create/update payload. Nil fields are left unchanged on update.
type Input struct {
	PatientID        *uuid.UUID `json:"patient_id"`
	MedecinID        *uuid.UUID `json:"medecin_id"`
	HopitalID        *uuid.UUID `json:"hopital_id"`
	DateConsultation *time.Time `json:"date_consultation"`
	Motif            *string    `json:"motif"`
	Diagnostic       *string    `json:"diagnostic"`
	Traitement       *string    `json:"traitement"`
	Notes            *string    `json:"notes"`
	Statut           *string    `json:"statut"`
}

type Filter struct {
	HopitalID *uuid.UUID
	PatientID *uuid.UUID
	MedecinID *uuid.UUID
	Statut    Statut
	// DateFrom and DateTo are calendar days; both bounds are inclusive.
	DateFrom *time.Time
	DateTo   *time.Time
}
