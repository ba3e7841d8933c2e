package appointment

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
)

type Statut string

const (
	StatutConfirmed Statut = "CONFIRMED"
	StatutPending   Statut = "PENDING"
	StatutCancelled Statut = "CANCELLED"
)

func ParseStatut(s string) (Statut, error) {
	switch st := Statut(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatutConfirmed, StatutPending, StatutCancelled:
		return st, nil
	}
	return "", apperr.Validation("Statut de rendez-vous invalide: %q", s)
}

var heurePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Appointment is a rendez-vous between a patient and a doctor.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	PatientID uuid.UUID `json:"patient_id"`
	MedecinID uuid.UUID `json:"medecin_id"`
	HopitalID uuid.UUID `json:"hopital_id"`
	DateRdv   string    `json:"date_rdv"`
	Heure     string    `json:"heure"`
	Motif     *string   `json:"motif,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Statut    Statut    `json:"statut"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Input is the create/update payload. Nil fields are left unchanged on update.
type Input struct {
	PatientID *uuid.UUID `json:"patient_id"`
	MedecinID *uuid.UUID `json:"medecin_id"`
	HopitalID *uuid.UUID `json:"hopital_id"`
	DateRdv   *string    `json:"date_rdv"`
	Heure     *string    `json:"heure"`
	Motif     *string    `json:"motif"`
	Notes     *string    `json:"notes"`
	Statut    *string    `json:"statut"`
}

type Filter struct {
	HopitalID *uuid.UUID
	PatientID *uuid.UUID
	MedecinID *uuid.UUID
	Statut    Statut
	Date      *time.Time
}
