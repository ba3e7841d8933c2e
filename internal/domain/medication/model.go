package medication

import (
	"time"

	"github.com/google/uuid"
)

// Medication is a drug prescribed to a patient, optionally during a
// consultation. Records without a patient are hospital formulary entries.
type Medication struct {
	ID             uuid.UUID  `json:"id"`
	Nom            string     `json:"nom"`
	Dosage         *string    `json:"dosage,omitempty"`
	Frequence      *string    `json:"frequence,omitempty"`
	Duree          *string    `json:"duree,omitempty"`
	Instructions   *string    `json:"instructions,omitempty"`
	PatientID      *uuid.UUID `json:"patient_id,omitempty"`
	ConsultationID *uuid.UUID `json:"consultation_id,omitempty"`
	HopitalID      uuid.UUID  `json:"hopital_id"`
	Actif          bool       `json:"actif"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Input is the create/update payload. Nil fields are left unchanged on update.
type Input struct {
	Nom            *string    `json:"nom"`
	Dosage         *string    `json:"dosage"`
	Frequence      *string    `json:"frequence"`
	Duree          *string    `json:"duree"`
	Instructions   *string    `json:"instructions"`
	PatientID      *uuid.UUID `json:"patient_id"`
	ConsultationID *uuid.UUID `json:"consultation_id"`
	HopitalID      *uuid.UUID `json:"hopital_id"`
	Actif          *bool      `json:"actif"`
}

type Filter struct {
	HopitalID      *uuid.UUID
	PatientID      *uuid.UUID
	ConsultationID *uuid.UUID
	Search         string
	// Actif defaults to true when nil.
	Actif *bool
}
