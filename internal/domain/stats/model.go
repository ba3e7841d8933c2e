package stats

import "github.com/google/uuid"

const (
	ScopeGlobal   = "global"
	ScopeHospital = "hopital"
	ScopePatient  = "patient"
)

// Stats is the dashboard payload. Overview is set for staff, Patient for
// PATIENT accounts.
type Stats struct {
	Scope     string          `json:"scope"`
	HopitalID *uuid.UUID      `json:"hopital_id,omitempty"`
	Overview  *Overview       `json:"overview,omitempty"`
	Patient   *PatientSummary `json:"patient,omitempty"`
}

type Overview struct {
	// Hopitaux is only reported to admins.
	Hopitaux             *int           `json:"hopitaux,omitempty"`
	Utilisateurs         map[string]int `json:"utilisateurs"`
	Patients             int            `json:"patients"`
	Consultations        map[string]int `json:"consultations"`
	RendezVousAujourdhui int            `json:"rendez_vous_aujourdhui"`
	RendezVousEnAttente  int            `json:"rendez_vous_en_attente"`
}

type PatientSummary struct {
	RendezVousAVenir  int `json:"rendez_vous_a_venir"`
	Consultations     int `json:"consultations"`
	MedicamentsActifs int `json:"medicaments_actifs"`
}
