package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
)

// Scope is the set of clinical records a caller may see. A nil HospitalID
// means every hospital; a non-nil PatientID narrows to one patient.
type Scope struct {
	Principal  *auth.Principal
	HospitalID *uuid.UUID
	PatientID  *uuid.UUID
}

// ResolveScope builds the caller's scope for list queries and record checks.
// PATIENT callers are narrowed to the patient record linked to their
// account, and have no scope at all when none is linked.
func ResolveScope(ctx context.Context, r Reader, requestedHospital *uuid.UUID) (Scope, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return Scope{}, err
	}
	hosp, err := p.ResolveHospitalScope(requestedHospital)
	if err != nil {
		return Scope{}, err
	}
	sc := Scope{Principal: p, HospitalID: hosp}
	if !p.IsPatient() {
		return sc, nil
	}
	self, err := r.GetByUserID(ctx, p.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Scope{}, apperr.Forbidden("Aucun dossier patient associé à ce compte")
		}
		return Scope{}, err
	}
	sc.PatientID = &self.ID
	return sc, nil
}

// Allows reports whether a record of patientID in hospitalID is visible.
func (sc Scope) Allows(hospitalID, patientID uuid.UUID) bool {
	if sc.HospitalID != nil && *sc.HospitalID != hospitalID {
		return false
	}
	if sc.PatientID != nil && *sc.PatientID != patientID {
		return false
	}
	return true
}

// Authorize is Allows returning a forbidden error.
func (sc Scope) Authorize(hospitalID, patientID uuid.UUID) error {
	if sc.HospitalID != nil && *sc.HospitalID != hospitalID {
		return apperr.Forbidden("Accès refusé: ressource d'un autre hôpital")
	}
	if sc.PatientID != nil && *sc.PatientID != patientID {
		return apperr.Forbidden("Accès refusé: dossier d'un autre patient")
	}
	return nil
}

// NarrowPatient applies the scope to a requested patient filter. A PATIENT
// asking for someone else's records is forbidden.
func (sc Scope) NarrowPatient(requested *uuid.UUID) (*uuid.UUID, error) {
	if sc.PatientID == nil {
		return requested, nil
	}
	if requested != nil && *requested != *sc.PatientID {
		return nil, apperr.Forbidden("Accès refusé: dossier d'un autre patient")
	}
	id := *sc.PatientID
	return &id, nil
}

// ForRecord loads the patient a new clinical record is filed under and checks
// the caller may write for them. The record inherits the patient's hospital,
// so a requested hospital that differs is rejected.
func ForRecord(ctx context.Context, r Reader, p *auth.Principal, patientID, requestedHospital *uuid.UUID) (*Patient, error) {
	if patientID == nil {
		return nil, apperr.Validation("patient_id est requis")
	}
	pt, err := r.GetByID(ctx, *patientID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Validation("Le patient indiqué est introuvable")
		}
		return nil, err
	}
	if err := p.AuthorizeHospital(pt.HopitalID); err != nil {
		return nil, err
	}
	if p.IsPatient() && (pt.UserID == nil || *pt.UserID != p.ID) {
		return nil, apperr.Forbidden("Accès refusé: dossier d'un autre patient")
	}
	if !pt.Actif {
		return nil, apperr.Validation("Le dossier de ce patient est désactivé")
	}
	if requestedHospital != nil && *requestedHospital != pt.HopitalID {
		return nil, apperr.Validation("hopital_id ne correspond pas à l'hôpital du patient")
	}
	return pt, nil
}
