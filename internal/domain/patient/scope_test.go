package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
)

func TestScope_Allows(t *testing.T) {
	h, other := uuid.New(), uuid.New()
	self, stranger := uuid.New(), uuid.New()

	tests := []struct {
		name     string
		scope    Scope
		hospital uuid.UUID
		patient  uuid.UUID
		want     bool
	}{
		{"unrestricted", Scope{}, other, stranger, true},
		{"own hospital", Scope{HospitalID: &h}, h, stranger, true},
		{"other hospital", Scope{HospitalID: &h}, other, stranger, false},
		{"patient self", Scope{HospitalID: &h, PatientID: &self}, h, self, true},
		{"patient other", Scope{HospitalID: &h, PatientID: &self}, h, stranger, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scope.Allows(tt.hospital, tt.patient); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
			err := tt.scope.Authorize(tt.hospital, tt.patient)
			if tt.want != (err == nil) {
				t.Errorf("Authorize() = %v, want allowed=%v", err, tt.want)
			}
			if err != nil && !errors.Is(err, apperr.ErrForbidden) {
				t.Errorf("expected forbidden, got %v", err)
			}
		})
	}
}

func TestScope_NarrowPatient(t *testing.T) {
	self, other := uuid.New(), uuid.New()

	got, err := Scope{}.NarrowPatient(&other)
	if err != nil || got == nil || *got != other {
		t.Errorf("staff scope should keep the requested patient, got %v, %v", got, err)
	}

	sc := Scope{PatientID: &self}
	got, err = sc.NarrowPatient(nil)
	if err != nil || got == nil || *got != self {
		t.Errorf("patient scope should force self, got %v, %v", got, err)
	}
	if _, err := sc.NarrowPatient(&other); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestForRecord(t *testing.T) {
	repo := newMockRepo()
	h, other := uuid.New(), uuid.New()
	accountID := uuid.New()

	active := &Patient{NumeroPatient: "P-1", Nom: "A", Prenom: "B", HopitalID: h, UserID: &accountID, Actif: true}
	inactive := &Patient{NumeroPatient: "P-2", Nom: "C", Prenom: "D", HopitalID: h}
	for _, p := range []*Patient{active, inactive} {
		if err := repo.Create(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}
	doctor := &auth.Principal{ID: uuid.New(), Role: auth.RoleMedecin, HospitalID: &h}
	missing := uuid.New()

	tests := []struct {
		name     string
		p        *auth.Principal
		patient  *uuid.UUID
		hospital *uuid.UUID
		want     error
	}{
		{"ok", doctor, &active.ID, nil, nil},
		{"matching hospital", doctor, &active.ID, &h, nil},
		{"missing id", doctor, nil, nil, apperr.ErrValidation},
		{"unknown patient", doctor, &missing, nil, apperr.ErrValidation},
		{"inactive patient", doctor, &inactive.ID, nil, apperr.ErrValidation},
		{"hospital mismatch", doctor, &active.ID, &other, apperr.ErrValidation},
		{"foreign staff", &auth.Principal{ID: uuid.New(), Role: auth.RoleMedecin, HospitalID: &other}, &active.ID, nil, apperr.ErrForbidden},
		{"patient self", &auth.Principal{ID: accountID, Role: auth.RolePatient, HospitalID: &h}, &active.ID, nil, nil},
		{"patient other", &auth.Principal{ID: uuid.New(), Role: auth.RolePatient, HospitalID: &h}, &active.ID, nil, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := ForRecord(context.Background(), repo, tt.p, tt.patient, tt.hospital)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if pt.ID != *tt.patient {
					t.Errorf("got patient %s", pt.ID)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
