package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/db"
)

const defaultSeedPassword = "senemedecine2024"

type seedHospital struct {
	ID        uuid.UUID
	Nom       string
	Adresse   string
	Telephone string
	Email     string
}

type seedUser struct {
	ID         uuid.UUID
	Email      string
	Nom        string
	Prenom     string
	Role       auth.Role
	HopitalID  *uuid.UUID
	Specialite string
}

type seedPatient struct {
	ID            uuid.UUID
	Numero        string
	Nom           string
	Prenom        string
	DateNaissance string
	Sexe          string
	GroupeSanguin string
	HopitalID     uuid.UUID
	MedecinID     uuid.UUID
	UserID        *uuid.UUID
}

type seedAppointment struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	MedecinID uuid.UUID
	HopitalID uuid.UUID
	// DaysAhead is relative to the seed date.
	DaysAhead int
	Heure     string
	Motif     string
	Statut    string
}

var (
	hopitalDakar  = uuid.MustParse("6b1f0a3e-1c2d-4e5f-8a9b-000000000001")
	hopitalThies  = uuid.MustParse("6b1f0a3e-1c2d-4e5f-8a9b-000000000002")
	adminID       = uuid.MustParse("7c2e1b4f-2d3e-4f60-9bac-000000000001")
	medecinDakar  = uuid.MustParse("7c2e1b4f-2d3e-4f60-9bac-000000000002")
	medecinThies  = uuid.MustParse("7c2e1b4f-2d3e-4f60-9bac-000000000003")
	secretDakar   = uuid.MustParse("7c2e1b4f-2d3e-4f60-9bac-000000000004")
	secretThies   = uuid.MustParse("7c2e1b4f-2d3e-4f60-9bac-000000000005")
	patientUserID = uuid.MustParse("7c2e1b4f-2d3e-4f60-9bac-000000000006")
	patientDiallo = uuid.MustParse("8d3f2c50-3e4f-4071-acbd-000000000001")
	patientNdiaye = uuid.MustParse("8d3f2c50-3e4f-4071-acbd-000000000002")
	patientFall   = uuid.MustParse("8d3f2c50-3e4f-4071-acbd-000000000003")
)

var demoHospitals = []seedHospital{
	{hopitalDakar, "Hôpital Principal de Dakar", "1 Avenue Nelson Mandela, Dakar", "+221 33 839 50 50", "contact@hpd.sn"},
	{hopitalThies, "Centre Hospitalier Régional de Thiès", "Route de Dakar, Thiès", "+221 33 951 10 04", "contact@chr-thies.sn"},
}

var demoUsers = []seedUser{
	{adminID, "admin@senemedecine.sn", "Sow", "Aminata", auth.RoleAdmin, nil, ""},
	{medecinDakar, "m.diop@hpd.sn", "Diop", "Moussa", auth.RoleMedecin, &hopitalDakar, "Cardiologie"},
	{medecinThies, "f.ba@chr-thies.sn", "Ba", "Fatou", auth.RoleMedecin, &hopitalThies, "Pédiatrie"},
	{secretDakar, "secretariat@hpd.sn", "Sarr", "Awa", auth.RoleSecretaire, &hopitalDakar, ""},
	{secretThies, "secretariat@chr-thies.sn", "Gueye", "Ibrahima", auth.RoleSecretaire, &hopitalThies, ""},
	{patientUserID, "ousmane.diallo@example.sn", "Diallo", "Ousmane", auth.RolePatient, &hopitalDakar, ""},
}

var demoPatients = []seedPatient{
	{patientDiallo, "PAT-DEMO-000001", "Diallo", "Ousmane", "1985-03-12", "M", "O+", hopitalDakar, medecinDakar, &patientUserID},
	{patientNdiaye, "PAT-DEMO-000002", "Ndiaye", "Mariama", "1992-11-04", "F", "A+", hopitalDakar, medecinDakar, nil},
	{patientFall, "PAT-DEMO-000003", "Fall", "Cheikh", "2015-07-21", "M", "B-", hopitalThies, medecinThies, nil},
}

var demoAppointments = []seedAppointment{
	{uuid.MustParse("9e403d61-4f50-4182-bdce-000000000001"), patientDiallo, medecinDakar, hopitalDakar, 1, "09:00", "Suivi tension artérielle", "CONFIRMED"},
	{uuid.MustParse("9e403d61-4f50-4182-bdce-000000000002"), patientNdiaye, medecinDakar, hopitalDakar, 2, "10:30", "Douleurs thoraciques", "PENDING"},
	{uuid.MustParse("9e403d61-4f50-4182-bdce-000000000003"), patientFall, medecinThies, hopitalThies, 3, "08:15", "Vaccination", "CONFIRMED"},
}

// seedDemo inserts the demo data set. Rows that already exist are left
// untouched so the command can be run repeatedly. It returns the number of
// rows inserted.
func seedDemo(ctx context.Context, q db.Querier, passwordHash string, now time.Time) (int, error) {
	inserted := 0
	exec := func(what, sql string, args ...interface{}) error {
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("seed %s: %w", what, err)
		}
		inserted += int(tag.RowsAffected())
		return nil
	}

	for _, h := range demoHospitals {
		err := exec("hospital "+h.Nom, `
			INSERT INTO hopitaux (id, nom, adresse, telephone, email)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			h.ID, h.Nom, h.Adresse, h.Telephone, h.Email)
		if err != nil {
			return inserted, err
		}
	}

	for _, u := range demoUsers {
		err := exec("user "+u.Email, `
			INSERT INTO users (id, email, password_hash, nom, prenom, role, hopital_id, specialite)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''))
			ON CONFLICT (id) DO NOTHING`,
			u.ID, u.Email, passwordHash, u.Nom, u.Prenom, string(u.Role), u.HopitalID, u.Specialite)
		if err != nil {
			return inserted, err
		}
	}

	for _, p := range demoPatients {
		err := exec("patient "+p.Numero, `
			INSERT INTO patients (id, numero_patient, nom, prenom, date_naissance, sexe, groupe_sanguin,
				hopital_id, medecin_id, user_id)
			VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10)
			ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Numero, p.Nom, p.Prenom, p.DateNaissance, p.Sexe, p.GroupeSanguin,
			p.HopitalID, p.MedecinID, p.UserID)
		if err != nil {
			return inserted, err
		}
	}

	for _, a := range demoAppointments {
		day := now.AddDate(0, 0, a.DaysAhead).Format("2006-01-02")
		err := exec("appointment "+a.Motif, `
			INSERT INTO rendez_vous (id, patient_id, medecin_id, hopital_id, date_rdv, heure, motif, statut)
			VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8)
			ON CONFLICT DO NOTHING`,
			a.ID, a.PatientID, a.MedecinID, a.HopitalID, day, a.Heure, a.Motif, a.Statut)
		if err != nil {
			return inserted, err
		}
	}

	return inserted, nil
}
