package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Patient introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const patientCols = `id, numero_patient, nom, prenom, to_char(date_naissance, 'YYYY-MM-DD'), sexe,
	telephone, email, adresse, groupe_sanguin, allergies, hopital_id, medecin_id, user_id,
	actif, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.NumeroPatient, &p.Nom, &p.Prenom, &p.DateNaissance, &p.Sexe,
		&p.Telephone, &p.Email, &p.Adresse, &p.GroupeSanguin, &p.Allergies, &p.HopitalID, &p.MedecinID, &p.UserID,
		&p.Actif, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (numero_patient, nom, prenom, date_naissance, sexe, telephone, email,
			adresse, groupe_sanguin, allergies, hopital_id, medecin_id, user_id, actif)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		p.NumeroPatient, p.Nom, p.Prenom, p.DateNaissance, p.Sexe, p.Telephone, p.Email,
		p.Adresse, p.GroupeSanguin, p.Allergies, p.HopitalID, p.MedecinID, p.UserID, p.Actif)
	return db.TranslateError(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return p, nil
}

func (r *repoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE patients SET numero_patient = $2, nom = $3, prenom = $4, date_naissance = $5::date, sexe = $6,
			telephone = $7, email = $8, adresse = $9, groupe_sanguin = $10, allergies = $11,
			hopital_id = $12, medecin_id = $13, user_id = $14, actif = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.NumeroPatient, p.Nom, p.Prenom, p.DateNaissance, p.Sexe,
		p.Telephone, p.Email, p.Adresse, p.GroupeSanguin, p.Allergies,
		p.HopitalID, p.MedecinID, p.UserID, p.Actif)
	return db.TranslateError(row.Scan(&p.UpdatedAt), notFoundMsg)
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	q := db.NewSearchQuery("patients", patientCols)
	if f.HopitalID != nil {
		q.AddEqual("hopital_id", *f.HopitalID)
	}
	if f.MedecinID != nil {
		q.AddEqual("medecin_id", *f.MedecinID)
	}
	if f.UserID != nil {
		q.AddEqual("user_id", *f.UserID)
	}
	actif := true
	if f.Actif != nil {
		actif = *f.Actif
	}
	q.AddEqual("actif", actif)
	q.AddSearch(f.Search, "nom", "prenom", "numero_patient")
	q.OrderBy("nom ASC, prenom ASC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
