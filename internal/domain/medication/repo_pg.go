package medication

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Médicament introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const medCols = `id, nom, dosage, frequence, duree, instructions, patient_id, consultation_id,
	hopital_id, actif, created_at, updated_at`

func scanMedication(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.Nom, &m.Dosage, &m.Frequence, &m.Duree, &m.Instructions, &m.PatientID, &m.ConsultationID,
		&m.HopitalID, &m.Actif, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medication) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medicaments (nom, dosage, frequence, duree, instructions, patient_id, consultation_id, hopital_id, actif)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		m.Nom, m.Dosage, m.Frequence, m.Duree, m.Instructions, m.PatientID, m.ConsultationID, m.HopitalID, m.Actif)
	return db.TranslateError(row.Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := scanMedication(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medicaments WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return m, nil
}

func (r *repoPG) Update(ctx context.Context, m *Medication) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE medicaments SET nom = $2, dosage = $3, frequence = $4, duree = $5, instructions = $6,
			patient_id = $7, consultation_id = $8, actif = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		m.ID, m.Nom, m.Dosage, m.Frequence, m.Duree, m.Instructions,
		m.PatientID, m.ConsultationID, m.Actif)
	return db.TranslateError(row.Scan(&m.UpdatedAt), notFoundMsg)
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Medication, int, error) {
	q := db.NewSearchQuery("medicaments", medCols)
	if f.HopitalID != nil {
		q.AddEqual("hopital_id", *f.HopitalID)
	}
	if f.PatientID != nil {
		q.AddEqual("patient_id", *f.PatientID)
	}
	if f.ConsultationID != nil {
		q.AddEqual("consultation_id", *f.ConsultationID)
	}
	actif := true
	if f.Actif != nil {
		actif = *f.Actif
	}
	q.AddEqual("actif", actif)
	q.AddSearch(f.Search, "nom")
	q.OrderBy("created_at DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Medication{}
	for rows.Next() {
		m, err := scanMedication(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
