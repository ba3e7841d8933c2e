package consultation

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Consultation introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const consultationCols = `id, patient_id, medecin_id, hopital_id, date_consultation, motif,
	diagnostic, traitement, notes, statut, created_at, updated_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var c Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.MedecinID, &c.HopitalID, &c.DateConsultation, &c.Motif,
		&c.Diagnostic, &c.Traitement, &c.Notes, &c.Statut, &c.CreatedAt, &c.UpdatedAt)
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Consultation) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultations (patient_id, medecin_id, hopital_id, date_consultation, motif,
			diagnostic, traitement, notes, statut)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		c.PatientID, c.MedecinID, c.HopitalID, c.DateConsultation, c.Motif,
		c.Diagnostic, c.Traitement, c.Notes, c.Statut)
	return db.TranslateError(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	c, err := scanConsultation(r.conn(ctx).QueryRow(ctx, `SELECT `+consultationCols+` FROM consultations WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return c, nil
}

func (r *repoPG) Update(ctx context.Context, c *Consultation) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE consultations SET medecin_id = $2, date_consultation = $3, motif = $4, diagnostic = $5,
			traitement = $6, notes = $7, statut = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		c.ID, c.MedecinID, c.DateConsultation, c.Motif, c.Diagnostic,
		c.Traitement, c.Notes, c.Statut)
	return db.TranslateError(row.Scan(&c.UpdatedAt), notFoundMsg)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err, notFoundMsg)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Consultation, int, error) {
	q := db.NewSearchQuery("consultations", consultationCols)
	if f.HopitalID != nil {
		q.AddEqual("hopital_id", *f.HopitalID)
	}
	if f.PatientID != nil {
		q.AddEqual("patient_id", *f.PatientID)
	}
	if f.MedecinID != nil {
		q.AddEqual("medecin_id", *f.MedecinID)
	}
	if f.Statut != "" {
		q.AddEqual("statut", f.Statut)
	}
	if f.DateFrom != nil {
		q.Add("date_consultation >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q.Add("date_consultation < ?", f.DateTo.AddDate(0, 0, 1))
	}
	q.OrderBy("date_consultation DESC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Consultation{}
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
