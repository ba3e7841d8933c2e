package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Rendez-vous introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const appointmentCols = `id, patient_id, medecin_id, hopital_id, to_char(date_rdv, 'YYYY-MM-DD'), heure,
	motif, notes, statut, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.MedecinID, &a.HopitalID, &a.DateRdv, &a.Heure,
		&a.Motif, &a.Notes, &a.Statut, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO rendez_vous (patient_id, medecin_id, hopital_id, date_rdv, heure, motif, notes, statut)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		a.PatientID, a.MedecinID, a.HopitalID, a.DateRdv, a.Heure, a.Motif, a.Notes, a.Statut)
	return db.TranslateError(row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.conn(ctx).QueryRow(ctx, `SELECT `+appointmentCols+` FROM rendez_vous WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return a, nil
}

func (r *repoPG) Update(ctx context.Context, a *Appointment) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE rendez_vous SET medecin_id = $2, date_rdv = $3::date, heure = $4, motif = $5, notes = $6,
			statut = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		a.ID, a.MedecinID, a.DateRdv, a.Heure, a.Motif, a.Notes, a.Statut)
	return db.TranslateError(row.Scan(&a.UpdatedAt), notFoundMsg)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM rendez_vous WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err, notFoundMsg)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	q := db.NewSearchQuery("rendez_vous", appointmentCols)
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
	if f.Date != nil {
		q.Add("date_rdv = ?::date", f.Date.Format("2006-01-02"))
	}
	q.OrderBy("date_rdv ASC, heure ASC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CancelPendingBefore(ctx context.Context, day time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE rendez_vous SET statut = 'CANCELLED', updated_at = NOW()
		WHERE statut = 'PENDING' AND date_rdv < $1::date`, day.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
