package imaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Association DICOM introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const assocCols = `id, consultation_id, orthanc_study_id, description, created_by, created_at, updated_at`

func scanAssociation(row pgx.Row) (*Association, error) {
	var a Association
	err := row.Scan(&a.ID, &a.ConsultationID, &a.OrthancStudyID, &a.Description, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Association) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO consultation_dicom (consultation_id, orthanc_study_id, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		a.ConsultationID, a.OrthancStudyID, a.Description, a.CreatedBy)
	return db.TranslateError(row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Association, error) {
	a, err := scanAssociation(r.conn(ctx).QueryRow(ctx, `SELECT `+assocCols+` FROM consultation_dicom WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return a, nil
}

func (r *repoPG) ListByConsultation(ctx context.Context, consultationID uuid.UUID) ([]*Association, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+assocCols+` FROM consultation_dicom
		WHERE consultation_id = $1
		ORDER BY created_at DESC`, consultationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*Association{}
	for rows.Next() {
		a, err := scanAssociation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM consultation_dicom WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err, notFoundMsg)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}
