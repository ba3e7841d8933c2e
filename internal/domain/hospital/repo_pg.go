package hospital

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Hôpital introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const hospitalCols = `id, nom, adresse, telephone, email, actif, created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Nom, &h.Adresse, &h.Telephone, &h.Email, &h.Actif, &h.CreatedAt, &h.UpdatedAt)
	return &h, err
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO hopitaux (nom, adresse, telephone, email, actif)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		h.Nom, h.Adresse, h.Telephone, h.Email, h.Actif)
	return db.TranslateError(row.Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := scanHospital(r.conn(ctx).QueryRow(ctx, `SELECT `+hospitalCols+` FROM hopitaux WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return h, nil
}

func (r *repoPG) Update(ctx context.Context, h *Hospital) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE hopitaux SET nom = $2, adresse = $3, telephone = $4, email = $5, actif = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		h.ID, h.Nom, h.Adresse, h.Telephone, h.Email, h.Actif)
	return db.TranslateError(row.Scan(&h.UpdatedAt), notFoundMsg)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM hopitaux WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err, notFoundMsg)
	}
	if tag.RowsAffected() == 0 {
		return db.TranslateError(pgx.ErrNoRows, notFoundMsg)
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Hospital, int, error) {
	q := db.NewSearchQuery("hopitaux", hospitalCols)
	if f.ID != nil {
		q.AddEqual("id", *f.ID)
	}
	if f.Actif != nil {
		q.AddEqual("actif", *f.Actif)
	}
	q.AddSearch(f.Search, "nom", "adresse", "email")
	q.OrderBy("nom ASC")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, q.CountSQL(), q.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, q.DataSQL(), q.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []*Hospital{}
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}

// CountDependents counts every row referencing the hospital. It locks the
// hospital row so a concurrent insert cannot slip in between the count and
// the delete.
func (r *repoPG) CountDependents(ctx context.Context, id uuid.UUID) (Dependents, error) {
	var d Dependents
	var locked uuid.UUID
	if err := r.conn(ctx).QueryRow(ctx, `SELECT id FROM hopitaux WHERE id = $1 FOR UPDATE`, id).Scan(&locked); err != nil {
		return d, db.TranslateError(err, notFoundMsg)
	}
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE hopital_id = $1),
			(SELECT COUNT(*) FROM patients WHERE hopital_id = $1),
			(SELECT COUNT(*) FROM consultations WHERE hopital_id = $1),
			(SELECT COUNT(*) FROM rendez_vous WHERE hopital_id = $1),
			(SELECT COUNT(*) FROM medicaments WHERE hopital_id = $1)`, id).
		Scan(&d.Users, &d.Patients, &d.Consultations, &d.RendezVous, &d.Medicaments)
	return d, err
}
