package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const dayLayout = "2006-01-02"

func (r *repoPG) CountHospitals(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM hopitaux WHERE actif`).Scan(&n)
	return n, err
}

func (r *repoPG) UsersByRole(ctx context.Context, hospital *uuid.UUID) (map[string]int, error) {
	return r.groupCount(ctx, `
		SELECT role, COUNT(*) FROM users
		WHERE actif AND ($1::uuid IS NULL OR hopital_id = $1)
		GROUP BY role`, hospital)
}

func (r *repoPG) CountPatients(ctx context.Context, hospital *uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM patients
		WHERE actif AND ($1::uuid IS NULL OR hopital_id = $1)`, hospital).Scan(&n)
	return n, err
}

func (r *repoPG) ConsultationsByStatus(ctx context.Context, hospital *uuid.UUID) (map[string]int, error) {
	return r.groupCount(ctx, `
		SELECT statut, COUNT(*) FROM consultations
		WHERE ($1::uuid IS NULL OR hopital_id = $1)
		GROUP BY statut`, hospital)
}

func (r *repoPG) Appointments(ctx context.Context, hospital *uuid.UUID, day time.Time) (int, int, error) {
	var onDay, pending int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE date_rdv = $2::date AND statut <> 'CANCELLED'),
			COUNT(*) FILTER (WHERE date_rdv >= $2::date AND statut = 'PENDING')
		FROM rendez_vous
		WHERE ($1::uuid IS NULL OR hopital_id = $1)`, hospital, day.Format(dayLayout)).Scan(&onDay, &pending)
	return onDay, pending, err
}

func (r *repoPG) PatientSummary(ctx context.Context, patientID uuid.UUID, day time.Time) (*PatientSummary, error) {
	var s PatientSummary
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM rendez_vous
				WHERE patient_id = $1 AND date_rdv >= $2::date AND statut <> 'CANCELLED'),
			(SELECT COUNT(*) FROM consultations WHERE patient_id = $1),
			(SELECT COUNT(*) FROM medicaments WHERE patient_id = $1 AND actif)`,
		patientID, day.Format(dayLayout)).Scan(&s.RendezVousAVenir, &s.Consultations, &s.MedicamentsActifs)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repoPG) groupCount(ctx context.Context, sql string, args ...interface{}) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}
