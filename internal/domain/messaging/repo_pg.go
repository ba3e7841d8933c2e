package messaging

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Message introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const messageCols = `id, expediteur_id, destinataire_id, consultation_id, contenu, lu, created_at, updated_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ExpediteurID, &m.DestinataireID, &m.ConsultationID, &m.Contenu, &m.Lu,
		&m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Message) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO messages (expediteur_id, destinataire_id, consultation_id, contenu)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lu, created_at, updated_at`,
		m.ExpediteurID, m.DestinataireID, m.ConsultationID, m.Contenu)
	return db.TranslateError(row.Scan(&m.ID, &m.Lu, &m.CreatedAt, &m.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	m, err := scanMessage(r.conn(ctx).QueryRow(ctx, `SELECT `+messageCols+` FROM messages WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return m, nil
}

func (r *repoPG) MarkRead(ctx context.Context, m *Message) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE messages SET lu = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING lu, updated_at`, m.ID)
	return db.TranslateError(row.Scan(&m.Lu, &m.UpdatedAt), notFoundMsg)
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return db.TranslateError(err, notFoundMsg)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*Message, int, error) {
	q := db.NewSearchQuery("messages", messageCols)
	if f.Box == BoxSent {
		q.AddEqual("expediteur_id", f.UserID)
	} else {
		q.AddEqual("destinataire_id", f.UserID)
	}
	if f.Lu != nil {
		q.AddEqual("lu", *f.Lu)
	}
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

	items := []*Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE destinataire_id = $1 AND NOT lu`, userID).Scan(&n)
	return n, err
}
