package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/senemedecine/api/internal/platform/db"
)

const notFoundMsg = "Utilisateur introuvable"

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, email, password_hash, nom, prenom, role, hopital_id, specialite,
	telephone, actif, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nom, &u.Prenom, &u.Role, &u.HopitalID, &u.Specialite,
		&u.Telephone, &u.Actif, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	row := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (email, password_hash, nom, prenom, role, hopital_id, specialite, telephone, actif)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		u.Email, u.PasswordHash, u.Nom, u.Prenom, u.Role, u.HopitalID, u.Specialite, u.Telephone, u.Actif)
	return db.TranslateError(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt), notFoundMsg)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, db.TranslateError(err, notFoundMsg)
	}
	return u, nil
}

func (r *repoPG) FindByEmail(ctx context.Context, email string) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+userCols+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, u *User) error {
	row := r.conn(ctx).QueryRow(ctx, `
		UPDATE users SET email = $2, nom = $3, prenom = $4, role = $5, hopital_id = $6,
			specialite = $7, telephone = $8, actif = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		u.ID, u.Email, u.Nom, u.Prenom, u.Role, u.HopitalID, u.Specialite, u.Telephone, u.Actif)
	return db.TranslateError(row.Scan(&u.UpdatedAt), notFoundMsg)
}

func (r *repoPG) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return db.TranslateError(pgx.ErrNoRows, notFoundMsg)
	}
	return nil
}

func (r *repoPG) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repoPG) Search(ctx context.Context, f Filter, limit, offset int) ([]*User, int, error) {
	q := db.NewSearchQuery("users", userCols)
	if f.HopitalID != nil {
		q.AddEqual("hopital_id", *f.HopitalID)
	}
	if f.Role != "" {
		q.AddEqual("role", f.Role)
	}
	if f.Actif != nil {
		q.AddEqual("actif", *f.Actif)
	}
	q.AddSearch(f.Search, "nom", "prenom", "email")
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

	items := []*User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, rows.Err()
}
