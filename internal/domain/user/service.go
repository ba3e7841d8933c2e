package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/db"
	"github.com/senemedecine/api/pkg/pagination"
)

type Service struct {
	repo     Repository
	tx       db.TxRunner
	sessions auth.RevocationStore
	tokenTTL time.Duration
	now      func() time.Time
}

// NewService wires the user service. sessions may be nil, in which case
// deactivated users keep their tokens until expiry.
func NewService(repo Repository, tx db.TxRunner, sessions auth.RevocationStore, tokenTTL time.Duration) *Service {
	return &Service{repo: repo, tx: tx, sessions: sessions, tokenTTL: tokenTTL, now: time.Now}
}

func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*User, int, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := p.ResolveHospitalScope(f.HopitalID)
	if err != nil {
		return nil, 0, err
	}
	f.HopitalID = scope
	return s.repo.Search(ctx, f, pg.Limit, pg.Offset())
}

// Get returns a user in the caller's hospital, or the caller themselves.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.ID == p.ID || p.IsAdmin() {
		return u, nil
	}
	if u.HopitalID == nil || !p.CanAccessHospital(*u.HopitalID) {
		return nil, apperr.Forbidden("Accès refusé: utilisateur d'un autre hôpital")
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if in.Password == nil {
		return nil, apperr.Validation("Le mot de passe est requis")
	}
	if in.Role == nil {
		return nil, apperr.Validation("Le rôle est requis")
	}

	u := &User{Actif: true}
	if err := apply(u, in); err != nil {
		return nil, err
	}
	if err := validate(u); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(*in.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update applies the non-nil fields. A password in the payload resets the
// user's password. The row and the password are written in one transaction.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasActive := u.Actif
	if err := apply(u, in); err != nil {
		return nil, err
	}
	if err := validate(u); err != nil {
		return nil, err
	}
	var hash string
	if in.Password != nil {
		if hash, err = auth.HashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		if hash != "" {
			if err := s.repo.UpdatePassword(ctx, id, hash); err != nil {
				return err
			}
		}
		if wasActive && !u.Actif {
			return s.revokeSessions(ctx, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Deactivate soft-deletes a user and revokes the tokens already issued to
// them. Admins cannot deactivate themselves.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("Accès réservé aux administrateurs")
	}
	if p.ID == id {
		return apperr.Forbidden("Vous ne pouvez pas supprimer votre propre compte")
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	u.Actif = false
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		return s.revokeSessions(ctx, id)
	})
}

func (s *Service) revokeSessions(ctx context.Context, id uuid.UUID) error {
	if s.sessions == nil {
		return nil
	}
	now := s.now()
	return s.sessions.RevokeSubject(ctx, id.String(), now, now.Add(s.tokenTTL))
}

func requireAdmin(ctx context.Context) error {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	if !p.IsAdmin() {
		return apperr.Forbidden("Accès réservé aux administrateurs")
	}
	return nil
}

func apply(u *User, in Input) error {
	if in.Email != nil {
		u.Email = normalizeEmail(*in.Email)
	}
	if in.Nom != nil {
		u.Nom = strings.TrimSpace(*in.Nom)
	}
	if in.Prenom != nil {
		u.Prenom = strings.TrimSpace(*in.Prenom)
	}
	if in.Role != nil {
		r, err := auth.ParseRole(*in.Role)
		if err != nil {
			return err
		}
		u.Role = r
	}
	if in.HopitalID != nil {
		id := *in.HopitalID
		u.HopitalID = &id
	}
	if in.Specialite != nil {
		u.Specialite = in.Specialite
	}
	if in.Telephone != nil {
		u.Telephone = in.Telephone
	}
	if in.Actif != nil {
		u.Actif = *in.Actif
	}
	return nil
}

func validate(u *User) error {
	if u.Email == "" {
		return apperr.Validation("L'email est requis")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return apperr.Validation("Email invalide")
	}
	if u.Nom == "" || u.Prenom == "" {
		return apperr.Validation("Le nom et le prénom sont requis")
	}
	if !u.Role.Valid() {
		return apperr.Validation("Rôle invalide")
	}
	if u.Role != auth.RoleAdmin && u.HopitalID == nil {
		return apperr.Validation("Un hôpital est requis pour le rôle %s", u.Role)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
