package hospital

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/db"
	"github.com/senemedecine/api/pkg/pagination"
)

type Service struct {
	repo Repository
	tx   db.TxRunner
}

func NewService(repo Repository, tx db.TxRunner) *Service {
	return &Service{repo: repo, tx: tx}
}

// List returns hospitals visible to the caller: all for admins, only their
// own otherwise.
func (s *Service) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Hospital, int, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, 0, err
	}
	scope, err := p.ResolveHospitalScope(f.ID)
	if err != nil {
		return nil, 0, err
	}
	f.ID = scope
	return s.repo.Search(ctx, f, pg.Limit, pg.Offset())
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if err := p.AuthorizeHospital(id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*Hospital, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	h := &Hospital{Actif: true}
	if in.Nom == nil {
		return nil, apperr.Validation("Le nom de l'hôpital est requis")
	}
	apply(h, in)
	if err := validate(h); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Hospital, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(h, in)
	if err := validate(h); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// SetActive is the soft alternative to Delete.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, actif bool) (*Hospital, error) {
	return s.Update(ctx, id, Input{Actif: &actif})
}

// Delete hard-deletes a hospital nothing references anymore.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.tx.InTx(ctx, func(ctx context.Context) error {
		deps, err := s.repo.CountDependents(ctx, id)
		if err != nil {
			return err
		}
		if deps.Any() {
			return apperr.Conflict("Impossible de supprimer un hôpital ayant %d utilisateur(s), %d patient(s) et %d médicament(s) rattachés; désactivez-le",
				deps.Users, deps.Patients, deps.Medicaments)
		}
		// A row referencing the hospital that is not counted above still
		// blocks the delete through its foreign key.
		if err := s.repo.Delete(ctx, id); err != nil {
			if errors.Is(err, apperr.ErrValidation) {
				return apperr.Conflict("Impossible de supprimer un hôpital ayant des données rattachées; désactivez-le")
			}
			return err
		}
		return nil
	})
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

func apply(h *Hospital, in Input) {
	if in.Nom != nil {
		h.Nom = strings.TrimSpace(*in.Nom)
	}
	if in.Adresse != nil {
		h.Adresse = in.Adresse
	}
	if in.Telephone != nil {
		h.Telephone = in.Telephone
	}
	if in.Email != nil {
		e := strings.TrimSpace(*in.Email)
		h.Email = &e
	}
	if in.Actif != nil {
		h.Actif = *in.Actif
	}
}

func validate(h *Hospital) error {
	if h.Nom == "" {
		return apperr.Validation("Le nom de l'hôpital est requis")
	}
	if h.Email != nil && *h.Email != "" {
		if _, err := mail.ParseAddress(*h.Email); err != nil {
			return apperr.Validation("Email invalide")
		}
	}
	return nil
}
