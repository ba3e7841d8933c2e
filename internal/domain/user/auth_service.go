package user

import (
	"context"
	"time"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
)

const invalidCredentials = "Identifiants invalides"

// AuthService handles login, logout and password changes.
type AuthService struct {
	repo        Repository
	issuer      *auth.TokenIssuer
	revocations auth.RevocationStore
}

func NewAuthService(repo Repository, issuer *auth.TokenIssuer, revocations auth.RevocationStore) *AuthService {
	return &AuthService{repo: repo, issuer: issuer, revocations: revocations}
}

// Login authenticates by email, password and optional hospital. Unknown
// email, wrong password, wrong hospital and inactive account all fail with
// the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("Email et mot de passe requis")
	}

	candidates, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	u := pickAccount(candidates, req)

	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if !auth.CheckPassword(hash, req.Password) || u == nil || !u.Actif {
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	token, expiresAt, err := s.issuer.Issue(u.Principal())
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastLogin(ctx, u.ID); err != nil {
		return nil, err
	}
	now := time.Now()
	u.LastLoginAt = &now

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// pickAccount resolves which account an email refers to. With a hospital the
// account must belong to it. Without one, an account with no hospital wins,
// then a unique match; several hospital accounts are ambiguous.
func pickAccount(candidates []*User, req LoginRequest) *User {
	if req.HopitalID != nil {
		for _, u := range candidates {
			if u.HopitalID != nil && *u.HopitalID == *req.HopitalID {
				return u
			}
		}
		return nil
	}
	for _, u := range candidates {
		if u.HopitalID == nil {
			return u
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context) (*User, error) {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !u.Actif {
		return nil, apperr.Unauthorized("Compte désactivé")
	}
	return u, nil
}

// Logout revokes the presented token until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return apperr.Unauthorized("Token invalide")
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *AuthService) ChangePassword(ctx context.Context, req PasswordChange) error {
	p, err := auth.RequirePrincipal(ctx)
	if err != nil {
		return err
	}
	u, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, req.CurrentPassword) {
		return apperr.Validation("Mot de passe actuel incorrect")
	}
	if req.NewPassword == req.CurrentPassword {
		return apperr.Validation("Le nouveau mot de passe doit être différent de l'ancien")
	}
	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, u.ID, hash)
}
