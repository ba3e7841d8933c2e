package hospital

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/pkg/pagination"
)

// -- Mock Repository --

type mockRepo struct {
	hospitals  map[uuid.UUID]*Hospital
	dependents map[uuid.UUID]Dependents
	deleteErr  error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		hospitals:  make(map[uuid.UUID]*Hospital),
		dependents: make(map[uuid.UUID]Dependents),
	}
}

func (m *mockRepo) Create(_ context.Context, h *Hospital) error {
	h.ID = uuid.New()
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	m.hospitals[h.ID] = h
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Hospital, error) {
	h, ok := m.hospitals[id]
	if !ok {
		return nil, apperr.NotFound("Hôpital introuvable")
	}
	cp := *h
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, h *Hospital) error {
	if _, ok := m.hospitals[h.ID]; !ok {
		return apperr.NotFound("Hôpital introuvable")
	}
	m.hospitals[h.ID] = h
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.hospitals[id]; !ok {
		return apperr.NotFound("Hôpital introuvable")
	}
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.hospitals, id)
	return nil
}

func (m *mockRepo) Search(_ context.Context, f Filter, limit, offset int) ([]*Hospital, int, error) {
	var result []*Hospital
	for _, h := range m.hospitals {
		if f.ID != nil && h.ID != *f.ID {
			continue
		}
		if f.Actif != nil && h.Actif != *f.Actif {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(h.Nom), strings.ToLower(f.Search)) {
			continue
		}
		result = append(result, h)
	}
	total := len(result)
	if offset >= len(result) {
		return []*Hospital{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockRepo) CountDependents(_ context.Context, id uuid.UUID) (Dependents, error) {
	if _, ok := m.hospitals[id]; !ok {
		return Dependents{}, apperr.NotFound("Hôpital introuvable")
	}
	return m.dependents[id], nil
}

type passthroughTx struct{ calls int }

func (p *passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

// -- Helpers --

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, &passthroughTx{}), repo
}

func adminCtx() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{ID: uuid.New(), Role: auth.RoleAdmin})
}

func staffCtx(hospitalID uuid.UUID, role auth.Role) context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{ID: uuid.New(), Role: role, HospitalID: &hospitalID})
}

func strPtr(s string) *string { return &s }

// -- Tests --

func TestService_Create(t *testing.T) {
	svc, _ := newTestService()

	h, err := svc.Create(adminCtx(), Input{Nom: strPtr("  Hôpital Principal de Dakar "), Email: strPtr("contact@hpd.sn")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.Nom != "Hôpital Principal de Dakar" {
		t.Errorf("expected trimmed name, got %q", h.Nom)
	}
	if !h.Actif {
		t.Error("new hospitals should be active")
	}
}

func TestService_Create_Validation(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		name string
		in   Input
	}{
		{"missing nom", Input{}},
		{"blank nom", Input{Nom: strPtr("   ")}},
		{"bad email", Input{Nom: strPtr("Fann"), Email: strPtr("not-an-email")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(adminCtx(), tt.in)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_Create_NonAdminForbidden(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(staffCtx(uuid.New(), auth.RoleMedecin), Input{Nom: strPtr("X")})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestService_List_ScopesNonAdmin(t *testing.T) {
	svc, _ := newTestService()
	a, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})
	_, _ = svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital B")})

	items, total, err := svc.List(adminCtx(), Filter{}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("admin should see 2 hospitals, got %d", total)
	}

	items, total, err = svc.List(staffCtx(a.ID, auth.RoleSecretaire), Filter{}, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if total != 1 || items[0].ID != a.ID {
		t.Errorf("staff should only see own hospital, got %d", total)
	}
}

func TestService_List_OtherHospitalForbidden(t *testing.T) {
	svc, _ := newTestService()
	other := uuid.New()
	_, _, err := svc.List(staffCtx(uuid.New(), auth.RoleMedecin), Filter{ID: &other}, pagination.Params{Page: 1, Limit: 10})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestService_Get_Scope(t *testing.T) {
	svc, _ := newTestService()
	a, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})
	b, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital B")})

	if _, err := svc.Get(staffCtx(a.ID, auth.RoleMedecin), a.ID); err != nil {
		t.Fatalf("own hospital: %v", err)
	}
	if _, err := svc.Get(staffCtx(a.ID, auth.RoleMedecin), b.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := newTestService()
	h, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A"), Adresse: strPtr("Dakar")})

	got, err := svc.Update(adminCtx(), h.ID, Input{Telephone: strPtr("+221 33 000 00 00")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Nom != "Hôpital A" || got.Adresse == nil || *got.Adresse != "Dakar" {
		t.Errorf("unset fields should be preserved: %+v", got)
	}
	if got.Telephone == nil {
		t.Error("expected telephone to be set")
	}
}

func TestService_SetActive(t *testing.T) {
	svc, _ := newTestService()
	h, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})

	got, err := svc.SetActive(adminCtx(), h.ID, false)
	if err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if got.Actif {
		t.Error("expected hospital to be deactivated")
	}
}

func TestService_Delete_WithDependentsConflicts(t *testing.T) {
	svc, repo := newTestService()
	h, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})
	repo.dependents[h.ID] = Dependents{Users: 2}

	err := svc.Delete(adminCtx(), h.ID)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, ok := repo.hospitals[h.ID]; !ok {
		t.Error("hospital must not be deleted")
	}
}

func TestService_Delete_Empty(t *testing.T) {
	svc, repo := newTestService()
	h, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})

	if err := svc.Delete(adminCtx(), h.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := repo.hospitals[h.ID]; ok {
		t.Error("hospital should be deleted")
	}
}

func TestService_Delete_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.Delete(adminCtx(), uuid.New()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestService_Delete_FormularyOnlyConflicts(t *testing.T) {
	svc, repo := newTestService()
	h, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})
	repo.dependents[h.ID] = Dependents{Medicaments: 3}

	if err := svc.Delete(adminCtx(), h.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, ok := repo.hospitals[h.ID]; !ok {
		t.Error("hospital should not be deleted")
	}
}

func TestService_Delete_ForeignKeyViolationIsConflict(t *testing.T) {
	svc, repo := newTestService()
	h, _ := svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})
	repo.deleteErr = apperr.Validation("Référence invalide")

	if err := svc.Delete(adminCtx(), h.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
