package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/senemedecine/api/internal/domain/consultation"
	"github.com/senemedecine/api/internal/domain/patient"
	"github.com/senemedecine/api/internal/domain/user"
	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/pkg/pagination"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Message
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Message)}
}

func (m *mockRepo) Create(_ context.Context, msg *Message) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	msg.UpdatedAt = msg.CreatedAt
	cp := *msg
	m.items[msg.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Message, error) {
	msg, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Message introuvable")
	}
	cp := *msg
	return &cp, nil
}

func (m *mockRepo) MarkRead(_ context.Context, msg *Message) error {
	stored, ok := m.items[msg.ID]
	if !ok {
		return apperr.NotFound("Message introuvable")
	}
	stored.Lu = true
	msg.Lu = true
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return apperr.NotFound("Message introuvable")
	}
	delete(m.items, id)
	return nil
}

func (m *mockRepo) Search(_ context.Context, f Filter, limit, offset int) ([]*Message, int, error) {
	var result []*Message
	for _, msg := range m.items {
		owner := msg.DestinataireID
		if f.Box == BoxSent {
			owner = msg.ExpediteurID
		}
		if owner != f.UserID {
			continue
		}
		if f.Lu != nil && msg.Lu != *f.Lu {
			continue
		}
		result = append(result, msg)
	}
	total := len(result)
	if offset >= total {
		return []*Message{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return result[offset:end], total, nil
}

func (m *mockRepo) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	n := 0
	for _, msg := range m.items {
		if msg.DestinataireID == userID && !msg.Lu {
			n++
		}
	}
	return n, nil
}

type mockUsers map[uuid.UUID]*user.User

func (m mockUsers) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("Utilisateur introuvable")
	}
	return u, nil
}

type mockConsultations map[uuid.UUID]*consultation.Consultation

func (m mockConsultations) GetByID(_ context.Context, id uuid.UUID) (*consultation.Consultation, error) {
	c, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("Consultation introuvable")
	}
	return c, nil
}

type mockPatients map[uuid.UUID]*patient.Patient

func (m mockPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m[id]
	if !ok {
		return nil, apperr.NotFound("Patient introuvable")
	}
	return p, nil
}

func (m mockPatients) GetByUserID(_ context.Context, userID uuid.UUID) (*patient.Patient, error) {
	for _, p := range m {
		if p.UserID != nil && *p.UserID == userID {
			return p, nil
		}
	}
	return nil, apperr.NotFound("Patient introuvable")
}

// -- Fixture --

type fixture struct {
	svc           *Service
	repo          *mockRepo
	users         mockUsers
	consultations mockConsultations
	hospital      uuid.UUID
	doctor        *user.User
	secretary     *user.User
	outsider      *user.User
	admin         *user.User
}

func newFixture() *fixture {
	f := &fixture{
		repo:          newMockRepo(),
		users:         mockUsers{},
		consultations: mockConsultations{},
		hospital:      uuid.New(),
	}
	other := uuid.New()
	f.doctor = f.addUser(auth.RoleMedecin, &f.hospital)
	f.secretary = f.addUser(auth.RoleSecretaire, &f.hospital)
	f.outsider = f.addUser(auth.RoleMedecin, &other)
	f.admin = f.addUser(auth.RoleAdmin, nil)
	f.svc = NewService(f.repo, f.users, f.consultations, mockPatients{})
	return f
}

func (f *fixture) addUser(role auth.Role, hospital *uuid.UUID) *user.User {
	u := &user.User{ID: uuid.New(), Role: role, HopitalID: hospital, Actif: true}
	f.users[u.ID] = u
	return u
}

func ctxFor(u *user.User) context.Context {
	p := u.Principal()
	return auth.WithPrincipal(context.Background(), &p)
}

func strPtr(s string) *string { return &s }

func (f *fixture) send(t *testing.T, from, to *user.User, text string) *Message {
	t.Helper()
	m, err := f.svc.Create(ctxFor(from), Input{DestinataireID: &to.ID, Contenu: strPtr(text)})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	return m
}

// -- Tests --

func TestService_Create(t *testing.T) {
	f := newFixture()

	m := f.send(t, f.secretary, f.doctor, "  Le patient de 10h est arrivé  ")
	if m.ExpediteurID != f.secretary.ID || m.DestinataireID != f.doctor.ID {
		t.Errorf("unexpected parties: %+v", m)
	}
	if m.Contenu != "Le patient de 10h est arrivé" {
		t.Errorf("expected trimmed content, got %q", m.Contenu)
	}
	if m.Lu {
		t.Error("new messages must be unread")
	}
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture()
	inactive := f.addUser(auth.RoleMedecin, &f.hospital)
	inactive.Actif = false
	unknown := uuid.New()

	tests := []struct {
		name string
		from *user.User
		in   Input
		want error
	}{
		{"empty content", f.secretary, Input{DestinataireID: &f.doctor.ID, Contenu: strPtr("   ")}, apperr.ErrValidation},
		{"missing receiver", f.secretary, Input{Contenu: strPtr("bonjour")}, apperr.ErrValidation},
		{"to self", f.secretary, Input{DestinataireID: &f.secretary.ID, Contenu: strPtr("bonjour")}, apperr.ErrValidation},
		{"unknown receiver", f.secretary, Input{DestinataireID: &unknown, Contenu: strPtr("bonjour")}, apperr.ErrValidation},
		{"inactive receiver", f.secretary, Input{DestinataireID: &inactive.ID, Contenu: strPtr("bonjour")}, apperr.ErrValidation},
		{"other hospital", f.secretary, Input{DestinataireID: &f.outsider.ID, Contenu: strPtr("bonjour")}, apperr.ErrValidation},
		{"staff to admin", f.doctor, Input{DestinataireID: &f.admin.ID, Contenu: strPtr("bonjour")}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctxFor(tt.from), tt.in); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_Create_AdminReachesAnyHospital(t *testing.T) {
	f := newFixture()
	m := f.send(t, f.admin, f.outsider, "Réunion demain")
	if m.DestinataireID != f.outsider.ID {
		t.Errorf("unexpected receiver %s", m.DestinataireID)
	}
}

func TestService_Create_Consultation(t *testing.T) {
	f := newFixture()
	own := &consultation.Consultation{ID: uuid.New(), HopitalID: f.hospital, PatientID: uuid.New()}
	foreign := &consultation.Consultation{ID: uuid.New(), HopitalID: uuid.New(), PatientID: uuid.New()}
	f.consultations[own.ID] = own
	f.consultations[foreign.ID] = foreign
	missing := uuid.New()

	m, err := f.svc.Create(ctxFor(f.doctor), Input{DestinataireID: &f.secretary.ID, ConsultationID: &own.ID, Contenu: strPtr("Résultats prêts")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ConsultationID == nil || *m.ConsultationID != own.ID {
		t.Errorf("expected consultation link, got %v", m.ConsultationID)
	}

	if _, err := f.svc.Create(ctxFor(f.doctor), Input{DestinataireID: &f.secretary.ID, ConsultationID: &foreign.ID, Contenu: strPtr("x")}); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("foreign consultation: expected forbidden, got %v", err)
	}
	if _, err := f.svc.Create(ctxFor(f.doctor), Input{DestinataireID: &f.secretary.ID, ConsultationID: &missing, Contenu: strPtr("x")}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing consultation: expected validation error, got %v", err)
	}
}

func TestService_List_Boxes(t *testing.T) {
	f := newFixture()
	f.send(t, f.secretary, f.doctor, "un")
	f.send(t, f.secretary, f.doctor, "deux")
	f.send(t, f.doctor, f.secretary, "trois")
	pg := pagination.Params{Page: 1, Limit: 10}

	inbox, total, err := f.svc.List(ctxFor(f.doctor), Filter{Box: BoxInbox}, pg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(inbox) != 2 {
		t.Errorf("expected 2 received messages, got %d", total)
	}

	_, total, _ = f.svc.List(ctxFor(f.doctor), Filter{Box: BoxSent}, pg)
	if total != 1 {
		t.Errorf("expected 1 sent message, got %d", total)
	}

	// UserID in the filter is always replaced by the caller.
	_, total, _ = f.svc.List(ctxFor(f.outsider), Filter{Box: BoxInbox, UserID: f.doctor.ID}, pg)
	if total != 0 {
		t.Errorf("expected outsider inbox to be empty, got %d", total)
	}
}

func TestService_Get_PartiesOnly(t *testing.T) {
	f := newFixture()
	m := f.send(t, f.secretary, f.doctor, "bonjour")

	for _, u := range []*user.User{f.secretary, f.doctor} {
		if _, err := f.svc.Get(ctxFor(u), m.ID); err != nil {
			t.Errorf("party %s: unexpected error %v", u.Role, err)
		}
	}
	if _, err := f.svc.Get(ctxFor(f.admin), m.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected forbidden for a third party, got %v", err)
	}
}

func TestService_MarkReadAndUnreadCount(t *testing.T) {
	f := newFixture()
	m := f.send(t, f.secretary, f.doctor, "un")
	f.send(t, f.secretary, f.doctor, "deux")

	n, err := f.svc.UnreadCount(ctxFor(f.doctor))
	if err != nil || n != 2 {
		t.Fatalf("expected 2 unread, got %d (%v)", n, err)
	}

	if _, err := f.svc.MarkRead(ctxFor(f.secretary), m.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("sender marking read: expected forbidden, got %v", err)
	}

	read, err := f.svc.MarkRead(ctxFor(f.doctor), m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !read.Lu {
		t.Error("expected message to be read")
	}
	if _, err := f.svc.MarkRead(ctxFor(f.doctor), m.ID); err != nil {
		t.Errorf("marking twice should succeed, got %v", err)
	}

	if n, _ := f.svc.UnreadCount(ctxFor(f.doctor)); n != 1 {
		t.Errorf("expected 1 unread, got %d", n)
	}
}

func TestService_Delete_SenderOnly(t *testing.T) {
	f := newFixture()
	m := f.send(t, f.secretary, f.doctor, "bonjour")

	if err := f.svc.Delete(ctxFor(f.doctor), m.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("receiver delete: expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(ctxFor(f.secretary), m.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.Delete(ctxFor(f.secretary), m.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestParseBox(t *testing.T) {
	if b, err := ParseBox(""); err != nil || b != BoxInbox {
		t.Errorf("empty box should default to inbox, got %q (%v)", b, err)
	}
	if b, err := ParseBox("SENT"); err != nil || b != BoxSent {
		t.Errorf("expected sent, got %q (%v)", b, err)
	}
	if _, err := ParseBox("trash"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
