package messaging

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/apperr"
)

func TestHandler_Create(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	body := `{"destinataire_id":"` + f.doctor.ID.String() + `","contenu":"Salle 3 libre"}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctxFor(f.secretary)), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if len(f.repo.items) != 1 {
		t.Errorf("expected 1 stored message, got %d", len(f.repo.items))
	}
}

func TestHandler_List_BadBox(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/messages?box=trash", nil)
	c := e.NewContext(req.WithContext(ctxFor(f.doctor)), httptest.NewRecorder())

	if err := h.List(c); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestHandler_UnreadCount(t *testing.T) {
	f := newFixture()
	f.send(t, f.secretary, f.doctor, "un")
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/messages/unread-count", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(ctxFor(f.doctor)), rec)

	if err := h.UnreadCount(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("expected count of 1, got %s", rec.Body.String())
	}
}

func TestHandler_MarkRead_BadID(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPatch, "/api/messages/nope/read", nil)
	c := e.NewContext(req.WithContext(ctxFor(f.doctor)), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := h.MarkRead(c); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
