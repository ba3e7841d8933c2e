package medication

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
	h, e := NewHandler(f.svc), echo.New()

	body := `{"nom":"Paracétamol","dosage":"1g","patient_id":"` + f.patient.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/medicaments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req.WithContext(f.doctorCtx()), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"dosage":"1g"`) {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
}

func TestHandler_List_BadActif(t *testing.T) {
	f := newFixture()
	h, e := NewHandler(f.svc), echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/medicaments?actif=peut-etre", nil)
	c := e.NewContext(req.WithContext(f.doctorCtx()), httptest.NewRecorder())

	if err := h.List(c); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
