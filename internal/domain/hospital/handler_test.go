package hospital

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
)

func newTestHandler() (*Handler, *mockRepo, *echo.Echo) {
	svc, repo := newTestService()
	return NewHandler(svc), repo, echo.New()
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(adminCtx())
}

func TestHandler_Create(t *testing.T) {
	h, _, e := newTestHandler()

	body := `{"nom":"Hôpital de Fann","adresse":"Dakar"}`
	req := httptest.NewRequest(http.MethodPost, "/api/hopitaux", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(asAdmin(req), rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var resp struct {
		Success bool     `json:"success"`
		Data    Hospital `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Nom != "Hôpital de Fann" {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
}

func TestHandler_Create_BadRequest(t *testing.T) {
	h, _, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/hopitaux", strings.NewReader(`{"adresse":"Dakar"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(asAdmin(req), httptest.NewRecorder())

	if err := h.Create(c); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandler_List_Pagination(t *testing.T) {
	h, _, e := newTestHandler()
	for _, n := range []string{"A", "B", "C"} {
		_, _ = h.svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital " + n)})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/hopitaux?page=1&limit=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(asAdmin(req), rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var resp struct {
		Data struct {
			Data       []Hospital `json:"data"`
			Pagination struct {
				Total      int `json:"total"`
				TotalPages int `json:"totalPages"`
			} `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Data.Data) != 2 {
		t.Errorf("expected 2 items, got %d", len(resp.Data.Data))
	}
	if resp.Data.Pagination.Total != 3 || resp.Data.Pagination.TotalPages != 2 {
		t.Errorf("unexpected pagination: %+v", resp.Data.Pagination)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, _, e := newTestHandler()

	c := e.NewContext(asAdmin(httptest.NewRequest(http.MethodGet, "/", nil)), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.Get(c); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHandler_SetStatus(t *testing.T) {
	h, repo, e := newTestHandler()
	hosp, _ := h.svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})

	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"actif":false}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(asAdmin(req), rec)
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())

	if err := h.SetStatus(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.hospitals[hosp.ID].Actif {
		t.Error("expected hospital to be inactive")
	}
}

func TestHandler_Delete_Conflict(t *testing.T) {
	h, repo, e := newTestHandler()
	hosp, _ := h.svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})
	repo.dependents[hosp.ID] = Dependents{Patients: 1}

	c := e.NewContext(asAdmin(httptest.NewRequest(http.MethodDelete, "/", nil)), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())

	if err := h.Delete(c); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestHandler_Get_OtherHospitalForbidden(t *testing.T) {
	h, _, e := newTestHandler()
	hosp, _ := h.svc.Create(adminCtx(), Input{Nom: strPtr("Hôpital A")})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(staffCtx(uuid.New(), auth.RoleMedecin))
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues(hosp.ID.String())

	if err := h.Get(c); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
