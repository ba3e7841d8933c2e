package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestHandler_Create(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))
	e := echo.New()
	hid := uuid.New()

	body := `{"email":"sec@sene.sn","password":"motdepasse123","nom":"Ndiaye","prenom":"Fatou","role":"SECRETAIRE","hopital_id":"` + hid.String() + `"}`
	req := jsonRequest(http.MethodPost, "/api/users", body).WithContext(adminCtx())
	rec := httptest.NewRecorder()

	if err := h.Create(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("password hash must never be serialized")
	}
}

func TestHandler_List_RejectsBadRole(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/api/users?role=chef", nil).WithContext(adminCtx())
	if err := h.List(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_LoginAndMe(t *testing.T) {
	authSvc, svc, _, _ := newAuthFixture(t)
	seedUser(t, svc, "admin@sene.sn", "ADMIN", nil)
	h := NewAuthHandler(authSvc)
	e := echo.New()

	rec := httptest.NewRecorder()
	req := jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"admin@sene.sn","password":"motdepasse123"}`)
	if err := h.Login(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Login: %v", err)
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.Token == "" {
		t.Fatalf("unexpected login response: %s", rec.Body.String())
	}

	// Run the token through the real middleware before /me.
	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	meReq := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	meReq.Header.Set("Authorization", "Bearer "+resp.Data.Token)
	meRec := httptest.NewRecorder()
	err := auth.JWTMiddleware(issuer, nil)(h.Me)(e.NewContext(meReq, meRec))
	if err != nil {
		t.Fatalf("Me: %v", err)
	}
	if !strings.Contains(meRec.Body.String(), "admin@sene.sn") {
		t.Errorf("unexpected /me body: %s", meRec.Body.String())
	}
}

func TestAuthHandler_ChangePassword_MissingFields(t *testing.T) {
	authSvc, _, _, _ := newAuthFixture(t)
	h := NewAuthHandler(authSvc)
	e := echo.New()

	req := jsonRequest(http.MethodPut, "/api/auth/password", `{"newPassword":"x"}`).WithContext(adminCtx())
	if err := h.ChangePassword(e.NewContext(req, httptest.NewRecorder())); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
