package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func contextWith(p *Principal, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/", nil)
	}
	if p != nil {
		req = req.WithContext(WithPrincipal(req.Context(), p))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireRole(t *testing.T) {
	h := uuid.New()
	tests := []struct {
		name   string
		p      *Principal
		roles  []Role
		status int
	}{
		{"allowed", &Principal{Role: RoleMedecin, HospitalID: &h}, []Role{RoleMedecin, RoleAdmin}, 0},
		{"denied", &Principal{Role: RoleSecretaire, HospitalID: &h}, []Role{RoleMedecin}, http.StatusForbidden},
		{"admin not implicit", &Principal{Role: RoleAdmin}, []Role{RoleMedecin}, http.StatusForbidden},
		{"unauthenticated", nil, []Role{RoleAdmin}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := contextWith(tt.p, http.MethodGet, "")
			err := RequireRole(tt.roles...)(okHandler)(c)
			if tt.status == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			expectStatus(t, err, tt.status)
		})
	}
}

func TestRequireHospitalAccess_Param(t *testing.T) {
	own, other := uuid.New(), uuid.New()
	p := &Principal{Role: RoleMedecin, HospitalID: &own}

	c, _ := contextWith(p, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(own.String())
	if err := RequireHospitalAccess("id")(okHandler)(c); err != nil {
		t.Fatalf("own hospital: %v", err)
	}

	c, _ = contextWith(p, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(other.String())
	expectStatus(t, RequireHospitalAccess("id")(okHandler)(c), http.StatusForbidden)

	c, _ = contextWith(&Principal{Role: RoleAdmin}, http.MethodGet, "")
	c.SetParamNames("id")
	c.SetParamValues(other.String())
	if err := RequireHospitalAccess("id")(okHandler)(c); err != nil {
		t.Fatalf("admin: %v", err)
	}
}

func TestRequireHospitalAccess_BodyRestored(t *testing.T) {
	own, other := uuid.New(), uuid.New()
	p := &Principal{Role: RoleSecretaire, HospitalID: &own}

	body := `{"hopital_id":"` + own.String() + `","nom":"Diop"}`
	c, _ := contextWith(p, http.MethodPost, body)
	var seen string
	err := RequireHospitalAccess("hopitalId")(func(c echo.Context) error {
		var m map[string]string
		if err := c.Bind(&m); err != nil {
			return err
		}
		seen = m["nom"]
		return nil
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "Diop" {
		t.Errorf("expected body to be readable downstream, got %q", seen)
	}

	c, _ = contextWith(p, http.MethodPost, `{"hopital_id":"`+other.String()+`"}`)
	expectStatus(t, RequireHospitalAccess("hopitalId")(okHandler)(c), http.StatusForbidden)

	c, _ = contextWith(p, http.MethodPost, `{"hopital_id":"bad"}`)
	expectStatus(t, RequireHospitalAccess("hopitalId")(okHandler)(c), http.StatusBadRequest)
}
