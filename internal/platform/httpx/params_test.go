package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/apperr"
)

func queryContext(target string) echo.Context {
	e := echo.New()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
}

func TestParamUUID(t *testing.T) {
	id := uuid.New()
	c := queryContext("/")
	c.SetParamNames("id")
	c.SetParamValues(id.String())

	got, err := ParamUUID(c, "id")
	if err != nil || got != id {
		t.Fatalf("ParamUUID = %v, %v", got, err)
	}

	c.SetParamValues("nope")
	if _, err := ParamUUID(c, "id"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQueryUUID(t *testing.T) {
	id := uuid.New()
	got, err := QueryUUID(queryContext("/?hopital_id="+id.String()), "hopital_id")
	if err != nil || got == nil || *got != id {
		t.Fatalf("QueryUUID = %v, %v", got, err)
	}

	got, err = QueryUUID(queryContext("/"), "hopital_id")
	if err != nil || got != nil {
		t.Fatalf("expected nil for missing param, got %v, %v", got, err)
	}

	if _, err := QueryUUID(queryContext("/?hopital_id=bad"), "hopital_id"); err == nil {
		t.Fatal("expected error for malformed uuid")
	}
}

func TestQueryBoolAndDate(t *testing.T) {
	b, err := QueryBool(queryContext("/?actif=false"), "actif")
	if err != nil || b == nil || *b {
		t.Fatalf("QueryBool = %v, %v", b, err)
	}
	if _, err := QueryBool(queryContext("/?actif=peut-etre"), "actif"); err == nil {
		t.Fatal("expected error")
	}

	d, err := QueryDate(queryContext("/?date=2024-03-01"), "date")
	if err != nil || d == nil || d.Day() != 1 {
		t.Fatalf("QueryDate = %v, %v", d, err)
	}
	if _, err := QueryDate(queryContext("/?date=01/03/2024"), "date"); err == nil {
		t.Fatal("expected error")
	}
}

func TestBind_Malformed(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nom":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var v struct{ Nom string }
	if err := Bind(c, &v); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
