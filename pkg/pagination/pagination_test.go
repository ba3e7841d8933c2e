package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(newContext("/"))

	if p.Page != DefaultPage {
		t.Errorf("expected default page %d, got %d", DefaultPage, p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
	if p.Offset() != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset())
	}
}

func TestFromContext_CustomValues(t *testing.T) {
	p := FromContext(newContext("/?page=3&limit=25"))

	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.Limit != 25 {
		t.Errorf("expected limit 25, got %d", p.Limit)
	}
	if p.Offset() != 50 {
		t.Errorf("expected offset 50, got %d", p.Offset())
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	p := FromContext(newContext("/?limit=1000"))
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_InvalidValues(t *testing.T) {
	for _, q := range []string{"/?page=abc&limit=xyz", "/?page=-2&limit=0", "/?page=0&limit=-5"} {
		p := FromContext(newContext(q))
		if p.Page != DefaultPage || p.Limit != DefaultLimit {
			t.Errorf("%s: expected defaults, got page=%d limit=%d", q, p.Page, p.Limit)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]string{"a", "b"}, 12, Params{Page: 2, Limit: 5})
	if page.Pagination.Total != 12 {
		t.Errorf("expected total 12, got %d", page.Pagination.Total)
	}
	if page.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", page.Pagination.TotalPages)
	}
	if page.Pagination.Page != 2 || page.Pagination.Limit != 5 {
		t.Errorf("unexpected page/limit: %+v", page.Pagination)
	}
}

func TestHasNext(t *testing.T) {
	p := Params{Page: 1, Limit: 10}
	if !p.HasNext(11) {
		t.Error("expected next page when total exceeds first page")
	}
	if p.HasNext(10) {
		t.Error("expected no next page when total fits the first page")
	}
}
