package imaging

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/auth"
)

// ProxyHandler forwards read-only requests to Orthanc. Bodies are passed
// through untouched; credentials stay on the server.
type ProxyHandler struct {
	pacs PACS
}

func NewProxyHandler(pacs PACS) *ProxyHandler {
	return &ProxyHandler{pacs: pacs}
}

func (h *ProxyHandler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/orthanc", auth.RequireRole(imagingRoles...))
	g.GET("/system", h.System)
	g.GET("/studies", h.Studies)
	g.GET("/studies/:id", h.Study)
	g.GET("/studies/:id/series", h.StudySeries)
	g.GET("/series/:id", h.Series)
	g.GET("/instances/:id/preview", h.InstancePreview)
}

func (h *ProxyHandler) System(c echo.Context) error {
	return passJSON(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.pacs.System(ctx)
	})
}

func (h *ProxyHandler) Studies(c echo.Context) error {
	return passJSON(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.pacs.Studies(ctx)
	})
}

func (h *ProxyHandler) Study(c echo.Context) error {
	return passJSON(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.pacs.Study(ctx, c.Param("id"))
	})
}

func (h *ProxyHandler) StudySeries(c echo.Context) error {
	return passJSON(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.pacs.StudySeries(ctx, c.Param("id"))
	})
}

func (h *ProxyHandler) Series(c echo.Context) error {
	return passJSON(c, func(ctx context.Context) (json.RawMessage, error) {
		return h.pacs.Series(ctx, c.Param("id"))
	})
}

func (h *ProxyHandler) InstancePreview(c echo.Context) error {
	img, err := h.pacs.InstancePreview(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=300")
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}

func passJSON(c echo.Context, fetch func(ctx context.Context) (json.RawMessage, error)) error {
	raw, err := fetch(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, raw)
}
