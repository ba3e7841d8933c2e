package stats

import (
	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/httpx"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/stats", h.Get)
}

func (h *Handler) Get(c echo.Context) error {
	hospital, err := httpx.QueryUUID(c, "hopital_id")
	if err != nil {
		return err
	}
	st, err := h.svc.Get(c.Request().Context(), hospital)
	if err != nil {
		return err
	}
	return httpx.OK(c, st)
}
