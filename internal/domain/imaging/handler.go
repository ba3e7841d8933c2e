package imaging

import (
	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/httpx"
)

// Handler serves the consultation/DICOM association endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole(imagingRoles...)

	api.GET("/consultations/:id/dicom", h.List, role)
	api.POST("/consultations/:id/dicom", h.Attach, role)

	g := api.Group("/consultation-dicom", role)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Detach)
}

func (h *Handler) List(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListForConsultation(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, a)
}

func (h *Handler) Attach(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var in AttachInput
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.Attach(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.Created(c, a)
}

func (h *Handler) Detach(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Detach(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Association DICOM supprimée", nil)
}
