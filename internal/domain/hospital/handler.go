package hospital

import (
	"github.com/labstack/echo/v4"

	"github.com/senemedecine/api/internal/platform/apperr"
	"github.com/senemedecine/api/internal/platform/auth"
	"github.com/senemedecine/api/internal/platform/httpx"
	"github.com/senemedecine/api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/hopitaux")

	// Every role reads; scope narrows non-admins to their own hospital.
	g.GET("", h.List)
	g.GET("/:id", h.Get, auth.RequireHospitalAccess("id"))

	admin := g.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.POST("", h.Create)
	admin.PUT("/:id", h.Update)
	admin.PATCH("/:id/status", h.SetStatus)
	admin.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	id, err := httpx.QueryUUID(c, "hopital_id")
	if err != nil {
		return err
	}
	actif, err := httpx.QueryBool(c, "actif")
	if err != nil {
		return err
	}
	f := Filter{ID: id, Search: c.QueryParam("search"), Actif: actif}

	items, total, err := h.svc.List(c.Request().Context(), f, pg)
	if err != nil {
		return err
	}
	return httpx.OK(c, pagination.NewPage(items, total, pg))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	hosp, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, hosp)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	hosp, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, hosp)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var in Input
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	hosp, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, hosp)
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Actif *bool `json:"actif"`
	}
	if err := httpx.Bind(c, &body); err != nil {
		return err
	}
	if body.Actif == nil {
		return apperr.Validation("Le champ actif est requis")
	}
	hosp, err := h.svc.SetActive(c.Request().Context(), id, *body.Actif)
	if err != nil {
		return err
	}
	return httpx.OK(c, hosp)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Hôpital supprimé", nil)
}
