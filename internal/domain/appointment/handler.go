package appointment

import (
	"github.com/labstack/echo/v4"

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
	g := api.Group("/rendez-vous")

	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create, auth.RequireHospitalAccess(""))
	g.PATCH("/:id/cancel", h.Cancel)

	g.PUT("/:id", h.Update, auth.RequireRole(auth.StaffRoles...))
	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin, auth.RoleSecretaire))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	var f Filter
	var err error
	if f.HopitalID, err = httpx.QueryUUID(c, "hopital_id"); err != nil {
		return err
	}
	if f.PatientID, err = httpx.QueryUUID(c, "patient_id"); err != nil {
		return err
	}
	if f.MedecinID, err = httpx.QueryUUID(c, "medecin_id"); err != nil {
		return err
	}
	if raw := c.QueryParam("statut"); raw != "" {
		if f.Statut, err = ParseStatut(raw); err != nil {
			return err
		}
	}
	if f.Date, err = httpx.QueryDate(c, "date"); err != nil {
		return err
	}

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
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, a)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	a, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, a)
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
	a, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, a)
}

func (h *Handler) Cancel(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Cancel(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.Message(c, "Rendez-vous annulé", a)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Rendez-vous supprimé", nil)
}
