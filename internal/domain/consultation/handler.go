package consultation

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
	g := api.Group("/consultations")

	g.GET("", h.List)
	g.GET("/:id", h.Get)

	w := g.Group("", auth.RequireRole(writeRoles...))
	w.POST("", h.Create, auth.RequireHospitalAccess(""))
	w.PUT("/:id", h.Update)
	w.PATCH("/:id/status", h.SetStatus)
	w.DELETE("/:id", h.Delete)
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
	if f.DateFrom, err = httpx.QueryDate(c, "date_from"); err != nil {
		return err
	}
	if f.DateTo, err = httpx.QueryDate(c, "date_to"); err != nil {
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
	cons, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, cons)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	cons, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, cons)
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
	cons, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, cons)
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	var body struct {
		Statut string `json:"statut"`
	}
	if err := httpx.Bind(c, &body); err != nil {
		return err
	}
	if body.Statut == "" {
		return apperr.Validation("Le champ statut est requis")
	}
	cons, err := h.svc.SetStatus(c.Request().Context(), id, body.Statut)
	if err != nil {
		return err
	}
	return httpx.OK(c, cons)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Consultation supprimée", nil)
}
