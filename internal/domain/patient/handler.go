package patient

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
	g := api.Group("/patients")

	g.GET("", h.List)
	g.GET("/me", h.Me, auth.RequireRole(auth.RolePatient))
	g.GET("/:id", h.Get)

	staff := g.Group("", auth.RequireRole(auth.StaffRoles...))
	staff.POST("", h.Create, auth.RequireHospitalAccess(""))
	staff.PUT("/:id", h.Update)

	g.DELETE("/:id", h.Delete, auth.RequireRole(auth.RoleAdmin, auth.RoleSecretaire))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	hopitalID, err := httpx.QueryUUID(c, "hopital_id")
	if err != nil {
		return err
	}
	medecinID, err := httpx.QueryUUID(c, "medecin_id")
	if err != nil {
		return err
	}
	actif, err := httpx.QueryBool(c, "actif")
	if err != nil {
		return err
	}
	f := Filter{HopitalID: hopitalID, MedecinID: medecinID, Search: c.QueryParam("search"), Actif: actif}

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
	pt, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, pt)
}

func (h *Handler) Me(c echo.Context) error {
	pt, err := h.svc.Me(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, pt)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	pt, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, pt)
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
	pt, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, pt)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Patient désactivé", nil)
}
