package user

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
	g := api.Group("/users")

	read := g.Group("", auth.RequireRole(auth.RoleAdmin, auth.RoleMedecin, auth.RoleSecretaire))
	read.GET("", h.List)
	read.GET("/:id", h.Get)

	write := g.Group("", auth.RequireRole(auth.RoleAdmin))
	write.POST("", h.Create)
	write.PUT("/:id", h.Update)
	write.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	hid, err := httpx.QueryUUID(c, "hopital_id")
	if err != nil {
		return err
	}
	actif, err := httpx.QueryBool(c, "actif")
	if err != nil {
		return err
	}
	f := Filter{HopitalID: hid, Search: c.QueryParam("search"), Actif: actif}
	if raw := c.QueryParam("role"); raw != "" {
		r, err := auth.ParseRole(raw)
		if err != nil {
			return err
		}
		f.Role = r
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
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return httpx.OK(c, u)
}

func (h *Handler) Create(c echo.Context) error {
	var in Input
	if err := httpx.Bind(c, &in); err != nil {
		return err
	}
	u, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return httpx.Created(c, u)
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
	u, err := h.svc.Update(c.Request().Context(), id, in)
	if err != nil {
		return err
	}
	return httpx.OK(c, u)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := httpx.ParamUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		return err
	}
	return httpx.Message(c, "Utilisateur désactivé", nil)
}

// AuthHandler serves /api/auth.
type AuthHandler struct {
	svc *AuthService
}

func NewAuthHandler(svc *AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterRoutes mounts the public login route on public and the rest on
// the authenticated group. loginLimiter wraps only the login route.
func (h *AuthHandler) RegisterRoutes(public, api *echo.Group, loginLimiter echo.MiddlewareFunc) {
	public.POST("/auth/login", h.Login, loginLimiter)

	api.GET("/auth/me", h.Me)
	api.POST("/auth/logout", h.Logout)
	api.PUT("/auth/password", h.ChangePassword)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return httpx.Message(c, "Connexion réussie", resp)
}

func (h *AuthHandler) Me(c echo.Context) error {
	u, err := h.svc.Me(c.Request().Context())
	if err != nil {
		return err
	}
	return httpx.OK(c, u)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.svc.Logout(c.Request().Context(), auth.ClaimsFromEcho(c)); err != nil {
		return err
	}
	return httpx.Message(c, "Déconnexion réussie", nil)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req PasswordChange
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperr.Validation("Mot de passe actuel et nouveau mot de passe requis")
	}
	if err := h.svc.ChangePassword(c.Request().Context(), req); err != nil {
		return err
	}
	return httpx.Message(c, "Mot de passe modifié", nil)
}
