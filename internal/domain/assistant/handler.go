package assistant

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
	api.POST("/ai/chat", h.Chat)
}

func (h *Handler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := httpx.Bind(c, &req); err != nil {
		return err
	}
	resp, err := h.svc.Chat(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return httpx.OK(c, resp)
}
