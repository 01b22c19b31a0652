package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/auth"
	"github.com/ErDashrath/Enigma-MAYA-NET/pkg/envelope"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts register/login on the public group and me on the
// authenticated group.
func (h *Handler) RegisterRoutes(public *echo.Group, api *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	api.GET("/auth/me", h.Me)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(sess))
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sess, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(sess))
}

func (h *Handler) Me(c echo.Context) error {
	uid := auth.UserIDFromContext(c.Request().Context())
	if uid == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	u, err := h.svc.Me(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(u))
}
