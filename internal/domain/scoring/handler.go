package scoring

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ErDashrath/Enigma-MAYA-NET/pkg/envelope"
	"github.com/ErDashrath/Enigma-MAYA-NET/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients/:id/stability-score", h.Calculate)
	api.GET("/patients/:id/stability-score", h.Latest)
	api.GET("/patients/:id/stability-score/history", h.History)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Calculate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	score, err := h.svc.Calculate(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(score))
}

func (h *Handler) Latest(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	score, err := h.svc.Latest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(score))
}

func (h *Handler) History(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.History(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}
