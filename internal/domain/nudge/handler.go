package nudge

import (
	"context"
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
	api.POST("/patients/:id/nudges", h.Create)
	api.POST("/patients/:id/nudges/generate", h.Generate)
	api.GET("/patients/:id/nudges", h.ListActive)
	api.GET("/patients/:id/nudges/history", h.History)
	api.POST("/nudges/:id/viewed", h.MarkViewed)
	api.POST("/nudges/:id/clicked", h.MarkClicked)
	api.POST("/nudges/:id/dismiss", h.Dismiss)
	api.POST("/nudges/:id/feedback", h.RecordFeedback)

	api.POST("/patients/:id/predictions/generate", h.GeneratePredictions)
	api.GET("/patients/:id/predictions", h.ListActivePredictions)
	api.POST("/predictions/:id/outcome", h.RecordOutcome)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) Create(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var n Nudge
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	n.PatientID = id
	created, err := h.svc.Create(c.Request().Context(), &n)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(created))
}

func (h *Handler) Generate(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	nudges, err := h.svc.Generate(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(nudges))
}

func (h *Handler) ListActive(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	nudges, err := h.svc.ListActive(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(nudges))
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

func (h *Handler) MarkViewed(c echo.Context) error {
	return h.engage(c, h.svc.MarkViewed)
}

func (h *Handler) MarkClicked(c echo.Context) error {
	return h.engage(c, h.svc.MarkClicked)
}

func (h *Handler) Dismiss(c echo.Context) error {
	return h.engage(c, h.svc.Dismiss)
}

func (h *Handler) engage(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Nudge, error)) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	n, err := op(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(n))
}

func (h *Handler) RecordFeedback(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Rating int `json:"rating"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	n, err := h.svc.RecordFeedback(c.Request().Context(), id, req.Rating)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(n))
}

func (h *Handler) GeneratePredictions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	predictions, err := h.svc.GeneratePredictions(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(predictions))
}

func (h *Handler) ListActivePredictions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	predictions, err := h.svc.ListActivePredictions(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(predictions))
}

func (h *Handler) RecordOutcome(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req struct {
		Outcome bool `json:"outcome"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	p, err := h.svc.RecordOutcome(c.Request().Context(), id, req.Outcome)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}
