package medication

import (
	"net/http"
	"strconv"
	"time"

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
	api.POST("/patients/:id/medicine-alerts", h.CreateAlert)
	api.GET("/patients/:id/medicine-alerts", h.ListAlerts)
	api.GET("/patients/:id/medicine-alerts/due", h.DueToday)
	api.GET("/medicine-alerts/:id", h.GetAlert)
	api.PUT("/medicine-alerts/:id/status", h.UpdateAlertStatus)

	api.POST("/medicine-alerts/:id/intakes", h.RecordIntake)
	api.GET("/medicine-alerts/:id/intakes", h.ListIntakes)
	api.GET("/patients/:id/adherence", h.Adherence)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateAlert(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var a Alert
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.PatientID = id
	if err := h.svc.CreateAlert(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&a))
}

func (h *Handler) GetAlert(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	a, err := h.svc.GetAlert(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "medicine alert not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

type alertStatusInput struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateAlertStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in alertStatusInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.UpdateAlertStatus(c.Request().Context(), id, in.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

func (h *Handler) ListAlerts(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListAlerts(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) DueToday(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	due, err := h.svc.DueToday(c.Request().Context(), id, time.Now())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if due == nil {
		due = []*Alert{}
	}
	return c.JSON(http.StatusOK, envelope.OK(due))
}

func (h *Handler) RecordIntake(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Intake
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in.AlertID = id
	if err := h.svc.RecordIntake(c.Request().Context(), &in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&in))
}

func (h *Handler) ListIntakes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListIntakes(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) Adherence(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	report, err := h.svc.Adherence(c.Request().Context(), id, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if report == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no scheduled doses in the requested period")
	}
	return c.JSON(http.StatusOK, envelope.OK(report))
}
