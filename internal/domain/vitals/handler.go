package vitals

import (
	"net/http"
	"strconv"

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
	api.POST("/patients/:id/vitals", h.RecordVitals)
	api.GET("/patients/:id/vitals", h.ListVitals)
	api.GET("/patients/:id/vitals/latest", h.LatestVitals)
	api.GET("/patients/:id/vitals/trends", h.GetTrends)

	api.POST("/patients/:id/lifestyle", h.RecordLifestyle)
	api.GET("/patients/:id/lifestyle", h.ListLifestyle)
	api.GET("/patients/:id/lifestyle/summary", h.LifestyleSummary)

	api.POST("/patients/:id/symptoms", h.ReportSymptom)
	api.GET("/patients/:id/symptoms", h.ListSymptoms)
	api.PUT("/symptoms/:id/resolve", h.ResolveSymptom)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

type vitalsResponse struct {
	Reading *VitalSigns `json:"reading"`
	Alerts  []string    `json:"alerts"`
}

func (h *Handler) RecordVitals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var v VitalSigns
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	v.PatientID = id
	alerts, err := h.svc.RecordVitals(c.Request().Context(), &v)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if alerts == nil {
		alerts = []string{}
	}
	return c.JSON(http.StatusCreated, envelope.OK(vitalsResponse{Reading: &v, Alerts: alerts}))
}

func (h *Handler) ListVitals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListVitals(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) LatestVitals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	v, err := h.svc.LatestVitals(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no vital signs recorded")
	}
	return c.JSON(http.StatusOK, envelope.OK(v))
}

func (h *Handler) GetTrends(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	t, err := h.svc.GetTrends(c.Request().Context(), id, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if t == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no readings in the requested period")
	}
	return c.JSON(http.StatusOK, envelope.OK(t))
}

type lifestyleResponse struct {
	Entry    *LifestyleMetrics `json:"entry"`
	Insights []string          `json:"insights"`
}

func (h *Handler) RecordLifestyle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var m LifestyleMetrics
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m.PatientID = id
	insights, err := h.svc.RecordLifestyle(c.Request().Context(), &m)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if insights == nil {
		insights = []string{}
	}
	return c.JSON(http.StatusCreated, envelope.OK(lifestyleResponse{Entry: &m, Insights: insights}))
}

func (h *Handler) ListLifestyle(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListLifestyle(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) LifestyleSummary(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	days, _ := strconv.Atoi(c.QueryParam("days"))
	summary, err := h.svc.LifestyleSummary(c.Request().Context(), id, days)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if summary == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no lifestyle entries in the requested period")
	}
	return c.JSON(http.StatusOK, envelope.OK(summary))
}

type symptomResponse struct {
	Report *SymptomReport `json:"report"`
	Alerts []string       `json:"alerts"`
}

func (h *Handler) ReportSymptom(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var r SymptomReport
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r.PatientID = id
	alerts, err := h.svc.ReportSymptom(c.Request().Context(), &r)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if alerts == nil {
		alerts = []string{}
	}
	return c.JSON(http.StatusCreated, envelope.OK(symptomResponse{Report: &r, Alerts: alerts}))
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListSymptoms(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) ResolveSymptom(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.ResolveSymptom(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(r))
}
