package clinician

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ErDashrath/Enigma-MAYA-NET/internal/platform/auth"
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
	clinicianOnly := auth.RequireRole("clinician")

	api.POST("/clinicians", h.CreateProfile, auth.RequireRole("admin"))
	api.GET("/clinicians", h.ListProfiles)
	api.GET("/clinicians/me", h.MyProfile, clinicianOnly)
	api.GET("/clinicians/:id", h.GetProfile)
	api.PUT("/clinicians/:id", h.UpdateProfile, clinicianOnly)

	api.POST("/assignments", h.AssignPatient, clinicianOnly)
	api.PUT("/assignments/:id/end", h.EndAssignment, clinicianOnly)
	api.GET("/clinicians/:id/assignments", h.ListClinicianAssignments, clinicianOnly)
	api.GET("/patients/:id/assignments", h.ListPatientAssignments, clinicianOnly)

	api.POST("/clinical-notes", h.CreateClinicalNote, clinicianOnly)
	api.GET("/clinical-notes/:id", h.GetClinicalNote, clinicianOnly)
	api.GET("/patients/:id/clinical-notes", h.ListClinicalNotes, clinicianOnly)

	api.POST("/treatment-plans", h.CreatePlan, clinicianOnly)
	api.GET("/treatment-plans/:id", h.GetPlan)
	api.PUT("/treatment-plans/:id/status", h.UpdatePlanStatus, clinicianOnly)
	api.PUT("/treatment-plans/:id/adherence", h.RecordPlanAdherence, clinicianOnly)
	api.GET("/patients/:id/treatment-plans", h.ListPlans)
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateProfile(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateProfile(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&p))
}

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "clinician profile not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) MyProfile(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	p, err := h.svc.GetProfileByUser(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "clinician profile not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Profile
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdateProfile(c.Request().Context(), id, &in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) ListProfiles(c echo.Context) error {
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListProfiles(c.Request().Context(), c.QueryParam("specialization"), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

// --- assignments ---

func (h *Handler) AssignPatient(c echo.Context) error {
	var a Assignment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AssignPatient(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&a))
}

type endAssignmentInput struct {
	Status string `json:"status"`
}

func (h *Handler) EndAssignment(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in endAssignmentInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.EndAssignment(c.Request().Context(), id, in.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(a))
}

func (h *Handler) ListClinicianAssignments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListAssignmentsByClinician(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) ListPatientAssignments(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListAssignmentsByPatient(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

// --- clinical notes ---

func (h *Handler) CreateClinicalNote(c echo.Context) error {
	var n ClinicalNote
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateClinicalNote(c.Request().Context(), &n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&n))
}

func (h *Handler) GetClinicalNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.GetClinicalNote(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "clinical note not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(n))
}

func (h *Handler) ListClinicalNotes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListClinicalNotes(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

// --- treatment plans ---

func (h *Handler) CreatePlan(c echo.Context) error {
	var p TreatmentPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreatePlan(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&p))
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPlan(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "treatment plan not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

type planStatusInput struct {
	Status string `json:"status"`
}

func (h *Handler) UpdatePlanStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in planStatusInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.UpdatePlanStatus(c.Request().Context(), id, in.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

type planAdherenceInput struct {
	Score         float64 `json:"score"`
	ProgressNotes string  `json:"progress_notes"`
}

func (h *Handler) RecordPlanAdherence(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in planAdherenceInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p, err := h.svc.RecordPlanAdherence(c.Request().Context(), id, in.Score, in.ProgressNotes)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

func (h *Handler) ListPlans(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListPlans(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}
