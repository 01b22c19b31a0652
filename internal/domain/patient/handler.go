package patient

import (
	"net/http"
	"time"

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
	api.POST("/patients", h.CreateProfile, auth.RequireRole("clinician"))
	api.GET("/patients", h.ListProfiles, auth.RequireRole("clinician"))
	api.GET("/patients/me", h.MyProfile)
	api.GET("/patients/:id", h.GetProfile)
	api.PUT("/patients/:id", h.UpdateProfile)
	api.DELETE("/patients/:id", h.DeactivateProfile, auth.RequireRole("clinician"))

	api.POST("/patients/:id/goals", h.CreateGoal)
	api.GET("/patients/:id/goals", h.ListGoals)
	api.PUT("/goals/:id/progress", h.UpdateGoalProgress)
	api.PUT("/goals/:id/status", h.UpdateGoalStatus)
	api.DELETE("/goals/:id", h.DeleteGoal)

	api.POST("/patients/:id/notes", h.CreateNote)
	api.GET("/patients/:id/notes", h.ListNotes)
	api.GET("/notes/:id", h.GetNote)
	api.PUT("/notes/:id", h.UpdateNote)
	api.DELETE("/notes/:id", h.DeleteNote)
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
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(p))
}

// MyProfile resolves the profile owned by the authenticated user.
func (h *Handler) MyProfile(c echo.Context) error {
	uid, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	p, err := h.svc.GetProfileByUser(c.Request().Context(), uid)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "patient profile not found")
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

func (h *Handler) DeactivateProfile(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeactivateProfile(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(map[string]string{"status": "deactivated"}))
}

func (h *Handler) ListProfiles(c echo.Context) error {
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListProfiles(c.Request().Context(), c.QueryParam("risk_level"), page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

// --- health goals ---

type goalProgressInput struct {
	CurrentValue float64 `json:"current_value"`
}

type goalStatusInput struct {
	Status string `json:"status"`
}

func (h *Handler) CreateGoal(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var g HealthGoal
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g.PatientID = id
	if err := h.svc.CreateGoal(c.Request().Context(), &g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&g))
}

func (h *Handler) ListGoals(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListGoals(c.Request().Context(), id, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) UpdateGoalProgress(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in goalProgressInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g, err := h.svc.UpdateGoalProgress(c.Request().Context(), id, in.CurrentValue)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(g))
}

func (h *Handler) UpdateGoalStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in goalStatusInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g, err := h.svc.UpdateGoalStatus(c.Request().Context(), id, in.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(g))
}

func (h *Handler) DeleteGoal(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteGoal(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(map[string]string{"status": "deleted"}))
}

// --- notes ---

func (h *Handler) CreateNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var n Note
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n.PatientID = id
	if author, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
		n.AuthorID = author
	}
	n.CreatedAt = time.Now()
	if err := h.svc.CreateNote(c.Request().Context(), &n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, envelope.OK(&n))
}

func (h *Handler) ListNotes(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	// Private notes are only surfaced to clinical staff.
	role := auth.RoleFromContext(c.Request().Context())
	includePrivate := role == "clinician" || role == "admin"
	page := pagination.FromContext(c)
	items, total, err := h.svc.ListNotes(c.Request().Context(), id, includePrivate, page.Limit, page.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(pagination.NewResponse(items, total, page.Limit, page.Offset)))
}

func (h *Handler) GetNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	n, err := h.svc.GetNote(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "note not found")
	}
	return c.JSON(http.StatusOK, envelope.OK(n))
}

func (h *Handler) UpdateNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var in Note
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.UpdateNote(c.Request().Context(), id, &in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(n))
}

func (h *Handler) DeleteNote(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteNote(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, envelope.OK(map[string]string{"status": "deleted"}))
}
