package riskmodel

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ErDashrath/Enigma-MAYA-NET/pkg/envelope"
)

type Handler struct {
	assessor *Assessor
	diabetes *DiabetesModel
}

func NewHandler(assessor *Assessor, diabetes *DiabetesModel) *Handler {
	return &Handler{assessor: assessor, diabetes: diabetes}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/risk-predict", h.PredictRisk)
	api.POST("/diabetes-predict", h.PredictDiabetes)
}

func (h *Handler) PredictRisk(c echo.Context) error {
	var in RiskInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, envelope.OK(h.assessor.Assess(in)))
}

func (h *Handler) PredictDiabetes(c echo.Context) error {
	var in DiabetesInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, envelope.OK(h.diabetes.Predict(in)))
}
