package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/engine"
	"github.com/jstittsworth/bracket-engine/pkg/utils"
)

// AdminHandler serves §6's scenario and override administration:
// scenario CRUD, active-scenario toggle, scoped override CRUD,
// promote-to-permanent, clear-ad-hoc, clear-all.
type AdminHandler struct {
	eng *engine.Engine
}

func NewAdminHandler(eng *engine.Engine) *AdminHandler {
	return &AdminHandler{eng: eng}
}

func (h *AdminHandler) ListScenarios(c *gin.Context) {
	scenarios, err := h.eng.Repository().ListScenarios()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, scenarios)
}

func (h *AdminHandler) CreateScenario(c *gin.Context) {
	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	scenario, err := h.eng.Repository().CreateScenario(req.Name, req.Description)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Success: true, Data: scenario})
}

func (h *AdminHandler) DeleteScenario(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		utils.SendValidationError(c, "invalid scenario id", err.Error())
		return
	}
	if err := h.eng.Repository().DeleteScenario(uint(id)); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) GetActiveScenario(c *gin.Context) {
	active, err := h.eng.Repository().GetActiveScenario()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, active)
}

func (h *AdminHandler) SetActiveScenario(c *gin.Context) {
	var req struct {
		ScenarioID *uint `json:"scenario_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if err := h.eng.Repository().SetActiveScenario(req.ScenarioID); err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{"scenario_id": req.ScenarioID})
}

type overrideScopeRequest struct {
	Team1       string  `json:"team1" binding:"required"`
	Team2       string  `json:"team2" binding:"required"`
	Probability float64 `json:"probability"`
	IsPermanent bool    `json:"is_permanent"`
	ScenarioID  *uint   `json:"scenario_id"`
}

func (h *AdminHandler) UpsertGameOutcome(c *gin.Context) {
	var req overrideScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	row, err := h.eng.Repository().UpsertGameOutcome(req.Team1, req.Team2, req.Probability, req.IsPermanent, req.ScenarioID)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, row)
}

func (h *AdminHandler) DeleteGameOutcome(c *gin.Context) {
	var req overrideScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if err := h.eng.Repository().DeleteGameOutcome(req.Team1, req.Team2, req.IsPermanent, req.ScenarioID); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) PromoteGameOutcome(c *gin.Context) {
	var req struct {
		Team1      string `json:"team1" binding:"required"`
		Team2      string `json:"team2" binding:"required"`
		ScenarioID *uint  `json:"scenario_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if err := h.eng.Repository().PromoteGameOutcomeToPermanent(req.Team1, req.Team2, req.ScenarioID); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adjustmentScopeRequest struct {
	Team        string  `json:"team" binding:"required"`
	Adjustment  float64 `json:"adjustment"`
	IsPermanent bool    `json:"is_permanent"`
	ScenarioID  *uint   `json:"scenario_id"`
}

func (h *AdminHandler) UpsertRatingAdjustment(c *gin.Context) {
	var req adjustmentScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	row, err := h.eng.Repository().UpsertRatingAdjustment(req.Team, req.Adjustment, req.IsPermanent, req.ScenarioID)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, row)
}

func (h *AdminHandler) DeleteRatingAdjustment(c *gin.Context) {
	var req adjustmentScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if err := h.eng.Repository().DeleteRatingAdjustment(req.Team, req.IsPermanent, req.ScenarioID); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ClearAdHoc(c *gin.Context) {
	if err := h.eng.Repository().ClearAdHoc(); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) ClearAll(c *gin.Context) {
	if err := h.eng.Repository().ClearAll(); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
