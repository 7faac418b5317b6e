package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/engine"
	"github.com/jstittsworth/bracket-engine/pkg/utils"
)

// TournamentHandler serves the tournament read operations of §6:
// teams, team, bracket, bracket_tree, scores, scoring_config, and
// completed-game CRUD.
type TournamentHandler struct {
	eng *engine.Engine
}

func NewTournamentHandler(eng *engine.Engine) *TournamentHandler {
	return &TournamentHandler{eng: eng}
}

func (h *TournamentHandler) Teams(c *gin.Context) {
	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, state.Bracket.Teams())
}

func (h *TournamentHandler) Team(c *gin.Context) {
	name := c.Param("name")
	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	rating, err := state.Ratings.Rating(name)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, rating)
}

func (h *TournamentHandler) Bracket(c *gin.Context) {
	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	slots := make([]map[string]float64, state.Bracket.Len())
	for i := 0; i < state.Bracket.Len(); i++ {
		slots[i] = state.Bracket.Slot(i)
	}
	utils.SendSuccess(c, slots)
}

func (h *TournamentHandler) BracketTree(c *gin.Context) {
	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, state.Bracket.Tree())
}

func (h *TournamentHandler) Scores(c *gin.Context) {
	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	scores, err := h.eng.ExpectedScores(state)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, scores)
}

func (h *TournamentHandler) ScoringConfig(c *gin.Context) {
	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{
		"scoring":          state.Scoring,
		"forfeit_probability": state.ForfeitProb,
	})
}

func (h *TournamentHandler) CompletedGames(c *gin.Context) {
	games, err := h.eng.Repository().ListCompletedGames()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, games)
}

func (h *TournamentHandler) AddCompletedGame(c *gin.Context) {
	var req struct {
		Winner string `json:"winner" binding:"required"`
		Loser  string `json:"loser" binding:"required"`
		Round  *int   `json:"round"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	game, err := h.eng.Repository().AddCompletedGame(req.Winner, req.Loser, req.Round)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.Response{Success: true, Data: game})
}

func (h *TournamentHandler) RemoveCompletedGame(c *gin.Context) {
	winner, loser := c.Param("winner"), c.Param("loser")
	if err := h.eng.Repository().RemoveCompletedGame(winner, loser); err != nil {
		utils.SendFromError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseScenarioQuery(c *gin.Context) (*uint, bool) {
	raw := c.Query("scenario_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	v := uint(id)
	return &v, true
}
