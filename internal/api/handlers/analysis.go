package handlers

import (
	"sort"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/engine"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
	"github.com/jstittsworth/bracket-engine/internal/sensitivity"
	"github.com/jstittsworth/bracket-engine/pkg/utils"
)

// AnalysisHandler serves §6's analysis operations: upcoming_games,
// game_importance, game_impact, what_if, slot_candidates, compute_path.
type AnalysisHandler struct {
	eng     *engine.Engine
	epsilon float64
}

func NewAnalysisHandler(eng *engine.Engine, epsilon float64) *AnalysisHandler {
	return &AnalysisHandler{eng: eng, epsilon: epsilon}
}

type overrideRequest struct {
	Team1       string  `json:"team1" binding:"required"`
	Team2       string  `json:"team2" binding:"required"`
	Probability float64 `json:"probability"`
}

func applyOverrides(state *bracket.TournamentState, outcomes []overrideRequest) *bracket.TournamentState {
	for _, o := range outcomes {
		state = state.WithOverride(o.Team1, o.Team2, o.Probability)
	}
	return state
}

// UpcomingGames reports the top_n fully-determined upcoming games
// ranked by adjusted importance, a ranked view over GameImportance.
func (h *AnalysisHandler) UpcomingGames(c *gin.Context) {
	topN := 10
	if raw := c.Query("top_n"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			topN = v
		}
	}
	var req valueRequest
	_ = c.ShouldBindJSON(&req)

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	reports, err := sensitivity.GameImportance(h.eng.Book(), toPositions(req.Positions), state)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].AdjustedImportance > reports[j].AdjustedImportance
	})
	if len(reports) > topN {
		reports = reports[:topN]
	}
	utils.SendSuccess(c, reports)
}

// GameImportance reports every fully-determined upcoming game's raw and
// adjusted importance.
func (h *AnalysisHandler) GameImportance(c *gin.Context) {
	var req valueRequest
	_ = c.ShouldBindJSON(&req)

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	reports, err := sensitivity.GameImportance(h.eng.Book(), toPositions(req.Positions), state)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, reports)
}

// GameImpact reports the win/loss portfolio values and per-team impact
// of a single upcoming matchup.
func (h *AnalysisHandler) GameImpact(c *gin.Context) {
	team1, team2 := c.Param("team1"), c.Param("team2")
	var req valueRequest
	_ = c.ShouldBindJSON(&req)

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	winValue, lossValue, impacts, err := sensitivity.GameDelta(h.eng.Book(), toPositions(req.Positions), state, team1, team2)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, gin.H{
		"win_value":  winValue,
		"loss_value": lossValue,
		"impacts":    impacts,
	})
}

type whatIfRequest struct {
	Outcomes    []overrideRequest  `json:"outcomes"`
	Adjustments map[string]float64 `json:"adjustments"`
}

// WhatIf evaluates expected_scores under an ad-hoc overlay of outcomes
// and rating adjustments without persisting anything.
func (h *AnalysisHandler) WhatIf(c *gin.Context) {
	var req whatIfRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	state = applyOverrides(state, req.Outcomes)
	for team, delta := range req.Adjustments {
		state, err = state.WithTeamAdjustment(team, delta)
		if err != nil {
			utils.SendFromError(c, err)
			return
		}
	}

	scores, err := scoring.ExpectedScores(state)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, scores)
}

// SlotCandidates reports every team with a non-negligible chance of
// occupying (round, position), ranked by occupancy probability.
func (h *AnalysisHandler) SlotCandidates(c *gin.Context) {
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		utils.SendValidationError(c, "invalid round", err.Error())
		return
	}
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		utils.SendValidationError(c, "invalid position", err.Error())
		return
	}

	var req valueRequest
	_ = c.ShouldBindJSON(&req)

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	candidates, err := sensitivity.SlotCandidates(h.eng.Book(), toPositions(req.Positions), state, round, position)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, candidates)
}

// ComputePath returns the minimum set of forced-win overrides that puts
// team at (round, position). The path is derived from the bracket shape
// alone; current overrides and outcomes are not taken into account.
func (h *AnalysisHandler) ComputePath(c *gin.Context) {
	team := c.Param("team")
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil {
		utils.SendValidationError(c, "invalid round", err.Error())
		return
	}
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil {
		utils.SendValidationError(c, "invalid position", err.Error())
		return
	}

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	path, reachable := sensitivity.ComputePath(state.Bracket, team, round, position)
	utils.SendSuccess(c, gin.H{"reachable": reachable, "path": path})
}
