package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/distribution"
	"github.com/jstittsworth/bracket-engine/internal/engine"
	"github.com/jstittsworth/bracket-engine/internal/portfolio"
	"github.com/jstittsworth/bracket-engine/internal/sensitivity"
	"github.com/jstittsworth/bracket-engine/pkg/utils"
)

// PortfolioHandler serves the portfolio read operations of §6:
// positions, value, distribution, deltas, team_impact,
// hypothetical_value.
type PortfolioHandler struct {
	eng            *engine.Engine
	maxSimulations int
	epsilon        float64
	bins           int
}

func NewPortfolioHandler(eng *engine.Engine, maxSimulations int, epsilon float64, bins int) *PortfolioHandler {
	return &PortfolioHandler{eng: eng, maxSimulations: maxSimulations, epsilon: epsilon, bins: bins}
}

type positionRequest struct {
	Team     string  `json:"team" binding:"required"`
	Quantity float64 `json:"quantity"`
}

func toPositions(reqs []positionRequest) []portfolio.Position {
	out := make([]portfolio.Position, len(reqs))
	for i, r := range reqs {
		out[i] = portfolio.Position{Team: r.Team, Quantity: r.Quantity}
	}
	return out
}

// Positions reports the caller's current holdings, sourced from the
// market adapter.
func (h *PortfolioHandler) Positions(c *gin.Context) {
	adapter := h.eng.Market()
	if adapter == nil {
		utils.SendInternalError(c, "no market adapter configured")
		return
	}
	positions, err := adapter.Positions(c.Request.Context())
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, positions)
}

type valueRequest struct {
	Positions []positionRequest `json:"positions" binding:"required"`
}

// Value computes {ev, cash, total} for a held position set against the
// current (or what-if-adjusted) TournamentState.
func (h *PortfolioHandler) Value(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	positions := toPositions(req.Positions)
	scores, err := h.eng.ExpectedScores(state)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	ev, warnings := portfolio.Value(h.eng.Book(), positions, scores)
	var cash float64
	for _, p := range positions {
		if p.Team == portfolio.CashKey {
			cash += p.Quantity
		}
	}

	utils.SendSuccess(c, gin.H{
		"ev":       ev,
		"cash":     cash,
		"total":    ev,
		"warnings": warnings,
	})
}

type distributionRequest struct {
	Positions    []positionRequest `json:"positions" binding:"required"`
	NSimulations int               `json:"n_simulations"`
	Seed         int64             `json:"seed"`
	Bins         int               `json:"bins"`
}

// Distribution runs §4.7's Monte Carlo value distribution.
func (h *PortfolioHandler) Distribution(c *gin.Context) {
	var req distributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	if req.NSimulations <= 0 {
		req.NSimulations = h.maxSimulations
	}
	if req.NSimulations > h.maxSimulations {
		req.NSimulations = h.maxSimulations
	}
	if req.Bins <= 0 {
		req.Bins = h.bins
	}

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	summary, err := distribution.Compute(h.eng.Book(), toPositions(req.Positions), state, req.NSimulations, req.Seed, req.Bins)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, summary)
}

// Deltas runs §4.6's team-rating sensitivity for every bracket team.
func (h *PortfolioHandler) Deltas(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	epsilon := h.epsilon
	if raw := c.Query("epsilon"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			epsilon = v
		}
	}

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	deltas, err := sensitivity.GetAllTeamDeltas(h.eng.Book(), toPositions(req.Positions), state, epsilon)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	utils.SendSuccess(c, deltas)
}

// TeamImpact reports one team's portfolio delta and pairwise deltas.
func (h *PortfolioHandler) TeamImpact(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}
	team := c.Param("team")
	epsilon := h.epsilon
	if raw := c.Query("epsilon"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			epsilon = v
		}
	}

	state, err := h.eng.State()
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	portfolioDelta, err := sensitivity.GetTeamPortfolioDelta(h.eng.Book(), toPositions(req.Positions), state, team, epsilon)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}
	pairwise, err := sensitivity.GetTeamPairwiseDeltas(state, team, epsilon)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	utils.SendSuccess(c, gin.H{
		"team":            team,
		"portfolio_delta": portfolioDelta,
		"pairwise_deltas": pairwise,
	})
}

type hypotheticalValueRequest struct {
	Positions       []positionRequest  `json:"positions" binding:"required"`
	PositionChanges []positionRequest  `json:"position_changes"`
	Outcomes        []overrideRequest  `json:"outcomes"`
	Adjustments     map[string]float64 `json:"adjustments"`
}

// HypotheticalValue evaluates portfolio value after applying proposed
// position changes on top of a what-if TournamentState.
func (h *PortfolioHandler) HypotheticalValue(c *gin.Context) {
	var req hypotheticalValueRequest
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

	scores, err := h.eng.ExpectedScores(state)
	if err != nil {
		utils.SendFromError(c, err)
		return
	}

	positions := append(toPositions(req.Positions), toPositions(req.PositionChanges)...)
	value, warnings := portfolio.Value(h.eng.Book(), positions, scores)
	utils.SendSuccess(c, gin.H{"value": value, "warnings": warnings})
}
