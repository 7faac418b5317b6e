package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/api/handlers"
	"github.com/jstittsworth/bracket-engine/internal/config"
	"github.com/jstittsworth/bracket-engine/internal/engine"
)

// SetupRoutes configures every API route on the given router group.
func SetupRoutes(group *gin.RouterGroup, eng *engine.Engine, cfg *config.Config) {
	tournamentHandler := handlers.NewTournamentHandler(eng)
	portfolioHandler := handlers.NewPortfolioHandler(eng, cfg.MaxSimulations, cfg.SensitivityEpsilon, cfg.DistributionBins)
	analysisHandler := handlers.NewAnalysisHandler(eng, cfg.SensitivityEpsilon)
	adminHandler := handlers.NewAdminHandler(eng)

	// Tournament endpoints
	group.GET("/teams", tournamentHandler.Teams)
	group.GET("/teams/:name", tournamentHandler.Team)
	group.GET("/bracket", tournamentHandler.Bracket)
	group.GET("/bracket/tree", tournamentHandler.BracketTree)
	group.GET("/scores", tournamentHandler.Scores)
	group.GET("/scoring-config", tournamentHandler.ScoringConfig)

	group.GET("/games/completed", tournamentHandler.CompletedGames)
	group.POST("/games/completed", tournamentHandler.AddCompletedGame)
	group.DELETE("/games/completed/:winner/:loser", tournamentHandler.RemoveCompletedGame)

	// Portfolio endpoints
	group.GET("/portfolio/positions", portfolioHandler.Positions)
	group.POST("/portfolio/value", portfolioHandler.Value)
	group.POST("/portfolio/distribution", portfolioHandler.Distribution)
	group.POST("/portfolio/deltas", portfolioHandler.Deltas)
	group.POST("/portfolio/teams/:team/impact", portfolioHandler.TeamImpact)
	group.POST("/portfolio/hypothetical-value", portfolioHandler.HypotheticalValue)

	// Analysis endpoints
	group.POST("/analysis/upcoming-games", analysisHandler.UpcomingGames)
	group.POST("/analysis/game-importance", analysisHandler.GameImportance)
	group.POST("/analysis/games/:team1/:team2/impact", analysisHandler.GameImpact)
	group.POST("/analysis/what-if", analysisHandler.WhatIf)
	group.POST("/analysis/slots/:round/:position/candidates", analysisHandler.SlotCandidates)
	group.GET("/analysis/path/:team/:round/:position", analysisHandler.ComputePath)

	// Scenario and override administration
	admin := group.Group("/admin")
	{
		admin.GET("/scenarios", adminHandler.ListScenarios)
		admin.POST("/scenarios", adminHandler.CreateScenario)
		admin.DELETE("/scenarios/:id", adminHandler.DeleteScenario)
		admin.GET("/active-scenario", adminHandler.GetActiveScenario)
		admin.PUT("/active-scenario", adminHandler.SetActiveScenario)

		admin.PUT("/overrides/game-outcome", adminHandler.UpsertGameOutcome)
		admin.DELETE("/overrides/game-outcome", adminHandler.DeleteGameOutcome)
		admin.POST("/overrides/game-outcome/promote", adminHandler.PromoteGameOutcome)

		admin.PUT("/overrides/rating-adjustment", adminHandler.UpsertRatingAdjustment)
		admin.DELETE("/overrides/rating-adjustment", adminHandler.DeleteRatingAdjustment)

		admin.POST("/overrides/clear-ad-hoc", adminHandler.ClearAdHoc)
		admin.POST("/overrides/clear-all", adminHandler.ClearAll)
	}
}
