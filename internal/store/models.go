// Package store is the persistent-state layer the engine reloads from
// at well-defined reload points: completed games, named scenarios, the
// active-scenario toggle, and scoped what-if overrides. None of this is
// consulted inside the analytical core itself (internal/bracket,
// internal/propagate, ...); the core only ever sees a TournamentState
// assembled by the caller from what this package returns.
package store

import "time"

// CompletedGame is a played game: the loser is eliminated from every
// subsequent reachability and what-if computation.
type CompletedGame struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Winner    string    `gorm:"not null;uniqueIndex:idx_completed_game_pair" json:"winner"`
	Loser     string    `gorm:"not null;uniqueIndex:idx_completed_game_pair" json:"loser"`
	Round     *int      `json:"round,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (CompletedGame) TableName() string { return "completed_games" }

// Scenario is a named, persistent bundle of what-if overrides.
type Scenario struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"not null;uniqueIndex" json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Scenario) TableName() string { return "scenarios" }

// ActiveScenario is a singleton row: at most one scenario id is active
// at a time. A nil ScenarioID means ad-hoc scope is active.
type ActiveScenario struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	ScenarioID *uint `json:"scenario_id,omitempty"`
}

func (ActiveScenario) TableName() string { return "active_scenario" }

// WhatIfGameOutcome is a scoped pairwise win-probability override.
// Team1/Team2 are stored alphabetically normalized, with Probability
// flipped as needed so the stored pair always reads Team1 <= Team2.
// IsPermanent and ScenarioID together describe scope: a permanent
// override has ScenarioID nil; a scenario override has IsPermanent
// false and ScenarioID set; an ad-hoc override has both IsPermanent
// false and ScenarioID nil.
type WhatIfGameOutcome struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Team1       string  `gorm:"not null;uniqueIndex:idx_whatif_outcome_scope" json:"team1"`
	Team2       string  `gorm:"not null;uniqueIndex:idx_whatif_outcome_scope" json:"team2"`
	Probability float64 `gorm:"not null" json:"probability"`
	IsPermanent bool    `gorm:"not null;uniqueIndex:idx_whatif_outcome_scope" json:"is_permanent"`
	ScenarioID  *uint   `gorm:"uniqueIndex:idx_whatif_outcome_scope" json:"scenario_id,omitempty"`
}

func (WhatIfGameOutcome) TableName() string { return "whatif_game_outcomes" }

// WhatIfRatingAdjustment is a scoped per-team rating-delta override.
type WhatIfRatingAdjustment struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Team        string  `gorm:"not null;uniqueIndex:idx_whatif_adjustment_scope" json:"team"`
	Adjustment  float64 `gorm:"not null" json:"adjustment"`
	IsPermanent bool    `gorm:"not null;uniqueIndex:idx_whatif_adjustment_scope" json:"is_permanent"`
	ScenarioID  *uint   `gorm:"uniqueIndex:idx_whatif_adjustment_scope" json:"scenario_id,omitempty"`
}

func (WhatIfRatingAdjustment) TableName() string { return "whatif_rating_adjustments" }
