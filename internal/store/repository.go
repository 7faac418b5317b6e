package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/jstittsworth/bracket-engine/internal/errs"
)

// Repository is the persistence boundary the engine reloads from.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs auto-migration for every store model.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&CompletedGame{},
		&Scenario{},
		&ActiveScenario{},
		&WhatIfGameOutcome{},
		&WhatIfRatingAdjustment{},
	)
}

// normalizePair returns (team1, team2, probability) reordered so
// team1 <= team2 alphabetically, flipping probability if a swap was
// needed, per the storage layer's alphabetic normalization rule.
func normalizePair(team1, team2 string, probability float64) (string, string, float64) {
	if team1 <= team2 {
		return team1, team2, probability
	}
	return team2, team1, 1 - probability
}

// --- Completed games ---

func (r *Repository) ListCompletedGames() ([]CompletedGame, error) {
	var games []CompletedGame
	if err := r.db.Order("timestamp asc").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

func (r *Repository) AddCompletedGame(winner, loser string, round *int) (*CompletedGame, error) {
	game := &CompletedGame{Winner: winner, Loser: loser, Round: round, Timestamp: time.Now().UTC()}
	if err := r.db.Create(game).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: game (%s, %s) already recorded", errs.ErrConflictingName, winner, loser)
		}
		return nil, err
	}
	return game, nil
}

func (r *Repository) RemoveCompletedGame(winner, loser string) error {
	res := r.db.Where("winner = ? AND loser = ?", winner, loser).Delete(&CompletedGame{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: completed game (%s, %s)", errs.ErrNotFound, winner, loser)
	}
	return nil
}

// --- Scenarios ---

func (r *Repository) CreateScenario(name string, description *string) (*Scenario, error) {
	scenario := &Scenario{Name: name, Description: description, CreatedAt: time.Now().UTC()}
	if err := r.db.Create(scenario).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: scenario name %q already exists", errs.ErrConflictingName, name)
		}
		return nil, err
	}
	return scenario, nil
}

// DeleteScenario removes a scenario and, per the cascade rule, every
// override scoped to it.
func (r *Repository) DeleteScenario(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&Scenario{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: scenario %d", errs.ErrNotFound, id)
		}
		if err := tx.Where("scenario_id = ?", id).Delete(&WhatIfGameOutcome{}).Error; err != nil {
			return err
		}
		if err := tx.Where("scenario_id = ?", id).Delete(&WhatIfRatingAdjustment{}).Error; err != nil {
			return err
		}
		return tx.Model(&ActiveScenario{}).Where("scenario_id = ?", id).Update("scenario_id", nil).Error
	})
}

func (r *Repository) ListScenarios() ([]Scenario, error) {
	var scenarios []Scenario
	if err := r.db.Order("created_at asc").Find(&scenarios).Error; err != nil {
		return nil, err
	}
	return scenarios, nil
}

// --- Active scenario (singleton) ---

func (r *Repository) GetActiveScenario() (*ActiveScenario, error) {
	var row ActiveScenario
	err := r.db.FirstOrCreate(&row, ActiveScenario{ID: 1}).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) SetActiveScenario(scenarioID *uint) error {
	row, err := r.GetActiveScenario()
	if err != nil {
		return err
	}
	row.ScenarioID = scenarioID
	return r.db.Save(row).Error
}

// --- What-if overrides ---

func (r *Repository) UpsertGameOutcome(team1, team2 string, probability float64, isPermanent bool, scenarioID *uint) (*WhatIfGameOutcome, error) {
	t1, t2, p := normalizePair(team1, team2, probability)

	var existing WhatIfGameOutcome
	q := r.scopedOutcomeQuery(t1, t2, isPermanent, scenarioID)
	err := q.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := &WhatIfGameOutcome{Team1: t1, Team2: t2, Probability: p, IsPermanent: isPermanent, ScenarioID: scenarioID}
		if err := r.db.Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	case err != nil:
		return nil, err
	default:
		existing.Probability = p
		if err := r.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
}

func (r *Repository) scopedOutcomeQuery(team1, team2 string, isPermanent bool, scenarioID *uint) *gorm.DB {
	q := r.db.Where("team1 = ? AND team2 = ? AND is_permanent = ?", team1, team2, isPermanent)
	if scenarioID == nil {
		return q.Where("scenario_id IS NULL")
	}
	return q.Where("scenario_id = ?", *scenarioID)
}

func (r *Repository) DeleteGameOutcome(team1, team2 string, isPermanent bool, scenarioID *uint) error {
	t1, t2, _ := normalizePair(team1, team2, 0)
	res := r.scopedOutcomeQuery(t1, t2, isPermanent, scenarioID).Delete(&WhatIfGameOutcome{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: override (%s, %s)", errs.ErrNotFound, t1, t2)
	}
	return nil
}

func (r *Repository) ListGameOutcomes(isPermanent bool, scenarioID *uint) ([]WhatIfGameOutcome, error) {
	q := r.db.Where("is_permanent = ?", isPermanent)
	if scenarioID == nil {
		q = q.Where("scenario_id IS NULL")
	} else {
		q = q.Where("scenario_id = ?", *scenarioID)
	}
	var rows []WhatIfGameOutcome
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PromoteGameOutcomeToPermanent copies a scenario/ad-hoc override into the
// permanent scope.
func (r *Repository) PromoteGameOutcomeToPermanent(team1, team2 string, scenarioID *uint) error {
	t1, t2, _ := normalizePair(team1, team2, 0)
	var row WhatIfGameOutcome
	if err := r.scopedOutcomeQuery(t1, t2, false, scenarioID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: override (%s, %s)", errs.ErrNotFound, t1, t2)
		}
		return err
	}
	_, err := r.UpsertGameOutcome(t1, t2, row.Probability, true, nil)
	return err
}

func (r *Repository) UpsertRatingAdjustment(team string, adjustment float64, isPermanent bool, scenarioID *uint) (*WhatIfRatingAdjustment, error) {
	var existing WhatIfRatingAdjustment
	q := r.scopedAdjustmentQuery(team, isPermanent, scenarioID)
	err := q.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row := &WhatIfRatingAdjustment{Team: team, Adjustment: adjustment, IsPermanent: isPermanent, ScenarioID: scenarioID}
		if err := r.db.Create(row).Error; err != nil {
			return nil, err
		}
		return row, nil
	case err != nil:
		return nil, err
	default:
		existing.Adjustment = adjustment
		if err := r.db.Save(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
}

func (r *Repository) scopedAdjustmentQuery(team string, isPermanent bool, scenarioID *uint) *gorm.DB {
	q := r.db.Where("team = ? AND is_permanent = ?", team, isPermanent)
	if scenarioID == nil {
		return q.Where("scenario_id IS NULL")
	}
	return q.Where("scenario_id = ?", *scenarioID)
}

func (r *Repository) DeleteRatingAdjustment(team string, isPermanent bool, scenarioID *uint) error {
	res := r.scopedAdjustmentQuery(team, isPermanent, scenarioID).Delete(&WhatIfRatingAdjustment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: rating adjustment for %s", errs.ErrNotFound, team)
	}
	return nil
}

func (r *Repository) ListRatingAdjustments(isPermanent bool, scenarioID *uint) ([]WhatIfRatingAdjustment, error) {
	q := r.db.Where("is_permanent = ?", isPermanent)
	if scenarioID == nil {
		q = q.Where("scenario_id IS NULL")
	} else {
		q = q.Where("scenario_id = ?", *scenarioID)
	}
	var rows []WhatIfRatingAdjustment
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// --- clear operations ---

// ClearAdHoc deletes every unscoped (ad-hoc) override.
func (r *Repository) ClearAdHoc() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("is_permanent = false AND scenario_id IS NULL").Delete(&WhatIfGameOutcome{}).Error; err != nil {
			return err
		}
		return tx.Where("is_permanent = false AND scenario_id IS NULL").Delete(&WhatIfRatingAdjustment{}).Error
	})
}

// ClearAll deletes every override in every scope.
func (r *Repository) ClearAll() error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&WhatIfGameOutcome{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&WhatIfRatingAdjustment{}).Error
	})
}

// isUniqueViolation recognizes a unique-constraint failure whether or
// not the dialector translated it into gorm.ErrDuplicatedKey (it only
// does so when gorm.Config.TranslateError is set).
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
