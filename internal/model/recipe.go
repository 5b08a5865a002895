package model

import "time"

// RecipeDef describes a business metric as configured by the operator.
// Ingredients lists the series names in the order the formula engine indexes them.
type RecipeDef struct {
	Name        string   `yaml:"name" json:"name" validate:"required"`
	Formula     string   `yaml:"formula" json:"formula" validate:"required"`
	Ingredients []string `yaml:"ingredients" json:"ingredients" validate:"dive,required"`
}

// OutcomeKind classifies the result of a recipe evaluation.
type OutcomeKind string

const (
	KindNumber  OutcomeKind = "NUMBER"
	KindNoValue OutcomeKind = "NO_VALUE"
	KindUnknown OutcomeKind = "UNKNOWN"
	KindFailed  OutcomeKind = "FAILED" // recipe could not be built
)

// RecipeResult is one recipe's outcome for one date key within a run.
type RecipeResult struct {
	Recipe  string      `json:"recipe"`
	DateKey string      `json:"date_key"`
	Kind    OutcomeKind `json:"kind"`
	Value   float64     `json:"value"`
	Error   string      `json:"error,omitempty"`
}

// LedgerState holds the most recent result for every recipe.
type LedgerState struct {
	Latest    map[string]RecipeResult `json:"latest"`
	LastRunID string                  `json:"last_run_id"`
	LastRunAt time.Time               `json:"last_run_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}
