package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Experiment is one named A/B test. Weights are integer percentages parallel to Variants.
type Experiment struct {
	Name           string   `json:"name" yaml:"-"`
	Enabled        bool     `json:"enabled" yaml:"enabled"`
	Variants       []string `json:"variants" yaml:"variants"`
	Weights        []int    `json:"weights" yaml:"weights"`
	ConversionGoal string   `json:"conversion_goal,omitempty" yaml:"conversion_goal"`
}

// VariantLabel returns the label at idx, or "" when idx is out of range.
func (e Experiment) VariantLabel(idx int) string {
	if idx < 0 || idx >= len(e.Variants) {
		return ""
	}
	return e.Variants[idx]
}

// ExperimentConfig maps experiment name to its definition.
type ExperimentConfig map[string]Experiment

// VariantAssignment maps experiment name to the selected variant index.
type VariantAssignment map[string]int

// ExperimentOverride is an admin-managed experiment definition stored in postgres.
// It replaces the file-based definition with the same name.
type ExperimentOverride struct {
	Name           string         `gorm:"column:name;primaryKey" json:"name"`
	Enabled        bool           `gorm:"column:enabled;not null" json:"enabled"`
	Variants       datatypes.JSON `gorm:"column:variants;type:jsonb" json:"variants"`
	Weights        datatypes.JSON `gorm:"column:weights;type:jsonb" json:"weights"`
	ConversionGoal string         `gorm:"column:conversion_goal" json:"conversion_goal"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ExperimentOverride) TableName() string {
	return "experiment_overrides"
}

// AssignedVariant is the API view of a single assignment.
type AssignedVariant struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Enabled bool   `json:"enabled"`
}
