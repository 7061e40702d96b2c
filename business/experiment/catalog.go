package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"aiInsider/domain"
	"aiInsider/pkg/logger"
)

// OverrideRepository stores admin-managed experiment definitions.
type OverrideRepository interface {
	ListOverrides(ctx context.Context) ([]domain.ExperimentOverride, error)
	UpsertOverride(ctx context.Context, o domain.ExperimentOverride) error
}

// Catalog is the live experiment configuration: the file-based definitions
// with stored overrides applied on top.
type Catalog struct {
	mu      sync.RWMutex
	base    domain.ExperimentConfig
	current domain.ExperimentConfig
	repo    OverrideRepository
}

func NewCatalog(base domain.ExperimentConfig, repo OverrideRepository) *Catalog {
	return &Catalog{
		base:    cloneConfig(base),
		current: cloneConfig(base),
		repo:    repo,
	}
}

// Config returns a copy of the current configuration.
func (c *Catalog) Config() domain.ExperimentConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneConfig(c.current)
}

// Reload re-reads overrides from the repository. A row that fails to decode is
// logged and skipped; the remaining overrides still apply.
func (c *Catalog) Reload(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}
	rows, err := c.repo.ListOverrides(ctx)
	if err != nil {
		return fmt.Errorf("list experiment overrides: %w", err)
	}

	next := cloneConfig(c.base)
	for _, row := range rows {
		exp, err := FromOverride(row)
		if err != nil {
			logger.Warn("skipping unreadable experiment override", "experiment", row.Name, "error", err)
			ConfigWarningsTotal.WithLabelValues(row.Name).Inc()
			continue
		}
		next[exp.Name] = exp
	}

	c.mu.Lock()
	c.current = next
	c.mu.Unlock()
	return nil
}

// Upsert stores exp as an override and makes it live. Validation problems are
// returned as warnings alongside a nil error: a malformed experiment is still
// served best-effort.
func (c *Catalog) Upsert(ctx context.Context, exp domain.Experiment) ([]error, error) {
	if exp.Name == "" {
		return nil, fmt.Errorf("experiment name is required")
	}
	warnings := ValidateExperiment(exp.Name, exp)

	if c.repo != nil {
		row, err := ToOverride(exp)
		if err != nil {
			return warnings, err
		}
		if err := c.repo.UpsertOverride(ctx, row); err != nil {
			return warnings, fmt.Errorf("upsert experiment override: %w", err)
		}
	}

	c.mu.Lock()
	c.current[exp.Name] = cloneExperiment(exp)
	c.mu.Unlock()
	return warnings, nil
}

func ToOverride(exp domain.Experiment) (domain.ExperimentOverride, error) {
	variants, err := json.Marshal(exp.Variants)
	if err != nil {
		return domain.ExperimentOverride{}, fmt.Errorf("marshal variants: %w", err)
	}
	weights, err := json.Marshal(exp.Weights)
	if err != nil {
		return domain.ExperimentOverride{}, fmt.Errorf("marshal weights: %w", err)
	}
	return domain.ExperimentOverride{
		Name:           exp.Name,
		Enabled:        exp.Enabled,
		Variants:       variants,
		Weights:        weights,
		ConversionGoal: exp.ConversionGoal,
	}, nil
}

func FromOverride(row domain.ExperimentOverride) (domain.Experiment, error) {
	exp := domain.Experiment{
		Name:           row.Name,
		Enabled:        row.Enabled,
		ConversionGoal: row.ConversionGoal,
	}
	if len(row.Variants) > 0 {
		if err := json.Unmarshal(row.Variants, &exp.Variants); err != nil {
			return domain.Experiment{}, fmt.Errorf("override %q variants: %w", row.Name, err)
		}
	}
	if len(row.Weights) > 0 {
		if err := json.Unmarshal(row.Weights, &exp.Weights); err != nil {
			return domain.Experiment{}, fmt.Errorf("override %q weights: %w", row.Name, err)
		}
	}
	return exp, nil
}

func cloneConfig(cfg domain.ExperimentConfig) domain.ExperimentConfig {
	out := make(domain.ExperimentConfig, len(cfg))
	for name, exp := range cfg {
		exp.Name = name
		out[name] = cloneExperiment(exp)
	}
	return out
}

func cloneExperiment(exp domain.Experiment) domain.Experiment {
	exp.Variants = append([]string(nil), exp.Variants...)
	exp.Weights = append([]int(nil), exp.Weights...)
	return exp
}
