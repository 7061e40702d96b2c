package experiment

import (
	"fmt"
	"sort"

	"aiInsider/domain"
)

// RequiredWeightTotal is the sum enabled experiments must reach.
const RequiredWeightTotal = 100

// ConfigError describes a malformed experiment definition. It is reported, never fatal.
type ConfigError struct {
	Experiment string
	Reason     string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("experiment %q: %s", e.Experiment, e.Reason)
}

// ValidateExperiment checks one experiment definition.
func ValidateExperiment(name string, exp domain.Experiment) []error {
	var errs []error
	if len(exp.Variants) == 0 {
		errs = append(errs, &ConfigError{Experiment: name, Reason: "no variants"})
	}
	if len(exp.Weights) != len(exp.Variants) {
		errs = append(errs, &ConfigError{
			Experiment: name,
			Reason:     fmt.Sprintf("%d weights for %d variants", len(exp.Weights), len(exp.Variants)),
		})
	}

	total := 0
	for i, w := range exp.Weights {
		if w < 0 {
			errs = append(errs, &ConfigError{Experiment: name, Reason: fmt.Sprintf("negative weight %d at index %d", w, i)})
		}
		total += w
	}
	if exp.Enabled && total != RequiredWeightTotal {
		errs = append(errs, &ConfigError{
			Experiment: name,
			Reason:     fmt.Sprintf("weights sum to %d, want %d", total, RequiredWeightTotal),
		})
	}
	return errs
}

// Validate checks every experiment in cfg, in name order.
func Validate(cfg domain.ExperimentConfig) []error {
	var errs []error
	for _, name := range sortedNames(cfg) {
		errs = append(errs, ValidateExperiment(name, cfg[name])...)
	}
	return errs
}

func sortedNames(cfg domain.ExperimentConfig) []string {
	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// drawWeights returns the weights used for a best-effort draw: extra weights
// beyond the variant list are dropped so the index stays addressable.
func drawWeights(exp domain.Experiment) []int {
	if len(exp.Weights) > len(exp.Variants) {
		return exp.Weights[:len(exp.Variants)]
	}
	return exp.Weights
}
