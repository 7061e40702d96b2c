package experiment

import (
	"time"

	"aiInsider/domain"

	"gorm.io/datatypes"
)

// ExposureEvents builds one ab_test_exposure event per enabled experiment.
func ExposureEvents(visitorID string, cfg domain.ExperimentConfig, assignment domain.VariantAssignment, now time.Time) []domain.TrackingEvent {
	events := make([]domain.TrackingEvent, 0, len(cfg))
	for _, name := range sortedNames(cfg) {
		exp := cfg[name]
		if !exp.Enabled {
			continue
		}
		idx, ok := assignment[name]
		if !ok {
			continue
		}
		events = append(events, variantEvent(domain.EventExposure, visitorID, name, exp, idx, now))
	}
	return events
}

// ConversionEvents builds ab_test_conversion events for every enabled
// experiment whose conversion goal is goal.
func ConversionEvents(visitorID, goal string, cfg domain.ExperimentConfig, assignment domain.VariantAssignment, now time.Time) []domain.TrackingEvent {
	var events []domain.TrackingEvent
	for _, name := range sortedNames(cfg) {
		exp := cfg[name]
		if !exp.Enabled || exp.ConversionGoal != goal {
			continue
		}
		idx, ok := assignment[name]
		if !ok {
			continue
		}
		ev := variantEvent(domain.EventConversion, visitorID, name, exp, idx, now)
		ev.Properties["goal"] = goal
		events = append(events, ev)
	}
	return events
}

func variantEvent(eventName, visitorID, name string, exp domain.Experiment, idx int, now time.Time) domain.TrackingEvent {
	return domain.TrackingEvent{
		Name:      eventName,
		VisitorID: visitorID,
		CreatedAt: now,
		Properties: datatypes.JSONMap{
			"experiment":   name,
			"variant":      idx,
			"variant_name": exp.VariantLabel(idx),
		},
	}
}

// Describe turns an assignment into its API view.
func Describe(cfg domain.ExperimentConfig, assignment domain.VariantAssignment) map[string]domain.AssignedVariant {
	out := make(map[string]domain.AssignedVariant, len(assignment))
	for name, idx := range assignment {
		exp := cfg[name]
		out[name] = domain.AssignedVariant{
			Index:   idx,
			Label:   exp.VariantLabel(idx),
			Enabled: exp.Enabled,
		}
	}
	return out
}
