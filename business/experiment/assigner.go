package experiment

import (
	"context"
	"strconv"
	"sync"

	"aiInsider/domain"
	"aiInsider/pkg/logger"
)

// Persistence is the durable key/value store for visitor ids and assignments.
// Get reports ok=false when the key is absent.
type Persistence interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// AssignmentKey is the persistence key of one visitor's variant for an experiment.
func AssignmentKey(visitorID, experimentName string) string {
	return "ab_test:" + visitorID + ":" + experimentName
}

type Assigner struct {
	store  Persistence
	warned sync.Map // experiment name -> struct{}
}

func NewAssigner(store Persistence) *Assigner {
	return &Assigner{store: store}
}

// Assign returns the variant index of visitorID for every experiment in cfg.
// A persisted assignment is reused as is; otherwise the variant is drawn from
// HashToSeed and written once. Storage failures are logged and never surface:
// the caller always gets a usable assignment.
func (a *Assigner) Assign(ctx context.Context, visitorID string, cfg domain.ExperimentConfig) domain.VariantAssignment {
	out := make(domain.VariantAssignment, len(cfg))

	for _, name := range sortedNames(cfg) {
		exp := cfg[name]
		a.warnOnce(name, exp)

		key := AssignmentKey(visitorID, name)
		stored, ok, err := a.store.Get(ctx, key)
		if err != nil {
			logger.Warn("read persisted assignment failed",
				"visitor_id", visitorID,
				"experiment", name,
				"error", err,
			)
			idx := a.draw(visitorID, name, exp)
			out[name] = idx
			record(name, idx, "new")
			continue
		}

		if ok {
			if idx, valid := parseIndex(stored, len(exp.Variants)); valid {
				out[name] = idx
				record(name, idx, "persisted")
				continue
			}
			logger.Warn("discarding unusable persisted assignment",
				"visitor_id", visitorID,
				"experiment", name,
				"stored", stored,
				"variants", len(exp.Variants),
			)
		}

		idx := a.draw(visitorID, name, exp)
		if err := a.store.Set(ctx, key, strconv.Itoa(idx)); err != nil {
			logger.Warn("persist assignment failed",
				"visitor_id", visitorID,
				"experiment", name,
				"error", err,
			)
		}
		out[name] = idx
		record(name, idx, "new")
	}

	return out
}

func (a *Assigner) draw(visitorID, name string, exp domain.Experiment) int {
	seed := HashToSeed(visitorID, name)
	return SelectVariant(drawWeights(exp), seed)
}

func (a *Assigner) warnOnce(name string, exp domain.Experiment) {
	errs := ValidateExperiment(name, exp)
	if len(errs) == 0 {
		return
	}
	if _, loaded := a.warned.LoadOrStore(name, struct{}{}); loaded {
		return
	}
	for _, err := range errs {
		logger.Warn("experiment configuration error", "experiment", name, "error", err)
	}
	ConfigWarningsTotal.WithLabelValues(name).Inc()
}

// parseIndex accepts a stored index only if it still addresses a variant.
// An experiment with no variants accepts index 0.
func parseIndex(s string, variants int) (int, bool) {
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, false
	}
	if variants == 0 {
		return idx, idx == 0
	}
	return idx, idx < variants
}

func record(name string, idx int, source string) {
	AssignmentsTotal.WithLabelValues(name, strconv.Itoa(idx), source).Inc()
}
