package experiment

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"aiInsider/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes++
	return nil
}

func landingConfig() domain.ExperimentConfig {
	return domain.ExperimentConfig{
		"hero_cta_text": {
			Enabled:        true,
			Variants:       []string{"Choose Profession", "Start Learning AI", "Get Free Access", "Begin Your Journey"},
			Weights:        []int{40, 25, 20, 15},
			ConversionGoal: "form_submission",
		},
		"course_price": {
			Enabled:        true,
			Variants:       []string{"$199/month", "$179/month", "$219/month", "$159/month"},
			Weights:        []int{40, 25, 20, 15},
			ConversionGoal: "enrollment_form_submission",
		},
		"nav_cta_text": {
			Enabled:  false,
			Variants: []string{"Join Channel", "Get Started", "Learn More"},
			Weights:  []int{50, 30, 20},
		},
	}
}

func referenceHash(s string) int32 {
	var h int64
	for _, c := range s {
		h = (h*31 + int64(c)) & 0xFFFFFFFF
	}
	return int32(uint32(h))
}

func TestHashToSeed(t *testing.T) {
	assert.Equal(t, int32(97), HashToSeed("a", ""))
	assert.Equal(t, int32(97*31+98), HashToSeed("a", "b"))
	assert.Equal(t, HashToSeed("ab", ""), HashToSeed("a", "b"))

	long := "ai_1718000000000_k3j5h2l9x_hero_cta_text"
	assert.Equal(t, referenceHash(long), HashToSeed(long, ""))
	assert.Equal(t, HashToSeed("visitor", "course_price"), HashToSeed("visitor", "course_price"))
	assert.NotEqual(t, HashToSeed("visitor", "course_price"), HashToSeed("visitor", "hero_cta_text"))
}

func TestHashToSeed_UTF16CodeUnits(t *testing.T) {
	// U+1F600 is a surrogate pair: 0xD83D 0xDE00.
	want := int32(0xD83D)*31 + int32(0xDE00)
	assert.Equal(t, want, HashToSeed("\U0001F600", ""))
}

func TestSelectVariant(t *testing.T) {
	weights := []int{40, 25, 20, 15}

	tests := []struct {
		name    string
		weights []int
		seed    int32
		want    int
	}{
		{name: "documented example", weights: weights, seed: 250, want: 0},
		{name: "exact boundary", weights: weights, seed: 650, want: 1},
		{name: "just past boundary", weights: weights, seed: 651, want: 2},
		{name: "top of range", weights: weights, seed: 999, want: 3},
		{name: "seed wraps at 1000", weights: weights, seed: 1250, want: 0},
		{name: "negative seed normalised", weights: weights, seed: -350, want: 1},
		{name: "empty weights", weights: nil, seed: 500, want: 0},
		{name: "all zero", weights: []int{0, 0, 0}, seed: 500, want: 0},
		{name: "negative weight counts as zero", weights: []int{-10, 50, 50}, seed: 400, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectVariant(tt.weights, tt.seed))
		})
	}
}

func TestSelectVariant_InRangeAndDeterministic(t *testing.T) {
	lists := [][]int{{40, 25, 20, 15}, {25, 25, 25, 25}, {50, 30, 20}, {100}, {34, 33, 33}}
	for _, weights := range lists {
		for seed := int32(-3000); seed <= 3000; seed += 7 {
			idx := SelectVariant(weights, seed)
			require.GreaterOrEqual(t, idx, 0)
			require.Less(t, idx, len(weights))
			require.Equal(t, idx, SelectVariant(weights, seed))
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := domain.ExperimentConfig{
		"ok":       {Enabled: true, Variants: []string{"a", "b"}, Weights: []int{50, 50}},
		"bad_sum":  {Enabled: true, Variants: []string{"a", "b"}, Weights: []int{50, 40}},
		"mismatch": {Enabled: true, Variants: []string{"a", "b", "c"}, Weights: []int{50, 50}},
		"negative": {Enabled: false, Variants: []string{"a", "b"}, Weights: []int{120, -20}},
		"disabled": {Enabled: false, Variants: []string{"a", "b"}, Weights: []int{10, 10}},
	}

	errs := Validate(cfg)
	require.Len(t, errs, 3)

	var names []string
	for _, err := range errs {
		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		names = append(names, ce.Experiment)
	}
	assert.Equal(t, []string{"bad_sum", "mismatch", "negative"}, names)
}

func TestAssigner_AssignIsIdempotent(t *testing.T) {
	store := newMemStore()
	a := NewAssigner(store)
	cfg := landingConfig()

	first := a.Assign(context.Background(), "ai_visitor_1", cfg)
	require.Len(t, first, len(cfg))
	assert.Equal(t, len(cfg), store.writes)

	second := a.Assign(context.Background(), "ai_visitor_1", cfg)
	assert.Equal(t, first, second)
	assert.Equal(t, len(cfg), store.writes, "second call must not write")

	for name, exp := range cfg {
		want := SelectVariant(exp.Weights, HashToSeed("ai_visitor_1", name))
		assert.Equal(t, want, first[name], name)
		assert.Equal(t, strconv.Itoa(want), store.data[AssignmentKey("ai_visitor_1", name)])
	}
}

func TestAssigner_ReusesPersistedAssignment(t *testing.T) {
	store := newMemStore()
	store.data[AssignmentKey("v", "hero_cta_text")] = "3"
	a := NewAssigner(store)

	got := a.Assign(context.Background(), "v", domain.ExperimentConfig{"hero_cta_text": landingConfig()["hero_cta_text"]})
	assert.Equal(t, 3, got["hero_cta_text"])
	assert.Zero(t, store.writes)
}

func TestAssigner_RedrawsUnusableAssignment(t *testing.T) {
	store := newMemStore()
	store.data[AssignmentKey("v", "hero_cta_text")] = "9"
	a := NewAssigner(store)
	exp := landingConfig()["hero_cta_text"]

	got := a.Assign(context.Background(), "v", domain.ExperimentConfig{"hero_cta_text": exp})
	want := SelectVariant(exp.Weights, HashToSeed("v", "hero_cta_text"))
	assert.Equal(t, want, got["hero_cta_text"])
	assert.Equal(t, 1, store.writes)
}

func TestAssigner_StoreFailureStillAssigns(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	a := NewAssigner(store)
	exp := landingConfig()["course_price"]

	got := a.Assign(context.Background(), "v", domain.ExperimentConfig{"course_price": exp})
	assert.Equal(t, SelectVariant(exp.Weights, HashToSeed("v", "course_price")), got["course_price"])
	assert.Zero(t, store.writes)
}

func TestAssigner_MalformedConfigIsBestEffort(t *testing.T) {
	store := newMemStore()
	a := NewAssigner(store)
	cfg := domain.ExperimentConfig{
		"extra_weights": {Enabled: true, Variants: []string{"a", "b"}, Weights: []int{10, 10, 80}},
		"no_weights":    {Enabled: true, Variants: []string{"a", "b"}},
	}

	for i := 0; i < 50; i++ {
		got := a.Assign(context.Background(), "visitor-"+strconv.Itoa(i), cfg)
		assert.Less(t, got["extra_weights"], 2)
		assert.Equal(t, 0, got["no_weights"])
	}
}

func TestExposureAndConversionEvents(t *testing.T) {
	cfg := landingConfig()
	assignment := domain.VariantAssignment{"hero_cta_text": 2, "course_price": 1, "nav_cta_text": 0}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	exposures := ExposureEvents("v", cfg, assignment, now)
	require.Len(t, exposures, 2)
	assert.Equal(t, "course_price", exposures[0].Properties["experiment"])
	assert.Equal(t, "$179/month", exposures[0].Properties["variant_name"])
	assert.Equal(t, "hero_cta_text", exposures[1].Properties["experiment"])
	assert.Equal(t, domain.EventExposure, exposures[1].Name)
	assert.Equal(t, now, exposures[1].CreatedAt)

	conversions := ConversionEvents("v", "form_submission", cfg, assignment, now)
	require.Len(t, conversions, 1)
	assert.Equal(t, domain.EventConversion, conversions[0].Name)
	assert.Equal(t, "hero_cta_text", conversions[0].Properties["experiment"])
	assert.Equal(t, 2, conversions[0].Properties["variant"])
	assert.Equal(t, "Get Free Access", conversions[0].Properties["variant_name"])

	assert.Empty(t, ConversionEvents("v", "telegram_click", cfg, assignment, now))
}

func TestDescribe(t *testing.T) {
	cfg := landingConfig()
	out := Describe(cfg, domain.VariantAssignment{"nav_cta_text": 1})
	assert.Equal(t, domain.AssignedVariant{Index: 1, Label: "Get Started", Enabled: false}, out["nav_cta_text"])
}
