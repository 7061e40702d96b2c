package engagement

import (
	"fmt"
	"sort"
	"time"

	"aiInsider/domain"
	"aiInsider/pkg/logger"
)

// Option configures a Scorer.
type Option func(*Scorer)

// WithClock replaces time.Now as the action log timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer accumulates a session's engagement score and fires each threshold
// effect at most once. A Scorer is not safe for concurrent use; Sessions
// serializes calls per session.
type Scorer struct {
	points     map[string]int
	effectName map[int]string
	thresholds []int // ascending
	effects    map[int][]func()
	milestones []domain.Milestone // ascending by Seconds

	score          int
	log            []domain.ActionEntry
	fired          map[int]bool
	milestoneFired map[int]bool
	firedNow       []domain.Effect

	now func() time.Time
}

func NewScorer(rules domain.ScoringRules, opts ...Option) *Scorer {
	s := &Scorer{
		points:         make(map[string]int, len(rules.Points)),
		effectName:     make(map[int]string, len(rules.Thresholds)),
		effects:        make(map[int][]func()),
		fired:          make(map[int]bool),
		milestoneFired: make(map[int]bool),
		now:            time.Now,
	}
	for action, p := range rules.Points {
		if p < 0 {
			p = 0
		}
		s.points[action] = p
	}
	for t, name := range rules.Thresholds {
		s.addThreshold(t)
		s.effectName[t] = name
	}

	s.milestones = append([]domain.Milestone(nil), rules.Milestones...)
	sort.SliceStable(s.milestones, func(i, j int) bool {
		return s.milestones[i].Seconds < s.milestones[j].Seconds
	})

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnThresholdReached registers effect to run the first time the score reaches
// threshold. A threshold unknown to the rules is added; if the score is already
// at or above it, it fires immediately. Registering after the threshold already
// fired has no effect.
func (s *Scorer) OnThresholdReached(threshold int, effect func()) {
	if effect == nil {
		return
	}
	s.addThreshold(threshold)
	s.effects[threshold] = append(s.effects[threshold], effect)
	s.evaluateThresholds()
}

// RecordAction scores one action. Unknown actions are logged with zero points.
func (s *Scorer) RecordAction(action string) {
	points := s.points[action]
	s.log = append(s.log, domain.ActionEntry{
		Action:    action,
		Points:    points,
		Timestamp: s.now(),
	})
	s.score += points
	s.evaluateThresholds()
}

// RecordElapsedTime records every not-yet-fired milestone at or below seconds.
func (s *Scorer) RecordElapsedTime(seconds int) {
	for _, m := range s.milestones {
		if m.Seconds > seconds {
			break
		}
		if s.milestoneFired[m.Seconds] {
			continue
		}
		s.milestoneFired[m.Seconds] = true
		s.RecordAction(m.Action)
	}
}

func (s *Scorer) Score() int {
	return s.score
}

// State returns a copy of the session state.
func (s *Scorer) State() domain.EngagementState {
	fired := make([]int, 0, len(s.fired))
	for _, t := range s.thresholds {
		if s.fired[t] {
			fired = append(fired, t)
		}
	}
	return domain.EngagementState{
		Score: s.score,
		Log:   append([]domain.ActionEntry(nil), s.log...),
		Fired: fired,
	}
}

// Known reports whether action has a scoring rule.
func (s *Scorer) Known(action string) bool {
	_, ok := s.points[action]
	return ok
}

// DrainFired returns the effects fired since the previous call.
func (s *Scorer) DrainFired() []domain.Effect {
	out := s.firedNow
	s.firedNow = nil
	return out
}

func (s *Scorer) evaluateThresholds() {
	for _, t := range s.thresholds {
		if s.score < t {
			break
		}
		if s.fired[t] {
			continue
		}
		s.fired[t] = true
		s.firedNow = append(s.firedNow, domain.Effect{Threshold: t, Name: s.effectName[t]})
		for _, effect := range s.effects[t] {
			s.invoke(t, effect)
		}
	}
}

func (s *Scorer) invoke(threshold int, effect func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("threshold effect failed",
				"threshold", threshold,
				"effect", s.effectName[threshold],
				"error", fmt.Sprint(r),
			)
		}
	}()
	effect()
}

func (s *Scorer) addThreshold(t int) {
	i := sort.SearchInts(s.thresholds, t)
	if i < len(s.thresholds) && s.thresholds[i] == t {
		return
	}
	s.thresholds = append(s.thresholds, 0)
	copy(s.thresholds[i+1:], s.thresholds[i:])
	s.thresholds[i] = t
}
