package engagement

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 50000
)

// Tracker receives tracking events. Implementations must not block.
type Tracker interface {
	Track(ctx context.Context, ev domain.TrackingEvent)
}

// Info identifies the session a threshold hook fired for.
type Info struct {
	SessionID string
	VisitorID string
	Threshold int
	Effect    string
	Score     int
}

// Result is what a single scoring call produced.
type Result struct {
	Score int             `json:"score"`
	Fired []domain.Effect `json:"fired"`
}

type session struct {
	mu        sync.Mutex
	id        string
	visitorID string
	scorer    *Scorer
	lastSeen  time.Time
}

// Sessions holds one Scorer per page session. Calls into the same session are
// serialized; different sessions proceed independently.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	hooks    map[int][]func(Info)

	rules       domain.ScoringRules
	tracker     Tracker
	ttl         time.Duration
	maxSessions int
	now         func() time.Time
}

type SessionsConfig struct {
	TTL         time.Duration
	MaxSessions int
}

func NewSessions(rules domain.ScoringRules, tracker Tracker, cfg SessionsConfig) *Sessions {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = defaultMaxSessions
	}
	return &Sessions{
		sessions:    make(map[string]*session),
		hooks:       make(map[int][]func(Info)),
		rules:       rules,
		tracker:     tracker,
		ttl:         cfg.TTL,
		maxSessions: cfg.MaxSessions,
		now:         time.Now,
	}
}

// OnThresholdReached registers fn on every session started afterwards. fn runs
// while the session is locked and must not call back into Sessions.
func (s *Sessions) OnThresholdReached(threshold int, fn func(Info)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[threshold] = append(s.hooks[threshold], fn)
}

// Start opens a new scorer session for visitorID.
func (s *Sessions) Start(ctx context.Context, visitorID string) string {
	sess := &session{
		id:        uuid.NewString(),
		visitorID: visitorID,
		lastSeen:  s.now(),
	}
	sess.scorer = NewScorer(s.rules, WithClock(s.now))

	s.mu.Lock()
	for t, fns := range s.hooks {
		for _, fn := range fns {
			threshold, hook := t, fn
			sess.scorer.OnThresholdReached(threshold, func() {
				hook(Info{
					SessionID: sess.id,
					VisitorID: sess.visitorID,
					Threshold: threshold,
					Effect:    s.rules.Thresholds[threshold],
					Score:     sess.scorer.Score(),
				})
			})
		}
	}
	s.sessions[sess.id] = sess
	n := len(s.sessions)
	s.mu.Unlock()

	SessionsActive.Set(float64(n))
	logger.Debug("engagement_session_start", "session_id", sess.id, "visitor_id", visitorID)
	return sess.id
}

// RecordAction scores action in the given session.
func (s *Sessions) RecordAction(ctx context.Context, sessionID, action string) (Result, error) {
	return s.with(ctx, sessionID, func(sess *session) {
		s.recordAction(ctx, sess, action)
	})
}

// RecordElapsedTime feeds the wall-clock time spent on page into the session.
func (s *Sessions) RecordElapsedTime(ctx context.Context, sessionID string, seconds int) (Result, error) {
	return s.with(ctx, sessionID, func(sess *session) {
		before := len(sess.scorer.log)
		total := sess.scorer.Score()
		sess.scorer.RecordElapsedTime(seconds)
		for _, entry := range sess.scorer.log[before:] {
			total += entry.Points
			s.trackAction(ctx, sess, entry, total)
		}
	})
}

// Score returns the session's current score.
func (s *Sessions) Score(sessionID string) (int, error) {
	sess, ok := s.get(sessionID)
	if !ok {
		return 0, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.scorer.Score(), nil
}

// Snapshot returns a copy of the session state.
func (s *Sessions) Snapshot(sessionID string) (domain.SessionSnapshot, error) {
	sess, ok := s.get(sessionID)
	if !ok {
		return domain.SessionSnapshot{}, ErrSessionNotFound
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return domain.SessionSnapshot{
		SessionID: sess.id,
		VisitorID: sess.visitorID,
		State:     sess.scorer.State(),
	}, nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle longer than the TTL, then the least recently seen
// sessions beyond the cap. It returns the number of sessions dropped.
func (s *Sessions) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	type sessInfo struct {
		id       string
		lastSeen time.Time
	}
	infos := make([]sessInfo, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sess.mu.Lock()
		seen := sess.lastSeen
		sess.mu.Unlock()

		if now.Sub(seen) > s.ttl {
			delete(s.sessions, id)
			dropped++
			continue
		}
		infos = append(infos, sessInfo{id: id, lastSeen: seen})
	}

	if toDrop := len(infos) - s.maxSessions; toDrop > 0 {
		sort.Slice(infos, func(i, j int) bool {
			return infos[i].lastSeen.Before(infos[j].lastSeen)
		})
		for i := 0; i < toDrop; i++ {
			delete(s.sessions, infos[i].id)
			dropped++
		}
	}

	SessionsActive.Set(float64(len(s.sessions)))
	if dropped > 0 {
		logger.Debug("engagement_sessions_swept", "dropped", dropped, "remaining", len(s.sessions))
	}
	return dropped
}

func (s *Sessions) with(ctx context.Context, sessionID string, fn func(*session)) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	sess, ok := s.get(sessionID)
	if !ok {
		return Result{}, ErrSessionNotFound
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.lastSeen = s.now()
	fn(sess)

	fired := sess.scorer.DrainFired()
	for _, eff := range fired {
		ThresholdsFiredTotal.WithLabelValues(strconv.Itoa(eff.Threshold), eff.Name).Inc()
		s.track(ctx, sess, domain.EventThresholdReached, datatypes.JSONMap{
			"threshold":   eff.Threshold,
			"effect":      eff.Name,
			"total_score": sess.scorer.Score(),
		})
	}
	if fired == nil {
		fired = []domain.Effect{}
	}
	return Result{Score: sess.scorer.Score(), Fired: fired}, nil
}

func (s *Sessions) recordAction(ctx context.Context, sess *session, action string) {
	sess.scorer.RecordAction(action)
	s.trackAction(ctx, sess, sess.scorer.log[len(sess.scorer.log)-1], sess.scorer.Score())
}

func (s *Sessions) trackAction(ctx context.Context, sess *session, entry domain.ActionEntry, total int) {
	if !sess.scorer.Known(entry.Action) {
		ActionsTotal.WithLabelValues("unknown").Inc()
		return
	}
	ActionsTotal.WithLabelValues(entry.Action).Inc()
	s.track(ctx, sess, domain.EventScoreUpdate, datatypes.JSONMap{
		"action":      entry.Action,
		"points":      entry.Points,
		"total_score": total,
	})
}

func (s *Sessions) track(ctx context.Context, sess *session, name string, props datatypes.JSONMap) {
	if s.tracker == nil {
		return
	}
	s.tracker.Track(ctx, domain.TrackingEvent{
		Name:       name,
		VisitorID:  sess.visitorID,
		SessionID:  sess.id,
		Properties: props,
		CreatedAt:  s.now(),
	})
}

func (s *Sessions) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}
