package engagement

import (
	"context"
	"sync"
	"testing"
	"time"

	"aiInsider/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTracker struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (r *recordingTracker) Track(_ context.Context, ev domain.TrackingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingTracker) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

func TestSessions_RecordActionTracksAndReportsEffects(t *testing.T) {
	tracker := &recordingTracker{}
	s := NewSessions(DefaultRules(), tracker, SessionsConfig{})

	var hooked []Info
	s.OnThresholdReached(80, func(info Info) { hooked = append(hooked, info) })

	ctx := context.Background()
	id := s.Start(ctx, "ai_visitor")

	res, err := s.RecordAction(ctx, id, "enrollment_form_start")
	require.NoError(t, err)
	assert.Equal(t, 25, res.Score)
	assert.Empty(t, res.Fired)
	assert.NotNil(t, res.Fired)

	_, err = s.RecordAction(ctx, id, "course_page_visit")
	require.NoError(t, err)
	res, err = s.RecordAction(ctx, id, "enrollment_form_start")
	require.NoError(t, err)
	assert.Equal(t, 70, res.Score)
	assert.Equal(t, []domain.Effect{
		{Threshold: 50, Name: domain.EffectShowLeadMagnet},
		{Threshold: 70, Name: domain.EffectShowConsultationOffer},
	}, res.Fired)

	res, err = s.RecordAction(ctx, id, "primary_cta_click")
	require.NoError(t, err)
	assert.Equal(t, 85, res.Score)
	assert.Equal(t, []domain.Effect{{Threshold: 80, Name: domain.EffectNotifySalesTeam}}, res.Fired)

	require.Len(t, hooked, 1)
	assert.Equal(t, Info{SessionID: id, VisitorID: "ai_visitor", Threshold: 80, Effect: domain.EffectNotifySalesTeam, Score: 85}, hooked[0])

	assert.Equal(t, []string{
		domain.EventScoreUpdate,
		domain.EventScoreUpdate,
		domain.EventScoreUpdate,
		domain.EventThresholdReached,
		domain.EventThresholdReached,
		domain.EventScoreUpdate,
		domain.EventThresholdReached,
	}, tracker.names())
	assert.Equal(t, id, tracker.events[0].SessionID)
	assert.Equal(t, "ai_visitor", tracker.events[0].VisitorID)
}

func TestSessions_UnknownActionIsNotTracked(t *testing.T) {
	tracker := &recordingTracker{}
	s := NewSessions(DefaultRules(), tracker, SessionsConfig{})
	id := s.Start(context.Background(), "v")

	res, err := s.RecordAction(context.Background(), id, "scroll_wheel")
	require.NoError(t, err)
	assert.Zero(t, res.Score)
	assert.Empty(t, tracker.names())

	snap, err := s.Snapshot(id)
	require.NoError(t, err)
	assert.Len(t, snap.State.Log, 1)
}

func TestSessions_RecordElapsedTimeTracksRunningTotal(t *testing.T) {
	tracker := &recordingTracker{}
	s := NewSessions(DefaultRules(), tracker, SessionsConfig{})
	id := s.Start(context.Background(), "v")

	res, err := s.RecordElapsedTime(context.Background(), id, 130)
	require.NoError(t, err)
	assert.Equal(t, 15, res.Score)

	require.Len(t, tracker.events, 2)
	assert.Equal(t, 5, tracker.events[0].Properties["total_score"])
	assert.Equal(t, 15, tracker.events[1].Properties["total_score"])
}

func TestSessions_UnknownSession(t *testing.T) {
	s := NewSessions(DefaultRules(), nil, SessionsConfig{})

	_, err := s.RecordAction(context.Background(), "missing", "primary_cta_click")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Score("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Snapshot("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessions_CanceledContext(t *testing.T) {
	s := NewSessions(DefaultRules(), nil, SessionsConfig{})
	id := s.Start(context.Background(), "v")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.RecordAction(ctx, id, "primary_cta_click")
	assert.ErrorIs(t, err, context.Canceled)

	score, err := s.Score(id)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestSessions_SweepDropsIdleAndOverCap(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	s := NewSessions(DefaultRules(), nil, SessionsConfig{TTL: 10 * time.Minute, MaxSessions: 2})
	s.now = func() time.Time { return now }

	idle := s.Start(context.Background(), "idle")
	now = now.Add(8 * time.Minute)
	oldest := s.Start(context.Background(), "a")
	now = now.Add(time.Minute)
	mid := s.Start(context.Background(), "b")
	now = now.Add(time.Minute)
	newest := s.Start(context.Background(), "c")
	now = now.Add(2 * time.Minute)

	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 2, s.Len())

	_, err := s.Score(idle)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Score(oldest)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Score(mid)
	assert.NoError(t, err)
	_, err = s.Score(newest)
	assert.NoError(t, err)
}

func TestSessions_ConcurrentActionsOnOneSession(t *testing.T) {
	s := NewSessions(DefaultRules(), &recordingTracker{}, SessionsConfig{})
	id := s.Start(context.Background(), "v")

	var fires int
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.RecordAction(context.Background(), id, "form_interaction")
			if err == nil {
				mu.Lock()
				fires += len(res.Fired)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	score, err := s.Score(id)
	require.NoError(t, err)
	assert.Equal(t, 250, score)
	assert.Equal(t, 4, fires)
}
