package domain

import "time"

// Milestone maps an elapsed-time mark to a synthetic action name.
type Milestone struct {
	Seconds int    `json:"seconds" yaml:"seconds"`
	Action  string `json:"action" yaml:"action"`
}

// ScoringRules drives the engagement scorer.
type ScoringRules struct {
	Points     map[string]int `json:"points" yaml:"points"`
	Thresholds map[int]string `json:"thresholds" yaml:"thresholds"`
	Milestones []Milestone    `json:"milestones" yaml:"milestones"`
}

type ActionEntry struct {
	Action    string    `json:"action"`
	Points    int       `json:"points"`
	Timestamp time.Time `json:"timestamp"`
}

// EngagementState is the session-scoped scorer record. It is never persisted.
type EngagementState struct {
	Score int           `json:"score"`
	Log   []ActionEntry `json:"log"`
	Fired []int         `json:"fired"`
}

// Effect is a threshold effect fired during a single scorer call.
type Effect struct {
	Threshold int    `json:"threshold"`
	Name      string `json:"name"`
}

const (
	EffectShowLeadMagnet        = "show_lead_magnet"
	EffectShowConsultationOffer = "show_consultation_offer"
	EffectNotifySalesTeam       = "notify_sales_team"
	EffectPriorityFollowUp      = "priority_follow_up"
)

// SessionSnapshot is the API view of a scorer session.
type SessionSnapshot struct {
	SessionID string          `json:"session_id"`
	VisitorID string          `json:"visitor_id"`
	State     EngagementState `json:"state"`
}
