package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	EventPageView         = "page_view"
	EventExposure         = "ab_test_exposure"
	EventConversion       = "ab_test_conversion"
	EventScoreUpdate      = "lead_score_update"
	EventThresholdReached = "lead_threshold_reached"
	EventFormSubmission   = "form_submission"
	EventHighValueLead    = "high_value_lead"
)

const (
	ConsentAll       = "all"
	ConsentEssential = "essential"
)

// TrackingEvent is the generic payload handed to the analytics/CRM sink.
type TrackingEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Name       string            `gorm:"column:event_name;not null" json:"event_name"`
	VisitorID  string            `gorm:"column:visitor_id;not null" json:"user_id"`
	SessionID  string            `gorm:"column:session_id" json:"session_id,omitempty"`
	PageURL    string            `gorm:"column:page_url" json:"page_url,omitempty"`
	Properties datatypes.JSONMap `gorm:"column:properties;type:jsonb" json:"properties"`
	CreatedAt  time.Time         `gorm:"column:created_at" json:"timestamp"`
}

func (TrackingEvent) TableName() string {
	return "tracking_events"
}

// PageEvent is an analytics event reported by the landing page.
type PageEvent struct {
	Name       string
	SessionID  string
	PageURL    string
	Properties map[string]any
}
