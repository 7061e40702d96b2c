package postgres

import (
	"context"

	"aiInsider/business/tracking"
	"aiInsider/domain"

	"gorm.io/gorm"
)

// TrackingEventRepository is the event-log backend of the tracking dispatcher.
type TrackingEventRepository struct {
	DB *gorm.DB
}

var _ tracking.Backend = (*TrackingEventRepository)(nil)

func NewTrackingEventRepository(db *gorm.DB) *TrackingEventRepository {
	return &TrackingEventRepository{DB: db}
}

func (r *TrackingEventRepository) Name() string {
	return "postgres"
}

func (r *TrackingEventRepository) Send(ctx context.Context, ev domain.TrackingEvent) error {
	ev.ID = 0
	return r.DB.WithContext(ctx).Create(&ev).Error
}
