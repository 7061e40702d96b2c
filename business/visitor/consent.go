package visitor

import (
	"context"

	"aiInsider/domain"
	"aiInsider/pkg/logger"
)

// ConsentGate answers whether a visitor's analytics events may leave the service.
type ConsentGate struct {
	store Store
}

func NewConsentGate(store Store) *ConsentGate {
	return &ConsentGate{store: store}
}

// TrackingAllowed is true only for visitors who accepted all cookies.
func (g *ConsentGate) TrackingAllowed(ctx context.Context, visitorID string) bool {
	v, found, err := g.store.Get(ctx, consentKey(visitorID))
	if err != nil {
		logger.Warn("failed to read consent", "visitor_id", visitorID, "error", err)
		return false
	}
	return found && v == domain.ConsentAll
}
