package engagement

import (
	"context"
	"time"

	"aiInsider/domain"
	"aiInsider/pkg/logger"
)

// SalesNotifier tells the sales team about a highly engaged visitor.
type SalesNotifier interface {
	EngagedVisitor(ctx context.Context, visitorID, sessionID string, score int) error
}

// NotifySales hooks n onto every threshold mapped to notify_sales_team. The
// notification runs on its own goroutine so the session lock is not held
// across the network call.
func NotifySales(s *Sessions, n SalesNotifier, timeout time.Duration) int {
	hooked := 0
	for threshold, effect := range s.rules.Thresholds {
		if effect != domain.EffectNotifySalesTeam {
			continue
		}
		s.OnThresholdReached(threshold, func(info Info) {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				if err := n.EngagedVisitor(ctx, info.VisitorID, info.SessionID, info.Score); err != nil {
					logger.Warn("sales notification failed",
						"visitor_id", info.VisitorID,
						"session_id", info.SessionID,
						"error", err,
					)
				}
			}()
		})
		hooked++
	}
	return hooked
}
