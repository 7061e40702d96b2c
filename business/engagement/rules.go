package engagement

import (
	"fmt"
	"sort"

	"aiInsider/domain"
)

// DefaultRules mirrors the landing page's shipped scoring table.
func DefaultRules() domain.ScoringRules {
	return domain.ScoringRules{
		Points: map[string]int{
			"primary_cta_click":     15,
			"course_btn_click":      10,
			"nav_cta_click":         8,
			"video_play":            12,
			"course_page_visit":     20,
			"enrollment_form_start": 25,
			"form_interaction":      5,
			"time_30s":              5,
			"time_2min":             10,
			"time_5min":             15,
			"time_10min":            20,
		},
		Thresholds: map[int]string{
			50: domain.EffectShowLeadMagnet,
			70: domain.EffectShowConsultationOffer,
			80: domain.EffectNotifySalesTeam,
			90: domain.EffectPriorityFollowUp,
		},
		Milestones: DefaultMilestones(),
	}
}

func DefaultMilestones() []domain.Milestone {
	return []domain.Milestone{
		{Seconds: 30, Action: "time_30s"},
		{Seconds: 120, Action: "time_2min"},
		{Seconds: 300, Action: "time_5min"},
		{Seconds: 600, Action: "time_10min"},
	}
}

// ValidateRules reports point values and thresholds that cannot work as configured.
func ValidateRules(rules domain.ScoringRules) []error {
	var errs []error

	actions := make([]string, 0, len(rules.Points))
	for action := range rules.Points {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	for _, action := range actions {
		if p := rules.Points[action]; p < 0 {
			errs = append(errs, fmt.Errorf("action %q: negative points %d are treated as 0", action, p))
		}
	}

	for t := range rules.Thresholds {
		if t < 0 {
			errs = append(errs, fmt.Errorf("threshold %d is negative", t))
		}
	}

	seen := make(map[int]bool, len(rules.Milestones))
	for _, m := range rules.Milestones {
		if m.Seconds <= 0 {
			errs = append(errs, fmt.Errorf("milestone %q: seconds must be positive", m.Action))
		}
		if seen[m.Seconds] {
			errs = append(errs, fmt.Errorf("milestone at %ds defined twice", m.Seconds))
		}
		seen[m.Seconds] = true
	}
	return errs
}
