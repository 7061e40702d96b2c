package lead

import (
	"strings"

	"aiInsider/domain"
)

const (
	maxFormScore   = 100
	pointsPerField = 5

	personalEmailPoints = 20
	academicEmailPoints = 30
	businessEmailPoints = 40
)

var personalDomains = map[string]bool{
	"gmail.com":   true,
	"yahoo.com":   true,
	"hotmail.com": true,
}

var experiencePoints = map[string]int{
	"beginner":    10,
	"some-exp":    20,
	"experienced": 30,
	"expert":      40,
}

// EmailDomain returns the lower-cased part after the last '@', or "".
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(email[at+1:]))
}

// FormScore rates a submitted form from 0 to 100.
func FormScore(form domain.LeadForm) int {
	score := 0

	if d := EmailDomain(form.Email); d != "" {
		switch {
		case personalDomains[d]:
			score += personalEmailPoints
		case strings.HasSuffix(d, ".edu"):
			score += academicEmailPoints
		default:
			score += businessEmailPoints
		}
	}

	score += experiencePoints[form.Experience]

	for _, v := range []string{
		form.FirstName,
		form.LastName,
		form.Email,
		form.Phone,
		form.Company,
		form.Experience,
		form.Message,
	} {
		if strings.TrimSpace(v) != "" {
			score += pointsPerField
		}
	}

	return min(score, maxFormScore)
}

// Rating buckets a score into Hot, Warm, Cool or Cold.
func Rating(score int) string {
	switch {
	case score >= 80:
		return domain.RatingHot
	case score >= 60:
		return domain.RatingWarm
	case score >= 40:
		return domain.RatingCool
	default:
		return domain.RatingCold
	}
}
