package lead

import (
	"testing"

	"aiInsider/domain"

	"github.com/stretchr/testify/assert"
)

func TestFormScore(t *testing.T) {
	tests := []struct {
		name string
		form domain.LeadForm
		want int
	}{
		{
			name: "personal email only",
			form: domain.LeadForm{Email: "jo@gmail.com"},
			want: 20 + 5,
		},
		{
			name: "business email and experience",
			form: domain.LeadForm{Email: "jo@acme.io", Experience: "some-exp"},
			want: 40 + 20 + 2*5,
		},
		{
			name: "academic email",
			form: domain.LeadForm{Email: "jo@mit.edu", FirstName: "Jo"},
			want: 30 + 2*5,
		},
		{
			name: "blank fields do not count",
			form: domain.LeadForm{Email: "jo@yahoo.com", FirstName: "  ", Company: "\t"},
			want: 20 + 5,
		},
		{
			name: "unknown domain casing is normalised",
			form: domain.LeadForm{Email: "Jo@GMAIL.COM"},
			want: 20 + 5,
		},
		{
			name: "capped at 100",
			form: domain.LeadForm{
				Email:      "cto@acme.io",
				Experience: "expert",
				FirstName:  "Ada",
				LastName:   "L",
				Phone:      "+1",
				Company:    "Acme",
				Message:    "hi",
			},
			want: 100,
		},
		{
			name: "no email",
			form: domain.LeadForm{FirstName: "Jo"},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormScore(tt.form))
		})
	}
}

func TestRating(t *testing.T) {
	assert.Equal(t, domain.RatingHot, Rating(100))
	assert.Equal(t, domain.RatingHot, Rating(80))
	assert.Equal(t, domain.RatingWarm, Rating(79))
	assert.Equal(t, domain.RatingWarm, Rating(60))
	assert.Equal(t, domain.RatingCool, Rating(59))
	assert.Equal(t, domain.RatingCool, Rating(40))
	assert.Equal(t, domain.RatingCold, Rating(39))
	assert.Equal(t, domain.RatingCold, Rating(0))
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "acme.io", EmailDomain("a@b@acme.io"))
	assert.Equal(t, "", EmailDomain("nobody"))
	assert.Equal(t, "", EmailDomain("trailing@"))
}
