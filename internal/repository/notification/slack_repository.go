package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"aiInsider/domain"
)

// SlackRepository posts high-value lead alerts to an incoming webhook.
type SlackRepository struct {
	webhookURL string
	client     *http.Client
}

func NewSlackRepository(webhookURL string) *SlackRepository {
	return &SlackRepository{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color  string       `json:"color"`
	Fields []slackField `json:"fields"`
}

type slackMessage struct {
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

func (r *SlackRepository) HighValueLead(ctx context.Context, alert domain.LeadAlert) error {
	msg := slackMessage{
		Text: "High-value lead alert!",
		Attachments: []slackAttachment{{
			Color: "good",
			Fields: []slackField{
				{Title: "Email", Value: alert.Email, Short: true},
				{Title: "Experience", Value: alert.Experience, Short: true},
				{Title: "Source", Value: alert.Source, Short: true},
				{Title: "Score", Value: strconv.Itoa(alert.Score), Short: true},
				{Title: "Rating", Value: alert.Rating, Short: true},
			},
		}},
	}

	return r.post(ctx, msg)
}

// EngagedVisitor reports a visitor whose session crossed the sales threshold.
func (r *SlackRepository) EngagedVisitor(ctx context.Context, visitorID, sessionID string, score int) error {
	return r.post(ctx, slackMessage{
		Text: "Highly engaged visitor on the landing page",
		Attachments: []slackAttachment{{
			Color: "warning",
			Fields: []slackField{
				{Title: "Visitor", Value: visitorID, Short: true},
				{Title: "Session", Value: sessionID, Short: true},
				{Title: "Engagement score", Value: strconv.Itoa(score), Short: true},
			},
		}},
	})
}

func (r *SlackRepository) post(ctx context.Context, msg slackMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("slack webhook returned %d", res.StatusCode)
	}
	return nil
}
