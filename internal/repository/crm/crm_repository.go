package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"aiInsider/business/lead"
	"aiInsider/business/tracking"
	"aiInsider/domain"
)

type CRMConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// CRMRepository pushes generic JSON leads and events to a CRM ingestion API.
type CRMRepository struct {
	crmConfig CRMConfig
	client    *http.Client
}

var (
	_ lead.CRMSink     = (*CRMRepository)(nil)
	_ tracking.Backend = (*CRMRepository)(nil)
)

func NewCRMRepository(cfg CRMConfig) *CRMRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &CRMRepository{
		crmConfig: cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *CRMRepository) Name() string {
	return r.crmConfig.Name
}

// PushLead posts the lead to {base}/leads.
func (r *CRMRepository) PushLead(ctx context.Context, l domain.CRMLead) error {
	return r.post(ctx, "/leads", l)
}

// Send posts the event to {base}/events.
func (r *CRMRepository) Send(ctx context.Context, ev domain.TrackingEvent) error {
	return r.post(ctx, "/events", ev)
}

func (r *CRMRepository) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal crm payload: %w", err)
	}

	url := strings.TrimRight(r.crmConfig.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	if r.crmConfig.APIKey != "" {
		req.Header.Add("Authorization", "Bearer "+r.crmConfig.APIKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	respBody, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return fmt.Errorf("crm %s returned %d: %s", r.crmConfig.Name, res.StatusCode, strings.TrimSpace(string(respBody)))
}
