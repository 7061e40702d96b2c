package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aiInsider/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCRMRepository_PushLead(t *testing.T) {
	var got domain.CRMLead
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/leads", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	repo := NewCRMRepository(CRMConfig{Name: "custom", BaseURL: srv.URL + "/", APIKey: "tok"})
	require.NoError(t, repo.PushLead(context.Background(), domain.CRMLead{
		LeadID:    3,
		Email:     "jo@acme.io",
		Rating:    domain.RatingWarm,
		Timestamp: time.Now(),
	}))

	assert.Equal(t, "custom", repo.Name())
	assert.Equal(t, uint(3), got.LeadID)
	assert.Equal(t, "jo@acme.io", got.Email)
}

func TestCRMRepository_SendEvent(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewCRMRepository(CRMConfig{Name: "custom", BaseURL: srv.URL})
	require.NoError(t, repo.Send(context.Background(), domain.TrackingEvent{
		Name:      domain.EventExposure,
		VisitorID: "ai_1",
	}))

	assert.Equal(t, domain.EventExposure, got["event_name"])
	assert.Equal(t, "ai_1", got["user_id"])
}

func TestCRMRepository_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewCRMRepository(CRMConfig{Name: "custom", BaseURL: srv.URL}).
		PushLead(context.Background(), domain.CRMLead{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}
