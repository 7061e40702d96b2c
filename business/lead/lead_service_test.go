package lead

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"aiInsider/business/engagement"
	"aiInsider/domain"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testKey = "0123456789abcdef0123456789abcdef"

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	if args.Error(0) == nil {
		lead.ID = 42
	}
	return args.Error(0)
}

type MockCRMSink struct {
	mock.Mock
	name string
}

func (m *MockCRMSink) Name() string { return m.name }

func (m *MockCRMSink) PushLead(ctx context.Context, lead domain.CRMLead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

type MockSalesAlerter struct {
	mock.Mock
}

func (m *MockSalesAlerter) HighValueLead(ctx context.Context, alert domain.LeadAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) SendEmail(toName, toEmail, subject, message string) error {
	args := m.Called(toName, toEmail, subject, message)
	return args.Error(0)
}

type fakeEngagement map[string]int

func (f fakeEngagement) Score(sessionID string) (int, error) {
	v, ok := f[sessionID]
	if !ok {
		return 0, engagement.ErrSessionNotFound
	}
	return v, nil
}

type fakeConverter struct {
	goals []string
	err   error
}

func (f *fakeConverter) Convert(_ context.Context, _, goal, _ string) ([]string, error) {
	f.goals = append(f.goals, goal)
	return nil, f.err
}

type recorder struct {
	mu     sync.Mutex
	events []domain.TrackingEvent
}

func (r *recorder) Track(_ context.Context, ev domain.TrackingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) names() []string {
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Name)
	}
	return out
}

type fixture struct {
	repo      *MockLeadRepository
	hubspot   *MockCRMSink
	custom    *MockCRMSink
	alerter   *MockSalesAlerter
	notif     *MockNotificationRepository
	converter *fakeConverter
	tracker   *recorder
	svc       *leadService
}

func newFixture(sendConfirmation bool) *fixture {
	f := &fixture{
		repo:      new(MockLeadRepository),
		hubspot:   &MockCRMSink{name: "hubspot"},
		custom:    &MockCRMSink{name: "custom"},
		alerter:   new(MockSalesAlerter),
		notif:     new(MockNotificationRepository),
		converter: &fakeConverter{},
		tracker:   &recorder{},
	}
	f.svc = NewLeadService(
		f.repo,
		validator.New(),
		fakeEngagement{"sess-1": 65},
		f.converter,
		f.tracker,
		[]CRMSink{f.hubspot, f.custom},
		f.alerter,
		f.notif,
		Config{EmailEncryptionKey: testKey, SendConfirmation: sendConfirmation},
	)
	return f
}

func TestCapture_StandardLead(t *testing.T) {
	f := newFixture(false)

	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Lead")).Return(nil)
	f.hubspot.On("PushLead", mock.Anything, mock.AnythingOfType("domain.CRMLead")).Return(nil)
	f.custom.On("PushLead", mock.Anything, mock.AnythingOfType("domain.CRMLead")).Return(errors.New("503"))

	res, err := f.svc.Capture(context.Background(), domain.LeadForm{
		VisitorID: "ai_1",
		SessionID: "sess-1",
		FirstName: "Jo",
		Email:     " jo@gmail.com ",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(42), res.LeadID)
	assert.Equal(t, 30, res.FormScore)
	assert.Equal(t, 65, res.EngagementScore)
	assert.Equal(t, domain.RatingWarm, res.Rating)

	stored := f.repo.Calls[0].Arguments.Get(1).(*domain.Lead)
	assert.NotEqual(t, "jo@gmail.com", stored.EmailEncrypted)
	assert.Equal(t, "gmail.com", stored.EmailDomain)
	assert.Equal(t, "website", stored.Source)

	plain, err := DecryptEmail(stored.EmailEncrypted, testKey)
	require.NoError(t, err)
	assert.Equal(t, "jo@gmail.com", plain)

	pushed := f.hubspot.Calls[0].Arguments.Get(1).(domain.CRMLead)
	assert.Equal(t, "jo@gmail.com", pushed.Email)
	assert.Equal(t, uint(42), pushed.LeadID)

	assert.Equal(t, []string{domain.EventFormSubmission}, f.tracker.names())
	assert.Equal(t, []string{"form_submission"}, f.converter.goals)

	f.alerter.AssertNotCalled(t, "HighValueLead", mock.Anything, mock.Anything)
	f.notif.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.hubspot.AssertExpectations(t)
	f.custom.AssertExpectations(t)
}

func TestCapture_HighValueLead(t *testing.T) {
	f := newFixture(true)

	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.hubspot.On("PushLead", mock.Anything, mock.Anything).Return(nil)
	f.custom.On("PushLead", mock.Anything, mock.Anything).Return(nil)
	f.alerter.On("HighValueLead", mock.Anything, mock.MatchedBy(func(a domain.LeadAlert) bool {
		return a.Email == "cto@acme.io" && a.Score == 100 && a.Rating == domain.RatingHot
	})).Return(errors.New("slack down"))
	sent := make(chan struct{})
	f.notif.On("SendEmail", "Ada Lovelace", "cto@acme.io", SubjectLeadConfirmation, mock.Anything).
		Run(func(mock.Arguments) { close(sent) }).
		Return(nil)
	f.converter.err = errors.New("visitor not found")

	res, err := f.svc.Capture(context.Background(), domain.LeadForm{
		VisitorID:  "ai_2",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "cto@acme.io",
		Phone:      "+44",
		Company:    "Acme",
		Experience: "expert",
		Source:     "linkedin",
	})
	require.NoError(t, err)

	assert.Equal(t, 100, res.FormScore)
	assert.Equal(t, 0, res.EngagementScore)
	assert.Equal(t, domain.RatingHot, res.Rating)
	assert.Equal(t, []string{domain.EventFormSubmission, domain.EventHighValueLead}, f.tracker.names())

	select {
	case <-sent:
	case <-time.After(time.Second):
		t.Fatal("confirmation email was not sent")
	}
	f.alerter.AssertExpectations(t)
	f.notif.AssertExpectations(t)
}

func TestCapture_ConfirmationEmailDoesNotBlock(t *testing.T) {
	f := newFixture(true)

	release := make(chan struct{})
	defer close(release)
	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.hubspot.On("PushLead", mock.Anything, mock.Anything).Return(nil)
	f.custom.On("PushLead", mock.Anything, mock.Anything).Return(nil)
	f.notif.On("SendEmail", mock.Anything, "jane@gmail.com", SubjectLeadConfirmation, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Capture(context.Background(), domain.LeadForm{
			VisitorID: "ai_3",
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@gmail.com",
		})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Capture waited on the confirmation email")
	}
}

func TestCapture_InvalidForm(t *testing.T) {
	f := newFixture(false)

	_, err := f.svc.Capture(context.Background(), domain.LeadForm{VisitorID: "ai_3", Email: "not-an-email"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLead)

	_, err = f.svc.Capture(context.Background(), domain.LeadForm{VisitorID: "ai_3", Email: "a@b.io", Experience: "guru"})
	assert.ErrorIs(t, err, ErrInvalidLead)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.tracker.events)
}

func TestCapture_RepositoryError(t *testing.T) {
	f := newFixture(false)
	dbErr := errors.New("db down")
	f.repo.On("Create", mock.Anything, mock.Anything).Return(dbErr)

	_, err := f.svc.Capture(context.Background(), domain.LeadForm{VisitorID: "ai_4", Email: "a@b.io"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)

	f.hubspot.AssertNotCalled(t, "PushLead", mock.Anything, mock.Anything)
	assert.Empty(t, f.tracker.events)
}
