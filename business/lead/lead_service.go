package lead

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aiInsider/business/engagement"
	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

var ErrInvalidLead = errors.New("invalid lead form")

type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
}

// EngagementSource reports the live engagement score of a page session.
type EngagementSource interface {
	Score(sessionID string) (int, error)
}

// Converter records experiment conversions for a visitor.
type Converter interface {
	Convert(ctx context.Context, visitorID, goal, pageURL string) ([]string, error)
}

type Tracker interface {
	Track(ctx context.Context, ev domain.TrackingEvent)
}

// CRMSink receives every captured lead.
type CRMSink interface {
	Name() string
	PushLead(ctx context.Context, lead domain.CRMLead) error
}

// SalesAlerter notifies the sales channel about high-value leads.
type SalesAlerter interface {
	HighValueLead(ctx context.Context, alert domain.LeadAlert) error
}

// NotificationRepository contract interface
type NotificationRepository interface {
	SendEmail(toName, toEmail, subject, message string) (err error)
}

type Config struct {
	EmailEncryptionKey string
	HighValueThreshold int
	ConversionGoal     string
	SendConfirmation   bool
	DefaultSource      string
}

const (
	defaultHighValueThreshold = 80
	defaultConversionGoal     = "form_submission"
	defaultSource             = "website"

	SubjectLeadConfirmation   = "Thanks for your interest in AI Insider"
	EmailBodyLeadConfirmation = `Hi %v,</br></br>thank you for reaching out. Our team will get back to you within 24 hours.`
)

type leadService struct {
	leadRepo   LeadRepository
	validate   *validator.Validate
	engagement EngagementSource
	converter  Converter
	tracker    Tracker
	crmSinks   []CRMSink
	alerter    SalesAlerter
	notifRepo  NotificationRepository
	cfg        Config
	now        func() time.Time
}

func NewLeadService(
	leadRepo LeadRepository,
	validate *validator.Validate,
	engagementSource EngagementSource,
	converter Converter,
	tracker Tracker,
	crmSinks []CRMSink,
	alerter SalesAlerter,
	notifRepo NotificationRepository,
	cfg Config,
) *leadService {
	if cfg.HighValueThreshold <= 0 {
		cfg.HighValueThreshold = defaultHighValueThreshold
	}
	if cfg.ConversionGoal == "" {
		cfg.ConversionGoal = defaultConversionGoal
	}
	if cfg.DefaultSource == "" {
		cfg.DefaultSource = defaultSource
	}
	return &leadService{
		leadRepo:   leadRepo,
		validate:   validate,
		engagement: engagementSource,
		converter:  converter,
		tracker:    tracker,
		crmSinks:   crmSinks,
		alerter:    alerter,
		notifRepo:  notifRepo,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Capture scores, stores and distributes a submitted lead form. Failures of
// downstream CRM, alert and e-mail calls are logged and do not fail the capture.
func (s *leadService) Capture(ctx context.Context, form domain.LeadForm) (domain.LeadResult, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := s.validate.Struct(&form); err != nil {
		return domain.LeadResult{}, fmt.Errorf("%w: %v", ErrInvalidLead, err)
	}
	if form.Source == "" {
		form.Source = s.cfg.DefaultSource
	}

	formScore := FormScore(form)
	engagementScore := s.engagementScore(form.SessionID)
	rating := Rating(max(formScore, engagementScore))

	emailEncrypted, err := s.encryptEmail(form.Email)
	if err != nil {
		return domain.LeadResult{}, err
	}

	lead := domain.Lead{
		VisitorID:       form.VisitorID,
		SessionID:       form.SessionID,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		EmailEncrypted:  emailEncrypted,
		EmailDomain:     EmailDomain(form.Email),
		Phone:           form.Phone,
		Company:         form.Company,
		Experience:      form.Experience,
		Source:          form.Source,
		FormScore:       formScore,
		EngagementScore: engagementScore,
		Rating:          rating,
	}
	if err := s.leadRepo.Create(ctx, &lead); err != nil {
		logger.Error("Failed to create lead", "visitor_id", form.VisitorID, "error", err)
		return domain.LeadResult{}, fmt.Errorf("failed to store lead: %w", err)
	}
	CapturedTotal.WithLabelValues(rating).Inc()

	now := s.now()
	s.tracker.Track(ctx, domain.TrackingEvent{
		Name:      domain.EventFormSubmission,
		VisitorID: form.VisitorID,
		SessionID: form.SessionID,
		PageURL:   form.PageURL,
		CreatedAt: now,
		Properties: datatypes.JSONMap{
			"lead_id":          lead.ID,
			"lead_score":       formScore,
			"engagement_score": engagementScore,
			"rating":           rating,
			"source":           form.Source,
			"experience":       form.Experience,
			"email_domain":     lead.EmailDomain,
		},
	})

	if _, err := s.converter.Convert(ctx, form.VisitorID, s.cfg.ConversionGoal, form.PageURL); err != nil {
		logger.Warn("Failed to record lead conversion", "visitor_id", form.VisitorID, "error", err)
	}

	if formScore >= s.cfg.HighValueThreshold {
		s.alertSales(ctx, form, formScore, rating, now)
	}

	s.pushToCRM(ctx, domain.CRMLead{
		LeadID:          lead.ID,
		VisitorID:       form.VisitorID,
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		Email:           form.Email,
		Phone:           form.Phone,
		Company:         form.Company,
		Experience:      form.Experience,
		Source:          form.Source,
		PageURL:         form.PageURL,
		FormScore:       formScore,
		EngagementScore: engagementScore,
		Rating:          rating,
		Timestamp:       now,
	})

	if s.cfg.SendConfirmation && s.notifRepo != nil {
		name := strings.TrimSpace(form.FirstName + " " + form.LastName)
		go func(leadID uint, email string) {
			if err := s.notifRepo.SendEmail(name, email, SubjectLeadConfirmation, fmt.Sprintf(EmailBodyLeadConfirmation, name)); err != nil {
				logger.Warn("Failed to send lead confirmation email", "lead_id", leadID, "error", err)
			}
		}(lead.ID, form.Email)
	}

	logger.Info("lead_captured",
		"lead_id", lead.ID,
		"visitor_id", form.VisitorID,
		"form_score", formScore,
		"engagement_score", engagementScore,
		"rating", rating,
	)

	return domain.LeadResult{
		LeadID:          lead.ID,
		FormScore:       formScore,
		EngagementScore: engagementScore,
		Rating:          rating,
	}, nil
}

func (s *leadService) engagementScore(sessionID string) int {
	if sessionID == "" || s.engagement == nil {
		return 0
	}
	score, err := s.engagement.Score(sessionID)
	if err != nil {
		if !errors.Is(err, engagement.ErrSessionNotFound) {
			logger.Warn("Failed to read engagement score", "session_id", sessionID, "error", err)
		}
		return 0
	}
	return score
}

func (s *leadService) encryptEmail(email string) (string, error) {
	emailEncrypt, err := goshortcute.AESCBCEncrypt([]byte(email), []byte(s.cfg.EmailEncryptionKey))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt email: %w", err)
	}
	return goshortcute.StringtoBase64Encode(emailEncrypt), nil
}

// DecryptEmail reverses the at-rest encryption of Lead.EmailEncrypted.
func DecryptEmail(encrypted, key string) (string, error) {
	strDecode := goshortcute.StringtoBase64Decode(encrypted)
	email, err := goshortcute.AESCBCDecrypt([]byte(strDecode), []byte(key))
	if err != nil {
		return "", fmt.Errorf("failed to decrypt email: %w", err)
	}
	return email, nil
}

func (s *leadService) alertSales(ctx context.Context, form domain.LeadForm, score int, rating string, now time.Time) {
	s.tracker.Track(ctx, domain.TrackingEvent{
		Name:      domain.EventHighValueLead,
		VisitorID: form.VisitorID,
		SessionID: form.SessionID,
		PageURL:   form.PageURL,
		CreatedAt: now,
		Properties: datatypes.JSONMap{
			"lead_score": score,
			"rating":     rating,
		},
	})

	if s.alerter == nil {
		return
	}
	err := s.alerter.HighValueLead(ctx, domain.LeadAlert{
		Email:      form.Email,
		Experience: form.Experience,
		Source:     form.Source,
		Score:      score,
		Rating:     rating,
	})
	if err != nil {
		logger.Warn("Failed to send high-value lead alert", "visitor_id", form.VisitorID, "error", err)
	}
}

// pushToCRM sends the lead to every sink concurrently and waits for all of them.
func (s *leadService) pushToCRM(ctx context.Context, lead domain.CRMLead) {
	var g errgroup.Group
	for _, sink := range s.crmSinks {
		g.Go(func() error {
			if err := sink.PushLead(ctx, lead); err != nil {
				CRMPushErrorsTotal.WithLabelValues(sink.Name()).Inc()
				logger.Warn("CRM push failed", "sink", sink.Name(), "lead_id", lead.LeadID, "error", err)
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("Lead not delivered to every CRM", "lead_id", lead.LeadID, "first_error", err)
	}
}
