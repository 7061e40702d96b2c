package visitor

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"aiInsider/business/experiment"
	"aiInsider/domain"
	"aiInsider/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrVisitorNotFound = errors.New("visitor not found")
	ErrInvalidConsent  = errors.New("consent must be \"all\" or \"essential\"")
	ErrReservedEvent   = errors.New("event name is reserved for server-side tracking")
)

// events the service emits itself; page code cannot forge them
var reservedEvents = map[string]struct{}{
	domain.EventExposure:         {},
	domain.EventConversion:       {},
	domain.EventScoreUpdate:      {},
	domain.EventThresholdReached: {},
	domain.EventFormSubmission:   {},
	domain.EventHighValueLead:    {},
}

// visitor ids minted by older page builds ("ai_<ms>_<rand>") are accepted as-is
var visitorIDPattern = regexp.MustCompile(`^ai_[A-Za-z0-9_-]{1,64}$`)

// Store is the key/value persistence shared with the assigner.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// ConfigSource yields the live experiment configuration.
type ConfigSource interface {
	Config() domain.ExperimentConfig
}

type Assigner interface {
	Assign(ctx context.Context, visitorID string, cfg domain.ExperimentConfig) domain.VariantAssignment
}

type Tracker interface {
	Track(ctx context.Context, ev domain.TrackingEvent)
}

type visitorService struct {
	store    Store
	configs  ConfigSource
	assigner Assigner
	tracker  Tracker
	now      func() time.Time
}

func NewVisitorService(store Store, configs ConfigSource, assigner Assigner, tracker Tracker) *visitorService {
	return &visitorService{
		store:    store,
		configs:  configs,
		assigner: assigner,
		tracker:  tracker,
		now:      time.Now,
	}
}

func visitorKey(visitorID string) string {
	return "visitor:" + visitorID
}

func consentKey(visitorID string) string {
	return "cookie_consent:" + visitorID
}

func newVisitorID() string {
	return "ai_" + uuid.NewString()
}

// Identify resolves the visitor, assigns every experiment and emits exposure
// events for the enabled ones. An empty or malformed id yields a fresh one.
func (s *visitorService) Identify(ctx context.Context, visitorID, pageURL string) (domain.Visitor, error) {
	if err := ctx.Err(); err != nil {
		return domain.Visitor{}, err
	}

	isNew := false
	if !visitorIDPattern.MatchString(visitorID) {
		visitorID = newVisitorID()
		isNew = true
	} else {
		_, found, err := s.store.Get(ctx, visitorKey(visitorID))
		if err != nil {
			return domain.Visitor{}, fmt.Errorf("failed to look up visitor: %w", err)
		}
		isNew = !found
	}

	if isNew {
		if err := s.store.Set(ctx, visitorKey(visitorID), s.now().UTC().Format(time.RFC3339)); err != nil {
			return domain.Visitor{}, fmt.Errorf("failed to store visitor: %w", err)
		}
		logger.Info("visitor_created", "visitor_id", visitorID)
	}

	consent, _, err := s.store.Get(ctx, consentKey(visitorID))
	if err != nil {
		logger.Warn("failed to read consent", "visitor_id", visitorID, "error", err)
		consent = ""
	}

	cfg := s.configs.Config()
	assignment := s.assigner.Assign(ctx, visitorID, cfg)

	now := s.now()
	if pageURL != "" {
		s.tracker.Track(ctx, domain.TrackingEvent{
			Name:       domain.EventPageView,
			VisitorID:  visitorID,
			PageURL:    pageURL,
			Properties: datatypes.JSONMap{"new_visitor": isNew},
			CreatedAt:  now,
		})
	}
	for _, ev := range experiment.ExposureEvents(visitorID, cfg, assignment, now) {
		ev.PageURL = pageURL
		s.tracker.Track(ctx, ev)
	}

	return domain.Visitor{
		VisitorID: visitorID,
		IsNew:     isNew,
		Consent:   consent,
		Variants:  experiment.Describe(cfg, assignment),
	}, nil
}

// SetConsent records the visitor's cookie consent level.
func (s *visitorService) SetConsent(ctx context.Context, visitorID, level string) error {
	if level != domain.ConsentAll && level != domain.ConsentEssential {
		return ErrInvalidConsent
	}
	if err := s.mustExist(ctx, visitorID); err != nil {
		return err
	}
	if err := s.store.Set(ctx, consentKey(visitorID), level); err != nil {
		return fmt.Errorf("failed to store consent: %w", err)
	}
	logger.Info("consent_updated", "visitor_id", visitorID, "consent", level)
	return nil
}

// Convert records a conversion for goal, returning the affected experiments.
func (s *visitorService) Convert(ctx context.Context, visitorID, goal, pageURL string) ([]string, error) {
	if err := s.mustExist(ctx, visitorID); err != nil {
		return nil, err
	}

	cfg := s.configs.Config()
	assignment := s.assigner.Assign(ctx, visitorID, cfg)
	events := experiment.ConversionEvents(visitorID, goal, cfg, assignment, s.now())

	converted := make([]string, 0, len(events))
	for _, ev := range events {
		ev.PageURL = pageURL
		s.tracker.Track(ctx, ev)
		if name, ok := ev.Properties["experiment"].(string); ok {
			converted = append(converted, name)
		}
	}
	return converted, nil
}

// TrackEvent forwards a page analytics event (cta_click, scroll_depth,
// time_on_page and the like) to the tracking sink. Consent is enforced by the sink.
func (s *visitorService) TrackEvent(ctx context.Context, visitorID string, ev domain.PageEvent) error {
	if _, reserved := reservedEvents[ev.Name]; reserved {
		return ErrReservedEvent
	}
	if err := s.mustExist(ctx, visitorID); err != nil {
		return err
	}

	props := datatypes.JSONMap{}
	for k, v := range ev.Properties {
		props[k] = v
	}
	s.tracker.Track(ctx, domain.TrackingEvent{
		Name:       ev.Name,
		VisitorID:  visitorID,
		SessionID:  ev.SessionID,
		PageURL:    ev.PageURL,
		Properties: props,
		CreatedAt:  s.now(),
	})
	return nil
}

func (s *visitorService) mustExist(ctx context.Context, visitorID string) error {
	if !visitorIDPattern.MatchString(visitorID) {
		return ErrVisitorNotFound
	}
	_, found, err := s.store.Get(ctx, visitorKey(visitorID))
	if err != nil {
		return fmt.Errorf("failed to look up visitor: %w", err)
	}
	if !found {
		return ErrVisitorNotFound
	}
	return nil
}
