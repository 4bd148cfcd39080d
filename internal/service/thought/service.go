package thought

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/happy-thoughts/backend/internal/model/thought"
	"github.com/zhouzirui/happy-thoughts/backend/internal/service/feed"
)

// Publisher receives a change event after each successful mutation.
type Publisher interface {
	Publish(ev feed.Event)
}

// Recorder counts business events.
type Recorder interface {
	ThoughtCreated()
	ThoughtLiked()
	ThoughtUpdated()
	ThoughtDeleted()
}

// Service implements the thought operations on top of a Store. Every
// operation is one store call.
type Service struct {
	store   thought.Store
	events  Publisher
	metrics Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a Service. events, metrics and logger may be nil.
func NewService(store thought.Store, events Publisher, metrics Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:   store,
		events:  events,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// List returns the most recent thoughts, newest first.
func (s *Service) List(ctx context.Context) ([]thought.Thought, error) {
	thoughts, err := s.store.List(ctx, thought.ListLimit)
	if err != nil {
		return nil, s.storageFailed("list", err)
	}
	if thoughts == nil {
		thoughts = []thought.Thought{}
	}
	return thoughts, nil
}

// Create validates and stores a new thought.
func (s *Service) Create(ctx context.Context, message string) (thought.Thought, error) {
	normalized, err := validateMessage(message)
	if err != nil {
		return thought.Thought{}, err
	}

	t := thought.New(normalized, s.now())
	if err := s.store.Insert(ctx, t); err != nil {
		return thought.Thought{}, s.classify("create", err)
	}

	s.logger.Info("thought created", zap.String("id", t.ID.String()))
	s.publish(feed.EventCreated, t)
	if s.metrics != nil {
		s.metrics.ThoughtCreated()
	}
	return t, nil
}

// Like adds one heart. A missing thought yields (nil, nil) so callers
// answer 200 with a null payload.
func (s *Service) Like(ctx context.Context, rawID string) (*thought.Thought, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}

	t, err := s.store.IncrementHearts(ctx, id)
	if errors.Is(err, thought.ErrNotFound) {
		s.logger.Debug("like on missing thought", zap.String("id", id.String()))
		return nil, nil
	}
	if err != nil {
		return nil, s.classify("like", err)
	}

	s.publish(feed.EventLiked, t)
	if s.metrics != nil {
		s.metrics.ThoughtLiked()
	}
	return &t, nil
}

// Delete removes a thought and returns it.
func (s *Service) Delete(ctx context.Context, rawID string) (thought.Thought, error) {
	id, err := parseID(rawID)
	if err != nil {
		return thought.Thought{}, err
	}

	t, err := s.store.Delete(ctx, id)
	if err != nil {
		return thought.Thought{}, s.classify("delete", err)
	}

	s.logger.Info("thought deleted", zap.String("id", id.String()))
	s.publish(feed.EventDeleted, t)
	if s.metrics != nil {
		s.metrics.ThoughtDeleted()
	}
	return t, nil
}

// UpdateMessage replaces the message of a thought; hearts and createdAt
// are left untouched.
func (s *Service) UpdateMessage(ctx context.Context, rawID, message string) (thought.Thought, error) {
	id, err := parseID(rawID)
	if err != nil {
		return thought.Thought{}, err
	}
	normalized, err := validateMessage(message)
	if err != nil {
		return thought.Thought{}, err
	}

	t, err := s.store.UpdateMessage(ctx, id, normalized)
	if err != nil {
		return thought.Thought{}, s.classify("update", err)
	}

	s.publish(feed.EventUpdated, t)
	if s.metrics != nil {
		s.metrics.ThoughtUpdated()
	}
	return t, nil
}

// Ping reports store health.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) publish(typ feed.EventType, t thought.Thought) {
	if s.events == nil {
		return
	}
	s.events.Publish(feed.NewEvent(typ, t))
}

func (s *Service) classify(op string, err error) error {
	switch {
	case errors.Is(err, thought.ErrNotFound):
		return NotFound()
	case errors.Is(err, thought.ErrDuplicateMessage):
		return ValidationFailed(thought.DuplicateViolation())
	case errors.Is(err, thought.ErrMalformedID):
		return MalformedInput("malformed thought id", err)
	default:
		return s.storageFailed(op, err)
	}
}

func (s *Service) storageFailed(op string, err error) error {
	s.logger.Error("thought store failed", zap.String("op", op), zap.Error(err))
	return StorageFailed(err)
}

func parseID(raw string) (thought.ID, error) {
	id, err := thought.ParseID(raw)
	if err != nil {
		return "", MalformedInput("malformed thought id", err)
	}
	return id, nil
}

func validateMessage(message string) (string, error) {
	normalized, err := thought.Validate(message)
	if err != nil {
		var verr *thought.ValidationError
		if errors.As(err, &verr) {
			return "", ValidationFailed(verr)
		}
		return "", MalformedInput(err.Error(), err)
	}
	return normalized, nil
}
