package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mindgraph/application/ports"
	"mindgraph/domain/config"
	"mindgraph/domain/core/aggregates"
	"mindgraph/domain/core/validators"
	"mindgraph/domain/events"
	"mindgraph/pkg/errors"
)

// DocumentService moves maps between storage and the store
type DocumentService struct {
	store     *GraphStore
	repo      ports.MapRepository
	publisher ports.EventPublisher
	validator *validators.MapValidator
	cfg       *config.DomainConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewDocumentService creates the service. publisher may be nil.
func NewDocumentService(store *GraphStore, repo ports.MapRepository, publisher ports.EventPublisher, cfg *config.DomainConfig, logger *zap.Logger) *DocumentService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		store:     store,
		repo:      repo,
		publisher: publisher,
		validator: validators.NewMapValidator(),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns the stored maps
func (s *DocumentService) List(ctx context.Context) ([]ports.MapMeta, error) {
	return s.repo.List(ctx)
}

// Open loads a stored map and makes it current. Maps that fail validation
// are refused and the current map stays in place.
func (s *DocumentService) Open(ctx context.Context, fileID string) (*aggregates.MindMap, error) {
	m, err := s.repo.Load(ctx, fileID)
	if err != nil {
		return nil, err
	}
	m.Normalize()
	if err := s.validator.Validate(m); err != nil {
		s.logger.Warn("Refusing to open invalid map",
			zap.String("fileID", fileID),
			zap.Error(err),
		)
		return nil, asAppError(err)
	}

	s.store.SetCurrentMap(m, fileID)
	s.publish(ctx, events.NewDocumentEvent(events.TypeMapOpened, m.ID, fileID, m.Name, s.now().UTC()))
	return s.store.Current(), nil
}

// Import replaces the current map with m, which has not been stored yet
func (s *DocumentService) Import(m *aggregates.MindMap) (*aggregates.MindMap, error) {
	if m != nil {
		m.Normalize()
	}
	if err := s.validator.Validate(m); err != nil {
		return nil, asAppError(err)
	}
	s.store.SetCurrentMap(m, "")
	return s.store.Current(), nil
}

// Save writes the current map, creating a document on first save, and
// returns its file id.
func (s *DocumentService) Save(ctx context.Context) (string, error) {
	m, fileID, revision := s.store.SaveSnapshot()
	if m == nil {
		return "", ErrNoCurrentMap
	}

	fileID, err := s.repo.Save(ctx, m, fileID)
	if err != nil {
		s.logger.Error("Failed to save map",
			zap.String("mapID", m.ID.String()),
			zap.Error(err),
		)
		return "", err
	}
	clean := s.store.MarkSaved(m.ID, fileID, revision)

	s.logger.Info("Map saved",
		zap.String("mapID", m.ID.String()),
		zap.String("fileID", fileID),
		zap.Bool("clean", clean),
	)
	s.publish(ctx, events.NewDocumentEvent(events.TypeMapSaved, m.ID, fileID, m.Name, s.now().UTC()))
	return fileID, nil
}

// Delete removes a stored map. The current map, even when it was loaded
// from fileID, stays open and counts as unsaved.
func (s *DocumentService) Delete(ctx context.Context, fileID string) error {
	if err := s.repo.Delete(ctx, fileID); err != nil {
		return err
	}

	mapID, _ := s.store.Detach(fileID)
	s.publish(ctx, events.NewDocumentEvent(events.TypeMapDeleted, mapID, fileID, "", s.now().UTC()))
	return nil
}

// New creates an empty map with a single root node
func (s *DocumentService) New(name string) *aggregates.MindMap {
	return s.store.CreateMap(name)
}

// NewSample replaces the current map with the built-in example map
func (s *DocumentService) NewSample(name string) *aggregates.MindMap {
	if name == "" {
		name = s.cfg.DefaultMapName
	}
	s.store.SetCurrentMap(aggregates.NewSampleMindMap(name, s.now()), "")
	return s.store.Current()
}

func (s *DocumentService) publish(ctx context.Context, event events.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish document event",
			zap.String("type", event.GetEventType()),
			zap.Error(err),
		)
	}
}

func asAppError(err error) error {
	if verrs, ok := err.(*errors.ValidationErrors); ok {
		return verrs.AppError()
	}
	return err
}
