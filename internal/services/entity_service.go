package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"dynamicapp/internal/models"
	"dynamicapp/internal/repositories"
	"dynamicapp/internal/validation"
	"dynamicapp/pkg/metrics"
)

const (
	opListAll        = "list_all"
	opGetByID        = "get_by_id"
	opCreate         = "create"
	opUpdate         = "update"
	opDelete         = "delete"
	opListCategories = "list_categories"
)

// DataService is the contract consumed by the presentation layer.
type DataService interface {
	ListAll(ctx context.Context) ([]models.DynamicEntity, error)
	GetByID(ctx context.Context, id int) (*models.DynamicEntity, error)
	Create(ctx context.Context, entity *models.DynamicEntity) (*models.DynamicEntity, error)
	Update(ctx context.Context, entity *models.DynamicEntity) (*models.DynamicEntity, error)
	Delete(ctx context.Context, id int) (bool, error)
	ListCategories(ctx context.Context) ([]string, error)
}

// EntityService handles business logic related to dynamic entities.
type EntityService struct {
	repo      repositories.EntityRepository
	validator *validation.Validator
	publisher Publisher
	metrics   *metrics.EntityMetrics
	log       *slog.Logger
	clock     func() time.Time
}

// Option configures an EntityService.
type Option func(*EntityService)

// WithPublisher publishes lifecycle events after each committed mutation.
func WithPublisher(p Publisher) Option {
	return func(s *EntityService) { s.publisher = p }
}

// WithMetrics records every operation in m.
func WithMetrics(m *metrics.EntityMetrics) Option {
	return func(s *EntityService) { s.metrics = m }
}

// WithClock replaces the time source used for CreatedDate and ModifiedDate.
func WithClock(clock func() time.Time) Option {
	return func(s *EntityService) { s.clock = clock }
}

// NewEntityService creates a new EntityService.
func NewEntityService(repo repositories.EntityRepository, log *slog.Logger, opts ...Option) *EntityService {
	s := &EntityService{
		repo:      repo,
		validator: validation.New(),
		log:       log,
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// ListAll returns every entity ordered by name.
func (s *EntityService) ListAll(ctx context.Context) ([]models.DynamicEntity, error) {
	start := time.Now()
	s.log.InfoContext(ctx, "Getting all dynamic entities")

	entities, err := s.repo.GetAll(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Error getting all entities", "error", err)
		return nil, s.finish(opListAll, start, &StoreError{Op: "list all entities", Err: err})
	}

	s.finish(opListAll, start, nil)
	return entities, nil
}

// GetByID returns the entity with the given ID, or nil when there is none.
func (s *EntityService) GetByID(ctx context.Context, id int) (*models.DynamicEntity, error) {
	start := time.Now()

	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.finish(opGetByID, start, nil)
			return nil, nil
		}
		s.log.ErrorContext(ctx, "Error getting entity", "id", id, "error", err)
		return nil, s.finish(opGetByID, start, &StoreError{Op: "get entity", Err: err})
	}

	s.finish(opGetByID, start, nil)
	return entity, nil
}

// Create validates and inserts a new entity. The caller's ID and dates are
// ignored; the returned copy carries the generated ID and CreatedDate.
func (s *EntityService) Create(ctx context.Context, entity *models.DynamicEntity) (*models.DynamicEntity, error) {
	start := time.Now()
	if entity == nil {
		return nil, s.finish(opCreate, start, &ValidationError{Fields: s.validator.Entity(nil)})
	}

	s.log.InfoContext(ctx, "Creating new entity", "name", entity.Name)

	if fields := s.validator.Entity(entity); fields != nil {
		s.log.WarnContext(ctx, "Entity failed validation", "name", entity.Name, "fields", fields)
		return nil, s.finish(opCreate, start, &ValidationError{Fields: fields})
	}

	record := *entity
	record.ID = 0
	record.Price = record.Price.Round(2)
	record.CreatedDate = s.now()
	record.ModifiedDate = nil

	if err := s.repo.Create(ctx, &record); err != nil {
		s.log.ErrorContext(ctx, "Error creating entity", "name", entity.Name, "error", err)
		return nil, s.finish(opCreate, start, &StoreError{Op: "create entity", Err: err})
	}

	s.log.InfoContext(ctx, "Entity created successfully", "id", record.ID)
	s.finish(opCreate, start, nil)
	s.publish(ctx, EventEntityCreated, record.ID, record.Name)
	return &record, nil
}

// Update loads the stored entity with entity.ID, copies the mutable fields
// onto it and stamps ModifiedDate. It returns the stored record, not the input.
func (s *EntityService) Update(ctx context.Context, entity *models.DynamicEntity) (*models.DynamicEntity, error) {
	start := time.Now()
	if entity == nil {
		return nil, s.finish(opUpdate, start, &ValidationError{Fields: s.validator.Entity(nil)})
	}

	s.log.InfoContext(ctx, "Updating entity", "id", entity.ID)

	if fields := s.validator.Entity(entity); fields != nil {
		s.log.WarnContext(ctx, "Entity failed validation", "id", entity.ID, "fields", fields)
		return nil, s.finish(opUpdate, start, &ValidationError{Fields: fields})
	}

	var updated *models.DynamicEntity
	err := s.repo.Transaction(ctx, func(tx repositories.EntityRepository) error {
		existing, err := tx.GetByID(ctx, entity.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return &NotFoundError{ID: entity.ID}
			}
			return err
		}

		existing.Name = entity.Name
		existing.Description = entity.Description
		existing.Category = entity.Category
		existing.Price = entity.Price.Round(2)
		existing.Quantity = entity.Quantity
		existing.IsActive = entity.IsActive
		existing.ModifiedDate = s.nextModifiedDate(existing.ModifiedDate)

		if err := tx.Update(ctx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Error updating entity", "id", entity.ID, "error", err)
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, s.finish(opUpdate, start, err)
		}
		return nil, s.finish(opUpdate, start, &StoreError{Op: "update entity", Err: err})
	}

	s.log.InfoContext(ctx, "Entity updated successfully", "id", updated.ID)
	s.finish(opUpdate, start, nil)
	s.publish(ctx, EventEntityUpdated, updated.ID, updated.Name)
	return updated, nil
}

// Delete removes the entity with the given ID. It reports false, without an
// error, when no such entity exists.
func (s *EntityService) Delete(ctx context.Context, id int) (bool, error) {
	start := time.Now()
	s.log.InfoContext(ctx, "Deleting entity", "id", id)

	var deleted *models.DynamicEntity
	err := s.repo.Transaction(ctx, func(tx repositories.EntityRepository) error {
		existing, err := tx.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Delete(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// Removed by another caller after the lookup.
				return nil
			}
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Error deleting entity", "id", id, "error", err)
		return false, s.finish(opDelete, start, &StoreError{Op: "delete entity", Err: err})
	}

	if deleted == nil {
		s.log.InfoContext(ctx, "Entity not found for deletion", "id", id)
		s.metrics.Observe(opDelete, metrics.OutcomeNotFound, time.Since(start))
		return false, nil
	}

	s.log.InfoContext(ctx, "Entity deleted successfully", "id", id)
	s.finish(opDelete, start, nil)
	s.publish(ctx, EventEntityDeleted, id, deleted.Name)
	return true, nil
}

// ListCategories returns the distinct categories in ascending order.
func (s *EntityService) ListCategories(ctx context.Context) ([]string, error) {
	start := time.Now()

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		s.log.ErrorContext(ctx, "Error getting categories", "error", err)
		return nil, s.finish(opListCategories, start, &StoreError{Op: "list categories", Err: err})
	}

	s.finish(opListCategories, start, nil)
	return categories, nil
}

func (s *EntityService) now() time.Time {
	return s.clock().UTC()
}

// nextModifiedDate never moves ModifiedDate backwards.
func (s *EntityService) nextModifiedDate(previous *time.Time) *time.Time {
	now := s.now()
	if previous != nil && now.Before(*previous) {
		now = *previous
	}
	return &now
}

// finish records the operation outcome and passes err through.
func (s *EntityService) finish(op string, start time.Time, err error) error {
	s.metrics.Observe(op, outcomeOf(err), time.Since(start))
	return err
}

func outcomeOf(err error) string {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.As(err, &validationErr):
		return metrics.OutcomeInvalid
	case errors.As(err, &notFoundErr):
		return metrics.OutcomeNotFound
	default:
		return metrics.OutcomeError
	}
}

// publish emits a lifecycle event. Failures are logged, not returned.
func (s *EntityService) publish(ctx context.Context, eventType string, id int, name string) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(newEntityEvent(eventType, id, name, s.now()))
	if err != nil {
		s.log.WarnContext(ctx, "Failed to marshal entity event", "type", eventType, "id", id, "error", err)
		return
	}
	if err := s.publisher.Publish(ctx, eventType, body); err != nil {
		s.log.WarnContext(ctx, "Failed to publish entity event", "type", eventType, "id", id, "error", err)
	}
}
