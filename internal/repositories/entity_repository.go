package repositories

import (
	"context"
	"errors"

	"dynamicapp/internal/models"
)

// ErrNotFound is returned when no entity has the requested ID.
var ErrNotFound = errors.New("entity not found")

// EntityRepository defines the interface for entity data access.
type EntityRepository interface {
	GetAll(ctx context.Context) ([]models.DynamicEntity, error)
	GetByID(ctx context.Context, id int) (*models.DynamicEntity, error)
	Create(ctx context.Context, entity *models.DynamicEntity) error
	CreateBatch(ctx context.Context, entities []models.DynamicEntity) error
	Update(ctx context.Context, entity *models.DynamicEntity) error
	Delete(ctx context.Context, id int) error
	Categories(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int64, error)

	// Transaction runs fn against a repository bound to a single unit of
	// work. The work is committed when fn returns nil and rolled back otherwise.
	Transaction(ctx context.Context, fn func(repo EntityRepository) error) error
}
