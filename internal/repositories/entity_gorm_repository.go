package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"dynamicapp/internal/models"
)

// updatableColumns are the columns Update writes. ID and created_date are never touched.
var updatableColumns = []string{"name", "description", "category", "price", "quantity", "is_active", "modified_date"}

// GORMEntityRepository is a GORM implementation of EntityRepository.
type GORMEntityRepository struct {
	db *gorm.DB
}

// NewGORMEntityRepository creates a new instance of GORMEntityRepository.
func NewGORMEntityRepository(db *gorm.DB) *GORMEntityRepository {
	return &GORMEntityRepository{
		db: db,
	}
}

// GetAll retrieves all entities ordered by name.
func (r *GORMEntityRepository) GetAll(ctx context.Context) ([]models.DynamicEntity, error) {
	entities := make([]models.DynamicEntity, 0)
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("failed to get all entities: %w", err)
	}
	return entities, nil
}

// GetByID retrieves a single entity by its primary key.
func (r *GORMEntityRepository) GetByID(ctx context.Context, id int) (*models.DynamicEntity, error) {
	var entity models.DynamicEntity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("entity with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get entity by ID %d: %w", id, err)
	}
	return &entity, nil
}

// Create inserts entity and fills in its generated ID.
func (r *GORMEntityRepository) Create(ctx context.Context, entity *models.DynamicEntity) error {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// CreateBatch inserts all entities in one statement.
func (r *GORMEntityRepository) CreateBatch(ctx context.Context, entities []models.DynamicEntity) error {
	if len(entities) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&entities).Error; err != nil {
		return fmt.Errorf("failed to create entities: %w", err)
	}
	return nil
}

// Update writes the mutable columns of entity, including zero values.
func (r *GORMEntityRepository) Update(ctx context.Context, entity *models.DynamicEntity) error {
	res := r.db.WithContext(ctx).Model(entity).Select(updatableColumns).Updates(entity)
	if res.Error != nil {
		return fmt.Errorf("failed to update entity %d: %w", entity.ID, res.Error)
	}
	return nil
}

// Delete removes the entity with the given ID.
func (r *GORMEntityRepository) Delete(ctx context.Context, id int) error {
	res := r.db.WithContext(ctx).Delete(&models.DynamicEntity{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete entity %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("entity with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

// Categories returns the distinct categories in ascending order.
func (r *GORMEntityRepository) Categories(ctx context.Context) ([]string, error) {
	categories := make([]string, 0)
	err := r.db.WithContext(ctx).
		Model(&models.DynamicEntity{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// Count returns the number of stored entities.
func (r *GORMEntityRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.DynamicEntity{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}
	return count, nil
}

// Transaction runs fn inside a database transaction.
func (r *GORMEntityRepository) Transaction(ctx context.Context, fn func(repo EntityRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GORMEntityRepository{db: tx})
	})
}
