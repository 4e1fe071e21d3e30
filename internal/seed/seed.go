// Package seed prepares the store at startup: it makes sure the schema
// exists and fills an empty table with a fixed set of sample entities.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dynamicapp/internal/database"
	"dynamicapp/internal/models"
	"dynamicapp/internal/repositories"
)

// Entities returns the sample data set, created at the given time.
func Entities(now time.Time) []models.DynamicEntity {
	sample := func(name, description, category, price string, quantity int) models.DynamicEntity {
		return models.DynamicEntity{
			Name:        name,
			Description: description,
			Category:    category,
			Price:       decimal.RequireFromString(price),
			Quantity:    quantity,
			IsActive:    true,
			CreatedDate: now,
		}
	}

	return []models.DynamicEntity{
		sample("Laptop", "High-performance gaming laptop", "Electronics", "1200.00", 10),
		sample("Office Chair", "Ergonomic office chair", "Furniture", "250.00", 15),
		sample("Notebook", "Professional notebook set", "Stationery", "15.99", 100),
		sample("Coffee Maker", "Automatic coffee machine", "Appliances", "89.99", 20),
		sample("Desk Lamp", "LED desk lamp with adjustable brightness", "Lighting", "35.50", 30),
	}
}

// Run inserts the sample entities when the table is empty and reports how
// many rows it inserted. Counting and inserting share one unit of work.
func Run(ctx context.Context, repo repositories.EntityRepository, log *slog.Logger) (int, error) {
	inserted := 0
	err := repo.Transaction(ctx, func(tx repositories.EntityRepository) error {
		count, err := tx.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		entities := Entities(time.Now().UTC())
		if err := tx.CreateBatch(ctx, entities); err != nil {
			return err
		}
		inserted = len(entities)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed: %w", err)
	}

	if inserted > 0 {
		log.InfoContext(ctx, "Database seeded with initial data.", "count", inserted)
	} else {
		log.DebugContext(ctx, "Database already contains data, skipping seed")
	}
	return inserted, nil
}

// Initialize ensures the schema exists and seeds an empty table. Failures
// are logged and returned; callers treat them as non-fatal.
func Initialize(ctx context.Context, db *gorm.DB, repo repositories.EntityRepository, log *slog.Logger) error {
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.ErrorContext(ctx, "An error occurred while initializing the database", "error", err)
		return err
	}
	if _, err := Run(ctx, repo, log); err != nil {
		log.ErrorContext(ctx, "An error occurred while initializing the database", "error", err)
		return err
	}
	return nil
}
