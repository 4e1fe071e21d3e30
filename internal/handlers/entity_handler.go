package handlers

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"dynamicapp/internal/models"
	"dynamicapp/internal/services"
)

// EntityHandler handles HTTP requests for dynamic entities.
type EntityHandler struct {
	service services.DataService
	log     *slog.Logger
}

// NewEntityHandler creates a new EntityHandler.
func NewEntityHandler(service services.DataService, log *slog.Logger) *EntityHandler {
	return &EntityHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the entity routes with the Fiber router.
func (h *EntityHandler) RegisterRoutes(router fiber.Router) {
	entityRoutes := router.Group("/entities")
	entityRoutes.Get("/", h.HandleListEntities)
	entityRoutes.Get("/categories", h.HandleListCategories)
	entityRoutes.Get("/:id", h.HandleGetEntity)
	entityRoutes.Post("/", h.HandleCreateEntity)
	entityRoutes.Put("/:id", h.HandleUpdateEntity)
	entityRoutes.Delete("/:id", h.HandleDeleteEntity)
}

// entityRequest is the body accepted by create and update.
// IsActive defaults to true when omitted.
type entityRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	IsActive    *bool           `json:"is_active"`
}

func (r entityRequest) toEntity() *models.DynamicEntity {
	e := models.NewDynamicEntity()
	e.Name = r.Name
	e.Description = r.Description
	e.Category = r.Category
	e.Price = r.Price
	e.Quantity = r.Quantity
	if r.IsActive != nil {
		e.IsActive = *r.IsActive
	}
	return e
}

// HandleListEntities returns all entities ordered by name.
func (h *EntityHandler) HandleListEntities(c *fiber.Ctx) error {
	entities, err := h.service.ListAll(c.UserContext())
	if err != nil {
		return h.respondError(c, err, "Could not retrieve entities")
	}
	return c.JSON(entities)
}

// HandleListCategories returns the distinct categories.
func (h *EntityHandler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return h.respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleGetEntity returns a single entity.
func (h *EntityHandler) HandleGetEntity(c *fiber.Ctx) error {
	id, ok := entityID(c)
	if !ok {
		return invalidID(c)
	}

	entity, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err, "Could not retrieve entity")
	}
	if entity == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Entity with ID %d not found", id),
		})
	}
	return c.JSON(entity)
}

// HandleCreateEntity creates a new entity.
func (h *EntityHandler) HandleCreateEntity(c *fiber.Ctx) error {
	var req entityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	created, err := h.service.Create(c.UserContext(), req.toEntity())
	if err != nil {
		return h.respondError(c, err, "Could not create entity")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleUpdateEntity updates an existing entity.
func (h *EntityHandler) HandleUpdateEntity(c *fiber.Ctx) error {
	id, ok := entityID(c)
	if !ok {
		return invalidID(c)
	}

	var req entityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	entity := req.toEntity()
	entity.ID = id
	updated, err := h.service.Update(c.UserContext(), entity)
	if err != nil {
		return h.respondError(c, err, "Could not update entity")
	}
	return c.JSON(updated)
}

// HandleDeleteEntity deletes an entity.
func (h *EntityHandler) HandleDeleteEntity(c *fiber.Ctx) error {
	id, ok := entityID(c)
	if !ok {
		return invalidID(c)
	}

	deleted, err := h.service.Delete(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err, "Could not delete entity")
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Entity with ID %d not found", id),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Entity with ID %d deleted successfully", id),
	})
}

func entityID(c *fiber.Ctx) (int, bool) {
	id, err := c.ParamsInt("id")
	return id, err == nil && id > 0
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Entity ID must be a positive integer",
	})
}

// respondError translates service errors into HTTP responses.
func (h *EntityHandler) respondError(c *fiber.Ctx, err error, message string) error {
	var validationErr *services.ValidationError
	var notFoundErr *services.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": fmt.Sprintf("Entity with ID %d not found", notFoundErr.ID),
		})
	default:
		h.log.Error(message, "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": message,
			"error":   err.Error(),
		})
	}
}
