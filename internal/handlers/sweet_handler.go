package handlers

import (
	"errors"
	"log"
	"strconv"

	"sweetshop/internal/models"
	"sweetshop/internal/repositories"
	"sweetshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SweetHandler handles HTTP requests for sweets.
type SweetHandler struct {
	service *services.SweetService
}

// NewSweetHandler creates a new SweetHandler.
func NewSweetHandler(service *services.SweetService) *SweetHandler {
	return &SweetHandler{
		service: service,
	}
}

// RegisterRoutes registers the sweet routes with the Fiber app. The admin
// handler gates the admin-only routes (delete, restock); everything else
// only needs the authentication the router group already applies.
func (h *SweetHandler) RegisterRoutes(router fiber.Router, admin fiber.Handler) {
	sweetRoutes := router.Group("/sweets")
	sweetRoutes.Post("/", h.HandleCreateSweet)
	sweetRoutes.Get("/", h.HandleGetSweets)
	sweetRoutes.Get("/search", h.HandleSearchSweets)
	sweetRoutes.Put("/:id", h.HandleUpdateSweet)
	sweetRoutes.Delete("/:id", admin, h.HandleDeleteSweet)
	sweetRoutes.Post("/:id/purchase", h.HandlePurchaseSweet)
	sweetRoutes.Post("/:id/restock", admin, h.HandleRestockSweet)
}

// HandleCreateSweet creates a new sweet.
func (h *SweetHandler) HandleCreateSweet(c *fiber.Ctx) error {
	var sweet models.Sweet
	if err := c.BodyParser(&sweet); err != nil {
		log.Printf("Error parsing create sweet request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.service.CreateSweet(&sweet); err != nil {
		return h.errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sweet)
}

// HandleGetSweets retrieves all sweets, newest first.
func (h *SweetHandler) HandleGetSweets(c *fiber.Ctx) error {
	sweets, err := h.service.GetAllSweets()
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(sweets)
}

// HandleSearchSweets retrieves the sweets matching the query filters.
func (h *SweetHandler) HandleSearchSweets(c *fiber.Ctx) error {
	filter := repositories.SweetFilter{
		Name:     c.Query("name"),
		Category: c.Query("category"),
	}

	if raw := c.Query("minPrice"); raw != "" {
		min, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "minPrice must be a number",
			})
		}
		filter.MinPrice = &min
	}
	if raw := c.Query("maxPrice"); raw != "" {
		max, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "maxPrice must be a number",
			})
		}
		filter.MaxPrice = &max
	}

	sweets, err := h.service.SearchSweets(filter)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(sweets)
}

// HandleUpdateSweet applies a partial update to an existing sweet.
func (h *SweetHandler) HandleUpdateSweet(c *fiber.Ctx) error {
	var update services.SweetUpdate
	if err := c.BodyParser(&update); err != nil {
		log.Printf("Error parsing update sweet request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sweet, err := h.service.UpdateSweet(c.Params("id"), update)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(sweet)
}

// HandleDeleteSweet removes a sweet.
func (h *SweetHandler) HandleDeleteSweet(c *fiber.Ctx) error {
	if err := h.service.DeleteSweet(c.Params("id")); err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Sweet deleted successfully",
	})
}

// quantityRequest represents the body of purchase and restock requests.
type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandlePurchaseSweet decrements stock by the requested quantity.
func (h *SweetHandler) HandlePurchaseSweet(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing purchase request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sweet, err := h.service.PurchaseSweet(c.Params("id"), req.Quantity)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(sweet)
}

// HandleRestockSweet increments stock by the requested quantity.
func (h *SweetHandler) HandleRestockSweet(c *fiber.Ctx) error {
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing restock request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	sweet, err := h.service.RestockSweet(c.Params("id"), req.Quantity)
	if err != nil {
		return h.errorResponse(c, err)
	}
	return c.JSON(sweet)
}

// errorResponse maps the service failure taxonomy onto HTTP statuses.
func (h *SweetHandler) errorResponse(c *fiber.Ctx, err error) error {
	var insufficientErr *services.InsufficientQuantityError
	var validationErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrSweetNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, services.ErrOutOfStock), errors.Is(err, services.ErrInvalidQuantity):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.As(err, &insufficientErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":     insufficientErr.Error(),
			"available": insufficientErr.Available,
		})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "Validation failed",
			"fields": validationErr.Fields,
		})
	default:
		log.Printf("Unexpected error handling sweet request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}
