package handlers

import (
	"errors"
	"log"

	"marketgw/internal/apperrors"
	"marketgw/internal/models"
	"marketgw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MarketplaceHandler handles HTTP requests for the marketplace gateway.
type MarketplaceHandler struct {
	service *services.MarketplaceService
}

// NewMarketplaceHandler creates a new MarketplaceHandler.
func NewMarketplaceHandler(service *services.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{
		service: service,
	}
}

// RegisterRoutes registers the marketplace routes with the Fiber app.
func (h *MarketplaceHandler) RegisterRoutes(router fiber.Router) {
	marketplace := router.Group("/marketplace")
	marketplace.Post("/products", h.HandleGetProducts)
	marketplace.Post("/validate-inventory", h.HandleValidateInventory)
	marketplace.Post("/order", h.HandlePlaceOrder)
}

type productsRequest struct {
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters"`
}

// HandleGetProducts fetches products from the vendor named in the query
// string. The body is optional.
func (h *MarketplaceHandler) HandleGetProducts(c *fiber.Ctx) error {
	vendor := c.Query("vendor")
	if vendor == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Vendor is required",
		})
	}

	var body productsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body",
			})
		}
	}

	products, err := h.service.GetProducts(vendor, body.Query, body.Filters)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    products,
		"message": "Products fetched from " + vendor,
	})
}

type validateInventoryRequest struct {
	Vendor string                        `json:"vendor"`
	Items  []models.InventoryItemRequest `json:"items"`
}

// HandleValidateInventory validates stock for the requested items with one
// vendor.
func (h *MarketplaceHandler) HandleValidateInventory(c *fiber.Ctx) error {
	var body validateInventoryRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if body.Vendor == "" || body.Items == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "vendor and items[] required",
		})
	}

	result, err := h.service.ValidateInventory(body.Vendor, body.Items)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    result,
		"message": "Inventory validated with " + body.Vendor,
	})
}

type placeOrderRequest struct {
	Items   []models.OrderItemInput `json:"items"`
	Address models.Address          `json:"address"`
}

// HandlePlaceOrder places a multi-vendor order.
func (h *MarketplaceHandler) HandlePlaceOrder(c *fiber.Ctx) error {
	var body placeOrderRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}

	result, err := h.service.PlaceOrder(body.Items, body.Address)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// respondError maps service errors to the response envelope. Client input
// problems get a readable message; everything else is a generic 500 so no
// internal detail leaks.
func respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, apperrors.ErrInvalidRequest) || errors.Is(err, apperrors.ErrUnsupportedVendor) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": err.Error(),
		})
	}

	log.Printf("marketplace request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Something went wrong while processing the request.",
	})
}
