package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"marketgw/internal/apperrors"
	"marketgw/internal/models"
	"marketgw/internal/vendors"
	"marketgw/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// VendorResolver maps a vendor identifier to its adapter.
type VendorResolver interface {
	Resolve(vendorID string) (vendors.Vendor, error)
}

// MarketplaceService fronts the vendor abstraction: it resolves adapters,
// validates caller input and orchestrates multi-vendor order placement.
type MarketplaceService struct {
	vendors  VendorResolver
	mqClient *rabbitmq.Client
	validate *validator.Validate
}

// NewMarketplaceService creates the service. mqClient may be nil when no
// broker is available; order events are then skipped.
func NewMarketplaceService(resolver VendorResolver, mqClient *rabbitmq.Client) *MarketplaceService {
	return &MarketplaceService{
		vendors:  resolver,
		mqClient: mqClient,
		validate: validator.New(),
	}
}

// GetProducts fetches the normalized catalog from one vendor.
func (s *MarketplaceService) GetProducts(vendor, query string, filters map[string]any) ([]models.Product, error) {
	if vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", apperrors.ErrInvalidRequest)
	}

	adapter, err := s.vendors.Resolve(vendor)
	if err != nil {
		return nil, err
	}

	log.Printf("fetching products from vendor %s", vendor)
	return adapter.GetProducts(query, filters)
}

// ValidateInventory checks stock and pricing for the requested items with
// one vendor.
func (s *MarketplaceService) ValidateInventory(vendor string, items []models.InventoryItemRequest) (*models.InventoryValidationResult, error) {
	if vendor == "" {
		return nil, fmt.Errorf("%w: vendor is required", apperrors.ErrInvalidRequest)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: items are required", apperrors.ErrInvalidRequest)
	}
	for _, item := range items {
		if err := s.validate.Struct(item); err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidRequest, err)
		}
	}

	adapter, err := s.vendors.Resolve(vendor)
	if err != nil {
		return nil, err
	}

	log.Printf("validating inventory of %d items with vendor %s", len(items), vendor)
	return adapter.ValidateInventory(items)
}

// PlaceOrder partitions a multi-vendor order by vendor, fans out placement
// to each vendor concurrently and aggregates the results. Any single vendor
// failure fails the whole orchestration; orders already placed at sibling
// vendors are not rolled back (reconciliation happens downstream).
func (s *MarketplaceService) PlaceOrder(items []models.OrderItemInput, address models.Address) (*models.MultiVendorOrderResult, error) {
	if len(items) == 0 || address.Lat == 0 || address.Lng == 0 {
		return nil, fmt.Errorf("%w: missing items or address", apperrors.ErrInvalidRequest)
	}

	// Partition items by vendor, keeping the order vendors are first seen.
	// Items missing a vendor, SKU or positive quantity are dropped, not
	// rejected.
	groups := make(map[string][]models.InventoryItemRequest)
	var vendorOrder []string
	for _, item := range items {
		if item.Vendor == "" || item.SKU == "" || item.Quantity <= 0 {
			log.Printf("dropping malformed order item %+v", item)
			continue
		}
		if _, seen := groups[item.Vendor]; !seen {
			vendorOrder = append(vendorOrder, item.Vendor)
		}
		groups[item.Vendor] = append(groups[item.Vendor], models.InventoryItemRequest{
			SKU:      item.SKU,
			Quantity: item.Quantity,
		})
	}

	log.Printf("placing order across vendors: %v", vendorOrder)

	// Resolve every adapter before contacting any vendor, so an unknown
	// vendor fails the order without side effects.
	adapters := make([]vendors.Vendor, len(vendorOrder))
	for i, vendor := range vendorOrder {
		adapter, err := s.vendors.Resolve(vendor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrOrderProcessing, err)
		}
		adapters[i] = adapter
	}

	results := make([]*models.OrderResult, len(vendorOrder))
	errs := make([]error, len(vendorOrder))

	var wg sync.WaitGroup
	for i, vendor := range vendorOrder {
		wg.Add(1)
		go func(i int, vendor string) {
			defer wg.Done()
			results[i], errs[i] = adapters[i].PlaceOrder(models.OrderRequest{
				Vendor:  vendor,
				Items:   groups[vendor],
				Address: address,
			})
		}(i, vendor)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			log.Printf("order placement with vendor %s failed: %v", vendorOrder[i], err)
			return nil, fmt.Errorf("%w: %v", apperrors.ErrOrderProcessing, err)
		}
	}

	orders := make([]models.OrderResult, len(results))
	for i, r := range results {
		orders[i] = *r
	}

	aggregate := &models.MultiVendorOrderResult{
		OrderID: "order-" + uuid.NewString(),
		Orders:  orders,
	}
	s.publishOrderPlaced(aggregate)
	return aggregate, nil
}

// publishOrderPlaced emits a best-effort order event; failures only log.
func (s *MarketplaceService) publishOrderPlaced(result *models.MultiVendorOrderResult) {
	if s.mqClient == nil {
		return
	}

	event := map[string]any{
		"orderId": result.OrderID,
		"orders":  result.Orders,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal order event for %s: %v", result.OrderID, err)
		return
	}
	if err := s.mqClient.PublishOrderPlaced(body); err != nil {
		log.Printf("warning: failed to publish order event for %s: %v", result.OrderID, err)
		return
	}
	log.Printf("published order placed event for %s", result.OrderID)
}
