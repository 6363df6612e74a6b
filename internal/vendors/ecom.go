package vendors

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"marketgw/internal/apperrors"
	"marketgw/internal/config"
	"marketgw/internal/models"
	"marketgw/pkg/retry"
	"marketgw/pkg/tokencache"

	"github.com/google/uuid"
)

// EcomVendor adapts the direct-auth e-commerce vendor: bearer-token auth
// keyed by a merchant identifier, plaintext JSON bodies.
type EcomVendor struct {
	baseURL    string
	merchantID string
	tokens     *tokencache.Cache
	client     *http.Client
}

// NewEcomVendor creates the adapter with the shared token cache injected.
func NewEcomVendor(cfg config.EcomConfig, tokens *tokencache.Cache) *EcomVendor {
	return &EcomVendor{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		tokens:     tokens,
		client:     newHTTPClient(),
	}
}

type ecomTokenResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// bearerToken returns a cached JWT or fetches a fresh one from the vendor.
// Concurrent refreshes for the same vendor are harmless: the fetch is
// idempotent and the cache write is atomic per key.
func (v *EcomVendor) bearerToken() (string, error) {
	if token, ok := v.tokens.Get(models.VendorEcom); ok {
		return token, nil
	}

	body, err := retry.Do(func() ([]byte, error) {
		return doRequest(v.client, http.MethodGet, fmt.Sprintf("%s/generate-jwt/%s", v.baseURL, v.merchantID), nil, nil)
	}, retryAttempts, retryDelay)
	if err != nil {
		return "", fmt.Errorf("ecom token fetch failed: %w", err)
	}

	var parsed ecomTokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: ecom token payload: %v", apperrors.ErrUpstreamResponse, err)
	}
	if parsed.Data.Token == "" {
		return "", fmt.Errorf("%w: ecom token payload missing token", apperrors.ErrUpstreamResponse)
	}

	v.tokens.Set(models.VendorEcom, parsed.Data.Token, tokenTTL)
	return parsed.Data.Token, nil
}

func (v *EcomVendor) authorizedPost(path string, payload any) ([]byte, error) {
	token, err := v.bearerToken()
	if err != nil {
		return nil, err
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	return retry.Do(func() ([]byte, error) {
		return doRequest(v.client, http.MethodPost, v.baseURL+path, headers, payload)
	}, retryAttempts, retryDelay)
}

type ecomProductsResponse struct {
	Data struct {
		Products []models.Product `json:"products"`
	} `json:"data"`
}

// GetProducts searches the vendor catalog. Vendor product records map
// field-for-field into the canonical Product shape.
func (v *EcomVendor) GetProducts(query string, filters map[string]any) ([]models.Product, error) {
	if filters == nil {
		filters = map[string]any{}
	}
	body, err := v.authorizedPost("/search", map[string]any{
		"query":   query,
		"filters": filters,
	})
	if err != nil {
		return nil, fmt.Errorf("ecom product search failed: %w", err)
	}

	var parsed ecomProductsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: ecom search payload: %v", apperrors.ErrUpstreamResponse, err)
	}

	products := parsed.Data.Products
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

type ecomInventoryResponse struct {
	Data *struct {
		Items []struct {
			SKU               string   `json:"sku"`
			AvailableQuantity int      `json:"available_quantity"`
			UnitPrice         float64  `json:"unit_price"`
			Price             float64  `json:"price"`
			DiscountedPrice   *float64 `json:"discounted_price"`
		} `json:"items"`
		PayableAmount float64 `json:"payable_amount"`
		VASCharges    *struct {
			TotalAmount float64 `json:"total_amount"`
		} `json:"vas_charges"`
	} `json:"data"`
}

// ValidateInventory checks stock for the requested items in one batch call.
func (v *EcomVendor) ValidateInventory(items []models.InventoryItemRequest) (*models.InventoryValidationResult, error) {
	body, err := v.authorizedPost("/validate-inventory", map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("ecom inventory validation failed: %w", err)
	}

	var parsed ecomInventoryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: ecom inventory payload: %v", apperrors.ErrUpstreamResponse, err)
	}
	if parsed.Data == nil || parsed.Data.Items == nil {
		return nil, fmt.Errorf("%w: ecom inventory payload missing items", apperrors.ErrUpstreamResponse)
	}

	result := &models.InventoryValidationResult{
		Items:         make([]models.ValidatedItem, 0, len(parsed.Data.Items)),
		PayableAmount: parsed.Data.PayableAmount,
	}
	for _, item := range parsed.Data.Items {
		price := item.UnitPrice
		if price == 0 {
			price = item.Price
		}
		result.Items = append(result.Items, models.ValidatedItem{
			SKU:             item.SKU,
			AvailableQty:    item.AvailableQuantity,
			Price:           price,
			DiscountedPrice: item.DiscountedPrice,
		})
	}
	if parsed.Data.VASCharges != nil {
		result.VASCharges = parsed.Data.VASCharges.TotalAmount
	}
	return result, nil
}

type ecomOrderResponse struct {
	Data *struct {
		OrderID string `json:"order_id"`
		Status  string `json:"status"`
	} `json:"data"`
}

// PlaceOrder confirms an order with the vendor. The order and transaction
// identifiers are minted client-side; the vendor echoes a confirmation but
// does not verify individual line items, so one meta entry per requested
// item is synthesized with placeholder voucher fields. That is a quirk of
// the vendor protocol, preserved as-is.
func (v *EcomVendor) PlaceOrder(order models.OrderRequest) (*models.OrderResult, error) {
	mockOrderID := "mock-ecom-order-" + uuid.NewString()
	transactionID := "txn_" + uuid.NewString()

	body, err := v.authorizedPost(fmt.Sprintf("/orders/%s/confirm", mockOrderID), map[string]any{
		"transaction_id": transactionID,
	})
	if err != nil {
		return nil, fmt.Errorf("ecom order confirmation failed: %w", err)
	}

	var parsed ecomOrderResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: ecom order payload: %v", apperrors.ErrUpstreamResponse, err)
	}

	vendorOrderID := mockOrderID
	status := models.StatusConfirmed
	if parsed.Data != nil {
		if parsed.Data.OrderID != "" {
			vendorOrderID = parsed.Data.OrderID
		}
		if parsed.Data.Status != "" {
			status = parsed.Data.Status
		}
	}

	meta := &models.OrderMeta{Items: make([]models.OrderItemResult, 0, len(order.Items))}
	for i, item := range order.Items {
		meta.Items = append(meta.Items, models.OrderItemResult{
			Product:       item.SKU,
			VoucherNumber: fmt.Sprintf("MOCK_VOUCHER_NO_%d", i),
			VoucherCode:   fmt.Sprintf("MOCK_CODE_%d", i),
			Value:         float64(item.Quantity),
			OrderID:       mockOrderID,
			Status:        models.StatusConfirmed,
		})
	}

	log.Printf("ecom order %s confirmed with %d items", vendorOrderID, len(meta.Items))

	return &models.OrderResult{
		VendorOrderID: vendorOrderID,
		Vendor:        models.VendorEcom,
		Status:        status,
		Meta:          meta,
	}, nil
}
