package vendors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketgw/internal/models"
)

// Vendor is the unified contract every backend fulfillment provider is
// adapted to. Adapters own their endpoint, auth flow and response
// normalization; callers only see the canonical marketplace model.
type Vendor interface {
	GetProducts(query string, filters map[string]any) ([]models.Product, error)
	ValidateInventory(items []models.InventoryItemRequest) (*models.InventoryValidationResult, error)
	PlaceOrder(order models.OrderRequest) (*models.OrderResult, error)
}

// Retry policy applied to every outbound vendor call. Fixed delay, no
// backoff; tests shorten the delay.
var (
	retryAttempts = 3
	retryDelay    = 1 * time.Second
)

const tokenTTL = 15 * time.Minute

// httpTimeout bounds every single attempt against a vendor endpoint.
const httpTimeout = 30 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// doRequest performs one HTTP round trip against a vendor endpoint and
// returns the raw response body. A non-2xx status is an error so the retry
// wrapper treats it as a failed attempt.
func doRequest(client *http.Client, method, url string, headers map[string]string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach vendor: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read vendor response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("vendor returned status %d", resp.StatusCode)
	}
	return payload, nil
}
