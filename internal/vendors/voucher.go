package vendors

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"marketgw/internal/apperrors"
	"marketgw/internal/config"
	"marketgw/internal/models"
	"marketgw/pkg/encryption"
	"marketgw/pkg/retry"
	"marketgw/pkg/tokencache"

	"github.com/google/uuid"
)

// VoucherVendor adapts the gift-voucher vendor. Authentication uses
// username/password headers and every body after that travels encrypted:
// requests are wrapped in a {"payload": <ciphertext>} envelope, responses
// carry ciphertext in "data" that must be decrypted before parsing.
type VoucherVendor struct {
	baseURL  string
	username string
	password string
	tokens   *tokencache.Cache
	client   *http.Client
}

// NewVoucherVendor creates the adapter with the shared token cache injected.
func NewVoucherVendor(cfg config.VoucherConfig, tokens *tokencache.Cache) *VoucherVendor {
	return &VoucherVendor{
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		tokens:   tokens,
		client:   newHTTPClient(),
	}
}

type voucherEnvelope struct {
	Data string `json:"data"`
}

// sessionToken returns a cached token or fetches one. The vendor returns the
// token itself encrypted; it is decrypted before caching.
func (v *VoucherVendor) sessionToken() (string, error) {
	if token, ok := v.tokens.Get(models.VendorVoucher); ok {
		return token, nil
	}

	headers := map[string]string{
		"username": v.username,
		"password": v.password,
	}
	body, err := retry.Do(func() ([]byte, error) {
		return doRequest(v.client, http.MethodGet, v.baseURL+"/gettoken", headers, nil)
	}, retryAttempts, retryDelay)
	if err != nil {
		return "", fmt.Errorf("voucher token fetch failed: %w", err)
	}

	var parsed voucherEnvelope
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: voucher token payload: %v", apperrors.ErrUpstreamResponse, err)
	}
	token, err := encryption.Decrypt(parsed.Data)
	if err != nil {
		return "", fmt.Errorf("voucher token decrypt failed: %w", err)
	}

	v.tokens.Set(models.VendorVoucher, token, tokenTTL)
	return token, nil
}

// call posts body to path with the session token header, then unwraps and
// decrypts the response envelope into plaintext JSON.
func (v *VoucherVendor) call(path string, body any) (string, error) {
	token, err := v.sessionToken()
	if err != nil {
		return "", err
	}

	headers := map[string]string{"token": token}
	raw, err := retry.Do(func() ([]byte, error) {
		return doRequest(v.client, http.MethodPost, v.baseURL+path, headers, body)
	}, retryAttempts, retryDelay)
	if err != nil {
		return "", err
	}

	var parsed voucherEnvelope
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: voucher envelope: %v", apperrors.ErrUpstreamResponse, err)
	}
	return encryption.Decrypt(parsed.Data)
}

// encryptedCall encrypts payload into the request envelope before calling.
func (v *VoucherVendor) encryptedCall(path string, payload any) (string, error) {
	encrypted, err := encryption.Encrypt(payload)
	if err != nil {
		return "", err
	}
	return v.call(path, map[string]string{"payload": encrypted})
}

type voucherBrand struct {
	BrandProductCode string `json:"BrandProductCode"`
	BrandName        string `json:"BrandName"`
	BrandImage       string `json:"BrandImage"`
	Category         string `json:"Category"`
	DenominationList string `json:"denominationList"`
	StockAvailable   string `json:"stockAvailable"`
}

// GetProducts lists voucher brands. The vendor protocol has no search or
// filter support, so query and filters are ignored; a brand's first listed
// denomination stands in for its price.
func (v *VoucherVendor) GetProducts(query string, filters map[string]any) ([]models.Product, error) {
	plaintext, err := v.call("/getbrands", map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("voucher brand listing failed: %w", err)
	}

	var brands []voucherBrand
	if err := json.Unmarshal([]byte(plaintext), &brands); err != nil {
		return nil, fmt.Errorf("%w: voucher brand payload: %v", apperrors.ErrUpstreamResponse, err)
	}

	products := make([]models.Product, 0, len(brands))
	for _, brand := range brands {
		mrp := "N/A"
		var unitPrice float64
		if brand.DenominationList != "" {
			mrp = strings.Split(brand.DenominationList, ",")[0]
			unitPrice, _ = strconv.ParseFloat(mrp, 64)
		}

		label := brand.Category
		if label == "" {
			label = "Voucher"
		}

		available := 0
		if brand.StockAvailable == "true" {
			available = 100
		}

		products = append(products, models.Product{
			ID:                brand.BrandProductCode,
			SKU:               brand.BrandProductCode,
			Name:              brand.BrandName,
			Type:              "voucher",
			Image:             brand.BrandImage,
			Label:             label,
			Prices:            models.Prices{MRP: mrp},
			RxRequired:        false,
			AvailableQuantity: available,
			UnitPrice:         unitPrice,
			OfferedPrice:      unitPrice,
		})
	}
	return products, nil
}

type voucherStockResponse struct {
	AvailableQuantity string `json:"AvailableQuantity"`
}

// ValidateInventory checks stock with one encrypted call per item; the
// vendor has no batch endpoint. The stock API returns only a quantity, so
// each line's price echoes the requested quantity (denomination count) —
// a mismatch inherited from the vendor contract, preserved for
// compatibility.
func (v *VoucherVendor) ValidateInventory(items []models.InventoryItemRequest) (*models.InventoryValidationResult, error) {
	validated := make([]models.ValidatedItem, len(items))
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item models.InventoryItemRequest) {
			defer wg.Done()

			plaintext, err := v.encryptedCall("/getstock", map[string]string{
				"BrandProductCode": item.SKU,
				"Denomination":     strconv.Itoa(item.Quantity),
			})
			if err != nil {
				errs[i] = fmt.Errorf("voucher stock check for %s failed: %w", item.SKU, err)
				return
			}

			var parsed voucherStockResponse
			if err := json.Unmarshal([]byte(plaintext), &parsed); err != nil {
				errs[i] = fmt.Errorf("%w: voucher stock payload for %s: %v", apperrors.ErrUpstreamResponse, item.SKU, err)
				return
			}

			qty, _ := strconv.Atoi(parsed.AvailableQuantity)
			validated[i] = models.ValidatedItem{
				SKU:          item.SKU,
				AvailableQty: qty,
				Price:        float64(item.Quantity),
			}
		}(i, item)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var payable float64
	for _, item := range validated {
		payable += item.Price
	}
	return &models.InventoryValidationResult{
		Items:         validated,
		PayableAmount: payable,
		VASCharges:    0,
	}, nil
}

type voucherPullResponse struct {
	ResultType         string `json:"ResultType"`
	ExternalOrderIDOut string `json:"ExternalOrderIdOut"`
	PullVouchers       []struct {
		ProductName string `json:"ProductName"`
		Vouchers    []struct {
			VoucherNo     string  `json:"VoucherNo"`
			VoucherGCcode string  `json:"VoucherGCcode"`
			Value         float64 `json:"Value"`
		} `json:"Vouchers"`
	} `json:"PullVouchers"`
}

// PlaceOrder pulls one voucher per item, sequentially — the vendor endpoint
// handles a single voucher at a time. The overall order is CONFIRMED only
// when every item's pull reported SUCCESS.
func (v *VoucherVendor) PlaceOrder(order models.OrderRequest) (*models.OrderResult, error) {
	results := make([]models.OrderItemResult, 0, len(order.Items))

	for _, item := range order.Items {
		plaintext, err := v.encryptedCall("/pullvoucher", map[string]any{
			"BrandProductCode": item.SKU,
			"Denomination":     strconv.Itoa(item.Quantity),
			"Quantity":         1,
			"ExternalOrderId":  "voucher-" + uuid.NewString(),
		})
		if err != nil {
			return nil, fmt.Errorf("voucher pull for %s failed: %w", item.SKU, err)
		}

		var parsed voucherPullResponse
		if err := json.Unmarshal([]byte(plaintext), &parsed); err != nil {
			return nil, fmt.Errorf("%w: voucher pull payload for %s: %v", apperrors.ErrUpstreamResponse, item.SKU, err)
		}

		result := models.OrderItemResult{
			OrderID: parsed.ExternalOrderIDOut,
			Status:  models.StatusFailed,
		}
		if parsed.ResultType == "SUCCESS" {
			result.Status = models.StatusConfirmed
		}
		if len(parsed.PullVouchers) > 0 {
			result.Product = parsed.PullVouchers[0].ProductName
			if len(parsed.PullVouchers[0].Vouchers) > 0 {
				voucher := parsed.PullVouchers[0].Vouchers[0]
				result.VoucherNumber = voucher.VoucherNo
				result.VoucherCode = voucher.VoucherGCcode
				result.Value = voucher.Value
			}
		}
		results = append(results, result)
	}

	status := models.StatusConfirmed
	for _, r := range results {
		if r.Status != models.StatusConfirmed {
			status = models.StatusFailed
			break
		}
	}

	log.Printf("voucher order placed with %d items, status %s", len(results), status)

	return &models.OrderResult{
		VendorOrderID: "voucher-multi-" + uuid.NewString(),
		Vendor:        models.VendorVoucher,
		Status:        status,
		Meta:          &models.OrderMeta{Items: results},
	}, nil
}
