package vendors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"marketgw/internal/apperrors"
	"marketgw/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ecomStub(t *testing.T, tokenHits *int32, search, inventory, order string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/generate-jwt/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenHits, 1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/merchant-1"))
		writeJSON(w, `{"data":{"token":"jwt-token-1"}}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token-1", r.Header.Get("Authorization"))
		writeJSON(w, search)
	})
	mux.HandleFunc("/validate-inventory", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token-1", r.Header.Get("Authorization"))
		writeJSON(w, inventory)
	})
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token-1", r.Header.Get("Authorization"))
		writeJSON(w, order)
	})
	return httptest.NewServer(mux)
}

func TestEcomVendor_GetProductsMapsRecords(t *testing.T) {
	var tokenHits int32
	search := `{"data":{"products":[{
		"id":"p-1","sku":"PARA-500","name":"Paracetamol","type":"otc",
		"image":"img.png","label":"Pain relief",
		"prices":{"mrp":"30","discount":"10%","discounted_price":"27"},
		"rx_required":false,"available_quantity":12,"unit_price":30,"offered_price":27
	}]}}`
	server := ecomStub(t, &tokenHits, search, "{}", "{}")
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	products, err := vendor.GetProducts("para", map[string]any{"category": "otc"})
	require.NoError(t, err)

	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, "PARA-500", p.SKU)
	assert.Equal(t, "otc", p.Type)
	assert.Equal(t, "30", p.Prices.MRP)
	require.NotNil(t, p.Prices.DiscountedPrice)
	assert.Equal(t, "27", *p.Prices.DiscountedPrice)
	assert.Equal(t, 12, p.AvailableQuantity)
	assert.Equal(t, 30.0, p.UnitPrice)
	assert.Equal(t, 27.0, p.OfferedPrice)
}

func TestEcomVendor_GetProductsEmptyCatalog(t *testing.T) {
	var tokenHits int32
	server := ecomStub(t, &tokenHits, `{"data":{}}`, "{}", "{}")
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	products, err := vendor.GetProducts("", nil)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestEcomVendor_TokenIsCachedAcrossCalls(t *testing.T) {
	var tokenHits int32
	server := ecomStub(t, &tokenHits, `{"data":{"products":[]}}`, "{}", "{}")
	defer server.Close()

	vendor, tokens := newEcomForTest(server)
	_, err := vendor.GetProducts("", nil)
	require.NoError(t, err)
	_, err = vendor.GetProducts("", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&tokenHits))
	cached, ok := tokens.Get(models.VendorEcom)
	assert.True(t, ok)
	assert.Equal(t, "jwt-token-1", cached)
}

func TestEcomVendor_TokenFetchRetriesTransientFailures(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/generate-jwt/", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, `{"data":{"token":"jwt-token-1"}}`)
	})
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":{"products":[]}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	_, err := vendor.GetProducts("", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestEcomVendor_ValidateInventoryMapsResponse(t *testing.T) {
	var tokenHits int32
	inventory := `{"data":{
		"items":[{"sku":"X","available_quantity":5,"unit_price":10}],
		"payable_amount":50
	}}`
	server := ecomStub(t, &tokenHits, "{}", inventory, "{}")
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	result, err := vendor.ValidateInventory([]models.InventoryItemRequest{{SKU: "X", Quantity: 5}})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, models.ValidatedItem{SKU: "X", AvailableQty: 5, Price: 10}, result.Items[0])
	assert.Equal(t, 50.0, result.PayableAmount)
	assert.Equal(t, 0.0, result.VASCharges)
}

func TestEcomVendor_ValidateInventoryFallsBackToPrice(t *testing.T) {
	var tokenHits int32
	inventory := `{"data":{
		"items":[{"sku":"Y","available_quantity":3,"price":8,"discounted_price":7}],
		"payable_amount":24,
		"vas_charges":{"total_amount":2}
	}}`
	server := ecomStub(t, &tokenHits, "{}", inventory, "{}")
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	result, err := vendor.ValidateInventory([]models.InventoryItemRequest{{SKU: "Y", Quantity: 3}})
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.Equal(t, 8.0, result.Items[0].Price)
	require.NotNil(t, result.Items[0].DiscountedPrice)
	assert.Equal(t, 7.0, *result.Items[0].DiscountedPrice)
	assert.Equal(t, 2.0, result.VASCharges)
}

func TestEcomVendor_ValidateInventoryMissingItems(t *testing.T) {
	var tokenHits int32
	server := ecomStub(t, &tokenHits, "{}", `{"data":{"payable_amount":10}}`, "{}")
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	result, err := vendor.ValidateInventory([]models.InventoryItemRequest{{SKU: "X", Quantity: 1}})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrUpstreamResponse)
}

func TestEcomVendor_PlaceOrderSynthesizesMetaItems(t *testing.T) {
	var confirmBody map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/generate-jwt/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":{"token":"jwt-token-1"}}`)
	})
	mux.HandleFunc("/orders/", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&confirmBody))
		writeJSON(w, `{"data":{"order_id":"ecom-od-77","status":"CONFIRMED"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	result, err := vendor.PlaceOrder(models.OrderRequest{
		Vendor: models.VendorEcom,
		Items: []models.InventoryItemRequest{
			{SKU: "PARA-500", Quantity: 2},
			{SKU: "VITC-100", Quantity: 1},
		},
		Address: models.Address{Lat: 12.9, Lng: 77.6},
	})
	require.NoError(t, err)

	assert.Equal(t, "ecom-od-77", result.VendorOrderID)
	assert.Equal(t, models.VendorEcom, result.Vendor)
	assert.Equal(t, models.StatusConfirmed, result.Status)
	assert.NotEmpty(t, confirmBody["transaction_id"])

	// One meta entry per requested line item, placeholder voucher fields.
	require.NotNil(t, result.Meta)
	require.Len(t, result.Meta.Items, 2)
	assert.Equal(t, "PARA-500", result.Meta.Items[0].Product)
	assert.Equal(t, "MOCK_VOUCHER_NO_0", result.Meta.Items[0].VoucherNumber)
	assert.Equal(t, "MOCK_CODE_1", result.Meta.Items[1].VoucherCode)
	assert.Equal(t, 2.0, result.Meta.Items[0].Value)
	assert.Equal(t, models.StatusConfirmed, result.Meta.Items[1].Status)
}

func TestEcomVendor_PlaceOrderFallsBackToMockIdentifiers(t *testing.T) {
	var tokenHits int32
	server := ecomStub(t, &tokenHits, "{}", "{}", `{"data":null}`)
	defer server.Close()

	vendor, _ := newEcomForTest(server)
	result, err := vendor.PlaceOrder(models.OrderRequest{
		Vendor: models.VendorEcom,
		Items:  []models.InventoryItemRequest{{SKU: "PARA-500", Quantity: 1}},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.VendorOrderID, "mock-ecom-order-"))
	assert.Equal(t, models.StatusConfirmed, result.Status)
}
