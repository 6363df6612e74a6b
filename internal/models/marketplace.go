package models

// Vendor identifiers understood by the factory. The set is closed at build
// time; anything else fails resolution.
const (
	VendorEcom    = "ecom"
	VendorVoucher = "voucher"
)

// Order statuses. An order is CONFIRMED only when every constituent vendor
// call succeeded; there is no partial or pending state.
const (
	StatusConfirmed = "CONFIRMED"
	StatusFailed    = "FAILED"
)

// Prices carries the vendor-quoted price breakdown for a product. MRP stays
// a string because the voucher vendor reports denominations as text.
type Prices struct {
	MRP             string  `json:"mrp"`
	Discount        *string `json:"discount"`
	DiscountedPrice *string `json:"discounted_price"`
}

// Product is the canonical catalog entry every adapter normalizes into.
// Instances are built fresh per call from the raw vendor payload and are
// never persisted.
type Product struct {
	ID                string  `json:"id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	Type              string  `json:"type"` // "drug", "otc" or "voucher"
	Image             string  `json:"image"`
	Label             string  `json:"label"`
	Prices            Prices  `json:"prices"`
	RxRequired        bool    `json:"rx_required"`
	AvailableQuantity int     `json:"available_quantity"`
	UnitPrice         float64 `json:"unit_price"`
	OfferedPrice      float64 `json:"offered_price"`
}

// InventoryItemRequest asks a vendor whether a SKU is in stock. SKUs are
// unique only within one vendor's namespace.
type InventoryItemRequest struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
}

// ValidatedItem is one line of an inventory validation result.
type ValidatedItem struct {
	SKU             string   `json:"sku"`
	AvailableQty    int      `json:"availableQty"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discountedPrice,omitempty"`
}

// InventoryValidationResult aggregates a vendor's stock answer.
type InventoryValidationResult struct {
	Items         []ValidatedItem `json:"items"`
	PayableAmount float64         `json:"payableAmount"`
	VASCharges    float64         `json:"vasCharges"`
}

// Address is the delivery location attached to an order.
type Address struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderRequest is the vendor-scoped slice of a client order, one instance per
// vendor partition.
type OrderRequest struct {
	Vendor  string                 `json:"vendor"`
	Items   []InventoryItemRequest `json:"items"`
	Address Address                `json:"address"`
}

// OrderItemResult is one fulfilled (or failed) line item inside an order
// result. Voucher fields stay empty for vendors that do not issue vouchers.
type OrderItemResult struct {
	Product       string  `json:"product"`
	VoucherNumber string  `json:"voucherNumber"`
	VoucherCode   string  `json:"voucherCode"`
	Value         float64 `json:"value"`
	OrderID       string  `json:"orderId"`
	Status        string  `json:"status"`
}

// OrderMeta wraps the per-item detail of an order result.
type OrderMeta struct {
	Items []OrderItemResult `json:"items"`
}

// OrderResult is the terminal outcome of one vendor's order placement. It is
// returned to the caller and never mutated afterwards.
type OrderResult struct {
	VendorOrderID string     `json:"vendor_orderId"`
	Vendor        string     `json:"vendor"`
	Status        string     `json:"status"`
	Meta          *OrderMeta `json:"meta,omitempty"`
}

// OrderItemInput is one line of an incoming multi-vendor order before
// partitioning. Items missing a vendor, SKU or positive quantity are dropped
// during partitioning rather than rejected.
type OrderItemInput struct {
	Vendor   string `json:"vendor"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// MultiVendorOrderResult is the aggregate returned for a multi-vendor order.
type MultiVendorOrderResult struct {
	OrderID string        `json:"orderId"`
	Orders  []OrderResult `json:"orders"`
}
