package vendors

import (
	"fmt"
	"strings"

	"marketgw/internal/apperrors"
	"marketgw/internal/config"
	"marketgw/internal/models"
	"marketgw/pkg/tokencache"
)

// Factory resolves vendor identifiers to adapter instances. The vendor set
// is closed at build time; both adapters are constructed once and share one
// token cache, so resolution is just a lookup.
type Factory struct {
	ecom    *EcomVendor
	voucher *VoucherVendor
}

// NewFactory wires both vendor adapters against the given config and the
// shared token cache.
func NewFactory(cfg config.Config, tokens *tokencache.Cache) *Factory {
	return &Factory{
		ecom:    NewEcomVendor(cfg.Ecom, tokens),
		voucher: NewVoucherVendor(cfg.Voucher, tokens),
	}
}

// Resolve maps a vendor identifier (case-insensitive) to its adapter.
func (f *Factory) Resolve(vendorID string) (Vendor, error) {
	switch strings.ToLower(vendorID) {
	case models.VendorEcom:
		return f.ecom, nil
	case models.VendorVoucher:
		return f.voucher, nil
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedVendor, vendorID)
	}
}
