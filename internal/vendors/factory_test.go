package vendors

import (
	"testing"

	"marketgw/internal/apperrors"
	"marketgw/internal/config"
	"marketgw/pkg/tokencache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFactory() *Factory {
	return NewFactory(config.Config{
		Ecom:    config.EcomConfig{BaseURL: "http://ecom.test", MerchantID: "m-1"},
		Voucher: config.VoucherConfig{BaseURL: "http://voucher.test", Username: "u", Password: "p"},
	}, tokencache.New())
}

func TestFactory_ResolveKnownVendors(t *testing.T) {
	factory := newTestFactory()

	ecom, err := factory.Resolve("ecom")
	require.NoError(t, err)
	assert.IsType(t, &EcomVendor{}, ecom)

	voucher, err := factory.Resolve("voucher")
	require.NoError(t, err)
	assert.IsType(t, &VoucherVendor{}, voucher)
}

func TestFactory_ResolveIsCaseInsensitive(t *testing.T) {
	factory := newTestFactory()

	for _, id := range []string{"ECOM", "Ecom", "eCoM"} {
		vendor, err := factory.Resolve(id)
		require.NoError(t, err, "vendor id %q", id)
		assert.IsType(t, &EcomVendor{}, vendor)
	}

	vendor, err := factory.Resolve("VOUCHER")
	require.NoError(t, err)
	assert.IsType(t, &VoucherVendor{}, vendor)
}

func TestFactory_ResolveUnknownVendor(t *testing.T) {
	factory := newTestFactory()

	for _, id := range []string{"", "pharmacy", "ecom ", "vouchers"} {
		vendor, err := factory.Resolve(id)
		assert.Nil(t, vendor, "vendor id %q", id)
		assert.ErrorIs(t, err, apperrors.ErrUnsupportedVendor, "vendor id %q", id)
	}
}

func TestFactory_AdaptersShareOneInstance(t *testing.T) {
	factory := newTestFactory()

	first, err := factory.Resolve("ecom")
	require.NoError(t, err)
	second, err := factory.Resolve("ECOM")
	require.NoError(t, err)
	assert.Same(t, first, second)
}
