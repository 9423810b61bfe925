package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVATAmount(t *testing.T) {
	receipt := &Receipt{VATStatus: "VAT", GrandTotal: 118}
	assert.True(t, receipt.VATApplies())
	assert.InDelta(t, 18.0, receipt.VATAmount(), 1e-9)

	nonVAT := &Receipt{VATStatus: "Non-VAT", GrandTotal: 118}
	assert.False(t, nonVAT.VATApplies())
	assert.Zero(t, nonVAT.VATAmount())

	// Only the exact "VAT" status applies; unset means non-VAT.
	unset := &Receipt{GrandTotal: 118}
	assert.False(t, unset.VATApplies())
}

func TestResolvedPaymentMethod(t *testing.T) {
	tests := []struct {
		name    string
		receipt Receipt
		want    string
	}{
		{
			"label wins",
			Receipt{PaymentMethodLabel: "M-Pesa Till", PaymentMethodValue: "mpesa", PaymentMethod: "mobile", OrderPaymentMethod: "cash"},
			"M-Pesa Till",
		},
		{
			"value when no label",
			Receipt{PaymentMethodValue: "mpesa", PaymentMethod: "mobile", OrderPaymentMethod: "cash"},
			"mpesa",
		},
		{
			"raw method when no label or value",
			Receipt{PaymentMethod: "mobile", OrderPaymentMethod: "cash"},
			"mobile",
		},
		{
			"order method last",
			Receipt{OrderPaymentMethod: "cash"},
			"cash",
		},
		{
			"placeholder when nothing set",
			Receipt{},
			"N/A",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.receipt.ResolvedPaymentMethod())
		})
	}
}

func TestSeverityRankOrdering(t *testing.T) {
	assert.Less(t, SeverityRank(StockCritical), SeverityRank(StockWarning))
	assert.Less(t, SeverityRank(StockWarning), SeverityRank(StockLow))
	assert.Less(t, SeverityRank(StockLow), SeverityRank(StockAdequate))
}

func TestTierPrice(t *testing.T) {
	product := &Product{
		PriceDealerCash:   1,
		PriceDealerCredit: 2,
		PriceHotelNonVAT:  3,
		PriceHotelVAT:     4,
		PriceFarmShop:     5,
	}
	assert.Equal(t, 1.0, product.TierPrice(TierDealerCash))
	assert.Equal(t, 2.0, product.TierPrice(TierDealerCredit))
	assert.Equal(t, 3.0, product.TierPrice(TierHotelNonVAT))
	assert.Equal(t, 4.0, product.TierPrice(TierHotelVAT))
	assert.Equal(t, 5.0, product.TierPrice(TierFarmShop))
	assert.Zero(t, product.TierPrice(PricingTier("unknown")))
}
