package core

import "time"

// PricingTier identifies one of the five customer-class price columns
// applied uniformly to every product.
type PricingTier string

const (
	TierDealerCash   PricingTier = "dealer_cash"
	TierDealerCredit PricingTier = "dealer_credit"
	TierHotelNonVAT  PricingTier = "hotel_non_vat"
	TierHotelVAT     PricingTier = "hotel_vat"
	TierFarmShop     PricingTier = "farm_shop"
)

// AllTiers lists the fixed pricing tiers in display order.
var AllTiers = []PricingTier{
	TierDealerCash,
	TierDealerCredit,
	TierHotelNonVAT,
	TierHotelVAT,
	TierFarmShop,
}

// TierLabels maps tier identifiers to human-readable labels.
var TierLabels = map[PricingTier]string{
	TierDealerCash:   "Dealer Cash",
	TierDealerCredit: "Dealer Credit",
	TierHotelNonVAT:  "Hotel Non-VAT",
	TierHotelVAT:     "Hotel VAT",
	TierFarmShop:     "Farm Shop",
}

// Category groups products for filtering and breakdown reporting.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Product is an immutable catalog snapshot: identity, category reference,
// stock position and the five tier-specific unit prices.
type Product struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SKU               string  `json:"sku"`
	CategoryID        string  `json:"category_id,omitempty"`
	CategoryName      string  `json:"category_name,omitempty"`
	Quantity          float64 `json:"quantity"`
	ReorderThreshold  float64 `json:"reorder_threshold"`
	PriceDealerCash   float64 `json:"price_dealer_cash"`
	PriceDealerCredit float64 `json:"price_dealer_credit"`
	PriceHotelNonVAT  float64 `json:"price_hotel_non_vat"`
	PriceHotelVAT     float64 `json:"price_hotel_vat"`
	PriceFarmShop     float64 `json:"price_farm_shop"`
	PackagingUnit     string  `json:"packaging_unit,omitempty"`
	PackSize          float64 `json:"pack_size,omitempty"`
	IsActive          bool    `json:"is_active"`
}

// TierPrice returns the unit price for the given tier.
func (p *Product) TierPrice(tier PricingTier) float64 {
	switch tier {
	case TierDealerCash:
		return p.PriceDealerCash
	case TierDealerCredit:
		return p.PriceDealerCredit
	case TierHotelNonVAT:
		return p.PriceHotelNonVAT
	case TierHotelVAT:
		return p.PriceHotelVAT
	case TierFarmShop:
		return p.PriceFarmShop
	}
	return 0
}

// StockStatus is the ordinal stock severity used for display ordering.
type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockWarning  StockStatus = "warning"
	StockLow      StockStatus = "low"
	StockAdequate StockStatus = "adequate"
)

// SeverityRank orders stock statuses: critical sorts before warning,
// warning before low, low before adequate.
func SeverityRank(s StockStatus) int {
	switch s {
	case StockCritical:
		return 0
	case StockWarning:
		return 1
	case StockLow:
		return 2
	default:
		return 3
	}
}

// ReportFilters fully determines a report cache key. The category and tier
// selections are kept in caller order; the cache key join preserves that
// order, so set-equal but reordered selections produce distinct keys.
type ReportFilters struct {
	StartDate  time.Time     `json:"start_date"`
	EndDate    time.Time     `json:"end_date"`
	Categories []string      `json:"categories"`
	Tiers      []PricingTier `json:"tiers"`
}

// CategoryBreakdown is the per-category rollup in an inventory report.
type CategoryBreakdown struct {
	CategoryID    string  `json:"category_id"`
	CategoryName  string  `json:"category_name"`
	ProductCount  int     `json:"product_count"`
	TotalQuantity float64 `json:"total_quantity"`

	ValueDealerCash   float64 `json:"value_dealer_cash"`
	ValueDealerCredit float64 `json:"value_dealer_credit"`
	ValueHotelNonVAT  float64 `json:"value_hotel_non_vat"`
	ValueHotelVAT     float64 `json:"value_hotel_vat"`
	ValueFarmShop     float64 `json:"value_farm_shop"`
}

// TierAnalysis is the per-pricing-tier rollup in an inventory report.
type TierAnalysis struct {
	Tier         PricingTier `json:"tier"`
	Label        string      `json:"label"`
	ProductCount int         `json:"product_count"`
	TotalRevenue float64     `json:"total_revenue"`
	AveragePrice float64     `json:"average_price"`
}

// StockLevelItem is one row of the severity-sorted stock listing.
type StockLevelItem struct {
	ProductID    string      `json:"product_id"`
	ProductName  string      `json:"product_name"`
	CurrentStock float64     `json:"current_stock"`
	Threshold    float64     `json:"threshold"`
	Status       StockStatus `json:"status"`
	CategoryID   string      `json:"category_id"`
	CategoryName string      `json:"category_name"`
}

// InventoryReportData is the aggregation output. It is recomputed wholesale
// on every fetch, never incrementally updated.
type InventoryReportData struct {
	TotalProducts   int                 `json:"total_products"`
	TotalValue      float64             `json:"total_value"`
	LowStockCount   int                 `json:"low_stock_count"`
	OutOfStockCount int                 `json:"out_of_stock_count"`
	Categories      []CategoryBreakdown `json:"categories"`
	TierAnalysis    []TierAnalysis      `json:"tier_analysis"`
	StockLevels     []StockLevelItem    `json:"stock_levels"`
	GeneratedAt     time.Time           `json:"generated_at"`
}

// CachedReport is the (data, timestamp) pair persisted under a filter key.
type CachedReport struct {
	Data      *InventoryReportData `json:"data"`
	Timestamp time.Time            `json:"timestamp"`
}

// ReportSource tells a caller whether report data came from a fresh fetch,
// a fresh cache hit, or a stale cached fallback after a failed fetch.
type ReportSource string

const (
	ReportSourceFresh         ReportSource = "fresh"
	ReportSourceCache         ReportSource = "cache"
	ReportSourceStaleFallback ReportSource = "stale_fallback"
)

// User is the authoritative account row.
type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email,omitempty"`
	PasswordHash      string    `json:"-"`
	Role              string    `json:"role"`
	Title             string    `json:"title,omitempty"`
	FirstName         string    `json:"first_name,omitempty"`
	LastName          string    `json:"last_name,omitempty"`
	EmployeeID        string    `json:"employee_id,omitempty"`
	PhoneNumber       string    `json:"phone_number,omitempty"`
	FirstLogin        bool      `json:"first_login"`
	TemporaryPassword bool      `json:"temporary_password"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
}

// AuthUser is the session identity merged from two sources: the token's
// embedded claims (immediately available) and the authoritative users row
// (fetched asynchronously, wins on conflict once available).
type AuthUser struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	Title             string `json:"title,omitempty"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	Email             string `json:"email,omitempty"`
	EmployeeID        string `json:"employee_id,omitempty"`
	PhoneNumber       string `json:"phone_number,omitempty"`
	FirstLogin        bool   `json:"first_login"`
	TemporaryPassword bool   `json:"temporary_password"`
	DeviceType        string `json:"device_type,omitempty"`
}

// Receipt is the structured order/payment data rendered into the 80mm
// thermal receipt document.
type Receipt struct {
	ReceiptNumber string    `json:"receipt_number"`
	Date          time.Time `json:"date"`

	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	CustomerPhone   string `json:"customer_phone"`
	CustomerEmail   string `json:"customer_email,omitempty"`
	CustomerVATPIN  string `json:"customer_vat_pin,omitempty"`
	CustomerTIN     string `json:"customer_tin,omitempty"`
	// VATStatus indicates whether the 18%-inclusive VAT line applies.
	VATStatus string `json:"vat_status,omitempty"`

	OrderID            string `json:"order_id"`
	SalesRep           string `json:"sales_rep"`
	PaymentMethodLabel string `json:"payment_method_label,omitempty"`
	PaymentMethodValue string `json:"payment_method_value,omitempty"`
	PaymentMethod      string `json:"payment_method,omitempty"`
	OrderPaymentMethod string `json:"order_payment_method,omitempty"`
	PaymentStatus      string `json:"payment_status,omitempty"`

	Items []ReceiptItem `json:"items"`

	Subtotal   float64 `json:"subtotal"`
	GrandTotal float64 `json:"grand_total"`

	PreviouslyCollected float64 `json:"previously_collected"`
	AmountCollected     float64 `json:"amount_collected"`
	TotalCollected      float64 `json:"total_collected"`
	RemainingBalance    float64 `json:"remaining_balance"`
}

// ReceiptItem is a single line item on a receipt.
type ReceiptItem struct {
	Name      string  `json:"name"`
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// VATApplies reports whether the receipt's customer is VAT-registered.
func (r *Receipt) VATApplies() bool {
	return r.VATStatus == "VAT"
}

// VATAmount is the 18%-inclusive VAT portion of the grand total, zero when
// VAT does not apply.
func (r *Receipt) VATAmount() float64 {
	if !r.VATApplies() {
		return 0
	}
	return r.GrandTotal * 18 / 118
}

// ResolvedPaymentMethod walks the payment method fallback chain:
// label, value, raw method, order's stored method, then "N/A".
func (r *Receipt) ResolvedPaymentMethod() string {
	for _, candidate := range []string{
		r.PaymentMethodLabel,
		r.PaymentMethodValue,
		r.PaymentMethod,
		r.OrderPaymentMethod,
	} {
		if candidate != "" {
			return candidate
		}
	}
	return "N/A"
}
