package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

// ReportFreshness is the staleness window for cached inventory reports.
const ReportFreshness = 5 * time.Minute

// ReportService aggregates the product catalog into inventory report data
// and caches results per user and filter set.
type ReportService struct {
	productRepo core.ProductRepository
	cache       core.ReportCache
	now         core.Clock
}

// NewReportService creates a new report service. A nil clock defaults to
// time.Now.
func NewReportService(productRepo core.ProductRepository, cache core.ReportCache, now core.Clock) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		productRepo: productRepo,
		cache:       cache,
		now:         now,
	}
}

// CacheKey builds the deterministic cache key for a filter set: ISO dates
// plus the comma-joined category and tier selections. The joins preserve
// caller order, so reordered but set-equal selections key differently.
func CacheKey(filters core.ReportFilters) string {
	tiers := make([]string, len(filters.Tiers))
	for i, tier := range filters.Tiers {
		tiers[i] = string(tier)
	}

	return fmt.Sprintf("inventory_%s_%s_%s_%s",
		filters.StartDate.Format("2006-01-02"),
		filters.EndDate.Format("2006-01-02"),
		strings.Join(filters.Categories, ","),
		strings.Join(tiers, ","),
	)
}

// GetInventoryReport produces report data for the filter set. It serves a
// fresh cached result when one exists, otherwise fetches and aggregates. On
// fetch failure a stale cached entry (if any) is surfaced together with the
// error so callers can distinguish fresh data, stale fallback, and hard
// failure.
func (s *ReportService) GetInventoryReport(ctx context.Context, userID string, filters core.ReportFilters) (*core.InventoryReportData, core.ReportSource, error) {
	key := CacheKey(filters)

	cached, cacheErr := s.cache.Get(ctx, userID, key)
	if cacheErr == nil && s.now().Sub(cached.Timestamp) < ReportFreshness {
		return cached.Data, core.ReportSourceCache, nil
	}

	data, err := s.fetchAndAggregate(ctx, filters)
	if err != nil {
		if cached != nil {
			return cached.Data, core.ReportSourceStaleFallback, err
		}
		return nil, "", err
	}

	entry := &core.CachedReport{Data: data, Timestamp: s.now()}
	if err := s.cache.Set(ctx, userID, key, entry); err != nil {
		// Cache writes are best effort; the fresh data is still good.
		log.Printf("report cache write failed for key %s: %v", key, err)
	}

	return data, core.ReportSourceFresh, nil
}

func (s *ReportService) fetchAndAggregate(ctx context.Context, filters core.ReportFilters) (*core.InventoryReportData, error) {
	products, err := s.productRepo.GetWithCategories(ctx, filters.Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("%w: no products found for report", core.ErrNotFound)
	}

	return Aggregate(products, s.now()), nil
}

// ClassifyStock maps a product's quantity and reorder threshold onto a
// stock status. A zero or negative threshold means the percentage is
// treated as 100 (adequate) rather than dividing by zero.
func ClassifyStock(quantity, threshold float64) core.StockStatus {
	if quantity <= 0 {
		return core.StockCritical
	}
	if threshold <= 0 {
		return core.StockAdequate
	}

	percentage := quantity / threshold * 100
	switch {
	case percentage < 25:
		return core.StockCritical
	case percentage < 50:
		return core.StockWarning
	case percentage < 100:
		return core.StockLow
	default:
		return core.StockAdequate
	}
}

// Aggregate computes the full report in a single pass over the product
// list. Stock-level items come out stably sorted by severity, so ties keep
// their fetch order.
func Aggregate(products []*core.Product, generatedAt time.Time) *core.InventoryReportData {
	data := &core.InventoryReportData{
		TotalProducts: len(products),
		StockLevels:   make([]core.StockLevelItem, 0, len(products)),
		GeneratedAt:   generatedAt,
	}

	tierTotals := make(map[core.PricingTier]*core.TierAnalysis, len(core.AllTiers))
	for _, tier := range core.AllTiers {
		tierTotals[tier] = &core.TierAnalysis{Tier: tier, Label: core.TierLabels[tier]}
	}

	categoryTotals := make(map[string]*core.CategoryBreakdown)
	categoryOrder := make([]string, 0)

	for _, product := range products {
		status := ClassifyStock(product.Quantity, product.ReorderThreshold)

		outOfStock := product.Quantity <= 0
		if outOfStock {
			data.OutOfStockCount++
		}
		// Out-of-stock products count as low stock as well.
		if outOfStock || status == core.StockCritical || status == core.StockWarning {
			data.LowStockCount++
		}

		tierValueSum := 0.0
		for _, tier := range core.AllTiers {
			revenue := product.Quantity * product.TierPrice(tier)
			tierValueSum += revenue

			totals := tierTotals[tier]
			totals.TotalRevenue += revenue
			totals.ProductCount++
			totals.AveragePrice = totals.TotalRevenue / float64(totals.ProductCount)
		}
		// Total value is the mean of the five per-product tier valuations,
		// summed across products, not any single tier's total.
		data.TotalValue += tierValueSum / float64(len(core.AllTiers))

		categoryID := product.CategoryID
		categoryName := product.CategoryName
		if categoryID == "" {
			categoryID = "uncategorized"
			categoryName = "Uncategorized"
		}
		breakdown, seen := categoryTotals[categoryID]
		if !seen {
			breakdown = &core.CategoryBreakdown{
				CategoryID:   categoryID,
				CategoryName: categoryName,
			}
			categoryTotals[categoryID] = breakdown
			categoryOrder = append(categoryOrder, categoryID)
		}
		breakdown.ProductCount++
		breakdown.TotalQuantity += product.Quantity
		breakdown.ValueDealerCash += product.Quantity * product.PriceDealerCash
		breakdown.ValueDealerCredit += product.Quantity * product.PriceDealerCredit
		breakdown.ValueHotelNonVAT += product.Quantity * product.PriceHotelNonVAT
		breakdown.ValueHotelVAT += product.Quantity * product.PriceHotelVAT
		breakdown.ValueFarmShop += product.Quantity * product.PriceFarmShop

		data.StockLevels = append(data.StockLevels, core.StockLevelItem{
			ProductID:    product.ID,
			ProductName:  product.Name,
			CurrentStock: product.Quantity,
			Threshold:    product.ReorderThreshold,
			Status:       status,
			CategoryID:   categoryID,
			CategoryName: categoryName,
		})
	}

	data.TierAnalysis = make([]core.TierAnalysis, 0, len(core.AllTiers))
	for _, tier := range core.AllTiers {
		data.TierAnalysis = append(data.TierAnalysis, *tierTotals[tier])
	}

	data.Categories = make([]core.CategoryBreakdown, 0, len(categoryOrder))
	for _, id := range categoryOrder {
		data.Categories = append(data.Categories, *categoryTotals[id])
	}

	sort.SliceStable(data.StockLevels, func(i, j int) bool {
		return core.SeverityRank(data.StockLevels[i].Status) < core.SeverityRank(data.StockLevels[j].Status)
	})

	return data
}
