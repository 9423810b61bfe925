package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

func flatPriceProduct(id string, quantity, threshold, price float64) *core.Product {
	return &core.Product{
		ID:                id,
		Name:              "Product " + id,
		Quantity:          quantity,
		ReorderThreshold:  threshold,
		PriceDealerCash:   price,
		PriceDealerCredit: price,
		PriceHotelNonVAT:  price,
		PriceHotelVAT:     price,
		PriceFarmShop:     price,
		IsActive:          true,
	}
}

func TestClassifyStock(t *testing.T) {
	tests := []struct {
		name      string
		quantity  float64
		threshold float64
		want      core.StockStatus
	}{
		{"zero quantity is critical", 0, 10, core.StockCritical},
		{"negative quantity is critical", -3, 10, core.StockCritical},
		{"zero threshold is adequate", 5, 0, core.StockAdequate},
		{"negative threshold is adequate", 5, -1, core.StockAdequate},
		{"under 25 percent is critical", 2, 10, core.StockCritical},
		{"25 percent is warning", 2.5, 10, core.StockWarning},
		{"under 50 percent is warning", 4, 10, core.StockWarning},
		{"50 percent is low", 5, 10, core.StockLow},
		{"under 100 percent is low", 9, 10, core.StockLow},
		{"at threshold is adequate", 10, 10, core.StockAdequate},
		{"over threshold is adequate", 25, 10, core.StockAdequate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStock(tc.quantity, tc.threshold))
		})
	}
}

func TestCacheKey(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	filters := core.ReportFilters{
		StartDate:  start,
		EndDate:    end,
		Categories: []string{"cat-a", "cat-b"},
		Tiers:      []core.PricingTier{core.TierDealerCash, core.TierFarmShop},
	}

	key := CacheKey(filters)
	assert.Equal(t, "inventory_2026-08-01_2026-08-27_cat-a,cat-b_dealer_cash,farm_shop", key)

	// Same inputs always produce the same key.
	assert.Equal(t, key, CacheKey(filters))

	// Reordered selections are set-equal but key differently.
	reordered := filters
	reordered.Categories = []string{"cat-b", "cat-a"}
	assert.NotEqual(t, key, CacheKey(reordered))
}

func TestCacheKeyEmptySelections(t *testing.T) {
	filters := core.ReportFilters{
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "inventory_2026-08-01_2026-08-02__", CacheKey(filters))
}

func TestAggregateTierTotals(t *testing.T) {
	product := flatPriceProduct("p1", 2, 10, 100)
	data := Aggregate([]*core.Product{product}, time.Now())

	require.Len(t, data.TierAnalysis, 5)
	for _, tier := range data.TierAnalysis {
		assert.Equal(t, 1, tier.ProductCount, tier.Tier)
		assert.InDelta(t, 200.0, tier.TotalRevenue, 1e-9, tier.Tier)
		assert.InDelta(t, 200.0, tier.AveragePrice, 1e-9, tier.Tier)
	}

	// Total value is the mean of the five tier valuations, not their sum.
	assert.InDelta(t, 200.0, data.TotalValue, 1e-9)
	assert.Equal(t, 1, data.TotalProducts)
}

func TestAggregateMixedTierPrices(t *testing.T) {
	product := &core.Product{
		ID:                "p1",
		Quantity:          10,
		ReorderThreshold:  5,
		PriceDealerCash:   100,
		PriceDealerCredit: 110,
		PriceHotelNonVAT:  120,
		PriceHotelVAT:     130,
		PriceFarmShop:     140,
	}
	data := Aggregate([]*core.Product{product}, time.Now())

	// (1000 + 1100 + 1200 + 1300 + 1400) / 5
	assert.InDelta(t, 1200.0, data.TotalValue, 1e-9)
}

func TestAggregateOutOfStockCountedAsLowOnce(t *testing.T) {
	products := []*core.Product{
		flatPriceProduct("gone", 0, 50, 30),
		flatPriceProduct("fine", 100, 50, 30),
	}
	data := Aggregate(products, time.Now())

	assert.Equal(t, 1, data.OutOfStockCount)
	assert.Equal(t, 1, data.LowStockCount)
}

func TestAggregateSeveritySortIsStable(t *testing.T) {
	products := []*core.Product{
		flatPriceProduct("adequate-1", 100, 50, 10),
		flatPriceProduct("critical-1", 1, 50, 10),
		flatPriceProduct("warning-1", 20, 50, 10),
		flatPriceProduct("critical-2", 2, 50, 10),
		flatPriceProduct("low-1", 30, 50, 10),
	}
	data := Aggregate(products, time.Now())

	got := make([]string, 0, len(data.StockLevels))
	for _, item := range data.StockLevels {
		got = append(got, item.ProductID)
	}
	// Critical first, ties keep fetch order.
	assert.Equal(t, []string{"critical-1", "critical-2", "warning-1", "low-1", "adequate-1"}, got)
}

func TestAggregateUncategorizedBucket(t *testing.T) {
	orphan := flatPriceProduct("p1", 5, 10, 20)
	categorized := flatPriceProduct("p2", 5, 10, 20)
	categorized.CategoryID = "cat-dairy"
	categorized.CategoryName = "Dairy"

	data := Aggregate([]*core.Product{orphan, categorized}, time.Now())

	require.Len(t, data.Categories, 2)
	assert.Equal(t, "uncategorized", data.Categories[0].CategoryID)
	assert.Equal(t, "Uncategorized", data.Categories[0].CategoryName)
	assert.Equal(t, "cat-dairy", data.Categories[1].CategoryID)
	assert.InDelta(t, 100.0, data.Categories[1].ValueDealerCash, 1e-9)
}

func TestGetInventoryReportFreshCacheHit(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	repo := &fakeProductRepo{products: []*core.Product{flatPriceProduct("p1", 5, 10, 20)}}
	cache := newFakeReportCache()
	svc := NewReportService(repo, cache, fixedClock(&now))

	filters := core.ReportFilters{StartDate: now.AddDate(0, 0, -7), EndDate: now}
	cachedData := &core.InventoryReportData{TotalProducts: 42}
	require.NoError(t, cache.Set(context.Background(), "user-1", CacheKey(filters), &core.CachedReport{
		Data:      cachedData,
		Timestamp: now.Add(-4 * time.Minute),
	}))

	data, source, err := svc.GetInventoryReport(context.Background(), "user-1", filters)
	require.NoError(t, err)
	assert.Equal(t, core.ReportSourceCache, source)
	assert.Equal(t, 42, data.TotalProducts)
	assert.Equal(t, 0, repo.fetchCalls, "fresh cache hit must not touch the store")
}

func TestGetInventoryReportStaleEntryRefetches(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	repo := &fakeProductRepo{products: []*core.Product{flatPriceProduct("p1", 5, 10, 20)}}
	cache := newFakeReportCache()
	svc := NewReportService(repo, cache, fixedClock(&now))

	filters := core.ReportFilters{StartDate: now.AddDate(0, 0, -7), EndDate: now}
	require.NoError(t, cache.Set(context.Background(), "user-1", CacheKey(filters), &core.CachedReport{
		Data:      &core.InventoryReportData{TotalProducts: 42},
		Timestamp: now.Add(-6 * time.Minute),
	}))

	data, source, err := svc.GetInventoryReport(context.Background(), "user-1", filters)
	require.NoError(t, err)
	assert.Equal(t, core.ReportSourceFresh, source)
	assert.Equal(t, 1, data.TotalProducts)
	assert.Equal(t, 1, repo.fetchCalls)

	// The refetch replaces the stale cache entry.
	entry, err := cache.Get(context.Background(), "user-1", CacheKey(filters))
	require.NoError(t, err)
	assert.Equal(t, now, entry.Timestamp)
}

func TestGetInventoryReportFreshnessBoundary(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	repo := &fakeProductRepo{products: []*core.Product{flatPriceProduct("p1", 5, 10, 20)}}
	cache := newFakeReportCache()
	svc := NewReportService(repo, cache, fixedClock(&now))

	filters := core.ReportFilters{StartDate: now.AddDate(0, 0, -1), EndDate: now}
	require.NoError(t, cache.Set(context.Background(), "user-1", CacheKey(filters), &core.CachedReport{
		Data:      &core.InventoryReportData{TotalProducts: 42},
		Timestamp: now.Add(-ReportFreshness),
	}))

	// An entry aged exactly to the freshness window is already stale.
	_, source, err := svc.GetInventoryReport(context.Background(), "user-1", filters)
	require.NoError(t, err)
	assert.Equal(t, core.ReportSourceFresh, source)
	assert.Equal(t, 1, repo.fetchCalls)
}

func TestGetInventoryReportStaleFallback(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	repo := &fakeProductRepo{err: errors.New("connection refused")}
	cache := newFakeReportCache()
	svc := NewReportService(repo, cache, fixedClock(&now))

	filters := core.ReportFilters{StartDate: now.AddDate(0, 0, -1), EndDate: now}
	require.NoError(t, cache.Set(context.Background(), "user-1", CacheKey(filters), &core.CachedReport{
		Data:      &core.InventoryReportData{TotalProducts: 42},
		Timestamp: now.Add(-time.Hour),
	}))

	data, source, err := svc.GetInventoryReport(context.Background(), "user-1", filters)
	require.Error(t, err)
	assert.Equal(t, core.ReportSourceStaleFallback, source)
	require.NotNil(t, data)
	assert.Equal(t, 42, data.TotalProducts)
}

func TestGetInventoryReportFetchFailureWithoutCache(t *testing.T) {
	now := time.Now()
	repo := &fakeProductRepo{err: errors.New("connection refused")}
	svc := NewReportService(repo, newFakeReportCache(), fixedClock(&now))

	data, source, err := svc.GetInventoryReport(context.Background(), "user-1", core.ReportFilters{})
	require.Error(t, err)
	assert.Nil(t, data)
	assert.Empty(t, source)
}

func TestGetInventoryReportEmptyCatalog(t *testing.T) {
	now := time.Now()
	repo := &fakeProductRepo{}
	svc := NewReportService(repo, newFakeReportCache(), fixedClock(&now))

	_, _, err := svc.GetInventoryReport(context.Background(), "user-1", core.ReportFilters{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGetInventoryReportCacheWriteIsBestEffort(t *testing.T) {
	now := time.Now()
	repo := &fakeProductRepo{products: []*core.Product{flatPriceProduct("p1", 5, 10, 20)}}
	cache := newFakeReportCache()
	cache.setErr = errors.New("redis down")
	svc := NewReportService(repo, cache, fixedClock(&now))

	data, source, err := svc.GetInventoryReport(context.Background(), "user-1", core.ReportFilters{})
	require.NoError(t, err)
	assert.Equal(t, core.ReportSourceFresh, source)
	assert.Equal(t, 1, data.TotalProducts)
}

func TestGetInventoryReportPassesCategoryFilter(t *testing.T) {
	now := time.Now()
	repo := &fakeProductRepo{products: []*core.Product{flatPriceProduct("p1", 5, 10, 20)}}
	svc := NewReportService(repo, newFakeReportCache(), fixedClock(&now))

	filters := core.ReportFilters{Categories: []string{"cat-a", "cat-b"}}
	_, _, err := svc.GetInventoryReport(context.Background(), "user-1", filters)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-a", "cat-b"}, repo.lastCategoryIDs)
}
