package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kilimo-tech/farmgate-pos/internal/core"
	"github.com/kilimo-tech/farmgate-pos/internal/service"
)

// ReportHandler handles inventory report HTTP requests.
type ReportHandler struct {
	reportService *service.ReportService
	categoryRepo  core.CategoryRepository
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reportService *service.ReportService, categoryRepo core.CategoryRepository) *ReportHandler {
	return &ReportHandler{reportService: reportService, categoryRepo: categoryRepo}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// GetInventoryReport serves the aggregated inventory report for a filter
// set. A stale cached fallback after a failed fetch is returned with
// "stale": true plus the fetch error, so clients can show degraded data
// with a warning.
// GET /api/reports/inventory?start=2026-01-01&end=2026-01-31&categories=a,b&tiers=dealer_cash
func (h *ReportHandler) GetInventoryReport(c *fiber.Ctx) error {
	filters := core.ReportFilters{
		Categories: splitList(c.Query("categories")),
	}
	for _, tier := range splitList(c.Query("tiers")) {
		filters.Tiers = append(filters.Tiers, core.PricingTier(tier))
	}

	if start := c.Query("start"); start != "" {
		parsed, err := time.Parse("2006-01-02", start)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid start date, expected YYYY-MM-DD",
			})
		}
		filters.StartDate = parsed
	}
	if end := c.Query("end"); end != "" {
		parsed, err := time.Parse("2006-01-02", end)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid end date, expected YYYY-MM-DD",
			})
		}
		filters.EndDate = parsed
	}

	userID, _ := c.Locals("user_id").(string)
	data, source, err := h.reportService.GetInventoryReport(c.Context(), userID, filters)
	if err != nil {
		if data != nil {
			// Degraded result: stale cached data plus failure visibility.
			return c.JSON(fiber.Map{
				"data":   data,
				"source": source,
				"stale":  true,
				"error":  err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data":   data,
		"source": source,
		"stale":  false,
	})
}

// ListCategories serves the category list used to build report filters, with
// the tier identifiers and labels alongside.
// GET /api/reports/filters
func (h *ReportHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.categoryRepo.GetAll(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tiers := make([]fiber.Map, 0, len(core.AllTiers))
	for _, tier := range core.AllTiers {
		tiers = append(tiers, fiber.Map{
			"tier":  tier,
			"label": core.TierLabels[tier],
		})
	}

	return c.JSON(fiber.Map{
		"categories": categories,
		"tiers":      tiers,
	})
}
