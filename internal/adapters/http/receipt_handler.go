package http

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/kilimo-tech/farmgate-pos/internal/core"
	"github.com/kilimo-tech/farmgate-pos/internal/device"
	"github.com/kilimo-tech/farmgate-pos/internal/service"
)

// ReceiptHandler handles receipt PDF HTTP requests.
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler.
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// GeneratePDF renders the posted order/payment data into a receipt PDF.
// Mobile platform families get the document inline for the native share
// sheet; everything else gets a direct download.
// POST /api/receipts/pdf
func (h *ReceiptHandler) GeneratePDF(c *fiber.Ctx) error {
	var receipt core.Receipt
	if err := c.BodyParser(&receipt); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	pdfBytes, fileName, err := h.receiptService.GenerateReceiptPDF(c.Context(), &receipt)
	if err != nil {
		status := fiber.StatusInternalServerError
		if errors.Is(err, core.ErrValidation) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	disposition := "attachment"
	if device.IsMobilePlatform(c.Get("User-Agent")) {
		disposition = "inline"
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, fileName))
	return c.Send(pdfBytes)
}
