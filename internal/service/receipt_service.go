package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

// Receipt page geometry. Width is the fixed 80mm thermal roll; the height
// is derived per receipt from a measuring pass plus the bottom margin.
const (
	receiptPageWidthMM     = 80.0
	receiptSideMarginMM    = 4.0
	receiptBottomMarginMM  = 6.0
	receiptMeasureHeightMM = 2000.0

	receiptLineHeightMM = 3.6
	receiptSmallLineMM  = 3.2
)

// Plausibility bounds for a produced receipt PDF. Blobs under the floor are
// likely blank, blobs over the ceiling likely corrupted; both bounds are
// content-independent. The fixed branding block and the barcode symbol put
// even a one-item receipt comfortably above the floor.
const (
	MinReceiptPDFBytes = 5 * 1024
	MaxReceiptPDFBytes = 8 * 1024 * 1024
)

// ReceiptService renders order/payment data into validated 80mm receipt
// PDFs. Generation never falls back: any validation or conversion failure
// aborts document production.
type ReceiptService struct{}

// NewReceiptService creates a new receipt service.
func NewReceiptService() *ReceiptService {
	return &ReceiptService{}
}

// GenerateReceiptPDF synthesizes the receipt document, validates it,
// converts it to PDF and validates the blob. It returns the PDF bytes and
// the suggested file name.
func (s *ReceiptService) GenerateReceiptPDF(ctx context.Context, receipt *core.Receipt) ([]byte, string, error) {
	html, err := BuildReceiptHTML(receipt)
	if err != nil {
		return nil, "", err
	}
	if err := ValidateReceiptHTML(html); err != nil {
		return nil, "", fmt.Errorf("receipt document rejected: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	pdfBytes, err := renderReceiptPDF(receipt)
	if err != nil {
		return nil, "", err
	}

	if err := ValidateReceiptPDF(pdfBytes); err != nil {
		return nil, "", err
	}

	fileName := strings.TrimSpace(receipt.ReceiptNumber)
	if fileName == "" {
		fileName = "receipt"
	}
	return pdfBytes, fileName + ".pdf", nil
}

// ValidateReceiptPDF rejects PDF blobs whose size falls outside the fixed
// plausibility bounds.
func ValidateReceiptPDF(pdfBytes []byte) error {
	if len(pdfBytes) < MinReceiptPDFBytes {
		return fmt.Errorf("%w: PDF is %d bytes, below the %d byte floor (likely blank)",
			core.ErrValidation, len(pdfBytes), MinReceiptPDFBytes)
	}
	if len(pdfBytes) > MaxReceiptPDFBytes {
		return fmt.Errorf("%w: PDF is %d bytes, above the %d byte ceiling (likely corrupted)",
			core.ErrValidation, len(pdfBytes), MaxReceiptPDFBytes)
	}
	return nil
}

// renderReceiptPDF runs two passes over the shared line model: a measuring
// pass on an oversized page to find the content height, then the real render
// on a page cut to that height plus the bottom margin. Sizing the page to
// the content keeps line items and summary blocks on a single page, never
// split.
func renderReceiptPDF(receipt *core.Receipt) ([]byte, error) {
	layout := buildReceiptLayout(receipt)

	measure := newReceiptPage(receiptMeasureHeightMM)
	writeReceiptBody(measure, layout)
	if measure.Err() {
		return nil, fmt.Errorf("%w: receipt measuring pass failed: %v", core.ErrIntegration, measure.Error())
	}
	contentHeight := measure.GetY()

	pdf := newReceiptPage(contentHeight + receiptBottomMarginMM)
	writeReceiptBody(pdf, layout)

	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, fmt.Errorf("%w: failed to render receipt PDF: %v", core.ErrIntegration, err)
	}
	return buffer.Bytes(), nil
}

func newReceiptPage(heightMM float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: receiptPageWidthMM, Ht: heightMM},
	})
	pdf.SetMargins(receiptSideMarginMM, receiptSideMarginMM, receiptSideMarginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(false)
	pdf.AddPage()
	return pdf
}

func writeReceiptBody(pdf *gofpdf.Fpdf, layout *receiptLayout) {
	usable := receiptPageWidthMM - 2*receiptSideMarginMM

	last := len(layout.Sections) - 1
	for i, section := range layout.Sections {
		if len(section.Lines) == 0 {
			continue
		}
		for _, line := range section.Lines {
			writeReceiptLine(pdf, usable, line)
		}
		if i < last {
			receiptDivider(pdf, usable)
		}
	}

	drawReceiptBarcode(pdf, usable, layout.Barcode)
}

func writeReceiptLine(pdf *gofpdf.Fpdf, usable float64, line receiptLine) {
	style := ""
	if line.Bold {
		style = "B"
	}

	switch line.Kind {
	case lineTitle:
		pdf.SetFont("Courier", "B", 11)
		pdf.CellFormat(usable, 5, line.Text, "", 1, "C", false, 0, "")
	case lineCenter, lineBanner:
		pdf.SetFont("Courier", style, 8)
		pdf.CellFormat(usable, receiptLineHeightMM, line.Text, "", 1, "C", false, 0, "")
	case lineText, lineItemName:
		pdf.SetFont("Courier", style, 8)
		pdf.MultiCell(usable, receiptSmallLineMM, line.Text, "", "L", false)
	case lineAmount:
		pdf.SetFont("Courier", style, 8)
		pdf.CellFormat(usable*0.6, receiptSmallLineMM, line.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable*0.4, receiptSmallLineMM, fmt.Sprintf("%.2f", line.Amount), "", 1, "R", false, 0, "")
	case lineItemMath:
		pdf.SetFont("Courier", "", 8)
		pdf.CellFormat(usable/2, receiptSmallLineMM, line.Label, "", 0, "L", false, 0, "")
		pdf.CellFormat(usable/2, receiptSmallLineMM, fmt.Sprintf("%.2f", line.Amount), "", 1, "R", false, 0, "")
	}
}

func receiptDivider(pdf *gofpdf.Fpdf, usable float64) {
	pdf.SetFont("Courier", "", 8)
	pdf.CellFormat(usable, receiptSmallLineMM, strings.Repeat("-", 40), "", 1, "C", false, 0, "")
}

func safeReceiptValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
