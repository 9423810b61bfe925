package service

import (
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Code 39 barcode of the receipt number, drawn bar by bar with gofpdf
// rectangle fills at the foot of the receipt so till scanners can pull the
// number back up.
const (
	barcodeNarrowMM = 0.25
	barcodeWideMM   = 0.75
	barcodeGapMM    = barcodeNarrowMM
	barcodeHeightMM = 9.0

	// Payloads are padded to a fixed minimum so scanners see a consistent
	// length, and truncated so the symbol fits the 72mm printable width.
	barcodeMinLength = 12
	barcodeMaxLength = 16
)

// code39Patterns holds the nine-element bar/space widths per supported
// character. Bars sit at even indexes, "w" is a wide element.
var code39Patterns = map[rune]string{
	'0': "nnnwwnwnn",
	'1': "wnnwnnnnw",
	'2': "nnwwnnnnw",
	'3': "wnwwnnnnn",
	'4': "nnnwwnnnw",
	'5': "wnnwwnnnn",
	'6': "nnwwwnnnn",
	'7': "nnnwnnwnw",
	'8': "wnnwnnwnn",
	'9': "nnwwnnwnn",
	'A': "wnnnnwnnw",
	'B': "nnwnnwnnw",
	'C': "wnwnnwnnn",
	'D': "nnnnwwnnw",
	'E': "wnnnwwnnn",
	'F': "nnwnwwnnn",
	'G': "nnnnnwwnw",
	'H': "wnnnnwwnn",
	'I': "nnwnnwwnn",
	'J': "nnnnwwwnn",
	'K': "wnnnnnnww",
	'L': "nnwnnnnww",
	'M': "wnwnnnnwn",
	'N': "nnnnwnnww",
	'O': "wnnnwnnwn",
	'P': "nnwnwnnwn",
	'Q': "nnnnnnwww",
	'R': "wnnnnnwwn",
	'S': "nnwnnnwwn",
	'T': "nnnnwnwwn",
	'U': "wwnnnnnnw",
	'V': "nwwnnnnnw",
	'W': "wwwnnnnnn",
	'X': "nwnnwnnnw",
	'Y': "wwnnwnnnn",
	'Z': "nwwnwnnnn",
	'-': "nwnnnnwnw",
	'*': "nwnnwnwnn",
}

// barcodePayload sanitizes a receipt number into encodable characters,
// truncates to the printable width and zero-pads to the minimum length.
func barcodePayload(receiptNumber string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(receiptNumber) {
		if _, ok := code39Patterns[r]; ok && r != '*' {
			b.WriteRune(r)
		}
	}

	payload := b.String()
	if len(payload) > barcodeMaxLength {
		payload = payload[:barcodeMaxLength]
	}
	for len(payload) < barcodeMinLength {
		payload = "0" + payload
	}
	return payload
}

// drawReceiptBarcode renders the Code 39 symbol centered in the printable
// width, with the human-readable payload beneath it.
func drawReceiptBarcode(pdf *gofpdf.Fpdf, usable float64, payload string) {
	encoded := "*" + payload + "*"
	charWidth := 6*barcodeNarrowMM + 3*barcodeWideMM + barcodeGapMM
	totalWidth := charWidth*float64(len(encoded)) - barcodeGapMM

	x := receiptSideMarginMM + (usable-totalWidth)/2
	y := pdf.GetY() + 1.5

	for _, ch := range encoded {
		for i, element := range code39Patterns[ch] {
			width := barcodeNarrowMM
			if element == 'w' {
				width = barcodeWideMM
			}
			if i%2 == 0 {
				pdf.Rect(x, y, width, barcodeHeightMM, "F")
			}
			x += width
		}
		x += barcodeGapMM
	}

	pdf.SetY(y + barcodeHeightMM + 1)
	pdf.SetFont("Courier", "", 7)
	pdf.CellFormat(usable, receiptSmallLineMM, payload, "", 1, "C", false, 0, "")
}
