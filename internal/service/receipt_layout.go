package service

import (
	"fmt"
	"strings"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

// The receipt content is built once into a line model; the document string
// synthesis and the PDF renderer both consume it, so the two outputs cannot
// drift apart.

type receiptLineKind int

const (
	lineTitle receiptLineKind = iota
	lineCenter
	lineText
	lineAmount
	lineItemName
	lineItemMath
	lineBanner
)

// receiptLine is one printable line. Amount-style lines carry a label and
// value pair; everything else is preformatted text.
type receiptLine struct {
	Kind   receiptLineKind
	Text   string
	Label  string
	Amount float64
	Bold   bool
}

// Display renders the line as fixed-width text for the document string.
func (l receiptLine) Display() string {
	switch l.Kind {
	case lineAmount:
		return fmt.Sprintf("%s: %.2f", l.Label, l.Amount)
	case lineItemMath:
		return fmt.Sprintf("%s = %.2f", l.Label, l.Amount)
	default:
		return l.Text
	}
}

// Heading reports whether the line renders as the document heading.
func (l receiptLine) Heading() bool {
	return l.Kind == lineTitle
}

type receiptSection struct {
	Class string
	Lines []receiptLine
}

type receiptLayout struct {
	Sections []receiptSection
	Barcode  string
}

// Fixed branding block shared by every receipt.
const (
	receiptCompanyName = "FARMGATE SUPPLIES LTD"
	receiptCompanyAddr = "Eldoret - Kapsabet Road"
	receiptCompanyTel  = "Tel: +254 700 000 000"
	receiptCompanyPIN  = "PIN: P051234567X"
)

// buildReceiptLayout assembles every section of the receipt: all field
// fallbacks and conditional lines are decided here and nowhere else.
func buildReceiptLayout(receipt *core.Receipt) *receiptLayout {
	header := receiptSection{Class: "receipt-header", Lines: []receiptLine{
		{Kind: lineTitle, Text: receiptCompanyName},
		{Kind: lineCenter, Text: receiptCompanyAddr},
		{Kind: lineCenter, Text: receiptCompanyTel},
		{Kind: lineCenter, Text: receiptCompanyPIN},
		{Kind: lineCenter, Text: "Cash Sale Receipt"},
		{Kind: lineCenter, Text: "No: " + safeReceiptValue(receipt.ReceiptNumber)},
		{Kind: lineCenter, Text: receipt.Date.Format("02 Jan 2006 15:04")},
	}}

	billTo := receiptSection{Class: "receipt-billto", Lines: []receiptLine{
		{Kind: lineText, Text: "Bill To: " + safeReceiptValue(receipt.CustomerName)},
		{Kind: lineText, Text: safeReceiptValue(receipt.CustomerAddress)},
		{Kind: lineText, Text: "Tel: " + safeReceiptValue(receipt.CustomerPhone)},
	}}
	if receipt.CustomerEmail != "" {
		billTo.Lines = append(billTo.Lines, receiptLine{Kind: lineText, Text: "Email: " + receipt.CustomerEmail})
	}
	if receipt.CustomerVATPIN != "" {
		billTo.Lines = append(billTo.Lines, receiptLine{Kind: lineText, Text: "VAT PIN: " + receipt.CustomerVATPIN})
	}
	if receipt.CustomerTIN != "" {
		billTo.Lines = append(billTo.Lines, receiptLine{Kind: lineText, Text: "TIN: " + receipt.CustomerTIN})
	}

	meta := receiptSection{Class: "receipt-meta", Lines: []receiptLine{
		{Kind: lineText, Text: "Order: " + safeReceiptValue(receipt.OrderID)},
		{Kind: lineText, Text: "Served By: " + safeReceiptValue(receipt.SalesRep)},
		{Kind: lineText, Text: "Payment: " + receipt.ResolvedPaymentMethod()},
	}}

	items := receiptSection{Class: "receipt-items"}
	for _, item := range receipt.Items {
		items.Lines = append(items.Lines,
			receiptLine{Kind: lineItemName, Text: fmt.Sprintf("%s [%s/%s]", item.Name, item.ProductID, item.SKU), Bold: true},
			receiptLine{Kind: lineItemMath, Label: fmt.Sprintf("%.2f x %.2f", item.Quantity, item.UnitPrice), Amount: item.LineTotal},
		)
	}

	totals := receiptSection{Class: "receipt-totals", Lines: []receiptLine{
		{Kind: lineAmount, Label: "Subtotal", Amount: receipt.Subtotal},
	}}
	if receipt.VATApplies() {
		totals.Lines = append(totals.Lines, receiptLine{Kind: lineAmount, Label: "VAT (18% incl)", Amount: receipt.VATAmount()})
	}
	totals.Lines = append(totals.Lines, receiptLine{Kind: lineAmount, Label: "TOTAL", Amount: receipt.GrandTotal, Bold: true})

	payments := receiptSection{Class: "receipt-payments"}
	if receipt.PreviouslyCollected > 0 {
		payments.Lines = append(payments.Lines, receiptLine{Kind: lineAmount, Label: "Previously Collected", Amount: receipt.PreviouslyCollected})
	}
	if receipt.AmountCollected > 0 {
		payments.Lines = append(payments.Lines, receiptLine{Kind: lineAmount, Label: "This Payment", Amount: receipt.AmountCollected})
	}
	if receipt.TotalCollected > 0 {
		payments.Lines = append(payments.Lines, receiptLine{Kind: lineAmount, Label: "Total Collected", Amount: receipt.TotalCollected})
	}
	if receipt.RemainingBalance > 0 {
		payments.Lines = append(payments.Lines, receiptLine{Kind: lineAmount, Label: "Balance Due", Amount: receipt.RemainingBalance})
	}
	if strings.Contains(strings.ToLower(receipt.PaymentStatus), notCollectedSentinel) {
		payments.Lines = append(payments.Lines, receiptLine{Kind: lineBanner, Text: "*** PAYMENT NOT COLLECTED ***", Bold: true})
	}

	footer := receiptSection{Class: "receipt-footer", Lines: []receiptLine{
		{Kind: lineCenter, Text: "Thank you for your business!"},
		{Kind: lineCenter, Text: "Goods once sold are not returnable."},
		{Kind: lineCenter, Text: "Prices are VAT inclusive where applicable."},
		{Kind: lineCenter, Text: "This is a computer generated receipt. E&OE."},
	}}

	return &receiptLayout{
		Sections: []receiptSection{header, billTo, meta, items, totals, payments, footer},
		Barcode:  barcodePayload(receipt.ReceiptNumber),
	}
}
