package service

import (
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

// Structural markers the pre-render validation looks for. The PDF pass
// renders from the same line model, so a document that fails here never
// reaches conversion.
const (
	receiptHeaderMarker = `class="receipt-header"`
	receiptItemsMarker  = `class="receipt-items"`
	receiptFooterMarker = `class="receipt-footer"`

	// MinReceiptHTMLLength rejects documents too short to hold even an
	// empty single-item receipt.
	MinReceiptHTMLLength = 200
)

// notCollectedSentinel flags receipts whose payment was recorded but not
// collected; the rendered document carries an explicit banner for these.
const notCollectedSentinel = "not collected"

var receiptTemplate = template.Must(template.New("receipt").Parse(`<html>
<head><style>body { width: 80mm; font-family: monospace; }</style></head>
<body>
{{- range .Sections}}
<div class="{{.Class}}">
{{- range .Lines}}
{{- if .Heading}}
<h1>{{.Display}}</h1>
{{- else}}
<p>{{.Display}}</p>
{{- end}}
{{- end}}
</div>
{{- end}}
</body>
</html>`))

// BuildReceiptHTML renders the fixed-width receipt document string from the
// shared line model.
func BuildReceiptHTML(receipt *core.Receipt) (string, error) {
	var builder strings.Builder
	if err := receiptTemplate.Execute(&builder, buildReceiptLayout(receipt)); err != nil {
		return "", fmt.Errorf("%w: failed to render receipt document: %v", core.ErrIntegration, err)
	}
	return builder.String(), nil
}

// ValidateReceiptHTML checks the structural plausibility of a rendered
// receipt document. Every missing marker is reported as a distinct error,
// not just the first.
func ValidateReceiptHTML(html string) error {
	if strings.TrimSpace(html) == "" {
		return fmt.Errorf("%w: receipt document is empty", core.ErrValidation)
	}

	var problems []error
	if len(html) < MinReceiptHTMLLength {
		problems = append(problems, fmt.Errorf("%w: receipt document shorter than %d characters", core.ErrValidation, MinReceiptHTMLLength))
	}
	if !strings.Contains(html, receiptHeaderMarker) {
		problems = append(problems, fmt.Errorf("%w: missing header section", core.ErrValidation))
	}
	if !strings.Contains(html, receiptItemsMarker) {
		problems = append(problems, fmt.Errorf("%w: missing items section", core.ErrValidation))
	}
	if !strings.Contains(html, receiptFooterMarker) {
		problems = append(problems, fmt.Errorf("%w: missing footer section", core.ErrValidation))
	}
	if !strings.Contains(html, "<body>") || !strings.Contains(html, "</body>") {
		problems = append(problems, fmt.Errorf("%w: missing body tags", core.ErrValidation))
	}

	return errors.Join(problems...)
}
