package x12

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"example.com/edihub/services/exchange/internal/models"
)

// Result is the outcome of structural validation. Errors gate generation,
// warnings are advisory only: trading partners routinely exchange documents
// with mismatched version tokens, so those are never fatal.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

var requiredSegments = []struct {
	tag  string
	name string
}{
	{"ISA", "Interchange Control Header"},
	{"GS", "Functional Group Header"},
	{"ST", "Transaction Set Header"},
	{"BEG", "Beginning Segment for Purchase Order"},
	{"SE", "Transaction Set Trailer"},
	{"GE", "Functional Group Trailer"},
	{"IEA", "Interchange Control Trailer"},
}

// ValidateX12 checks raw 850 interchange text against the required-segment
// rules for the given dialect. Every violated rule is reported; validation
// never short-circuits on the first failure.
func ValidateX12(text string, d Dialect) Result {
	var errs, warnings []string

	clean := strings.NewReplacer("\r", "", "\n", "").Replace(text)
	clean = strings.TrimSpace(clean)

	if !strings.HasPrefix(clean, "ISA") {
		errs = append(errs, "X12 must start with ISA segment")
	}

	var rawSegments []string
	tags := map[string]bool{}
	for _, raw := range strings.Split(clean, SegmentTerminator) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		rawSegments = append(rawSegments, raw)
		tag, _, _ := strings.Cut(raw, ElementSeparator)
		tags[tag] = true
	}

	for _, req := range requiredSegments {
		if !tags[req.tag] {
			errs = append(errs, fmt.Sprintf("Missing %s (%s) segment", req.tag, req.name))
		}
	}

	if !tags["PO1"] {
		warnings = append(warnings, "No PO1 (Purchase Order Line Item) segments found")
	}

	p := d.profile()
	if isa := firstWithPrefix(rawSegments, "ISA"); isa != "" && !strings.Contains(isa, p.ISAVersion) {
		warnings = append(warnings, fmt.Sprintf("ISA version should be %s for VICS %s", p.ISAVersion, d))
	}
	if gs := firstWithPrefix(rawSegments, "GS"); gs != "" && !strings.Contains(gs, p.GSVersionToken) {
		warnings = append(warnings, fmt.Sprintf("GS version should be %s for VICS %s", p.GSVersionToken, d))
	}

	if !strings.Contains(clean, SegmentTerminator) {
		errs = append(errs, "Missing segment terminator (~)")
	}
	if !strings.Contains(clean, ElementSeparator) {
		errs = append(errs, "Missing element delimiter (*)")
	}

	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

func firstWithPrefix(segments []string, tag string) string {
	for _, s := range segments {
		if s == tag || strings.HasPrefix(s, tag+ElementSeparator) {
			return s
		}
	}
	return ""
}

// jsonPurchaseOrder is the validating-deserialization shape for JSON input.
// Pointer fields distinguish an absent value from a present zero, which the
// canonical record cannot.
type jsonPurchaseOrder struct {
	PONumber *string       `json:"poNumber"`
	ShipTo   *models.Party `json:"shipTo"`
	BillTo   *models.Party `json:"billTo"`
	Items    []jsonItem    `json:"items"`
}

type jsonItem struct {
	SKU      *string          `json:"sku"`
	Quantity *int             `json:"quantity"`
	Price    *decimal.Decimal `json:"price"`
}

// ValidateJSON checks a candidate purchase-order document in JSON form.
// Quantity zero is present-but-discouraged: a warning, not an error. Missing
// price is a warning because it is only needed later, for invoicing.
func ValidateJSON(raw []byte) Result {
	var errs, warnings []string

	var doc jsonPurchaseOrder
	if err := json.Unmarshal(raw, &doc); err != nil {
		errs = append(errs, "Invalid JSON format: "+err.Error())
		return Result{Valid: false, Errors: errs}
	}

	if doc.PONumber == nil || *doc.PONumber == "" {
		errs = append(errs, "Missing required field: poNumber")
	}

	if doc.Items == nil {
		errs = append(errs, "Missing or invalid field: items (must be an array)")
	} else {
		if len(doc.Items) == 0 {
			warnings = append(warnings, "Items array is empty")
		}
		for i, item := range doc.Items {
			n := i + 1
			if item.SKU == nil || *item.SKU == "" {
				errs = append(errs, fmt.Sprintf("Item %d: Missing SKU", n))
			}
			if item.Quantity == nil {
				errs = append(errs, fmt.Sprintf("Item %d: Missing quantity", n))
			} else if *item.Quantity <= 0 {
				warnings = append(warnings, fmt.Sprintf("Item %d: Quantity should be greater than 0", n))
			}
			if item.Price == nil {
				warnings = append(warnings, fmt.Sprintf("Item %d: Missing price (required for invoice generation)", n))
			}
		}
	}

	if doc.ShipTo == nil {
		warnings = append(warnings, "Missing shipTo information (will use default)")
	}
	if doc.BillTo == nil {
		warnings = append(warnings, "Missing billTo information (will use shipTo as default)")
	}

	return Result{Valid: len(errs) == 0, Errors: errs, Warnings: warnings}
}

// ValidatePurchaseOrder is the generation gate for a canonical PO. It returns
// a ValidationError carrying every violation, or nil.
func ValidatePurchaseOrder(po *models.PurchaseOrder) error {
	var msgs []string

	if po == nil {
		return &ValidationError{Messages: []string{"PO data is required"}}
	}
	if po.PONumber == "" {
		msgs = append(msgs, "PO number is missing")
	}
	if po.Items == nil {
		msgs = append(msgs, "PO must contain an items array")
	} else if len(po.Items) == 0 {
		msgs = append(msgs, "PO must contain at least one item")
	} else {
		for i, item := range po.Items {
			if item.SKU == "" {
				msgs = append(msgs, fmt.Sprintf("Item %d: Missing SKU", i+1))
			}
			if item.Quantity <= 0 {
				msgs = append(msgs, fmt.Sprintf("Item %d: Quantity must be greater than 0", i+1))
			}
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// ValidateASNRecord is the generation gate for a canonical ASN.
func ValidateASNRecord(asn *models.ASNRecord) error {
	var msgs []string

	if asn == nil {
		return &ValidationError{Messages: []string{"ASN data is required"}}
	}
	if asn.Items == nil {
		msgs = append(msgs, "ASN must contain an items array")
	} else if len(asn.Items) == 0 {
		msgs = append(msgs, "ASN must contain at least one item")
	} else {
		for i, item := range asn.Items {
			if item.SKU == "" {
				msgs = append(msgs, fmt.Sprintf("ASN item %d: Missing SKU", i+1))
			}
			if item.Qty <= 0 {
				msgs = append(msgs, fmt.Sprintf("ASN item %d: Quantity must be greater than 0", i+1))
			}
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}
