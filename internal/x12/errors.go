package x12

import (
	"fmt"
	"strings"
)

// FormatError reports malformed interchange text, such as empty input where a
// document was expected or a segment without a tag.
type FormatError struct {
	Msg string
	Err error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid X12 format: %s: %v", e.Msg, e.Err)
	}
	return "invalid X12 format: " + e.Msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ValidationError carries the full accumulated list of structural rule
// violations. Validation never stops at the first failure.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, ", ")
}

// ReconciliationError reports an ASN line item whose SKU has no match in the
// purchase order. It is fatal for the whole invoice.
type ReconciliationError struct {
	SKU string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("SKU %s from ASN not found in PO", e.SKU)
}
