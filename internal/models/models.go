package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Monetary fields serialize as JSON numbers, matching the documents
	// trading partners already exchange.
	decimal.MarshalJSONWithoutQuotes = true
}

// Address holds the optional street-level detail emitted in 5010 N3/N4
// segments. All fields are optional.
type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
}

// Party identifies a trading partner location (ship-to or bill-to).
type Party struct {
	Name    string   `json:"name"`
	ID      string   `json:"id"`
	Address *Address `json:"address,omitempty"`
}

// LineItem is a single PO1 line of a purchase order.
type LineItem struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PurchaseOrder is the canonical 850 record. It is constructed once, either
// by the X12 extractor or by JSON deserialization, and never mutated after.
type PurchaseOrder struct {
	PONumber string     `json:"poNumber"`
	ShipTo   *Party     `json:"shipTo,omitempty"`
	BillTo   *Party     `json:"billTo,omitempty"`
	Items    []LineItem `json:"items"`
}

// ASNItem is a shipped line of an advance ship notice. ASNs carry no pricing.
type ASNItem struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// ASNRecord is the canonical 856 record, minted fresh per generation request.
type ASNRecord struct {
	ASNNumber string    `json:"asnNumber"`
	BOLNumber string    `json:"bolNumber"`
	PONumber  string    `json:"poNumber"`
	ShipTo    Party     `json:"shipTo"`
	Items     []ASNItem `json:"items"`
}

// InvoiceItem is an invoiced line, priced by reconciling an ASN line against
// its purchase-order match.
type InvoiceItem struct {
	SKU       string          `json:"sku"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// InvoiceRecord is the canonical 810 record. All monetary fields are derived
// during reconciliation and never independently settable.
type InvoiceRecord struct {
	InvoiceNumber string          `json:"invoiceNumber"`
	PONumber      string          `json:"poNumber"`
	BillTo        Party           `json:"billTo"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Freight       decimal.Decimal `json:"freight"`
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
}

// Interchange is an archived outbound document: one generated 856 or 810
// envelope, stored verbatim alongside its metadata.
type Interchange struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
	DocumentNumber string         `gorm:"not null;uniqueIndex" json:"document_number"`
	DocumentType   string         `gorm:"not null;index" json:"document_type"` // "856" or "810"
	Dialect        string         `gorm:"not null" json:"dialect"`
	PONumber       string         `gorm:"index" json:"po_number"`
	Payload        string         `gorm:"type:text" json:"payload"`
	SegmentCount   int            `json:"segment_count"`
	Indexed        bool           `gorm:"not null;default:false;index" json:"indexed"`
}

// SetupModels runs auto-migrations for all models
func SetupModels(db *gorm.DB) error {
	if err := db.AutoMigrate(&Interchange{}); err != nil {
		return errors.Wrap(err, "failed to run interchange migration")
	}
	return nil
}
