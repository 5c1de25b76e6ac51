package x12

import (
	"strconv"

	"github.com/shopspring/decimal"

	"example.com/edihub/services/exchange/internal/models"
)

// DefaultParty stands in for a missing ship-to loop.
var DefaultParty = models.Party{Name: "RETAIL DC", ID: "0001"}

// Product/service ID qualifiers accepted in PO1 lines. The element after the
// qualifier carries the identifier itself.
var productIDQualifiers = map[string]bool{
	"VC": true, // vendor catalog number
	"UP": true, // UPC
	"IN": true, // buyer item number
	"SK": true, // SKU
	"BP": true, // buyer part number
	"EN": true, // EAN
}

// ExtractPurchaseOrder projects a tokenized 850 segment stream into a
// canonical purchase order. Malformed lines are never dropped: every PO1
// present becomes a line item, with placeholder values where parsing fails.
func ExtractPurchaseOrder(segments []Segment) *models.PurchaseOrder {
	po := &models.PurchaseOrder{PONumber: "ERR"}

	for _, s := range segments {
		switch s.Tag {
		case "BEG":
			if po.PONumber == "ERR" {
				po.PONumber = s.Element(2)
				if po.PONumber == "" {
					po.PONumber = "ERR"
				}
			}
		case "N1":
			switch s.Element(0) {
			case "ST":
				if po.ShipTo == nil {
					po.ShipTo = &models.Party{Name: s.Element(1), ID: s.Element(3)}
				}
			case "BT":
				if po.BillTo == nil {
					po.BillTo = &models.Party{Name: s.Element(1), ID: s.Element(3)}
				}
			}
		case "PO1":
			po.Items = append(po.Items, extractLineItem(s))
		}
	}

	if po.ShipTo == nil {
		def := DefaultParty
		po.ShipTo = &def
	}

	return po
}

func extractLineItem(s Segment) models.LineItem {
	qty, err := strconv.Atoi(s.Element(1))
	if err != nil {
		qty = 0
	}

	price, err := decimal.NewFromString(s.Element(3))
	if err != nil {
		price = decimal.Zero
	}

	return models.LineItem{
		SKU:      extractSKU(s),
		Quantity: qty,
		Price:    price,
	}
}

// extractSKU locates the product identifier by its qualifier code, falling
// back to the fixed positions legacy feeds put it in.
func extractSKU(s Segment) string {
	for i := 4; i < len(s.Elements)-1; i++ {
		if productIDQualifiers[s.Elements[i]] {
			if id := s.Element(i + 1); id != "" {
				return id
			}
		}
	}
	if sku := s.Element(6); sku != "" {
		return sku
	}
	if sku := s.Element(8); sku != "" {
		return sku
	}
	return "SKU-ERR"
}
