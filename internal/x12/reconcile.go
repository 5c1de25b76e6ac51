package x12

import (
	"github.com/shopspring/decimal"

	"example.com/edihub/services/exchange/internal/models"
)

var (
	freightRate = decimal.New(1, -2) // flat 1% freight surcharge, both dialects
	taxRate     = decimal.New(8, -2) // 8% tax, 5010 only
)

// Reconcile matches ASN line items back to the purchase order by SKU and
// prices each line from the PO. A SKU with no PO match fails the whole
// reconciliation; partial invoices are never produced.
func Reconcile(asn *models.ASNRecord, po *models.PurchaseOrder) ([]models.InvoiceItem, error) {
	priceBySKU := make(map[string]decimal.Decimal, len(po.Items))
	for _, item := range po.Items {
		if _, ok := priceBySKU[item.SKU]; !ok {
			priceBySKU[item.SKU] = item.Price
		}
	}

	items := make([]models.InvoiceItem, 0, len(asn.Items))
	for _, shipped := range asn.Items {
		unitPrice, ok := priceBySKU[shipped.SKU]
		if !ok {
			return nil, &ReconciliationError{SKU: shipped.SKU}
		}
		items = append(items, models.InvoiceItem{
			SKU:       shipped.SKU,
			Qty:       shipped.Qty,
			UnitPrice: unitPrice,
			LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(shipped.Qty))),
		})
	}
	return items, nil
}

// cents renders a monetary amount as an integer number of cents, rounding
// half away from zero.
func cents(amount decimal.Decimal) string {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).String()
}
