package x12

import (
	"strconv"

	"github.com/shopspring/decimal"

	"example.com/edihub/services/exchange/internal/models"
)

// InvoiceResult pairs the canonical invoice record with its X12 rendering.
type InvoiceResult struct {
	Record models.InvoiceRecord `json:"json"`
	X12    string               `json:"x12"`
}

// GenerateInvoice builds an 810 invoice by reconciling an ASN against its
// purchase order. It fails with a ReconciliationError when any shipped SKU is
// missing from the PO; no partial output is produced. Callers gate on
// ValidateASNRecord and ValidatePurchaseOrder first.
func (g *Generator) GenerateInvoice(asn *models.ASNRecord, po *models.PurchaseOrder, d Dialect) (*InvoiceResult, error) {
	p := d.profile()

	items, err := Reconcile(asn, po)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	freight := subtotal.Mul(freightRate)
	tax := decimal.Zero
	if p.EmitsTax {
		tax = subtotal.Mul(taxRate)
	}

	record := models.InvoiceRecord{
		InvoiceNumber: g.ids.InvoiceNumber(),
		PONumber:      po.PONumber,
		BillTo:        billToOrDefault(po),
		Items:         items,
		Subtotal:      subtotal,
		Freight:       freight,
		TaxAmount:     tax,
		GrandTotal:    subtotal.Add(freight).Add(tax),
	}

	date, tm := g.stamp()

	ts := []Segment{
		seg("ST", "810", "0001"),
		seg("BIG", date, record.InvoiceNumber, date, record.PONumber, "", "", "DI"),
		seg("N1", "BT", record.BillTo.Name, "9", record.BillTo.ID),
	}
	ts = appendAddressBlock(ts, p, record.BillTo.Address)
	ts = append(ts, seg("ITD", "01", "3", "2", "", "30", "", "31")) // terms: 2% 10, net 30
	for i, item := range items {
		ts = append(ts,
			seg("IT1", strconv.Itoa(i+1), strconv.Itoa(item.Qty), "EA", item.UnitPrice.String(), "", "VC", item.SKU),
			seg("PID", "F", "", "", "", item.SKU),
		)
	}
	// TDS carries the grand total, not the subtotal, in cents.
	ts = append(ts, seg("TDS", cents(record.GrandTotal)))
	if p.EmitsTax && !record.TaxAmount.IsZero() {
		ts = append(ts, seg("TXI", "TX", cents(record.TaxAmount)))
	}
	ts = append(ts, seg("SAC", "C", "D240", "", "", cents(record.GrandTotal.Mul(freightRate)), "", "", "", "06", "Freight"))
	ts = append(ts, seg("CTT", strconv.Itoa(len(items))))
	ts = closeTransaction(ts, "0001")

	envelope := g.envelope("IN", p, date, tm, invoiceControlNumber, invoiceGroupControl, ts)
	return &InvoiceResult{Record: record, X12: Untokenize(envelope)}, nil
}

// billToOrDefault prefers the PO's bill-to, then its ship-to, then the
// standing default.
func billToOrDefault(po *models.PurchaseOrder) models.Party {
	if po.BillTo != nil {
		return *po.BillTo
	}
	if po.ShipTo != nil {
		return *po.ShipTo
	}
	return DefaultParty
}
