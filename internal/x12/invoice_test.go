package x12

import (
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"example.com/edihub/services/exchange/internal/models"
)

func testASN(items ...models.ASNItem) *models.ASNRecord {
	return &models.ASNRecord{
		ASNNumber: "ASN00001TEST",
		BOLNumber: "BOL00001TEST",
		PONumber:  "PO123456",
		Items:     items,
	}
}

func TestReconcile(t *testing.T) {
	po := testPO(nil)
	asn := testASN(
		models.ASNItem{SKU: "SKU0002", Qty: 50},
		models.ASNItem{SKU: "SKU0001", Qty: 100},
	)

	items, err := Reconcile(asn, po)

	require.NoError(t, err)
	require.Len(t, items, 2)

	// ASN line order is preserved, pricing comes from the PO.
	require.Equal(t, "SKU0002", items[0].SKU)
	require.True(t, items[0].UnitPrice.Equal(decimal.RequireFromString("42.00")))
	require.True(t, items[0].LineTotal.Equal(decimal.RequireFromString("2100.00")))
	require.Equal(t, "SKU0001", items[1].SKU)
	require.True(t, items[1].LineTotal.Equal(decimal.RequireFromString("2550.00")))
}

func TestReconcileUnknownSKU(t *testing.T) {
	asn := testASN(
		models.ASNItem{SKU: "SKU0001", Qty: 100},
		models.ASNItem{SKU: "GHOST", Qty: 1},
	)

	items, err := Reconcile(asn, testPO(nil))

	require.Nil(t, items)
	var re *ReconciliationError
	require.ErrorAs(t, err, &re)
	require.Equal(t, "GHOST", re.SKU)
	require.EqualError(t, err, "SKU GHOST from ASN not found in PO")
}

func TestCentsRounding(t *testing.T) {
	// Half away from zero at the half-cent boundary.
	require.Equal(t, "253", cents(decimal.RequireFromString("2.525")))
	require.Equal(t, "252", cents(decimal.RequireFromString("2.524")))
	require.Equal(t, "100", cents(decimal.RequireFromString("1.00")))
	require.Equal(t, "0", cents(decimal.Zero))
}

func TestGenerateInvoice4010Money(t *testing.T) {
	po := &models.PurchaseOrder{
		PONumber: "PO123456",
		ShipTo:   &models.Party{Name: "BASELWAY PLAZA", ID: "1000"},
		Items: []models.LineItem{
			{SKU: "SKU0001", Quantity: 100, Price: decimal.RequireFromString("25.50")},
		},
	}
	asn := testASN(models.ASNItem{SKU: "SKU0001", Qty: 125})

	result, err := newTestGenerator().GenerateInvoice(asn, po, Dialect4010)
	require.NoError(t, err)

	rec := result.Record
	require.Equal(t, "INV-00001TEST", rec.InvoiceNumber)
	require.True(t, rec.Subtotal.Equal(decimal.RequireFromString("3187.50")), "subtotal %s", rec.Subtotal)
	require.True(t, rec.Freight.Equal(decimal.RequireFromString("31.875")), "freight %s", rec.Freight)
	require.True(t, rec.TaxAmount.IsZero())
	require.True(t, rec.GrandTotal.Equal(decimal.RequireFromString("3219.375")), "grand total %s", rec.GrandTotal)

	ts := transaction(t, result.X12)

	tds := withTag(ts, "TDS")
	require.Len(t, tds, 1)
	require.Equal(t, "321938", tds[0].Element(0))

	require.Empty(t, withTag(ts, "TXI"))

	sac := withTag(ts, "SAC")
	require.Len(t, sac, 1)
	require.Equal(t, "C", sac[0].Element(0))
	require.Equal(t, "D240", sac[0].Element(1))
	require.Equal(t, "3219", sac[0].Element(4))
	require.Equal(t, "Freight", sac[0].Element(9))
}

func TestGenerateInvoice5010Tax(t *testing.T) {
	po := &models.PurchaseOrder{
		PONumber: "PO123456",
		BillTo:   &models.Party{Name: "BASELWAY CORP", ID: "2000", Address: fullAddress()},
		Items: []models.LineItem{
			{SKU: "SKU0001", Quantity: 100, Price: decimal.RequireFromString("25.50")},
		},
	}
	asn := testASN(models.ASNItem{SKU: "SKU0001", Qty: 125})

	result, err := newTestGenerator().GenerateInvoice(asn, po, Dialect5010)
	require.NoError(t, err)

	rec := result.Record
	require.True(t, rec.TaxAmount.Equal(decimal.RequireFromString("255.00")), "tax %s", rec.TaxAmount)
	require.True(t, rec.GrandTotal.Equal(decimal.RequireFromString("3474.375")), "grand total %s", rec.GrandTotal)

	ts := transaction(t, result.X12)

	txi := withTag(ts, "TXI")
	require.Len(t, txi, 1)
	require.Equal(t, "TX", txi[0].Element(0))
	require.Equal(t, "25500", txi[0].Element(1))

	tds := withTag(ts, "TDS")
	require.Equal(t, "347438", tds[0].Element(0))

	// Bill-to address block rides along on 5010.
	require.Len(t, withTag(ts, "N3"), 1)
	require.Len(t, withTag(ts, "N4"), 1)
}

func TestGenerateInvoiceSegments(t *testing.T) {
	result, err := newTestGenerator().GenerateInvoice(
		testASN(models.ASNItem{SKU: "SKU0001", Qty: 100}, models.ASNItem{SKU: "SKU0002", Qty: 50}),
		testPO(nil), Dialect4010)
	require.NoError(t, err)

	ts := transaction(t, result.X12)

	big := withTag(ts, "BIG")
	require.Len(t, big, 1)
	require.Equal(t, "240115", big[0].Element(0))
	require.Equal(t, "INV-00001TEST", big[0].Element(1))
	require.Equal(t, "PO123456", big[0].Element(3))
	require.Equal(t, "DI", big[0].Element(6))

	it1 := withTag(ts, "IT1")
	require.Len(t, it1, 2)
	require.Equal(t, []string{"1", "100", "EA", "25.5", "", "VC", "SKU0001"}, it1[0].Elements)
	require.Equal(t, []string{"2", "50", "EA", "42", "", "VC", "SKU0002"}, it1[1].Elements)

	pid := withTag(ts, "PID")
	require.Len(t, pid, 2)
	require.Equal(t, "SKU0001", pid[0].Element(4))

	ctt := withTag(ts, "CTT")
	require.Equal(t, "2", ctt[0].Element(0))

	// ISA/GS framing uses the invoice control numbers.
	segments := mustTokenize(t, result.X12)
	require.Equal(t, "IN", segments[1].Element(0))
	require.Equal(t, "000000002", segments[0].Element(12))
	require.Equal(t, "2", segments[1].Element(5))
}

func TestGenerateInvoiceTrailerCountSelfConsistent(t *testing.T) {
	g := newTestGenerator()
	for _, d := range []Dialect{Dialect4010, Dialect5010} {
		for n := 1; n <= 5; n++ {
			po := &models.PurchaseOrder{PONumber: "PO1", BillTo: &models.Party{Name: "HQ", ID: "1", Address: fullAddress()}}
			asn := testASN()
			for i := 0; i < n; i++ {
				sku := "SKU" + strconv.Itoa(i)
				po.Items = append(po.Items, models.LineItem{SKU: sku, Quantity: 1, Price: decimal.NewFromInt(3)})
				asn.Items = append(asn.Items, models.ASNItem{SKU: sku, Qty: 1})
			}

			result, err := g.GenerateInvoice(asn, po, d)
			require.NoError(t, err)

			ts := transaction(t, result.X12)
			require.Equal(t, strconv.Itoa(len(ts)), ts[len(ts)-1].Element(0),
				"dialect %s, %d items", d, n)
		}
	}
}

func TestGenerateInvoiceBillToFallback(t *testing.T) {
	g := newTestGenerator()
	asn := testASN(models.ASNItem{SKU: "SKU0001", Qty: 1})

	po := testPO(nil) // ship-to only
	result, err := g.GenerateInvoice(asn, po, Dialect4010)
	require.NoError(t, err)
	require.Equal(t, "BASELWAY PLAZA", result.Record.BillTo.Name)

	po.ShipTo = nil
	result, err = g.GenerateInvoice(asn, po, Dialect4010)
	require.NoError(t, err)
	require.Equal(t, DefaultParty, result.Record.BillTo)
}
