package x12

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func mustTokenize(t *testing.T, text string) []Segment {
	t.Helper()
	segments, err := Tokenize(text)
	require.NoError(t, err)
	return segments
}

func TestExtractPurchaseOrder(t *testing.T) {
	po := ExtractPurchaseOrder(mustTokenize(t, sample850))

	require.Equal(t, "PO123456", po.PONumber)

	require.NotNil(t, po.ShipTo)
	require.Equal(t, "BASELWAY PLAZA", po.ShipTo.Name)
	require.Equal(t, "1000", po.ShipTo.ID)
	require.NotNil(t, po.BillTo)
	require.Equal(t, "BASELWAY CORP", po.BillTo.Name)
	require.Equal(t, "2000", po.BillTo.ID)

	require.Len(t, po.Items, 2)
	require.Equal(t, "SKU0001", po.Items[0].SKU)
	require.Equal(t, 100, po.Items[0].Quantity)
	require.True(t, po.Items[0].Price.Equal(decimal.RequireFromString("25.50")))
	require.Equal(t, "SKU0002", po.Items[1].SKU)
	require.Equal(t, 50, po.Items[1].Quantity)
	require.True(t, po.Items[1].Price.Equal(decimal.RequireFromString("42.00")))
}

func TestExtractMissingBEG(t *testing.T) {
	po := ExtractPurchaseOrder(mustTokenize(t, "ST*850*0001~PO1*1*10*EA*5.00**VC*SKU1~"))

	require.Equal(t, "ERR", po.PONumber)
	require.Len(t, po.Items, 1)
}

func TestExtractDefaultShipTo(t *testing.T) {
	po := ExtractPurchaseOrder(mustTokenize(t, "BEG*00*SA*PO1**240101~PO1*1*10*EA*5.00**VC*SKU1~"))

	require.NotNil(t, po.ShipTo)
	require.Equal(t, DefaultParty, *po.ShipTo)
	require.Nil(t, po.BillTo)
}

func TestExtractSKUByQualifier(t *testing.T) {
	// Qualifier not in the fixed legacy position.
	po := ExtractPurchaseOrder(mustTokenize(t, "BEG*00*SA*PO1~PO1*1*10*EA*5.00*PE*0.05*UP*123456789012~"))

	require.Len(t, po.Items, 1)
	require.Equal(t, "123456789012", po.Items[0].SKU)
}

func TestExtractSKULegacyPositions(t *testing.T) {
	// No qualifier at all: position 7 of the raw line, then position 9.
	po := ExtractPurchaseOrder(mustTokenize(t, "BEG*00*SA*PO1~PO1*1*10*EA*5.00***LEGACY7~PO1*2*20*EA*6.00******LEGACY9~"))

	require.Len(t, po.Items, 2)
	require.Equal(t, "LEGACY7", po.Items[0].SKU)
	require.Equal(t, "LEGACY9", po.Items[1].SKU)
}

func TestExtractMalformedLineItemPlaceholders(t *testing.T) {
	// A truncated PO1 still yields a line item, never a dropped one.
	po := ExtractPurchaseOrder(mustTokenize(t, "BEG*00*SA*PO1~PO1*1*abc~"))

	require.Len(t, po.Items, 1)
	require.Equal(t, "SKU-ERR", po.Items[0].SKU)
	require.Equal(t, 0, po.Items[0].Quantity)
	require.True(t, po.Items[0].Price.IsZero())
}

func TestExtractFirstBEGAndFirstN1Win(t *testing.T) {
	po := ExtractPurchaseOrder(mustTokenize(t, "BEG*00*SA*PO-FIRST~BEG*00*SA*PO-SECOND~N1*ST*FIRST DC*9*1~N1*ST*SECOND DC*9*2~"))

	require.Equal(t, "PO-FIRST", po.PONumber)
	require.Equal(t, "FIRST DC", po.ShipTo.Name)
}
