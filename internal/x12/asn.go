package x12

import (
	"strconv"
	"strings"
	"time"

	"example.com/edihub/services/exchange/internal/models"
)

// Interchange control numbers are fixed per document type; persisting them
// across calls is out of scope for this profile.
const (
	asnControlNumber     = "000000001"
	invoiceControlNumber = "000000002"

	asnGroupControl     = "1"
	invoiceGroupControl = "2"
)

// GeneratorConfig identifies this trading partner in outbound envelopes.
type GeneratorConfig struct {
	SenderID   string
	ReceiverID string
	Usage      string // ISA15 usage indicator: "T" test, "P" production
}

// Generator emits complete, self-consistent 856 and 810 interchanges. The SE
// trailer count is always derived from the segments actually emitted, never
// from a formula, so dialect-conditional segments can never drift out of sync
// with it.
type Generator struct {
	cfg GeneratorConfig
	ids IDSource
	now func() time.Time
}

// NewGenerator creates a generator with the given partner identity and
// document-number source.
func NewGenerator(cfg GeneratorConfig, ids IDSource) *Generator {
	if cfg.SenderID == "" {
		cfg.SenderID = "SENDERID"
	}
	if cfg.ReceiverID == "" {
		cfg.ReceiverID = "RECEIVERID"
	}
	if cfg.Usage == "" {
		cfg.Usage = "T"
	}
	return &Generator{cfg: cfg, ids: ids, now: time.Now}
}

// ASNResult pairs the canonical ASN record with its X12 rendering.
type ASNResult struct {
	Record models.ASNRecord `json:"json"`
	X12    string           `json:"x12"`
}

// GenerateASN builds an 856 advance ship notice from a validated purchase
// order. The caller is responsible for gating on ValidatePurchaseOrder first.
func (g *Generator) GenerateASN(po *models.PurchaseOrder, d Dialect) *ASNResult {
	p := d.profile()

	record := models.ASNRecord{
		ASNNumber: g.ids.ASNNumber(),
		BOLNumber: g.ids.BOLNumber(),
		PONumber:  po.PONumber,
		ShipTo:    shipToOrDefault(po),
		Items:     make([]models.ASNItem, 0, len(po.Items)),
	}
	for _, item := range po.Items {
		record.Items = append(record.Items, models.ASNItem{SKU: item.SKU, Qty: item.Quantity})
	}

	date, tm := g.stamp()
	itemCount := strconv.Itoa(len(record.Items))

	ts := []Segment{
		seg("ST", "856", "0001"),
		seg("BSN", "00", record.ASNNumber, date, tm, "0001"),
		seg("HL", "1", "", "S"),
		seg("TD1", "CTN25", itemCount),
		seg("TD5", "B", "02", "FDE", "M", "FEDERAL EXPRESS"),
		seg("REF", "BM", record.BOLNumber),
		seg("N1", "ST", record.ShipTo.Name, "9", record.ShipTo.ID),
	}
	ts = appendAddressBlock(ts, p, record.ShipTo.Address)
	ts = append(ts,
		seg("HL", "2", "1", "O"),
		seg("PRF", record.PONumber),
	)
	for i, item := range record.Items {
		ts = append(ts,
			seg("HL", strconv.Itoa(i+3), "2", "I"),
			seg("LIN", "", "VC", item.SKU),
			seg("SN1", "", strconv.Itoa(item.Qty), "EA"),
			seg("PO4", "1", "1", "EA"),
		)
	}
	ts = append(ts, seg("CTT", itemCount))
	ts = closeTransaction(ts, "0001")

	envelope := g.envelope("SH", p, date, tm, asnControlNumber, asnGroupControl, ts)
	return &ASNResult{Record: record, X12: Untokenize(envelope)}
}

func shipToOrDefault(po *models.PurchaseOrder) models.Party {
	if po.ShipTo != nil {
		return *po.ShipTo
	}
	return DefaultParty
}

// appendAddressBlock emits the N3/N4 detail the 5010 profile requires when an
// address is present. 4010 never emits it.
func appendAddressBlock(ts []Segment, p profile, addr *models.Address) []Segment {
	if !p.EmitsAddressBlock || addr == nil {
		return ts
	}
	if addr.Street != "" {
		ts = append(ts, seg("N3", addr.Street))
	}
	if addr.City != "" && addr.State != "" && addr.Zip != "" {
		ts = append(ts, seg("N4", addr.City, addr.State, addr.Zip))
	}
	return ts
}

// closeTransaction appends the SE trailer. The count is the number of
// segments from ST through SE inclusive, computed from the list itself.
func closeTransaction(ts []Segment, controlNumber string) []Segment {
	return append(ts, seg("SE", strconv.Itoa(len(ts)+1), controlNumber))
}

// envelope wraps a transaction set in ISA/GS headers and GE/IEA trailers.
func (g *Generator) envelope(functionalCode string, p profile, date, tm, controlNumber, groupControl string, ts []Segment) []Segment {
	segments := make([]Segment, 0, len(ts)+4)
	segments = append(segments, seg("ISA",
		"00", strings.Repeat(" ", 10),
		"00", strings.Repeat(" ", 10),
		"ZZ", padRight(g.cfg.SenderID, 15),
		"ZZ", padRight(g.cfg.ReceiverID, 15),
		date, tm, "U", p.ISAVersion, controlNumber, "0", g.cfg.Usage, ">",
	))
	segments = append(segments, seg("GS",
		functionalCode, g.cfg.SenderID, g.cfg.ReceiverID, date, tm, groupControl, "X", p.GSVersion,
	))
	segments = append(segments, ts...)
	segments = append(segments,
		seg("GE", "1", groupControl),
		seg("IEA", "1", controlNumber),
	)
	return segments
}

func (g *Generator) stamp() (date, tm string) {
	now := g.now()
	return now.Format("060102"), now.Format("1504")
}

func seg(tag string, elements ...string) Segment {
	return Segment{Tag: tag, Elements: elements}
}

// padRight pads an ISA identifier to its fixed 15-character width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}
