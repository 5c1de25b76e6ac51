package x12

// Dialect selects the VICS versioning profile used for generation and
// version-token validation.
type Dialect string

const (
	Dialect4010 Dialect = "4010"
	Dialect5010 Dialect = "5010"
)

// ParseDialect maps a raw version token to a dialect. Unrecognized values
// fall back to 4010, matching the behavior trading partners already depend
// on; ok is false so callers can surface a warning.
func ParseDialect(s string) (d Dialect, ok bool) {
	switch Dialect(s) {
	case Dialect5010:
		return Dialect5010, true
	case Dialect4010, "":
		return Dialect4010, s != ""
	default:
		return Dialect4010, false
	}
}

// profile captures everything that varies between the two dialects. The
// trailer count is never derived from these flags directly; generators count
// the segments they actually emit.
type profile struct {
	ISAVersion        string
	GSVersion         string
	GSVersionToken    string // bare token expected inside inbound GS segments
	EmitsAddressBlock bool
	EmitsTax          bool
}

var profiles = map[Dialect]profile{
	Dialect4010: {
		ISAVersion:     "00401",
		GSVersion:      "004010VICS",
		GSVersionToken: "004010",
	},
	Dialect5010: {
		ISAVersion:        "00501",
		GSVersion:         "005010",
		GSVersionToken:    "005010",
		EmitsAddressBlock: true,
		EmitsTax:          true,
	},
}

func (d Dialect) profile() profile {
	if p, ok := profiles[d]; ok {
		return p
	}
	return profiles[Dialect4010]
}
