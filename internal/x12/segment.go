package x12

import (
	"strings"
)

// X12 delimiters used by the VICS 4010/5010 profiles this service handles.
// The interchange delimiter set is fixed; delimiter discovery from ISA is
// out of scope.
const (
	ElementSeparator  = "*"
	SegmentTerminator = "~"
)

// Segment is the atomic unit of the X12 wire format: a tag followed by an
// ordered list of elements. Empty elements are positional placeholders and
// are significant.
type Segment struct {
	Tag      string   `json:"tag"`
	Elements []string `json:"elements"`
}

// Element returns the element at position i, or the empty string when the
// segment carries fewer elements. Positions are 0-indexed and exclude the tag.
func (s Segment) Element(i int) string {
	if i < 0 || i >= len(s.Elements) {
		return ""
	}
	return s.Elements[i]
}

// String renders the segment in wire form, terminator included.
func (s Segment) String() string {
	if len(s.Elements) == 0 {
		return s.Tag + SegmentTerminator
	}
	return s.Tag + ElementSeparator + strings.Join(s.Elements, ElementSeparator) + SegmentTerminator
}

// Tokenize splits raw interchange text into segments. Line breaks are
// stripped, zero-length fragments are discarded. Trailing empty elements
// within a segment are preserved.
func Tokenize(text string) ([]Segment, error) {
	clean := strings.NewReplacer("\r", "", "\n", "").Replace(text)
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return nil, &FormatError{Msg: "empty input: expected at least one segment"}
	}

	var segments []Segment
	for _, raw := range strings.Split(clean, SegmentTerminator) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		parts := strings.Split(raw, ElementSeparator)
		if parts[0] == "" {
			return nil, &FormatError{Msg: "segment with empty tag: " + raw}
		}

		segments = append(segments, Segment{Tag: parts[0], Elements: parts[1:]})
	}

	if len(segments) == 0 {
		return nil, &FormatError{Msg: "empty input: expected at least one segment"}
	}

	return segments, nil
}

// Untokenize renders segments back to interchange text, one segment per line.
// It is the inverse of Tokenize modulo whitespace normalization.
func Untokenize(segments []Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, s.String())
	}
	return strings.Join(lines, "\n")
}
