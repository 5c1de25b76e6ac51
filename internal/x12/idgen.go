package x12

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// IDSource mints document numbers for outbound 856/810 envelopes. It is
// injected into the generator so collision behavior is a testable concern.
// Implementations must be safe for concurrent use; a colliding document
// number would corrupt trading-partner reconciliation.
type IDSource interface {
	ASNNumber() string
	BOLNumber() string
	InvoiceNumber() string
}

// DocumentIDSource produces numbers from a clock-seeded atomic counter plus
// random hex entropy, so concurrent callers and parallel processes cannot
// collide the way wall-clock truncation can.
type DocumentIDSource struct {
	seq atomic.Uint64
}

// NewDocumentIDSource creates an ID source seeded from the current time.
func NewDocumentIDSource() *DocumentIDSource {
	s := &DocumentIDSource{}
	s.seq.Store(uint64(time.Now().UnixMilli()))
	return s
}

func (s *DocumentIDSource) mint(prefix string) string {
	n := s.seq.Add(1)
	entropy := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s%05d%s", prefix, n%100000, entropy)
}

func (s *DocumentIDSource) ASNNumber() string {
	return s.mint("ASN")
}

func (s *DocumentIDSource) BOLNumber() string {
	return s.mint("BOL")
}

func (s *DocumentIDSource) InvoiceNumber() string {
	return s.mint("INV-")
}
