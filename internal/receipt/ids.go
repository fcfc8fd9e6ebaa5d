package receipt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Identifier formats: a role prefix, the creation time in Unix
// milliseconds, and an uppercase random suffix. The suffix lengths differ
// per role so the three identifier kinds are visually distinct.
const (
	receiptSuffixLen   = 7
	referenceSuffixLen = 13
	freezeSuffixLen    = 9
)

// IDGenerator produces the three receipt identifiers.
//
// Implemented by RandomGenerator (production) and FixedGenerator (tests).
// The timestamp component comes from the caller so that a single Clock
// governs every timestamp in a record.
type IDGenerator interface {
	ReceiptID(now time.Time) string
	ReferenceID(now time.Time) string
	FreezeID(now time.Time) string
}

// RandomGenerator derives identifier suffixes from UUIDv4 randomness.
//
// A truncated UUID suffix on top of a millisecond timestamp makes
// collisions within a session negligible: two identifiers collide only
// when generated in the same millisecond with the same leading random
// hex digits.
//
// Thread-safety: RandomGenerator is stateless and safe for concurrent use.
type RandomGenerator struct{}

// ReceiptID returns a "BR-" prefixed identifier.
func (RandomGenerator) ReceiptID(now time.Time) string {
	return formatID("BR", now, randomSuffix(receiptSuffixLen))
}

// ReferenceID returns a "REF-" prefixed identifier.
func (RandomGenerator) ReferenceID(now time.Time) string {
	return formatID("REF", now, randomSuffix(referenceSuffixLen))
}

// FreezeID returns a "FRZ-" prefixed identifier.
func (RandomGenerator) FreezeID(now time.Time) string {
	return formatID("FRZ", now, randomSuffix(freezeSuffixLen))
}

func formatID(prefix string, now time.Time, suffix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), suffix)
}

// randomSuffix returns n uppercase hex characters of UUID randomness.
func randomSuffix(n int) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:n])
}

// FixedGenerator returns predetermined identifiers for testing.
//
// Each sequence is consumed in order; when a sequence is exhausted the
// last element repeats. This fail-soft behavior keeps table-driven tests
// short when only the first record's identifiers matter.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu         sync.Mutex
	receipts   []string
	references []string
	freezes    []string
	ri, fi, zi int
}

// NewFixedGenerator creates a generator with one predetermined identifier
// per role. Use the field-style literal for multi-record sequences.
func NewFixedGenerator(receiptID, referenceID, freezeID string) *FixedGenerator {
	return &FixedGenerator{
		receipts:   []string{receiptID},
		references: []string{referenceID},
		freezes:    []string{freezeID},
	}
}

func (g *FixedGenerator) ReceiptID(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return take(g.receipts, &g.ri)
}

func (g *FixedGenerator) ReferenceID(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return take(g.references, &g.fi)
}

func (g *FixedGenerator) FreezeID(time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return take(g.freezes, &g.zi)
}

func take(seq []string, idx *int) string {
	if len(seq) == 0 {
		return ""
	}
	i := *idx
	if i >= len(seq) {
		i = len(seq) - 1
	} else {
		*idx++
	}
	return seq[i]
}
