package identifier

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/md-rasel-mahmud/next-eccomerce-sub000/internal/domains/orders/ports"
)

// DefaultPrefix starts every generated order identifier.
const DefaultPrefix = "ORD-"

var _ ports.IdentifierGenerator = (*ULIDGenerator)(nil)

// ULIDGenerator issues "ORD-<ULID>" identifiers. Identifiers generated within the same
// millisecond are strictly increasing.
type ULIDGenerator struct {
	mu      sync.Mutex
	prefix  string
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewULIDGenerator builds a generator backed by crypto/rand.
func NewULIDGenerator() *ULIDGenerator {
	return newULIDGenerator(DefaultPrefix, rand.Reader, time.Now)
}

func newULIDGenerator(prefix string, source io.Reader, now func() time.Time) *ULIDGenerator {
	return &ULIDGenerator{
		prefix:  prefix,
		entropy: ulid.Monotonic(source, 0),
		now:     now,
	}
}

// NewOrderID implements ports.IdentifierGenerator.
func (g *ULIDGenerator) NewOrderID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.prefix + ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
