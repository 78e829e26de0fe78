package identifier

import (
	"crypto/rand"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func TestULIDGenerator_Format(t *testing.T) {
	id := NewULIDGenerator().NewOrderID()

	require.True(t, strings.HasPrefix(id, DefaultPrefix))
	_, err := ulid.ParseStrict(strings.TrimPrefix(id, DefaultPrefix))
	require.NoError(t, err)
}

func TestULIDGenerator_MonotonicWithinMillisecond(t *testing.T) {
	frozen := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	gen := newULIDGenerator(DefaultPrefix, rand.Reader, func() time.Time { return frozen })

	previous := gen.NewOrderID()
	for i := 0; i < 1000; i++ {
		next := gen.NewOrderID()
		require.Greater(t, next, previous)
		previous = next
	}
}

func TestULIDGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewULIDGenerator()
	const workers, perWorker = 8, 250

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				id := gen.NewOrderID()
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}
