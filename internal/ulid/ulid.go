// Package ulid generates the correlation IDs attached to every render
// call's log entries.
package ulid

import (
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     io.Reader
	entropyOnce sync.Once
	generator   = DefaultGenerator
)

func defaultEntropy() io.Reader {
	entropyOnce.Do(func() {
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		entropy = &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rng, 0),
		}
	})
	return entropy
}

// GenerateID generates a new render ID.
func GenerateID() string {
	return generator()
}

func DefaultGenerator() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), defaultEntropy()).String()
}

// MockGenerator pins GenerateID to a fixed value for tests.
func MockGenerator(mockValue string) {
	generator = func() string {
		return mockValue
	}
}

func ResetGenerator() {
	generator = DefaultGenerator
}
