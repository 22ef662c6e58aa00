package mocks

import (
	"strings"
	"sync"

	"github.com/mcoot/trucogame/internal/dependencies/random"
)

// MockRandom is a scripted Random for tests.
//
// Intn pops queued values; once the queue is drained it returns 0, which makes
// random.Shuffle rotate its input left by one position.
type MockRandom struct {
	mu sync.Mutex

	intn    []int
	strings []string

	// Calls records the n argument of every Intn call
	Calls []int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued value clamped to [0, n)
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, n)
	if len(r.intn) == 0 || n <= 0 {
		return 0
	}
	v := r.intn[0]
	r.intn = r.intn[1:]
	if v < 0 || v >= n {
		return v % n
	}
	return v
}

// String returns the next queued string, or a run of the alphabet's first
// character when nothing is queued
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) > 0 {
		s := r.strings[0]
		r.strings = r.strings[1:]
		return s
	}
	if length <= 0 || alphabet == "" {
		return ""
	}
	return strings.Repeat(alphabet[:1], length)
}

// QueueIntn appends values returned by subsequent Intn calls
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intn = append(r.intn, values...)
}

// QueueString appends values returned by subsequent String calls
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strings = append(r.strings, values...)
}

// Reset clears queued values and recorded calls
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intn = nil
	r.strings = nil
	r.Calls = nil
}
