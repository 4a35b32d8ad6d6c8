package mocks

import (
	"sync"

	"github.com/mcoot/playerledger/internal/dependencies/random"
)

// MockRandom returns queued strings, then a fixed fallback
type MockRandom struct {
	mu       sync.Mutex
	strings  []string
	fallback string
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom whose fallback is "mock"
func NewMockRandom() *MockRandom {
	return &MockRandom{fallback: "mock"}
}

// String returns the next queued result, or the fallback once the queue is empty
func (r *MockRandom) String(int, string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.strings) == 0 {
		return r.fallback
	}
	next := r.strings[0]
	r.strings = r.strings[1:]
	return next
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	r.strings = append(r.strings, values...)
	r.mu.Unlock()
}
