package mocks

import (
	"fmt"
	"sync"

	"github.com/hamsterrace/raceboard/internal/dependencies/random"
)

// MockRandom returns queued values. When a queue is empty it falls back to
// deterministic sequential values so identifiers stay unique.
type MockRandom struct {
	mu sync.Mutex

	intnResults   []int
	stringResults []string
	uuidResults   []string
	tokenResults  []string

	uuidSeq  int
	tokenSeq int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.intnResults) == 0 {
		return 0
	}
	result := r.intnResults[0]
	r.intnResults = r.intnResults[1:]
	return result
}

// String returns the next queued result, or "mock" if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.stringResults) == 0 {
		return "mock"
	}
	result := r.stringResults[0]
	r.stringResults = r.stringResults[1:]
	return result
}

// UUID returns the next queued UUID or a sequential placeholder
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.uuidResults) > 0 {
		result := r.uuidResults[0]
		r.uuidResults = r.uuidResults[1:]
		return result
	}
	r.uuidSeq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", r.uuidSeq)
}

// Token returns the next queued token or a sequential placeholder
func (r *MockRandom) Token() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokenResults) > 0 {
		result := r.tokenResults[0]
		r.tokenResults = r.tokenResults[1:]
		return result
	}
	r.tokenSeq++
	return fmt.Sprintf("token-%d", r.tokenSeq)
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	r.intnResults = append(r.intnResults, values...)
	r.mu.Unlock()
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	r.stringResults = append(r.stringResults, values...)
	r.mu.Unlock()
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	r.uuidResults = append(r.uuidResults, values...)
	r.mu.Unlock()
}

// QueueToken adds values to the Token result queue
func (r *MockRandom) QueueToken(values ...string) {
	r.mu.Lock()
	r.tokenResults = append(r.tokenResults, values...)
	r.mu.Unlock()
}
