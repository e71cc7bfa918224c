package mocks

import (
	"github.com/mcoot/courgette-crush/internal/dependencies/random"
)

// MockRandom is a scripted Random for tests. Intn draws come from a queue;
// once the queue runs dry every draw returns 0.
type MockRandom struct {
	IntnResults []int
	intnIndex   int

	// IntnBounds records the n passed to every Intn call, in order
	IntnBounds []int

	StringResults []string
	stringIndex   int

	Uint64Results []uint64
	uint64Index   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result clamped into [0, n), or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.IntnBounds = append(r.IntnBounds, n)
	if r.intnIndex >= len(r.IntnResults) || n <= 0 {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	return result % n
}

// String returns the next queued result, or empty string if none remaining
func (r *MockRandom) String(length int, alphabet string) string {
	if r.stringIndex >= len(r.StringResults) {
		return ""
	}
	result := r.StringResults[r.stringIndex]
	r.stringIndex++
	return result
}

// Uint64 returns the next queued result, or 0 if none remaining
func (r *MockRandom) Uint64() uint64 {
	if r.uint64Index >= len(r.Uint64Results) {
		return 0
	}
	result := r.Uint64Results[r.uint64Index]
	r.uint64Index++
	return result
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.StringResults = append(r.StringResults, values...)
}

// QueueUint64 adds values to the Uint64 result queue
func (r *MockRandom) QueueUint64(values ...uint64) {
	r.Uint64Results = append(r.Uint64Results, values...)
}

// PendingIntn returns how many queued Intn results have not been drawn
func (r *MockRandom) PendingIntn() int {
	return len(r.IntnResults) - r.intnIndex
}

// Reset clears all queued results and recorded calls
func (r *MockRandom) Reset() {
	r.IntnResults = nil
	r.intnIndex = 0
	r.IntnBounds = nil
	r.StringResults = nil
	r.stringIndex = 0
	r.Uint64Results = nil
	r.uint64Index = 0
}
