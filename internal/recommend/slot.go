package recommend

import "sync/atomic"

// Slot holds at most one value. Store replaces the value whole, so readers
// never observe a partial update.
type Slot[T any] struct {
	v atomic.Pointer[T]
}

// Load returns the current value and whether one has been stored.
func (s *Slot[T]) Load() (T, bool) {
	p := s.v.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Store replaces the current value.
func (s *Slot[T]) Store(v T) {
	s.v.Store(&v)
}

// Clear empties the slot.
func (s *Slot[T]) Clear() {
	s.v.Store(nil)
}

// Session owns the latest recommendation and the latest follow-up answer.
type Session struct {
	Recommendation Slot[Exchange]
	Answer         Slot[Exchange]
}

// Exchange is one prompt and the text the model returned for it.
type Exchange struct {
	Metric    Metric    `json:"metric"`
	Direction Direction `json:"direction"`
	Question  string    `json:"question,omitempty"`
	Prompt    string    `json:"prompt"`
	Text      string    `json:"text"`
}
