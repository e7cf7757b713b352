package queue

import (
	"math/rand"
	"sync"

	"Serenade/track"
)

// Queue is the ordered collection of pending tracks for one guild, plus a
// separate slot for the track currently being played. A track lives in at
// most one of the two at any time. Every operation takes the same mutex and
// does in-memory work only; positions handed back to callers are 1-indexed
// snapshots that a concurrent mutation may invalidate.
type Queue struct {
	mu      sync.Mutex
	items   []track.Track
	current *track.Track
}

// New returns an empty Queue
func New() *Queue {
	return &Queue{}
}

// Add appends a track to the pending list and returns its 1-indexed position
func (q *Queue) Add(t track.Track) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
	return len(q.items)
}

// Next atomically pops the head of the pending list into the current slot.
// Returns false when nothing is pending.
func (q *Queue) Next() (track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return track.Track{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	q.current = &head
	return head, true
}

// Clear empties the pending list and the current slot
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.current = nil
}

// ClearPending empties the pending list only, leaving the current slot alone
func (q *Queue) ClearPending() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Shuffle randomly permutes the pending list; the current slot is untouched
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// Remove takes the track at the given 1-indexed position out of the pending
// list. Returns false if the position is out of range.
func (q *Queue) Remove(position int) (track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if position < 1 || position > len(q.items) {
		return track.Track{}, false
	}
	idx := position - 1
	removed := q.items[idx]
	q.items = append(q.items[:idx], q.items[idx+1:]...)
	return removed, true
}

// Move relocates a pending track from one 1-indexed position to another.
// Returns false if either position is out of range.
func (q *Queue) Move(from, to int) (track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if from < 1 || from > len(q.items) || to < 1 || to > len(q.items) {
		return track.Track{}, false
	}
	moved := q.items[from-1]
	q.items = append(q.items[:from-1], q.items[from:]...)
	rest := append([]track.Track{moved}, q.items[to-1:]...)
	q.items = append(q.items[:to-1], rest...)
	return moved, true
}

// GetList returns a snapshot copy of the pending list in play order
func (q *Queue) GetList() []track.Track {
	q.mu.Lock()
	defer q.mu.Unlock()
	list := make([]track.Track, len(q.items))
	copy(list, q.items)
	return list
}

// Size returns the number of pending tracks
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// IsEmpty reports whether no tracks are pending
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

// Current returns the track in the current slot, false if the slot is empty
func (q *Queue) Current() (track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return track.Track{}, false
	}
	return *q.current, true
}

// ClearCurrent empties the current slot once playback of it has ended
func (q *Queue) ClearCurrent() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.current = nil
}
