package playback

import "github.com/vidra-cli/vidra/jellyfin"

// Queue is an ordered list of items the manager can advance through, e.g.
// the episodes of a season. Attaching one is optional: movie playback has no
// meaningful next item, so queue operations on a queueless manager are
// deliberate no-ops rather than errors.
type Queue struct {
	items []jellyfin.Item
	index int
}

// NewQueue creates a queue positioned at startIndex. Out-of-range start
// indices are clamped into the list.
func NewQueue(items []jellyfin.Item, startIndex int) *Queue {
	if startIndex < 0 {
		startIndex = 0
	}
	if startIndex >= len(items) && len(items) > 0 {
		startIndex = len(items) - 1
	}
	return &Queue{items: items, index: startIndex}
}

// Current returns the item the queue is positioned at.
func (q *Queue) Current() (jellyfin.Item, bool) {
	if len(q.items) == 0 {
		return jellyfin.Item{}, false
	}
	return q.items[q.index], true
}

// HasNext reports whether Advance would yield an item.
func (q *Queue) HasNext() bool {
	return q.index+1 < len(q.items)
}

// HasPrevious reports whether Retreat would yield an item.
func (q *Queue) HasPrevious() bool {
	return q.index > 0 && len(q.items) > 0
}

// Advance moves to and returns the next item.
func (q *Queue) Advance() (jellyfin.Item, bool) {
	if !q.HasNext() {
		return jellyfin.Item{}, false
	}
	q.index++
	return q.items[q.index], true
}

// Retreat moves to and returns the previous item.
func (q *Queue) Retreat() (jellyfin.Item, bool) {
	if !q.HasPrevious() {
		return jellyfin.Item{}, false
	}
	q.index--
	return q.items[q.index], true
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return len(q.items)
}

// Position returns the current zero-based queue index.
func (q *Queue) Position() int {
	return q.index
}
