package domain

// Queue is a FIFO of pending tracks. Insertion order is play order.
// The currently playing track is never part of the queue.
type Queue struct {
	tracks []Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{tracks: make([]Track, 0)}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Push appends tracks to the tail and returns the 1-based position of the last one.
func (q *Queue) Push(tracks ...Track) int {
	q.tracks = append(q.tracks, tracks...)
	return q.Len()
}

// Pop removes and returns the head of the queue.
func (q *Queue) Pop() (Track, bool) {
	if q.IsEmpty() {
		return Track{}, false
	}

	head := q.tracks[0]
	q.tracks[0] = Track{}
	q.tracks = q.tracks[1:]
	return head, true
}

// Peek returns the head of the queue without removing it.
func (q *Queue) Peek() (Track, bool) {
	if q.IsEmpty() {
		return Track{}, false
	}
	return q.tracks[0], true
}

// Tail returns the last track of the queue without removing it.
func (q *Queue) Tail() (Track, bool) {
	if q.IsEmpty() {
		return Track{}, false
	}
	return q.tracks[len(q.tracks)-1], true
}

// List returns a copy of all pending tracks.
func (q *Queue) List() []Track {
	result := make([]Track, q.Len())
	copy(result, q.tracks)
	return result
}

// Clear removes all tracks and returns how many were removed.
func (q *Queue) Clear() int {
	n := q.Len()
	q.tracks = make([]Track, 0)
	return n
}
