package playback

// requestQueue holds pending requests in arrival order.
type requestQueue struct {
	items []Request
}

// Add appends a request to the tail.
func (q *requestQueue) Add(r Request) {
	q.items = append(q.items, r)
}

// Pop removes and returns the head. ok is false if the queue is empty.
func (q *requestQueue) Pop() (r Request, ok bool) {
	if len(q.items) == 0 {
		return Request{}, false
	}
	r = q.items[0]
	q.items[0] = Request{}
	q.items = q.items[1:]
	return r, true
}

func (q *requestQueue) Len() int { return len(q.items) }

func (q *requestQueue) IsEmpty() bool { return len(q.items) == 0 }

func (q *requestQueue) Clear() { q.items = nil }

// Tracks returns a copy of the queued targets.
func (q *requestQueue) Tracks() []Track {
	out := make([]Track, len(q.items))
	for i, r := range q.items {
		out[i] = trackOf(r)
	}
	return out
}
