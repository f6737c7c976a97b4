package domain

import "testing"

func equalTitles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueue_PushPopOrder(t *testing.T) {
	q := NewQueue()

	if pos := q.Push(Track{Title: "A"}); pos != 1 {
		t.Errorf("expected position 1, got %d", pos)
	}
	if pos := q.Push(Track{Title: "B"}, Track{Title: "C"}); pos != 3 {
		t.Errorf("expected position 3, got %d", pos)
	}

	var got []string
	for {
		track, ok := q.Pop()
		if !ok {
			break
		}
		got = append(got, track.Title)
	}

	if !equalTitles(got, []string{"A", "B", "C"}) {
		t.Errorf("expected insertion order, got %v", got)
	}
	if !q.IsEmpty() {
		t.Error("expected queue to be empty")
	}
}

func TestQueue_PopEmpty(t *testing.T) {
	q := NewQueue()

	if _, ok := q.Pop(); ok {
		t.Error("expected Pop on empty queue to report false")
	}
	if _, ok := q.Peek(); ok {
		t.Error("expected Peek on empty queue to report false")
	}
}

func TestQueue_Peek(t *testing.T) {
	q := NewQueue()
	q.Push(Track{Title: "A"}, Track{Title: "B"})

	head, ok := q.Peek()
	if !ok || head.Title != "A" {
		t.Errorf("expected A, got %q", head.Title)
	}
	if q.Len() != 2 {
		t.Errorf("expected Peek not to remove, got length %d", q.Len())
	}
}

func TestQueue_ListReturnsCopy(t *testing.T) {
	q := NewQueue()
	q.Push(Track{Title: "A"})

	list := q.List()
	list[0].Title = "changed"

	head, _ := q.Peek()
	if head.Title != "A" {
		t.Errorf("expected queue to be unaffected, got %q", head.Title)
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Push(Track{Title: "A"}, Track{Title: "B"})

	if n := q.Clear(); n != 2 {
		t.Errorf("expected 2 removed, got %d", n)
	}
	if !q.IsEmpty() {
		t.Error("expected queue to be empty after Clear")
	}
	if q.List() == nil {
		t.Error("expected non-nil list after Clear")
	}
}

func TestQueue_Tail(t *testing.T) {
	q := NewQueue()

	if _, ok := q.Tail(); ok {
		t.Error("expected Tail on empty queue to report false")
	}

	q.Push(Track{Title: "A"}, Track{Title: "B"})
	q.Pop()

	tail, ok := q.Tail()
	if !ok || tail.Title != "B" {
		t.Errorf("expected B, got %q", tail.Title)
	}
}
