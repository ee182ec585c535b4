package store

import (
	"testing"
	"time"

	"pubchat/pkg/models"
)

func msg(id, author int64, text string) models.Message {
	return models.Message{ID: id, AuthorID: author, Text: text, Timestamp: time.Unix(1700000000, 0)}
}

func TestAppendOrderAndDuplicates(t *testing.T) {
	s := New()
	if pos, ok := s.Append(msg(1, 10, "a")); !ok || pos != 0 {
		t.Fatalf("first append: got pos=%d ok=%v", pos, ok)
	}
	if pos, ok := s.Append(msg(2, 11, "b")); !ok || pos != 1 {
		t.Fatalf("second append: got pos=%d ok=%v", pos, ok)
	}
	if _, ok := s.Append(msg(1, 10, "a again")); ok {
		t.Fatalf("duplicate id accepted")
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if s.TextAt(0) != "a" || s.TextAt(1) != "b" {
		t.Fatalf("order broken: %q %q", s.TextAt(0), s.TextAt(1))
	}
}

func TestUpdateText(t *testing.T) {
	s := New()
	s.Append(msg(1, 10, "old"))
	pos, ok := s.UpdateText(1, "new")
	if !ok || pos != 0 {
		t.Fatalf("update: pos=%d ok=%v", pos, ok)
	}
	if s.TextAt(0) != "new" {
		t.Fatalf("text = %q, want new", s.TextAt(0))
	}
	if s.AuthorAt(0) != 10 {
		t.Fatalf("author changed to %d", s.AuthorAt(0))
	}
	if _, ok := s.UpdateText(99, "x"); ok {
		t.Fatalf("update of unknown id succeeded")
	}
}

func TestRemoveShiftsIndex(t *testing.T) {
	s := New()
	s.Append(msg(1, 10, "a"))
	s.Append(msg(2, 10, "b"))
	s.Append(msg(3, 10, "c"))

	pos, ok := s.Remove(2)
	if !ok || pos != 1 {
		t.Fatalf("remove: pos=%d ok=%v", pos, ok)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	if got, _ := s.IndexOf(3); got != 1 {
		t.Fatalf("id 3 at %d, want 1", got)
	}
	if _, ok := s.IndexOf(2); ok {
		t.Fatalf("removed id still indexed")
	}
	if _, ok := s.Remove(2); ok {
		t.Fatalf("second remove of same id succeeded")
	}
}

func TestMarkReadWatermark(t *testing.T) {
	s := New()
	s.Append(msg(1, 10, "a"))
	s.Append(msg(2, 10, "b"))
	s.Append(msg(3, 10, "c"))

	if _, found := s.MarkRead(7, nil, 99); found {
		t.Fatalf("unknown end id reported found")
	}

	changed, found := s.MarkRead(7, nil, 2)
	if !found {
		t.Fatalf("known end id not found")
	}
	if len(changed) != 2 || changed[0] != 0 || changed[1] != 1 {
		t.Fatalf("changed = %v, want [0 1]", changed)
	}
	if len(s.At(2).ReadBy) != 0 {
		t.Fatalf("message past the watermark marked read")
	}

	// marking again changes nothing
	changed, found = s.MarkRead(7, nil, 2)
	if !found || len(changed) != 0 {
		t.Fatalf("re-mark: changed=%v found=%v", changed, found)
	}

	// explicit range
	start := int64(2)
	changed, found = s.MarkRead(8, &start, 3)
	if !found || len(changed) != 2 {
		t.Fatalf("range mark: changed=%v found=%v", changed, found)
	}
}
