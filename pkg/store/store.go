// Package store holds the ordered message sequence that backs the chat
// view. It is the single source of truth for message state; the session
// loop is its only writer.
package store

import (
	"pubchat/pkg/models"
)

// Store is an append-ordered message collection indexed by message id.
// Lookups are O(1); Remove shifts positions of later messages and keeps
// the index consistent. Store is not safe for concurrent use: one control
// flow must own it (the session serializes all access).
type Store struct {
	msgs []models.Message
	byID map[int64]int
}

// New returns an empty Store.
func New() *Store {
	return &Store{byID: make(map[int64]int)}
}

// Append adds a message at the tail and returns its position. A message
// whose id is already present is rejected (false) so duplicate deliveries
// of the same new-event cannot grow the store.
func (s *Store) Append(m models.Message) (int, bool) {
	if _, exists := s.byID[m.ID]; exists {
		return 0, false
	}
	pos := len(s.msgs)
	s.msgs = append(s.msgs, m)
	s.byID[m.ID] = pos
	return pos, true
}

// UpdateText replaces the text of the message with the given id, leaving
// author and timestamp untouched. Returns the position and whether the id
// was found; an absent id is a no-op.
func (s *Store) UpdateText(id int64, text string) (int, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return 0, false
	}
	s.msgs[pos].Text = text
	return pos, true
}

// Remove deletes the message with the given id and returns the position it
// occupied. An absent id is a no-op.
func (s *Store) Remove(id int64) (int, bool) {
	pos, ok := s.byID[id]
	if !ok {
		return 0, false
	}
	s.msgs = append(s.msgs[:pos], s.msgs[pos+1:]...)
	delete(s.byID, id)
	// later messages shifted down one position
	for i := pos; i < len(s.msgs); i++ {
		s.byID[s.msgs[i].ID] = i
	}
	return pos, true
}

// Len returns the number of stored messages.
func (s *Store) Len() int { return len(s.msgs) }

// At returns the message at position i.
func (s *Store) At(i int) models.Message { return s.msgs[i] }

// TextAt returns the text of the message at position i.
func (s *Store) TextAt(i int) string { return s.msgs[i].Text }

// AuthorAt returns the author id of the message at position i.
func (s *Store) AuthorAt(i int) int64 { return s.msgs[i].AuthorID }

// IndexOf returns the position of the message with the given id.
func (s *Store) IndexOf(id int64) (int, bool) {
	pos, ok := s.byID[id]
	return pos, ok
}

// MarkRead records readerID on every message from startID (or the head
// when nil) through endID, watermark-style. An unknown endID is a no-op
// (found false); an unknown startID falls back to the head. Returns the
// positions whose read set actually changed.
func (s *Store) MarkRead(readerID int64, startID *int64, endID int64) ([]int, bool) {
	end, ok := s.byID[endID]
	if !ok {
		return nil, false
	}
	start := 0
	if startID != nil {
		if pos, ok := s.byID[*startID]; ok {
			start = pos
		}
	}
	if start > end {
		start, end = end, start
	}
	var changed []int
	for i := start; i <= end; i++ {
		if !containsReader(s.msgs[i].ReadBy, readerID) {
			s.msgs[i].ReadBy = append(s.msgs[i].ReadBy, readerID)
			changed = append(changed, i)
		}
	}
	return changed, true
}

func containsReader(readers []int64, id int64) bool {
	for _, r := range readers {
		if r == id {
			return true
		}
	}
	return false
}
