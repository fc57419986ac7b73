package smali

import "encoding/json"

// OrderedSet keeps distinct strings in first-seen order.
type OrderedSet struct {
	items []string
	seen  map[string]struct{}
}

// Add appends v unless it is already present and reports whether it was added.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.seen[v]
	return ok
}

func (s *OrderedSet) Len() int { return len(s.items) }

// Items returns a copy of the elements in insertion order. It is never nil.
func (s *OrderedSet) Items() []string {
	return append(make([]string, 0, len(s.items)), s.items...)
}

func (s OrderedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}
