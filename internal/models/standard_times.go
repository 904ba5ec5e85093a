package models

import "github.com/aura-webinar/studytime/pkg/utils"

// StandardTimes is the content name -> standard duration table, in file order.
type StandardTimes struct {
	order   []string
	entries map[string]string
}

// NewStandardTimes builds an empty table.
func NewStandardTimes() StandardTimes {
	return StandardTimes{entries: make(map[string]string)}
}

// Set adds or replaces an entry. The first Set of a content fixes its position.
func (s *StandardTimes) Set(content, duration string) {
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	if _, ok := s.entries[content]; !ok {
		s.order = append(s.order, content)
	}
	s.entries[content] = duration
}

// Lookup returns the standard duration for content.
func (s StandardTimes) Lookup(content string) (string, bool) {
	d, ok := s.entries[content]
	return d, ok
}

// Order returns content names in table order.
func (s StandardTimes) Order() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of entries.
func (s StandardTimes) Len() int { return len(s.order) }

// TotalSeconds sums every standard duration in the table.
func (s StandardTimes) TotalSeconds() (int, error) {
	total := 0
	for _, content := range s.order {
		n, err := utils.TimeToSeconds(s.entries[content])
		if err != nil {
			return 0, err
		}
		if total, err = utils.AddSeconds(total, n, s.entries[content]); err != nil {
			return 0, err
		}
	}
	return total, nil
}
