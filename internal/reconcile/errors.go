package reconcile

import "fmt"

// MissingStandardTimeError is returned when a content has no standard time and the policy is MissingAbort.
type MissingStandardTimeError struct {
	Content string
}

func (e *MissingStandardTimeError) Error() string {
	return fmt.Sprintf("no standard time for content %q", e.Content)
}

// GroupError attaches the (person, content) key to a failure inside one group.
type GroupError struct {
	Person  string
	Content string
	Err     error
}

func (e *GroupError) Error() string {
	return fmt.Sprintf("%s / %s: %v", e.Person, e.Content, e.Err)
}

func (e *GroupError) Unwrap() error { return e.Err }

// FilterError is an unusable filter value supplied by a caller.
type FilterError struct {
	Field string
	Value string
	Err   error
}

func (e *FilterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *FilterError) Unwrap() error { return e.Err }
