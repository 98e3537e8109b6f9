package types

import (
	"errors"
	"fmt"
)

// FilteredError marks a summary rejected by a gate. The run continues without it.
type FilteredError struct {
	Stage   Stage
	ItemID  string
	Reason  string
	Details map[string]interface{}
}

func (e *FilteredError) Error() string {
	return fmt.Sprintf("filtered at %s: %s (item: %s)", e.Stage, e.Reason, e.ItemID)
}

// AsFiltered unwraps err to the FilteredError it carries, if any.
func AsFiltered(err error) (*FilteredError, bool) {
	var fe *FilteredError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func NewFilteredError(stage Stage, itemID, reason string) *FilteredError {
	return &FilteredError{
		Stage:   stage,
		ItemID:  itemID,
		Reason:  reason,
		Details: make(map[string]interface{}),
	}
}

func (e *FilteredError) WithDetail(key string, value interface{}) *FilteredError {
	e.Details[key] = value
	return e
}
