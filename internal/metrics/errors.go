package metrics

import "fmt"

// DataFormatError reports an input table that cannot yield a complete
// metrics record: an empty table or a missing required domain column.
// Partial records are never emitted.
type DataFormatError struct {
	Reason string
	Column string
}

func (e *DataFormatError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("data format: %s: column %q", e.Reason, e.Column)
	}
	return "data format: " + e.Reason
}
