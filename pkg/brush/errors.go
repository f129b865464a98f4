package brush

import (
	"errors"
	"fmt"
)

// ErrHandleMatching is matched by every *HandleMatchingFailure.
var ErrHandleMatching = errors.New("handle matching failed")

// HandleMatchingFailure reports that a complete brush enabling handle
// matching had no specific handle pattern of its maker in the text. It is
// recoverable: the complete-brush result is kept.
type HandleMatchingFailure struct {
	Text       string
	Brand      string
	Model      string
	HandleText string
}

func (e *HandleMatchingFailure) Error() string {
	return fmt.Sprintf("%s: %q (brand %q, model %q): no %s handle pattern matched %q",
		ErrHandleMatching, e.Text, e.Brand, e.Model, e.Brand, e.HandleText)
}

func (e *HandleMatchingFailure) Is(target error) bool { return target == ErrHandleMatching }
