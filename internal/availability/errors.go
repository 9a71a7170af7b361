package availability

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedFeed = errors.New("malformed availability feed")
	ErrItemNotFound  = errors.New("item not found in availability feed")
)

// ItemLookupError reports a tracked item missing from the snapshot.
type ItemLookupError struct {
	Item Item
}

func (e *ItemLookupError) Error() string {
	return fmt.Sprintf("item %q not found in availability feed", string(e.Item))
}

func (e *ItemLookupError) Unwrap() error { return ErrItemNotFound }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedFeed, fmt.Sprintf(format, args...))
}
