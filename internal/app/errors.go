package app

import (
	"fmt"
	"sort"
	"strings"
)

// RunError reports the items that failed during an otherwise completed pass.
type RunError struct {
	Total  int
	Failed map[string]error
}

func (e *RunError) Items() []string {
	out := make([]string, 0, len(e.Failed))
	for item := range e.Failed {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func (e *RunError) Error() string {
	items := e.Items()
	return fmt.Sprintf("%d of %d items failed: %s", len(items), e.Total, strings.Join(items, ", "))
}

// Unwrap exposes every per-item cause to errors.Is / errors.As.
func (e *RunError) Unwrap() []error {
	items := e.Items()
	out := make([]error, 0, len(items))
	for _, item := range items {
		out = append(out, e.Failed[item])
	}
	return out
}
