package availability

// Status is the availability tag the feed reports for one (item, zone) pair.
//
// The set is open: tags this package does not know about pass through
// unchanged and count as interesting.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusUnavailable Status = "unavailable"

	// Tags commonly seen upstream. Informational only.
	Status1HLow  Status = "1H-low"
	Status1HHigh Status = "1H-high"
	Status24H    Status = "24H"
	Status72H    Status = "72H"
	Status480H   Status = "480H"
)

// Interesting reports whether s means the item can be ordered.
// Only "unknown" and "unavailable" (exact, case-sensitive) are not.
func (s Status) Interesting() bool {
	return s != StatusUnknown && s != StatusUnavailable
}

func (s Status) String() string { return string(s) }

// IsInteresting is the function form of Status.Interesting.
func IsInteresting(s Status) bool { return s.Interesting() }
