package enums

import "fmt"

// ItemStatus is the lifecycle state of a reported item.
type ItemStatus string

const (
	ItemStatusLost    ItemStatus = "lost"
	ItemStatusFound   ItemStatus = "found"
	ItemStatusClaimed ItemStatus = "claimed"
)

var validItemStatuses = []ItemStatus{
	ItemStatusLost,
	ItemStatusFound,
	ItemStatusClaimed,
}

// ItemStatuses returns the enumerants in display order.
func ItemStatuses() []ItemStatus {
	return append([]ItemStatus(nil), validItemStatuses...)
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTab reports whether the status can be used as a catalog tab filter.
// Claimed items are only reachable through the unfiltered view.
func (s ItemStatus) IsTab() bool {
	return s == ItemStatusLost || s == ItemStatusFound
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	for _, candidate := range validItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}

// ReportStatus resolves the status path segment of the report form,
// defaulting to lost for anything other than lost or found.
func ReportStatus(value string) ItemStatus {
	if s := ItemStatus(value); s.IsTab() {
		return s
	}
	return ItemStatusLost
}
