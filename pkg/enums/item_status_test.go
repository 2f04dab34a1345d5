package enums

import "testing"

func TestParseItemStatus(t *testing.T) {
	for _, raw := range []string{"lost", "found", "claimed"} {
		got, err := ParseItemStatus(raw)
		if err != nil {
			t.Fatalf("ParseItemStatus(%q) returned error: %v", raw, err)
		}
		if !got.IsValid() {
			t.Fatalf("parsed status %q should be valid", got)
		}
	}

	for _, raw := range []string{"", "LOST", "stolen", "all"} {
		if _, err := ParseItemStatus(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestItemStatusIsTab(t *testing.T) {
	cases := map[ItemStatus]bool{
		ItemStatusLost:    true,
		ItemStatusFound:   true,
		ItemStatusClaimed: false,
		"all":             false,
	}
	for status, want := range cases {
		if got := status.IsTab(); got != want {
			t.Fatalf("IsTab(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestReportStatusDefaultsToLost(t *testing.T) {
	cases := map[string]ItemStatus{
		"lost":    ItemStatusLost,
		"found":   ItemStatusFound,
		"claimed": ItemStatusLost,
		"bogus":   ItemStatusLost,
		"":        ItemStatusLost,
	}
	for raw, want := range cases {
		if got := ReportStatus(raw); got != want {
			t.Fatalf("ReportStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}
