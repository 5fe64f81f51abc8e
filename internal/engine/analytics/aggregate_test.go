package analytics

import (
	"testing"
	"time"
)

var t0 = time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)

func visits(ips ...string) []Visit {
	out := make([]Visit, len(ips))
	for i, ip := range ips {
		out[i] = Visit{Timestamp: t0.Add(time.Duration(i) * time.Hour), IP: ip}
	}
	return out
}

func clicks(ips ...string) []Click {
	out := make([]Click, len(ips))
	for i, ip := range ips {
		out[i] = Click{Timestamp: t0.Add(time.Duration(i) * time.Hour), IP: ip, LinkID: "l1"}
	}
	return out
}

func TestAbandonedVisits(t *testing.T) {
	tests := []struct {
		name   string
		visits []Visit
		clicks []Click
		want   int
	}{
		{name: "Empty", want: 0},
		{name: "Three Distinct One Click", visits: visits("1", "2", "3"), clicks: clicks("1"), want: 2},
		{name: "Repeated IPs", visits: visits("1", "1", "2", "3", "4"), clicks: clicks("1", "2"), want: 3},
		{name: "Duplicate Click IPs Count Once", visits: visits("1", "2"), clicks: clicks("1", "1", "1"), want: 1},
		{name: "Clicks Without Visits", clicks: clicks("1", "2"), want: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AbandonedVisits(tt.visits, tt.clicks); got != tt.want {
				t.Errorf("AbandonedVisits() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFilterByDateWindow(t *testing.T) {
	events := visits("a", "b", "c", "d") // t0, +1h, +2h, +3h

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{name: "All Time", want: 4},
		{name: "Epoch Start", start: time.Unix(0, 0), end: t0.Add(24 * time.Hour), want: 4},
		{name: "Inclusive Bounds", start: t0.Add(time.Hour), end: t0.Add(2 * time.Hour), want: 2},
		{name: "Open End", start: t0.Add(3 * time.Hour), want: 1},
		{name: "Before Everything", start: t0.Add(-2 * time.Hour), end: t0.Add(-time.Hour), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterByDateWindow(events, tt.start, tt.end); len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFilterByCampaign(t *testing.T) {
	events := clicks("a", "b", "c")
	got := FilterByCampaign(events, t0.Add(time.Hour), t0.Add(2*time.Hour))
	if len(got) != 2 || got[0].IP != "b" || got[1].IP != "c" {
		t.Errorf("unexpected events %+v", got)
	}
}

func TestRankLinks(t *testing.T) {
	cs := []Click{
		{LinkID: "x"}, {LinkID: "y"}, {LinkID: "z"}, {LinkID: "y"}, {LinkID: "z"}, {LinkID: "w"},
	}

	got := RankLinks(cs)
	want := []LinkCount{
		{LinkID: "y", Clicks: 2},
		{LinkID: "z", Clicks: 2},
		{LinkID: "x", Clicks: 1},
		{LinkID: "w", Clicks: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("rank %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDailySeries(t *testing.T) {
	vs := []Visit{
		{Timestamp: t0},
		{Timestamp: t0.Add(20 * time.Hour)},
		{Timestamp: t0.Add(-24 * time.Hour)},
	}
	cs := []Click{{Timestamp: t0.Add(time.Hour)}}

	got := DailySeries(vs, cs)
	want := []DailyStat{
		{Date: "2025-01-09", Visits: 1},
		{Date: "2025-01-10", Visits: 1, Clicks: 1},
		{Date: "2025-01-11", Visits: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}
