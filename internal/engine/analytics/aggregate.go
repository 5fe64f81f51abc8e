package analytics

import (
	"sort"
	"time"
)

type Event interface {
	At() time.Time
}

// FilterByDateWindow keeps events with start <= timestamp <= end.
// A zero start means all time, and so does a zero end.
func FilterByDateWindow[E Event](events []E, start, end time.Time) []E {
	out := make([]E, 0, len(events))
	for _, e := range events {
		at := e.At()
		if !start.IsZero() && at.Before(start) {
			continue
		}
		if !end.IsZero() && at.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterByCampaign keeps events inside [start, end] of a campaign, both inclusive.
func FilterByCampaign[E Event](events []E, start, end time.Time) []E {
	out := make([]E, 0, len(events))
	for _, e := range events {
		at := e.At()
		if !at.Before(start) && !at.After(end) {
			out = append(out, e)
		}
	}
	return out
}

func DistinctClickIPs(clicks []Click) int {
	seen := make(map[string]struct{}, len(clicks))
	for _, c := range clicks {
		seen[c.IP] = struct{}{}
	}
	return len(seen)
}

// AbandonedVisits is visits minus distinct click ips. It approximates visitors
// who left without clicking and can go negative when clicks outnumber visits.
func AbandonedVisits(visits []Visit, clicks []Click) int {
	return len(visits) - DistinctClickIPs(clicks)
}

type LinkCount struct {
	LinkID string `json:"linkId"`
	Text   string `json:"text,omitempty"`
	Clicks int    `json:"clicks"`
}

func ClicksPerLink(clicks []Click) map[string]int {
	counts := make(map[string]int)
	for _, c := range clicks {
		counts[c.LinkID]++
	}
	return counts
}

// RankLinks orders links by click count descending. Ties keep the order in
// which each link was first clicked.
func RankLinks(clicks []Click) []LinkCount {
	counts := ClicksPerLink(clicks)
	ranking := make([]LinkCount, 0, len(counts))
	seen := make(map[string]bool, len(counts))
	for _, c := range clicks {
		if seen[c.LinkID] {
			continue
		}
		seen[c.LinkID] = true
		ranking = append(ranking, LinkCount{LinkID: c.LinkID, Clicks: counts[c.LinkID]})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Clicks > ranking[j].Clicks
	})
	return ranking
}

type DailyStat struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
	Clicks int    `json:"clicks"`
}

// DailySeries buckets events by UTC calendar date, oldest first.
func DailySeries(visits []Visit, clicks []Click) []DailyStat {
	byDate := make(map[string]*DailyStat)
	get := func(t time.Time) *DailyStat {
		d := t.UTC().Format("2006-01-02")
		s, ok := byDate[d]
		if !ok {
			s = &DailyStat{Date: d}
			byDate[d] = s
		}
		return s
	}

	for _, v := range visits {
		get(v.Timestamp).Visits++
	}
	for _, c := range clicks {
		get(c.Timestamp).Clicks++
	}

	series := make([]DailyStat, 0, len(byDate))
	for _, s := range byDate {
		series = append(series, *s)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}
