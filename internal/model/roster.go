package model

import "sort"

// AllTags returns the union of every person's tags, deduplicated and sorted
// ascending.
func AllTags(people []Person) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range people {
		for _, t := range p.Tags {
			if seen[t] {
				continue
			}
			seen[t] = true
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags
}

// FilterByTags keeps people carrying at least one of tags.
// An empty tag set keeps everyone.
func FilterByTags(people []Person, tags []string) []Person {
	if len(tags) == 0 {
		return people
	}
	var out []Person
	for _, p := range people {
		for _, t := range tags {
			if p.HasTag(t) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// RankByReliability returns a copy of people sorted by reliability, highest
// first. Ties keep their roster order.
func RankByReliability(people []Person) []Person {
	ranked := append([]Person(nil), people...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Stats.Reliability > ranked[j].Stats.Reliability
	})
	return ranked
}

// RecentTasksFor returns up to limit tasks assigned to personID, in
// collection order (most recent first).
func RecentTasksFor(personID string, tasks []Task, limit int) []Task {
	var out []Task
	for _, t := range tasks {
		if len(out) >= limit {
			break
		}
		if t.HasAssignee(personID) {
			out = append(out, t)
		}
	}
	return out
}

type Band string

const (
	BandGood Band = "good"
	BandFair Band = "fair"
	BandPoor Band = "poor"
)

func ReliabilityBand(v float64) Band {
	switch {
	case v >= 90:
		return BandGood
	case v >= 70:
		return BandFair
	default:
		return BandPoor
	}
}

// LateRateBand grades a late rate; lower is better.
func LateRateBand(v float64) Band {
	switch {
	case v <= 10:
		return BandGood
	case v <= 25:
		return BandFair
	default:
		return BandPoor
	}
}
