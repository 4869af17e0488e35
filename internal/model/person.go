package model

import "net/url"

type Stats struct {
	Reliability   float64 // percentage, 0-100
	AvgSpeedHours float64
	LateRate      float64 // percentage, 0-100
}

// NeutralStats returns the baseline given to newly added people.
func NeutralStats() Stats {
	return Stats{Reliability: 100, AvgSpeedHours: 0, LateRate: 0}
}

// HistorySample is one point of a person's punctuality trend.
type HistorySample struct {
	Date        string // YYYY-MM-DD
	Punctuality float64
}

type Person struct {
	ID          string
	Name        string
	Email       string
	Department  string
	Tags        []string
	Avatar      string
	Stats       Stats
	TaskHistory []HistorySample
}

// HasTag reports whether the person carries tag (exact match).
func (p Person) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Initials returns the first letter of each word of the name.
func (p Person) Initials() string {
	var out []rune
	start := true
	for _, r := range p.Name {
		if r == ' ' {
			start = true
			continue
		}
		if start {
			out = append(out, r)
			start = false
		}
	}
	return string(out)
}

// Clone returns a deep copy. Empty slices stay empty rather than nil.
func (p Person) Clone() Person {
	c := p
	if p.Tags != nil {
		c.Tags = make([]string, len(p.Tags))
		copy(c.Tags, p.Tags)
	}
	if p.TaskHistory != nil {
		c.TaskHistory = make([]HistorySample, len(p.TaskHistory))
		copy(c.TaskHistory, p.TaskHistory)
	}
	return c
}

// PersonDraft is the input to adding a person.
type PersonDraft struct {
	Name       string
	Email      string
	Department string
	Tags       []string
	Avatar     string
}

// DefaultAvatar returns the placeholder avatar reference for a name.
func DefaultAvatar(name string) string {
	return "/placeholder.svg?height=40&width=40&query=" + url.QueryEscape(name)
}
