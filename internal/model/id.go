package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID prefixes keep people and tasks distinguishable at a glance.
const (
	PersonIDPrefix = "pe-"
	TaskIDPrefix   = "ts-"
	ChaserIDPrefix = "ch-"
)

// IDGenerator produces identifiers for new records.
type IDGenerator interface {
	NewID(prefix string) string
}

// UUIDGenerator issues time-ordered UUIDv7 ids. The v7 sequence bits keep ids
// distinct even when several are issued within the same millisecond.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.Must(uuid.NewV7()).String(), "-", "")
}

// SequenceGenerator issues prefix + zero-padded counter. Not safe for
// concurrent use; the store serialises calls.
type SequenceGenerator struct {
	next int
}

func (g *SequenceGenerator) NewID(prefix string) string {
	g.next++
	return fmt.Sprintf("%s%04d", prefix, g.next)
}

// MemberID derives the id of the index-th per-assignee task created from base.
func MemberID(base string, index int) string {
	return fmt.Sprintf("%s-%d", base, index)
}
