package repositories

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator hands out product ids. Ids are never derived from the current
// size of the collection, so a deleted id is never handed out again.
type IDGenerator interface {
	NextID() string
	// Observe tells the generator about an id that entered the store from
	// elsewhere, such as seed data, so it can stay ahead of it.
	Observe(id string)
}

// SequenceIDGenerator produces "1", "2", "3", ... from a monotonic counter.
type SequenceIDGenerator struct {
	last atomic.Uint64
}

// NewSequenceIDGenerator creates a generator whose first id is "1".
func NewSequenceIDGenerator() *SequenceIDGenerator {
	return &SequenceIDGenerator{}
}

func (g *SequenceIDGenerator) NextID() string {
	return strconv.FormatUint(g.last.Add(1), 10)
}

func (g *SequenceIDGenerator) Observe(id string) {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return
	}
	for {
		last := g.last.Load()
		if n <= last || g.last.CompareAndSwap(last, n) {
			return
		}
	}
}

// UUIDGenerator produces random version 4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NextID() string {
	return uuid.New().String()
}

func (UUIDGenerator) Observe(string) {}
