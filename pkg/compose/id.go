package compose

import (
	"sync/atomic"
	"time"
)

// counterBits is the width of the per-sender counter portion of an id.
const counterBits = 24

// IDGenerator issues message ids unique per sender: the sender id occupies
// the high bits and a monotonic counter the low bits. The counter is
// seeded from the millisecond clock so a restarted sender outruns the ids
// a previous session issued, short of a sustained 1000 sends per second.
// This replaces random-range generation, which risks collisions under
// concurrent senders.
type IDGenerator struct {
	base int64
	ctr  atomic.Int64
}

// NewIDGenerator creates a generator scoped to one sender id.
func NewIDGenerator(userID int64) *IDGenerator {
	g := &IDGenerator{base: userID << counterBits}
	g.ctr.Store(time.Now().UnixMilli() & (1<<counterBits - 1))
	return g
}

// Next returns the next id. Safe for concurrent use.
func (g *IDGenerator) Next() int64 {
	return g.base | (g.ctr.Add(1) & (1<<counterBits - 1))
}
