// Package snowflake generates 64-bit time-ordered identifiers composed of
// a millisecond timestamp, a machine id and a per-millisecond sequence.
//
// Ids are strictly unique within a process and across machines that share
// the same epoch, provided machine ids are distinct. Uniqueness is not
// guaranteed across a wall-clock rollback.
package snowflake

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	// Epoch is the custom epoch (2023-11-14T22:13:20Z) all timestamps
	// are relative to. Changing it invalidates previously issued ids.
	Epoch = int64(1700000000000)

	machineIDBits = 10
	sequenceBits  = 12

	// MaxMachineID is the largest allowed machine id (inclusive).
	MaxMachineID = int64(1)<<machineIDBits - 1

	maxSequence = int64(1)<<sequenceBits - 1
)

// Generator issues snowflake ids. It is safe for concurrent use.
type Generator struct {
	machineID int64

	// last packs the most recent issuance as lastMillis<<sequenceBits | sequence.
	// A single CAS on this word keeps (timestamp, sequence) pairs unique
	// under concurrent callers.
	last atomic.Int64

	// now is swappable in tests.
	now func() int64
}

// New returns a Generator for the given machine id.
// It fails if machineID is outside [0, MaxMachineID].
func New(machineID int64) (*Generator, error) {
	if machineID < 0 || machineID > MaxMachineID {
		return nil, fmt.Errorf("machine id %d out of range [0, %d]", machineID, MaxMachineID)
	}

	g := &Generator{
		machineID: machineID,
		now:       func() int64 { return time.Now().UnixMilli() },
	}
	g.last.Store(-1)

	return g, nil
}

// NextID returns the next id. Within one process ids are monotonically
// non-decreasing for a non-decreasing wall clock. If the per-millisecond
// sequence overflows, NextID busy-waits for the next millisecond.
func (g *Generator) NextID() int64 {
	for {
		now := g.now()
		old := g.last.Load()

		lastMillis := old >> sequenceBits
		seq := old & maxSequence

		var newSeq int64
		if now == lastMillis {
			newSeq = seq + 1
			if newSeq > maxSequence {
				// sequence exhausted for this millisecond
				for now = g.now(); now <= lastMillis; now = g.now() {
				}
				newSeq = 0
			}
		} else {
			newSeq = 0
		}

		next := now<<sequenceBits | newSeq

		if g.last.CompareAndSwap(old, next) {
			return (now-Epoch)<<(machineIDBits+sequenceBits) |
				g.machineID<<sequenceBits |
				newSeq
		}
	}
}
