/*
Copyright (C) 2026  The murk authors

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package ingress

import (
	"sync"

	"github.com/google/btree"

	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/space"
)

// degree is the btree.NewG branching factor, matched to the teacher's
// storage/index.go delta-btree sizing.
const degree = 32

// Queue is the ingress command queue: bounded capacity, deterministic
// total ordering by the composite (priority_class, source_id, source_seq,
// arrival_seq) key, drained once per tick by the engine.
//
// submit takes a short mutex since external callers may submit from any
// goroutine between ticks; drain is called only by the engine and
// assumes exclusive access (spec.md section 4.5's suspension-point note).
type Queue struct {
	mu sync.Mutex

	tree       *btree.BTreeG[Command]
	arrivalSeq uint64
	size       int

	capacity        int
	maxPayloadBytes int
	fields          *ids.Registry
	knownParams     map[ids.ParameterKey]bool
	space           space.Space // nil if no coordinate-bearing commands are expected
}

// NewQueue constructs an empty queue. knownParams may be nil if no
// SetParameter/SetParameterBatch commands are expected; sp may be nil if
// no SetField commands are expected.
func NewQueue(capacity, maxPayloadBytes int, fields *ids.Registry, knownParams map[ids.ParameterKey]bool, sp space.Space) *Queue {
	return &Queue{
		tree:            btree.NewG[Command](degree, lessCommand),
		capacity:        capacity,
		maxPayloadBytes: maxPayloadBytes,
		fields:          fields,
		knownParams:     knownParams,
		space:           sp,
	}
}

// Len returns the number of commands currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Capacity returns the queue's configured bounded capacity.
func (q *Queue) Capacity() int { return q.capacity }

// MaxPayloadBytes returns the configured payload size ceiling (0 means
// unbounded).
func (q *Queue) MaxPayloadBytes() int { return q.maxPayloadBytes }

// KnownParams returns the parameter-key allowlist this queue validates
// SetParameter/SetParameterBatch commands against (nil means any key
// is accepted).
func (q *Queue) KnownParams() map[ids.ParameterKey]bool { return q.knownParams }

func payloadSize(p CommandPayload) (int, bool) {
	if b, ok := p.Data.([]byte); ok {
		return len(b), true
	}
	return 0, false
}

func (q *Queue) validate(cmd Command) error {
	p := cmd.Payload
	if size, applicable := payloadSize(p); applicable && q.maxPayloadBytes > 0 && size > q.maxPayloadBytes {
		return payloadTooLargeError(size, q.maxPayloadBytes)
	}
	switch p.Kind {
	case SetParameter:
		if q.knownParams != nil && !q.knownParams[p.ParameterKey] {
			return unknownParameterError(uint32(p.ParameterKey))
		}
	case SetParameterBatch:
		if len(p.ParameterPairs) == 0 {
			return emptyBatchError()
		}
		if q.knownParams != nil {
			for _, pair := range p.ParameterPairs {
				if !q.knownParams[pair.Key] {
					return unknownParameterError(uint32(pair.Key))
				}
			}
		}
	case SetField:
		desc, ok := q.fields.Descriptor(p.Field)
		if !ok {
			return unknownFieldError(int(p.Field))
		}
		if desc.Mutability != ids.Sparse {
			return notSparseError(int(p.Field))
		}
		if q.space != nil {
			if len(p.Coord) != q.space.NDim() {
				return coordArityError(len(p.Coord), q.space.NDim())
			}
			if q.space.CanonicalRank(p.Coord) < 0 {
				return coordOutOfBoundsError()
			}
		}
	case Move, Spawn, Despawn, Custom:
		// Opaque to the queue; the registered handler is responsible for
		// its own semantic validation when the engine dispatches it.
	}
	return nil
}

// Submit validates and admits each command in batch, assigning
// ArrivalSeq to accepted ones. The returned receipt slice is indexed to
// match batch.
func (q *Queue) Submit(batch []Command) []Receipt {
	q.mu.Lock()
	defer q.mu.Unlock()

	receipts := make([]Receipt, len(batch))
	for i, cmd := range batch {
		if q.size >= q.capacity {
			receipts[i] = Receipt{CommandIndex: i, Status: QueueFull}
			continue
		}
		if err := q.validate(cmd); err != nil {
			receipts[i] = Receipt{CommandIndex: i, Status: Rejected, Reason: err.Error()}
			continue
		}
		q.arrivalSeq++
		cmd.ArrivalSeq = q.arrivalSeq
		q.tree.ReplaceOrInsert(cmd)
		q.size++
		receipts[i] = Receipt{CommandIndex: i, Status: Accepted, ArrivalSeq: cmd.ArrivalSeq}
	}
	return receipts
}

// DrainResult is everything Drain needs to report: the commands to
// apply this tick, in deterministic order, and the arrival sequences of
// any commands discarded for having expired.
type DrainResult struct {
	Commands    []Command
	ExpiredSeqs []uint64
}

// Drain removes every queued command, returning the live ones
// (expires_after_tick >= tickID) in the composite total order, and
// reporting the arrival sequences of commands discarded as expired.
func (q *Queue) Drain(tickID ids.TickId) DrainResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	var result DrainResult
	q.tree.Ascend(func(cmd Command) bool {
		if cmd.ExpiresAfterTick < tickID {
			result.ExpiredSeqs = append(result.ExpiredSeqs, cmd.ArrivalSeq)
		} else {
			result.Commands = append(result.Commands, cmd)
		}
		return true
	})
	q.tree.Clear(false)
	q.size = 0
	return result
}
