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

package arena

import (
	"fmt"
	"sync/atomic"

	"github.com/tachyon-beep/murk/internal/ids"
)

// TickGuard scopes a single tick's staging generation: built by
// BeginTick, mutated through ReadPublished/ReadStaged/WriteStage, and
// torn down by either Publish (commit) or Abort (rollback).
type TickGuard struct {
	arena     *Arena
	published *descriptorTable
	staging   *descriptorTable
	done      bool
}

// BeginTick advances the live-generation window, reclaims any
// generation aged out of it, resets the per-tick pool slot about to be
// reused, and builds a fresh staging table seeded from the currently
// published generation.
//
// The live-generation-window advance happens here, before the physical
// pool reset, rather than at Publish time: with exactly two ping-pong
// pool slots and MaxGenerationAge pinned to 1, the slot about to be
// reused always belongs to the generation two steps behind the one
// being built, and that generation must already be provably stale
// (oldestLive must already exceed it) before its bytes are clobbered.
// Advancing oldestLive at Publish time instead would leave a window
// where a handle compares as "live" against oldestLive yet already
// points at zeroed memory.
func (a *Arena) BeginTick() (*TickGuard, error) {
	if a.inTick {
		return nil, fmt.Errorf("arena: BeginTick called while a tick is already open")
	}
	newGen := a.generation + 1
	maxAge := uint64(a.cfg.MaxGenerationAge)
	if newGen > maxAge {
		if candidate := newGen - maxAge; candidate > a.oldestLive {
			a.oldestLive = candidate
		}
	}
	a.sparse.promote(newGen, a.cfg.MaxGenerationAge)
	for gen := range a.tables {
		if gen < a.oldestLive {
			a.tryEvict(gen)
		}
	}

	published := a.published()
	stagingPoolIdx := int(newGen % 2)
	a.perTick[stagingPoolIdx].resetAll()

	entries := make([]fieldEntry, len(a.fields))
	for i, fd := range a.fields {
		prev := published.entries[i]
		switch fd.Mutability {
		case ids.Static:
			entries[i] = fieldEntry{Current: prev.Current, Previous: prev.Current}
		case ids.PerTick:
			length := prev.Current.Len
			segIdx, offset, err := a.perTick[stagingPoolIdx].alloc(length)
			if err != nil {
				return nil, err
			}
			dst := a.perTick[stagingPoolIdx].resolve(segIdx, offset, length)
			src, err := a.resolveHandle(prev.Current)
			if err != nil {
				return nil, err
			}
			copy(dst, src)
			h := FieldHandle{Generation: newGen, Offset: offset, Len: length, Location: FieldLocation{Kind: LocationPerTick, SegmentIndex: segIdx}}
			entries[i] = fieldEntry{Current: h, Previous: prev.Current}
		case ids.Sparse:
			sa := prev.sparseAlloc
			atomic.AddInt32(&sa.refcount, 1)
			h := FieldHandle{Generation: newGen, Offset: sa.offset, Len: sa.length, Location: FieldLocation{Kind: LocationSparse, SegmentIndex: sa.segIdx}}
			entries[i] = fieldEntry{Current: h, Previous: prev.Current, sparseAlloc: sa}
		}
	}

	staging := &descriptorTable{generation: newGen, entries: entries}
	a.inTick = true
	a.staging = staging
	return &TickGuard{arena: a, published: published, staging: staging}, nil
}

// ReadPublished returns the currently published (frozen/Jacobi) buffer
// for field, regardless of anything written this tick.
func (g *TickGuard) ReadPublished(field ids.FieldId) ([]float32, error) {
	if int(field) >= len(g.published.entries) {
		return nil, &UnknownFieldError{Field: uint32(field)}
	}
	return g.arena.resolveHandle(g.published.entries[field].Current)
}

// ReadStaged returns the overlay (Euler) buffer for field: whatever has
// accumulated in the staging generation so far this tick, which is the
// previous published value until the first write this tick.
func (g *TickGuard) ReadStaged(field ids.FieldId) ([]float32, error) {
	if int(field) >= len(g.staging.entries) {
		return nil, &UnknownFieldError{Field: uint32(field)}
	}
	return g.arena.resolveHandle(g.staging.entries[field].Current)
}

// WriteStage returns a mutable staging buffer for field. Full mode
// discards whatever is currently staged (the eager incremental copy
// made at BeginTick, or a prior COW) in favour of a freshly allocated,
// zeroed buffer; the caller is expected to cover every cell. Incremental
// mode returns the already-seeded buffer for in-place partial updates.
//
// TODO: Full mode's fresh allocation leaves the eager copy made at
// BeginTick as dead space in the per-tick pool until the pool is next
// reset; threading the pipeline's write-mode declarations back into
// BeginTick would let it skip the eager copy for fields it already
// knows will be Full-written this tick.
func (g *TickGuard) WriteStage(field ids.FieldId, mode WriteMode) ([]float32, error) {
	if int(field) >= len(g.staging.entries) {
		return nil, &UnknownFieldError{Field: uint32(field)}
	}
	fd := g.arena.fields[field]
	entry := &g.staging.entries[field]
	switch fd.Mutability {
	case ids.Static:
		return nil, &NotWritableError{Field: uint32(field)}
	case ids.PerTick:
		if mode == Full && !entry.writtenThis {
			length := entry.Current.Len
			poolIdx := int(g.staging.generation % 2)
			segIdx, offset, err := g.arena.perTick[poolIdx].alloc(length)
			if err != nil {
				return nil, err
			}
			entry.Current = FieldHandle{Generation: g.staging.generation, Offset: offset, Len: length, Location: FieldLocation{Kind: LocationPerTick, SegmentIndex: segIdx}}
		}
		entry.writtenThis = true
		return g.arena.resolveHandle(entry.Current)
	case ids.Sparse:
		sa := entry.sparseAlloc
		if atomic.LoadInt32(&sa.refcount) > 1 {
			newAlloc, err := g.arena.sparse.allocRange(sa.length)
			if err != nil {
				return nil, err
			}
			copy(g.arena.sparse.resolveAlloc(newAlloc), g.arena.sparse.resolveAlloc(sa))
			g.arena.sparse.release(sa, g.staging.generation)
			entry.sparseAlloc = newAlloc
			entry.Current = FieldHandle{Generation: g.staging.generation, Offset: newAlloc.offset, Len: newAlloc.length, Location: FieldLocation{Kind: LocationSparse, SegmentIndex: newAlloc.segIdx}}
		}
		if mode == Full && !entry.writtenThis {
			clear(g.arena.sparse.resolveAlloc(entry.sparseAlloc))
		}
		entry.writtenThis = true
		return g.arena.sparse.resolveAlloc(entry.sparseAlloc), nil
	default:
		return nil, fmt.Errorf("arena: unknown mutability class for field %d", field)
	}
}

// WrittenThisTick reports whether field has been written via WriteStage
// during the current tick; the overlay FieldReader uses this to decide
// between the staged and previous-published buffer.
func (g *TickGuard) WrittenThisTick(field ids.FieldId) bool {
	return g.staging.entries[field].writtenThis
}

// Publish commits the staging generation: it becomes the new published
// generation, visible to new Snapshots and future BeginTick calls.
// Returns a Snapshot holding one reference to the newly published
// generation.
func (g *TickGuard) Publish() (*Snapshot, error) {
	if g.done {
		return nil, fmt.Errorf("arena: Publish called on an already-closed TickGuard")
	}
	a := g.arena
	a.tables[g.staging.generation] = g.staging
	a.publishedPtr.Store(g.staging)
	a.generation = g.staging.generation
	a.inTick = false
	a.staging = nil
	g.done = true
	atomic.AddInt32(&g.staging.snapshotRefcount, 1)
	return &Snapshot{arena: a, table: g.staging}, nil
}

// Abort discards the staging generation without publishing it, undoing
// the sparse refcount increments made at BeginTick (or by any COW that
// happened mid-tick) so the previous published generation's accounting
// stays correct.
func (g *TickGuard) Abort() {
	if g.done {
		return
	}
	a := g.arena
	for i, fd := range a.fields {
		if fd.Mutability == ids.Sparse {
			a.sparse.release(g.staging.entries[i].sparseAlloc, a.generation)
		}
	}
	a.inTick = false
	a.staging = nil
	g.done = true
}
