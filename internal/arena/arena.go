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

// Package arena implements the double-buffered generational arena (C2)
// and the scratch bump allocator (C6): the owner of every per-cell
// numeric buffer, routing reads and writes by field mutability class
// and publishing reference-counted snapshots.
package arena

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tachyon-beep/murk/internal/ids"
)

// Arena owns the per-tick pools (A/B ping-pong), the sparse COW pool,
// and the static side-arena, plus the generation/descriptor-table
// bookkeeping that ties them together.
//
// Physical reuse of a per-tick pool slot is gated on the generation that
// previously occupied it already having aged past MaxGenerationAge (see
// BeginTick): this requires MaxGenerationAge == 1 for the two-pool
// ping-pong scheme to be safe, which New enforces — matching
// spec section 4.5's statement that the lockstep engine always uses
// max_generation_age = 1.
type Arena struct {
	cfg    Config
	fields []ids.FieldDescriptor

	perTick [2]*pool
	sparse  *sparsePool
	static  *staticArena

	mu           sync.Mutex
	publishedPtr atomic.Pointer[descriptorTable]
	tables       map[uint64]*descriptorTable
	generation   uint64
	oldestLive   uint64

	inTick  bool
	staging *descriptorTable

	// Debug gates the FullWriteGuard's per-cell coverage tracking.
	Debug bool
}

// New constructs an Arena for the given field descriptors, sized by cfg.
// Static fields must be populated with WriteStatic before FinishConstruction.
func New(cfg Config, fields []ids.FieldDescriptor) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxGenerationAge != 1 {
		return nil, fmt.Errorf("arena: lockstep per-tick double-buffering requires max_generation_age == 1, got %d", cfg.MaxGenerationAge)
	}
	a := &Arena{
		cfg:    cfg,
		fields: fields,
		sparse: newSparsePool(cfg.SegmentSize, cfg.MaxSegments),
		static: newStaticArena(),
		tables: make(map[uint64]*descriptorTable),
	}
	a.perTick[0] = newPool(cfg.SegmentSize, cfg.MaxSegments)
	a.perTick[1] = newPool(cfg.SegmentSize, cfg.MaxSegments)

	entries := make([]fieldEntry, len(fields))
	for i, fd := range fields {
		length := fd.Shape.NumComponents() * cfg.CellCount
		switch fd.Mutability {
		case ids.Static:
			offset, _ := a.static.alloc(length)
			h := FieldHandle{Generation: 0, Offset: offset, Len: length, Location: FieldLocation{Kind: LocationStatic}}
			entries[i] = fieldEntry{Current: h, Previous: h}
		case ids.PerTick:
			segIdx, offset, err := a.perTick[0].alloc(length)
			if err != nil {
				return nil, err
			}
			h := FieldHandle{Generation: 0, Offset: offset, Len: length, Location: FieldLocation{Kind: LocationPerTick, SegmentIndex: segIdx}}
			entries[i] = fieldEntry{Current: h, Previous: h}
		case ids.Sparse:
			sa, err := a.sparse.allocRange(length)
			if err != nil {
				return nil, err
			}
			h := FieldHandle{Generation: 0, Offset: sa.offset, Len: sa.length, Location: FieldLocation{Kind: LocationSparse, SegmentIndex: sa.segIdx}}
			entries[i] = fieldEntry{Current: h, Previous: h, sparseAlloc: sa}
		}
	}
	table0 := &descriptorTable{generation: 0, entries: entries}
	a.tables[0] = table0
	a.publishedPtr.Store(table0)
	return a, nil
}

// WriteStatic populates a Static field during world construction. Must be
// called before the first BeginTick.
func (a *Arena) WriteStatic(field ids.FieldId, values []float32) error {
	if a.inTick || a.generation != 0 || a.static.constructed {
		return &NotWritableError{Field: uint32(field)}
	}
	if int(field) >= len(a.fields) {
		return &UnknownFieldError{Field: uint32(field)}
	}
	if a.fields[field].Mutability != ids.Static {
		return &NotWritableError{Field: uint32(field)}
	}
	entry := &a.tables[0].entries[field]
	dst := a.static.slice(entry.Current.Offset, entry.Current.Len)
	if len(values) != len(dst) {
		return fmt.Errorf("arena: WriteStatic field %d expects %d values, got %d", field, len(dst), len(values))
	}
	copy(dst, values)
	return nil
}

// FinishConstruction locks the static arena against further mutation.
func (a *Arena) FinishConstruction() {
	a.static.finish()
}

// published returns the currently published generation's descriptor
// table pointer (lock-free read via atomic load).
func (a *Arena) published() *descriptorTable {
	return a.publishedPtr.Load()
}

// CurrentGeneration returns the last published WorldGenerationId.
func (a *Arena) CurrentGeneration() ids.WorldGenerationId {
	return ids.WorldGenerationId(a.generation)
}

// OldestLive returns the oldest generation still guaranteed resolvable.
func (a *Arena) OldestLive() ids.WorldGenerationId {
	return ids.WorldGenerationId(a.oldestLive)
}

func (a *Arena) resolveHandle(h FieldHandle) ([]float32, error) {
	if h.Generation < a.oldestLive {
		return nil, &StaleHandleError{HandleGeneration: h.Generation, OldestLive: a.oldestLive}
	}
	switch h.Location.Kind {
	case LocationStatic:
		return a.static.slice(h.Offset, h.Len), nil
	case LocationPerTick:
		poolIdx := int(h.Generation % 2)
		return a.perTick[poolIdx].resolve(h.Location.SegmentIndex, h.Offset, h.Len), nil
	case LocationSparse:
		return a.sparse.resolve(h.Location.SegmentIndex, h.Offset, h.Len), nil
	default:
		return nil, fmt.Errorf("arena: unknown field location kind %v", h.Location.Kind)
	}
}

// Resolve performs O(1) pool+segment+offset arithmetic to recover the
// slice a handle refers to. It never heap-allocates.
func (a *Arena) Resolve(h FieldHandle) ([]float32, error) {
	return a.resolveHandle(h)
}

// tryEvict removes gen's table once nothing still references it: no
// outstanding Snapshot refcount. Sparse allocations it referenced are
// released to the sparse pool's freed list. Safe to call repeatedly;
// a still-referenced generation is left for a later retry.
func (a *Arena) tryEvict(gen uint64) {
	table, ok := a.tables[gen]
	if !ok {
		return
	}
	if atomic.LoadInt32(&table.snapshotRefcount) != 0 {
		return
	}
	for i, fd := range a.fields {
		if fd.Mutability == ids.Sparse {
			a.sparse.release(table.entries[i].sparseAlloc, a.generation)
		}
	}
	delete(a.tables, gen)
}

// MemoryBytes sums the current byte footprint of every pool.
func (a *Arena) MemoryBytes() uint64 {
	return a.perTick[0].memoryBytes() + a.perTick[1].memoryBytes() + a.sparse.memoryBytes() + a.static.memoryBytes()
}

// SparseRetiredRanges is the number of sparse ranges eligible for reuse.
func (a *Arena) SparseRetiredRanges() int { return a.sparse.retiredCount() }

// SparsePendingRetired is the number of sparse ranges freed this
// generation but not yet aged past MaxGenerationAge.
func (a *Arena) SparsePendingRetired() int { return a.sparse.pendingRetiredCount() }
