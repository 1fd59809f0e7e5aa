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

// sparseAlloc is a sparse field's current backing range. Refcount is the
// number of live FieldEntries (across generations still held) that
// share this exact range; a count of 1 allows in-place mutation.
type sparseAlloc struct {
	segIdx   uint16
	offset   uint32
	length   uint32
	refcount int32
}

// freedRange is a sparse allocation whose refcount has dropped to zero,
// awaiting promotion to the reusable free list once it has aged past
// the configured max generation age (see Open Questions in DESIGN.md).
type freedRange struct {
	segIdx          uint16
	offset          uint32
	length          uint32
	freedGeneration uint64
}

// sparsePool backs all Sparse-mutability fields. It retains allocations
// across ticks, tracks per-range refcounts for copy-on-write, and
// recycles freed ranges once they have aged out of every live
// generation, bounding steady-state memory under sparse churn.
type sparsePool struct {
	*pool
	freed   []freedRange // freed this generation or still aging
	retired []freedRange // aged out, eligible for immediate reuse
}

func newSparsePool(segmentSize uint32, maxSegments uint16) *sparsePool {
	return &sparsePool{pool: newPool(segmentSize, maxSegments)}
}

// allocRange returns a fresh sparseAlloc with refcount 1, reusing a
// retired range of the exact same length when one is available.
func (p *sparsePool) allocRange(length uint32) (*sparseAlloc, error) {
	for i, r := range p.retired {
		if r.length == length {
			p.retired = append(p.retired[:i], p.retired[i+1:]...)
			return &sparseAlloc{segIdx: r.segIdx, offset: r.offset, length: length, refcount: 1}, nil
		}
	}
	segIdx, offset, err := p.alloc(length)
	if err != nil {
		return nil, err
	}
	return &sparseAlloc{segIdx: segIdx, offset: offset, length: length, refcount: 1}, nil
}

// release decrements alloc's refcount; once it reaches zero the range is
// queued in the freed list, pending promotion to retired.
func (p *sparsePool) release(a *sparseAlloc, currentGeneration uint64) {
	a.refcount--
	if a.refcount <= 0 {
		p.freed = append(p.freed, freedRange{segIdx: a.segIdx, offset: a.offset, length: a.length, freedGeneration: currentGeneration})
	}
}

// promote moves freed ranges that have aged past maxAge generations into
// the retired (reusable) list.
func (p *sparsePool) promote(currentGeneration uint64, maxAge uint32) {
	var stillPending []freedRange
	for _, r := range p.freed {
		if currentGeneration-r.freedGeneration >= uint64(maxAge) {
			p.retired = append(p.retired, r)
		} else {
			stillPending = append(stillPending, r)
		}
	}
	p.freed = stillPending
}

func (p *sparsePool) resolveAlloc(a *sparseAlloc) []float32 {
	return p.resolve(a.segIdx, a.offset, a.length)
}

// retiredCount is the number of ranges available for immediate reuse.
func (p *sparsePool) retiredCount() int { return len(p.retired) }

// pendingRetiredCount is the number of ranges freed but not yet aged
// past maxAge.
func (p *sparsePool) pendingRetiredCount() int { return len(p.freed) }
