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

// segment is a fixed-size, zero-initialized contiguous allocation owned
// by exactly one pool. A bump cursor hands out sub-ranges; reset()
// rewinds the cursor and clears the backing storage for reuse.
type segment struct {
	data   []float32
	cursor uint32
}

func newSegment(size uint32) *segment {
	return &segment{data: make([]float32, size)}
}

// alloc hands out n contiguous elements, or fails if the segment has
// insufficient remaining space.
func (s *segment) alloc(n uint32) (offset uint32, ok bool) {
	if uint64(s.cursor)+uint64(n) > uint64(len(s.data)) {
		return 0, false
	}
	offset = s.cursor
	s.cursor += n
	return offset, true
}

func (s *segment) reset() {
	clear(s.data)
	s.cursor = 0
}

func (s *segment) slice(offset, n uint32) []float32 {
	return s.data[offset : offset+n]
}

// pool is the shared lazy-growth segment-list behavior for the per-tick
// and sparse pools: allocate into the last segment, else grow a new one
// up to the configured cap.
type pool struct {
	segments    []*segment
	segmentSize uint32
	maxSegments uint16
}

func newPool(segmentSize uint32, maxSegments uint16) *pool {
	return &pool{segmentSize: segmentSize, maxSegments: maxSegments}
}

func (p *pool) alloc(n uint32) (segIdx uint16, offset uint32, err error) {
	if n > p.segmentSize {
		return 0, 0, &CapacityExceededError{Requested: uint64(n), Capacity: uint64(p.segmentSize)}
	}
	if len(p.segments) > 0 {
		last := p.segments[len(p.segments)-1]
		if off, ok := last.alloc(n); ok {
			return uint16(len(p.segments) - 1), off, nil
		}
	}
	if uint16(len(p.segments)) >= p.maxSegments {
		return 0, 0, &CapacityExceededError{
			Requested: uint64(n),
			Capacity:  uint64(p.maxSegments) * uint64(p.segmentSize),
		}
	}
	seg := newSegment(p.segmentSize)
	p.segments = append(p.segments, seg)
	off, _ := seg.alloc(n)
	return uint16(len(p.segments) - 1), off, nil
}

func (p *pool) resolve(segIdx uint16, offset, n uint32) []float32 {
	return p.segments[segIdx].slice(offset, n)
}

func (p *pool) resetAll() {
	for _, s := range p.segments {
		s.reset()
	}
}

func (p *pool) memoryBytes() uint64 {
	return uint64(len(p.segments)) * uint64(p.segmentSize) * 4
}
