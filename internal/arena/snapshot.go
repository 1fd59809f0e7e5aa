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
	"sync/atomic"

	"github.com/tachyon-beep/murk/internal/ids"
)

// Snapshot is a reference-counted, read-only view of one published
// generation. Holding a Snapshot keeps that generation's descriptor
// table (and any Sparse allocations it still references) from being
// evicted. It does not hold back the live-generation window: once
// BeginTick has advanced oldestLive past the snapshot's generation,
// ReadField returns StaleHandleError. Callers call Release once for the
// reference Publish handed out, plus once for every Retain.
type Snapshot struct {
	arena    *Arena
	table    *descriptorTable
	retained int32
	released bool
}

// Generation is the WorldGenerationId this snapshot pins.
func (s *Snapshot) Generation() ids.WorldGenerationId {
	return ids.WorldGenerationId(s.table.generation)
}

// ReadField resolves field's buffer as of this snapshot's generation.
func (s *Snapshot) ReadField(field ids.FieldId) ([]float32, error) {
	if int(field) >= len(s.table.entries) {
		return nil, &UnknownFieldError{Field: uint32(field)}
	}
	return s.arena.resolveHandle(s.table.entries[field].Current)
}

// Retain adds one reference, e.g. when handing the snapshot to a second
// consumer that will Release independently.
func (s *Snapshot) Retain() {
	s.retained++
	atomic.AddInt32(&s.table.snapshotRefcount, 1)
}

// Release drops one reference. Once the count reaches zero the
// generation becomes eligible for reclaim at the next BeginTick (or
// immediately, if it has already aged out of the live window).
func (s *Snapshot) Release() {
	if s.retained > 0 {
		s.retained--
	} else if s.released {
		return
	} else {
		s.released = true
	}
	if atomic.AddInt32(&s.table.snapshotRefcount, -1) == 0 && s.table.generation < s.arena.oldestLive {
		s.arena.tryEvict(s.table.generation)
	}
}
