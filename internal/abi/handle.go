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

// Package abi defines the ABI-stable surface every externally visible
// object (world, snapshot, observation plan, propagator) is addressed
// through: opaque slot+generation handles, a fixed status code table,
// and a packed version number. Only classify.go imports the engine-side
// packages (internal/arena, internal/engine, internal/ingress,
// internal/pipeline), to map their typed errors onto Status codes; the
// package exists so a C-callable layer (or any other out-of-process
// caller) can be built against a surface that never changes shape
// between releases.
package abi

import "fmt"

// Handle is an opaque reference to a slot-table entry: a slot index in
// the low 32 bits and a monotonic generation counter in the high 32,
// packed the same way internal/arena packs a field's physical location
// into a single comparable value. Destroying a handle's slot bumps the
// generation, so a Handle captured before destruction resolves to
// StatusInvalidHandle afterward instead of aliasing whatever later
// reused the slot.
type Handle uint64

// Invalid is the zero Handle; no table ever issues it, since slot 0
// is reserved at construction and never handed out, and every issued
// slot starts at generation 1.
const Invalid Handle = 0

func newHandle(slot uint32, generation uint32) Handle {
	return Handle(uint64(generation)<<32 | uint64(slot))
}

func (h Handle) slot() uint32       { return uint32(h) }
func (h Handle) generation() uint32 { return uint32(h >> 32) }

func (h Handle) String() string {
	return fmt.Sprintf("Handle(slot=%d, gen=%d)", h.slot(), h.generation())
}
