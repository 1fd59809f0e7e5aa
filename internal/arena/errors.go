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

import "fmt"

// CapacityExceededError is returned when a segment pool cannot satisfy
// an allocation within its configured cap.
type CapacityExceededError struct {
	Requested uint64
	Capacity  uint64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("arena: capacity exceeded: requested %d, capacity %d", e.Requested, e.Capacity)
}

// StaleHandleError is returned when resolving a handle or field older
// than the oldest live generation.
type StaleHandleError struct {
	HandleGeneration uint64
	OldestLive       uint64
}

func (e *StaleHandleError) Error() string {
	return fmt.Sprintf("arena: stale handle: generation %d, oldest live %d", e.HandleGeneration, e.OldestLive)
}

// UnknownFieldError is returned when a FieldId has no registered entry.
type UnknownFieldError struct {
	Field uint32
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("arena: unknown field %d", e.Field)
}

// NotWritableError is returned for writes to a Static field post-construction.
type NotWritableError struct {
	Field uint32
}

func (e *NotWritableError) Error() string {
	return fmt.Sprintf("arena: field %d is not writable", e.Field)
}
