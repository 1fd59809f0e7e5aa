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

package ids

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// ValidationError reports a single field-descriptor validation failure,
// identified by the offending field's position in the registration list.
type ValidationError struct {
	Index  int
	Name   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %d (%q): %s", e.Index, e.Name, e.Reason)
}

// Registry assigns FieldIds in registration order and enforces the
// invariants from the data model: non-empty unique names, vector/
// categorical component counts >= 1, and lo <= hi bounds.
type Registry struct {
	descriptors []FieldDescriptor
	byName      map[string]FieldId
}

// NewRegistry builds a Registry from an ordered descriptor list,
// validating every entry. Names are NFC-normalized before the
// uniqueness check so visually identical names expressed with different
// Unicode combining sequences are correctly rejected as duplicates.
func NewRegistry(descriptors []FieldDescriptor) (*Registry, error) {
	r := &Registry{
		descriptors: make([]FieldDescriptor, len(descriptors)),
		byName:      make(map[string]FieldId, len(descriptors)),
	}
	for i, d := range descriptors {
		if d.Name == "" {
			return nil, &ValidationError{Index: i, Name: d.Name, Reason: "field name must not be empty"}
		}
		normalized := norm.NFC.String(d.Name)
		if _, exists := r.byName[normalized]; exists {
			return nil, &ValidationError{Index: i, Name: d.Name, Reason: "duplicate field name"}
		}
		if d.Shape.Kind != ShapeScalar && d.Shape.Components < 1 {
			return nil, &ValidationError{Index: i, Name: d.Name, Reason: "vector/categorical component count must be >= 1"}
		}
		if d.Bounds.Set && d.Bounds.Lo > d.Bounds.Hi {
			return nil, &ValidationError{Index: i, Name: d.Name, Reason: "bounds.lo must be <= bounds.hi"}
		}
		d.Name = normalized
		r.descriptors[i] = d
		r.byName[normalized] = FieldId(i)
	}
	return r, nil
}

// Len returns the number of registered fields.
func (r *Registry) Len() int { return len(r.descriptors) }

// Descriptor returns the descriptor for id, and whether it is registered.
func (r *Registry) Descriptor(id FieldId) (FieldDescriptor, bool) {
	if int(id) >= len(r.descriptors) {
		return FieldDescriptor{}, false
	}
	return r.descriptors[id], true
}

// Lookup resolves a field name (NFC-normalized) to its FieldId.
func (r *Registry) Lookup(name string) (FieldId, bool) {
	id, ok := r.byName[norm.NFC.String(name)]
	return id, ok
}

// All returns every registered descriptor in FieldId order.
func (r *Registry) All() []FieldDescriptor {
	return r.descriptors
}
