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

// Package ids defines the strongly typed identifiers, field descriptors
// and the process-wide space-instance registry shared across the tick
// execution core.
package ids

import "sync/atomic"

// FieldId is a dense nonnegative integer assigned in field registration order.
type FieldId uint32

// TickId is a monotonic nonnegative tick counter; 0 is the initial state.
type TickId uint64

// WorldGenerationId is bumped on every publish and on every reset.
type WorldGenerationId uint64

// ParameterVersion is bumped on any accepted parameter-mutating command.
type ParameterVersion uint64

// ParameterKey identifies a global scalar parameter.
type ParameterKey uint32

// SpaceInstanceId uniquely identifies a live topology object. Distinct
// instances never share an ID, even after destruction (no ABA).
type SpaceInstanceId uint64

var spaceInstanceCounter atomic.Uint64

// NextSpaceInstanceId draws the next value from the process-wide monotonic
// counter. The counter starts at 1; 0 is never issued, so it can serve as
// a "no instance" sentinel.
func NextSpaceInstanceId() SpaceInstanceId {
	return SpaceInstanceId(spaceInstanceCounter.Add(1))
}

// Coord is a cell coordinate, one int32 per dimension, held in an
// ordinary slice.
type Coord []int32

// Mutability classifies how a field's buffer is treated across ticks.
type Mutability uint8

const (
	// Static fields are written only during world construction.
	Static Mutability = iota
	// PerTick fields ping-pong between the two per-tick pools every tick.
	PerTick
	// Sparse fields persist across ticks with copy-on-write semantics.
	Sparse
)

func (m Mutability) String() string {
	switch m {
	case Static:
		return "Static"
	case PerTick:
		return "PerTick"
	case Sparse:
		return "Sparse"
	default:
		return "Mutability(?)"
	}
}

// ShapeKind distinguishes scalar, fixed-vector and categorical fields.
type ShapeKind uint8

const (
	ShapeScalar ShapeKind = iota
	ShapeFixedVector
	ShapeCategorical
)

// ShapeClass describes the per-cell layout of a field: a scalar, a
// fixed-length vector of k components, or a categorical value with k
// possible classes.
type ShapeClass struct {
	Kind       ShapeKind
	Components uint32 // meaning depends on Kind: vector length or class count
}

// NumComponents returns the number of f32 elements per cell for this shape.
func (s ShapeClass) NumComponents() uint32 {
	if s.Kind == ShapeScalar {
		return 1
	}
	return s.Components
}

// BoundaryPolicy controls how out-of-range field values are handled.
type BoundaryPolicy uint8

const (
	BoundaryNone BoundaryPolicy = iota
	BoundaryClamp
	BoundaryReject
)

// Bounds is an optional inclusive value range for a field.
type Bounds struct {
	Lo, Hi float64
	Set    bool
}

// FieldDescriptor is immutable once registered.
type FieldDescriptor struct {
	Name           string
	Shape          ShapeClass
	Mutability     Mutability
	Units          string
	Bounds         Bounds
	BoundaryPolicy BoundaryPolicy
}
