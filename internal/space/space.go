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

// Package space defines the Space capability consumed by the propagator
// pipeline. Concrete topology backends are an external collaborator;
// this package carries the interface plus one minimal backend, Line1D,
// sufficient to compile pipelines and exercise StepContext in tests.
package space

import "github.com/tachyon-beep/murk/internal/ids"

// RegionSpec describes a region query against a Space, prior to compilation.
type RegionSpec struct {
	Center ids.Coord
	Radius int
}

// RegionPlan is a compiled region: resolved coordinates plus their flat
// tensor index assignment, for O(1) lookups during observation export.
type RegionPlan struct {
	Coords        []ids.Coord
	TensorIndices []int
}

// Space is the central spatial abstraction: all propagators and region
// queries flow through it. Implementations must be safe for concurrent
// read access from multiple worlds (worlds never share mutable state).
type Space interface {
	NDim() int
	CellCount() int

	// Neighbours enumerates the neighbours of coord in deterministic,
	// backend-defined order.
	Neighbours(coord ids.Coord) []ids.Coord

	// Distance returns the graph-geodesic distance between two cells.
	Distance(a, b ids.Coord) float64

	CompileRegion(spec RegionSpec) (RegionPlan, error)

	// IterRegion iterates the cells of a compiled region. Line1D walks
	// plan.Coords in order through the package's defaultIterRegion
	// helper; other backends may implement a faster walk of their own.
	IterRegion(plan RegionPlan) []ids.Coord

	// MapCoordToTensorIndex maps a coordinate to its flat tensor index
	// within a compiled region, or -1 if not present.
	MapCoordToTensorIndex(coord ids.Coord, plan RegionPlan) int

	// CanonicalOrdering returns all cells in deterministic canonical
	// order; two calls on the same instance must return the same
	// sequence.
	CanonicalOrdering() []ids.Coord

	// CanonicalRank returns the position of coord in CanonicalOrdering,
	// or -1 if not present.
	CanonicalRank(coord ids.Coord) int

	InstanceID() ids.SpaceInstanceId

	// TopologyEq reports whether other has the same concrete type and
	// identical behavioral parameters (dimensions, edge behavior, etc.).
	TopologyEq(other Space) bool
}

func coordEqual(a, b ids.Coord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// defaultMapCoordToTensorIndex is the linear-search fallback used by
// backends (like Line1D) that do not need a faster path.
func defaultMapCoordToTensorIndex(coord ids.Coord, plan RegionPlan) int {
	for i, c := range plan.Coords {
		if coordEqual(c, coord) {
			return plan.TensorIndices[i]
		}
	}
	return -1
}

func defaultIterRegion(plan RegionPlan) []ids.Coord {
	out := make([]ids.Coord, len(plan.Coords))
	copy(out, plan.Coords)
	return out
}

func defaultCanonicalRank(ordering []ids.Coord, coord ids.Coord) int {
	for i, c := range ordering {
		if coordEqual(c, coord) {
			return i
		}
	}
	return -1
}
