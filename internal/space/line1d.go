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

package space

import "github.com/tachyon-beep/murk/internal/ids"

// Line1D is a one-dimensional lattice of n cells, the minimal concrete
// Space backend carried from the original's own propagator test suite.
type Line1D struct {
	n          int
	edge       EdgeBehavior
	instanceID ids.SpaceInstanceId
}

// NewLine1D constructs a 1D lattice of n cells. n must be >= 1.
func NewLine1D(n int, edge EdgeBehavior) (*Line1D, error) {
	if n < 1 {
		return nil, errorf("Line1D: cell count must be >= 1, got %d", n)
	}
	return &Line1D{n: n, edge: edge, instanceID: ids.NextSpaceInstanceId()}, nil
}

func (l *Line1D) NDim() int      { return 1 }
func (l *Line1D) CellCount() int { return l.n }

func (l *Line1D) neighbourIndex(i, delta int) (int, bool) {
	j := i + delta
	switch l.edge {
	case EdgeClamp:
		if j < 0 {
			j = 0
		} else if j >= l.n {
			j = l.n - 1
		}
		return j, true
	case EdgeWrap:
		j = ((j % l.n) + l.n) % l.n
		return j, true
	case EdgeAbsorb:
		if j < 0 || j >= l.n {
			return 0, false
		}
		return j, true
	default:
		return 0, false
	}
}

func (l *Line1D) Neighbours(coord ids.Coord) []ids.Coord {
	if len(coord) != 1 {
		return nil
	}
	i := int(coord[0])
	out := make([]ids.Coord, 0, 2)
	if j, ok := l.neighbourIndex(i, -1); ok {
		out = append(out, ids.Coord{int32(j)})
	}
	if j, ok := l.neighbourIndex(i, 1); ok {
		out = append(out, ids.Coord{int32(j)})
	}
	return out
}

func (l *Line1D) Distance(a, b ids.Coord) float64 {
	if len(a) != 1 || len(b) != 1 {
		return 0
	}
	d := int(a[0]) - int(b[0])
	if d < 0 {
		d = -d
	}
	if l.edge == EdgeWrap && l.n-d < d {
		d = l.n - d
	}
	return float64(d)
}

func (l *Line1D) CompileRegion(spec RegionSpec) (RegionPlan, error) {
	if len(spec.Center) != 1 {
		return RegionPlan{}, errorf("Line1D: region center must be 1D")
	}
	center := int(spec.Center[0])
	lo, hi := center-spec.Radius, center+spec.Radius
	if lo < 0 {
		lo = 0
	}
	if hi >= l.n {
		hi = l.n - 1
	}
	var coords []ids.Coord
	var tensorIdx []int
	for i := lo; i <= hi; i++ {
		coords = append(coords, ids.Coord{int32(i)})
		tensorIdx = append(tensorIdx, i-lo)
	}
	return RegionPlan{Coords: coords, TensorIndices: tensorIdx}, nil
}

func (l *Line1D) IterRegion(plan RegionPlan) []ids.Coord {
	return defaultIterRegion(plan)
}

func (l *Line1D) MapCoordToTensorIndex(coord ids.Coord, plan RegionPlan) int {
	return defaultMapCoordToTensorIndex(coord, plan)
}

func (l *Line1D) CanonicalOrdering() []ids.Coord {
	out := make([]ids.Coord, l.n)
	for i := 0; i < l.n; i++ {
		out[i] = ids.Coord{int32(i)}
	}
	return out
}

func (l *Line1D) CanonicalRank(coord ids.Coord) int {
	if len(coord) != 1 {
		return -1
	}
	i := int(coord[0])
	if i < 0 || i >= l.n {
		return -1
	}
	return i
}

func (l *Line1D) InstanceID() ids.SpaceInstanceId { return l.instanceID }

func (l *Line1D) TopologyEq(other Space) bool {
	o, ok := other.(*Line1D)
	if !ok {
		return false
	}
	return o.n == l.n && o.edge == l.edge
}
