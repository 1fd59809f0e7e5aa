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

// EdgeBehavior controls which cells are considered neighbours of a
// boundary cell. Distinct from a field's BoundaryPolicy, which clamps
// field *values* rather than topology.
type EdgeBehavior uint8

const (
	// EdgeClamp maps an out-of-bounds neighbour to the boundary cell itself.
	EdgeClamp EdgeBehavior = iota
	// EdgeWrap wraps an out-of-bounds neighbour to the opposite side.
	EdgeWrap
	// EdgeAbsorb omits an out-of-bounds neighbour entirely.
	EdgeAbsorb
)
