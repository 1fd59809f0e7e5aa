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

package config

import (
	"fmt"

	"github.com/docker/go-units"
	"github.com/shopspring/decimal"
)

// ParseSegmentSizeElements parses a human-readable byte size (e.g.
// "64MB", "16777216") into an element count for arena.Config.SegmentSize,
// which is measured in f32 elements rather than bytes.
func ParseSegmentSizeElements(s string) (uint32, error) {
	bytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid segment_size %q: %w", s, err)
	}
	if bytes%4 != 0 {
		return 0, fmt.Errorf("config: segment_size %q is not a multiple of 4 bytes (f32 element size)", s)
	}
	elements := bytes / 4
	if elements <= 0 || elements > int64(^uint32(0)) {
		return 0, fmt.Errorf("config: segment_size %q out of range", s)
	}
	return uint32(elements), nil
}

// ParseDt parses a decimal text value for dt without the binary-float
// rounding ambiguity a bare strconv.ParseFloat carries for values a user
// typed as an exact decimal (e.g. "0.1").
func ParseDt(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid dt %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseSeed parses a decimal text value for the world's RNG seed into a
// uint64, rejecting negative or non-integral input.
func ParseSeed(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid seed %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("config: seed %q must be an integer", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("config: seed %q must be non-negative", s)
	}
	return d.BigInt().Uint64(), nil
}
