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

const (
	// DefaultSegmentSize is 2^24 f32 elements (64 MiB of f32 data).
	DefaultSegmentSize uint32 = 16_777_216
	// DefaultMaxSegments bounds lazy segment growth per pool.
	DefaultMaxSegments uint16 = 16
	// DefaultMaxGenerationAge is the lockstep engine's generation retention window.
	DefaultMaxGenerationAge uint32 = 1
)

// Config configures segment sizing and generation retention for an Arena.
type Config struct {
	SegmentSize      uint32 // power of two, >= 1024
	MaxSegments      uint16
	MaxGenerationAge uint32
	CellCount        uint32
}

// NewConfig returns a Config for cellCount with the documented defaults
// for everything else.
func NewConfig(cellCount uint32) Config {
	return Config{
		SegmentSize:      DefaultSegmentSize,
		MaxSegments:      DefaultMaxSegments,
		MaxGenerationAge: DefaultMaxGenerationAge,
		CellCount:        cellCount,
	}
}

func isPowerOfTwo(v uint32) bool { return v != 0 && v&(v-1) == 0 }

// Validate checks the segment-sizing invariants from the data model.
func (c Config) Validate() error {
	if c.SegmentSize < 1024 || !isPowerOfTwo(c.SegmentSize) {
		return fmt.Errorf("arena: segment_size must be a power of two >= 1024, got %d", c.SegmentSize)
	}
	if c.MaxSegments == 0 {
		return fmt.Errorf("arena: max_segments must be >= 1")
	}
	return nil
}

// SegmentBytes returns the byte size of one segment (f32 = 4 bytes).
func (c Config) SegmentBytes() uint64 {
	return uint64(c.SegmentSize) * 4
}
