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

// Package config carries the world configuration object (section 6):
// the options a caller supplies when constructing a world, plus the
// human-readable parsers used to turn config-file text into the
// engine's native numeric types.
package config

import (
	"fmt"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/pipeline"
	"github.com/tachyon-beep/murk/internal/space"
)

// BackoffConfig is an inert, validated-but-unused placeholder for the
// realtime-async wrapper's scheduling backoff policy. The lockstep
// engine never consults it; it exists so a future realtime wrapper has
// a documented configuration home, matching murk-engine/src/lib.rs's
// public re-export list in the original source.
type BackoffConfig struct {
	MinBackoff float64
	MaxBackoff float64
}

// Validate checks BackoffConfig's internal ordering even though nothing
// reads it yet.
func (b BackoffConfig) Validate() error {
	if b.MinBackoff < 0 || b.MaxBackoff < b.MinBackoff {
		return fmt.Errorf("config: backoff.min_backoff must be >= 0 and <= max_backoff")
	}
	return nil
}

// WorldConfig is the full set of options recognised at world
// construction (spec.md section 6).
type WorldConfig struct {
	Space           space.Space
	Fields          []ids.FieldDescriptor
	Propagators     []pipeline.Propagator
	Dt              float64
	Seed            uint64
	RingBufferSize  uint32
	MaxIngressQueue uint32
	TickRateHz      *float64 // realtime wrapper only; nil for lockstep
	Arena           arena.Config
	Backoff         BackoffConfig
}

// Validate checks the invariants from the data model and section 6: a
// positive dt, a ring buffer of at least 1 (1 for lockstep), a positive
// ingress capacity, a configured space, and a valid arena config.
func (c WorldConfig) Validate() error {
	if c.Space == nil {
		return fmt.Errorf("config: space is required")
	}
	if c.Dt <= 0 {
		return fmt.Errorf("config: dt must be > 0, got %v", c.Dt)
	}
	if c.RingBufferSize < 1 {
		return fmt.Errorf("config: ring_buffer_size must be >= 1, got %d", c.RingBufferSize)
	}
	if c.MaxIngressQueue < 1 {
		return fmt.Errorf("config: max_ingress_queue must be >= 1, got %d", c.MaxIngressQueue)
	}
	if c.TickRateHz != nil && *c.TickRateHz <= 0 {
		return fmt.Errorf("config: tick_rate_hz must be > 0 when set, got %v", *c.TickRateHz)
	}
	if err := c.Arena.Validate(); err != nil {
		return err
	}
	if err := c.Backoff.Validate(); err != nil {
		return err
	}
	return nil
}
