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

package main

import (
	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/config"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/pipeline"
	"github.com/tachyon-beep/murk/internal/space"
)

const densityFieldName = "density"

// demoConfig builds a one-field, one-propagator world: a line of cells
// each holding a scalar "density" that decays a fixed fraction every
// tick. It exists to give the REPL and websocket observer something to
// step and inspect without requiring an operator to hand-assemble a
// WorldConfig from flags.
func demoConfig(cells int, dt, decayRate float64, maxIngressQueue uint32) (config.WorldConfig, ids.FieldId, error) {
	sp, err := space.NewLine1D(cells, space.EdgeClamp)
	if err != nil {
		return config.WorldConfig{}, 0, err
	}

	fields := []ids.FieldDescriptor{
		{
			Name:       densityFieldName,
			Shape:      ids.ShapeClass{Kind: ids.ShapeScalar},
			Mutability: ids.PerTick,
			Units:      "density",
		},
	}
	densityField := ids.FieldId(0)

	propagators := []pipeline.Propagator{
		&decayPropagator{field: densityField, rate: decayRate},
	}

	cfg := config.WorldConfig{
		Space:           sp,
		Fields:          fields,
		Propagators:     propagators,
		Dt:              dt,
		RingBufferSize:  1,
		MaxIngressQueue: maxIngressQueue,
		Arena:           arena.NewConfig(uint32(cells)),
	}
	return cfg, densityField, nil
}

// decayPropagator multiplies every cell's previous-tick density by
// (1 - rate*dt) each tick; a minimal single-field Full-write propagator
// exercising the overlay/frozen split described in internal/pipeline.
type decayPropagator struct {
	field ids.FieldId
	rate  float64
}

func (p *decayPropagator) Name() string                { return "decay" }
func (p *decayPropagator) ReadsCurrent() []ids.FieldId  { return nil }
func (p *decayPropagator) ReadsPrevious() []ids.FieldId { return []ids.FieldId{p.field} }

func (p *decayPropagator) Writes() []pipeline.WriteSpec {
	return []pipeline.WriteSpec{{Field: p.field, Mode: arena.Full}}
}

func (p *decayPropagator) MaxDt() (float64, bool)    { return 0, false }
func (p *decayPropagator) ScratchBytes() (int, bool) { return 0, false }

func (p *decayPropagator) Step(ctx *pipeline.StepContext) error {
	prev, err := ctx.ReadPrevious(p.field)
	if err != nil {
		return err
	}
	guard, err := ctx.Write(p.field)
	if err != nil {
		return err
	}
	defer guard.Close()

	factor := float32(1 - p.rate*ctx.Dt())
	out := guard.AsMutSlice()
	for i, v := range prev {
		out[i] = v * factor
	}
	return nil
}
