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

package engine

import (
	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
	"github.com/tachyon-beep/murk/internal/space"
)

// HandlerContext is handed to a registered Move/Spawn/Despawn/Custom
// handler: the open staging guard for direct field writes, the active
// Space, and the tick about to be published.
type HandlerContext struct {
	Guard *arena.TickGuard
	Space space.Space
	Tick  ids.TickId
}

// Handler applies one opaque ingress command's effect against ctx. A
// returned error aborts the whole tick (spec section 4.5's
// propagator/arena error path: rollback, no generation bump,
// consecutive-failure counter incremented).
type Handler func(ctx HandlerContext, cmd ingress.Command) error

// Handlers is the set of per-kind dispatch functions an Engine is
// constructed with. There are no defaults: spec.md's open question on
// Move/Spawn/Despawn handlers is decided as always requiring explicit
// registration; a drained command of a kind with a nil handler fails
// the tick with a PolicyError rather than being silently dropped.
type Handlers struct {
	Move    Handler
	Spawn   Handler
	Despawn Handler
	Custom  Handler
}

func (h Handlers) forKind(kind ingress.PayloadKind) Handler {
	switch kind {
	case ingress.Move:
		return h.Move
	case ingress.Spawn:
		return h.Spawn
	case ingress.Despawn:
		return h.Despawn
	case ingress.Custom:
		return h.Custom
	default:
		return nil
	}
}

// dispatch applies every drained command against guard, in the order
// Drain returned them (the composite total order from spec section
// 4.3). SetParameter/SetParameterBatch mutate the engine's parameter
// table; SetField writes a single scalar Sparse-field cell by canonical
// rank; Move/Spawn/Despawn/Custom dispatch to the registered Handler.
// ParameterVersion is bumped at most once per dispatch call, after the
// loop, if the drained batch contained at least one parameter-mutating
// command (spec section 4.3) — not once per such command, so two
// SetParameter commands landing in the same tick's batch do not
// double-bump it. The first error aborts dispatch entirely — the
// caller is responsible for rolling back the guard.
func (e *Engine) dispatch(guard *arena.TickGuard, commands []ingress.Command, tick ids.TickId) error {
	hctx := HandlerContext{Guard: guard, Space: e.sp, Tick: tick}
	sawParameterCommand := false
	for _, cmd := range commands {
		p := cmd.Payload
		switch p.Kind {
		case ingress.SetParameter:
			e.parameters[p.ParameterKey] = p.ParameterValue
			sawParameterCommand = true
		case ingress.SetParameterBatch:
			for _, pair := range p.ParameterPairs {
				e.parameters[pair.Key] = pair.Value
			}
			sawParameterCommand = true
		case ingress.SetField:
			if err := e.applySetField(guard, p); err != nil {
				return err
			}
		default:
			handler := e.handlers.forKind(p.Kind)
			if handler == nil {
				return &PolicyError{Kind: p.Kind}
			}
			if err := handler(hctx, cmd); err != nil {
				return err
			}
		}
	}
	if sawParameterCommand {
		e.paramVersion++
	}
	return nil
}

func (e *Engine) applySetField(guard *arena.TickGuard, p ingress.CommandPayload) error {
	fd, ok := e.fields.Descriptor(p.Field)
	if !ok {
		return &PolicyError{Kind: ingress.SetField}
	}
	if fd.Shape.NumComponents() != 1 {
		return &PolicyError{Kind: ingress.SetField}
	}
	buf, err := guard.WriteStage(p.Field, arena.Incremental)
	if err != nil {
		return err
	}
	rank := e.sp.CanonicalRank(p.Coord)
	if rank < 0 || rank >= len(buf) {
		return &PolicyError{Kind: ingress.SetField}
	}
	buf[rank] = float32(p.Value)
	return nil
}

// Parameter returns the current value of a global scalar parameter and
// whether it has ever been set.
func (e *Engine) Parameter(key ids.ParameterKey) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.parameters[key]
	return v, ok
}

// ParameterVersion returns the version bumped once per drained batch
// that contains at least one parameter-mutating command, and on every
// Reset.
func (e *Engine) ParameterVersion() ids.ParameterVersion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paramVersion
}
