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
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/engine"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
)

// demoParams are the scalar knobs a config-directory reload can change.
// Space topology and the propagator list are fixed for the lifetime of
// the process; only these feed the *next* reset, matching
// internal/config's "a reload never mutates a live world in place"
// contract.
type demoParams struct {
	Cells           int
	Dt              float64
	DecayRate       float64
	MaxIngressQueue uint32
}

// app owns the demo engine and everything the REPL and websocket
// observer touch. A single mutex serializes REPL commands, reload
// application, and observer broadcasts against each other; it does not
// serialize against the engine's own internal Step/Reset locking, which
// remains the engine's job.
type app struct {
	mu sync.Mutex

	runID  uuid.UUID
	params demoParams
	field  ids.FieldId
	eng    *engine.Engine
	latest *arena.Snapshot // retained reference to the last published snapshot

	pending *demoParams // set by the config-dir watcher, consumed by reset
	hub     *observerHub
}

func newApp(params demoParams) (*app, error) {
	cfg, field, err := demoConfig(params.Cells, params.Dt, params.DecayRate, params.MaxIngressQueue)
	if err != nil {
		return nil, err
	}
	eng, err := engine.New(cfg, nil, engine.Handlers{}, 8)
	if err != nil {
		return nil, err
	}
	return &app{
		runID:  newRunID(),
		params: params,
		field:  field,
		eng:    eng,
		hub:    newObserverHub(),
	}, nil
}

func (a *app) state() engine.State { return a.eng.State() }
func (a *app) tickID() ids.TickId  { return a.eng.TickID() }

func (a *app) currentParams() demoParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.params
}

func (a *app) step() (engine.StepResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.eng.Step(nil)
	if err != nil {
		return engine.StepResult{}, err
	}
	if a.latest != nil {
		a.latest.Release()
	}
	// app takes sole ownership of this tick's one Snapshot reference;
	// callers of step() use only result.Metrics/result.Receipts.
	a.latest = result.Snapshot
	a.hub.broadcastTick(a.eng.TickID(), result)
	return result, nil
}

func (a *app) submit(cmd ingress.Command) ingress.Receipt {
	a.mu.Lock()
	defer a.mu.Unlock()

	receipts := a.eng.Queue().Submit([]ingress.Command{cmd})
	return receipts[0]
}

func (a *app) readDensity() ([]float32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.latest == nil {
		return nil, fmt.Errorf("murkctl: no snapshot available until after the first step")
	}
	return a.latest.ReadField(a.field)
}

// applyPending installs a config-dir reload for the *next* reset only;
// it never touches the currently running engine.
func (a *app) applyPending(p demoParams) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending = &p
}

func (a *app) reset(seed uint64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.latest != nil {
		a.latest.Release()
		a.latest = nil
	}

	if a.pending != nil {
		cfg, field, err := demoConfig(a.pending.Cells, a.pending.Dt, a.pending.DecayRate, a.pending.MaxIngressQueue)
		if err != nil {
			return err
		}
		eng, err := engine.New(cfg, nil, engine.Handlers{}, 8)
		if err != nil {
			return err
		}
		a.params = *a.pending
		a.field = field
		a.eng = eng
		a.pending = nil
		return nil
	}
	return a.eng.Reset(seed)
}

func (a *app) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.latest != nil {
		a.latest.Release()
		a.latest = nil
	}
}
