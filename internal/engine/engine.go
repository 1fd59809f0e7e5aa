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

// Package engine implements the tick engine (C5): the Idle/Ticking/
// Disabled state machine, its step/reset operations, and dispatch of
// drained ingress commands into the arena ahead of the propagator
// pipeline. It is the orchestration point wiring internal/arena,
// internal/ingress, internal/pipeline and internal/config together.
package engine

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/jtolds/gls"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/config"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
	"github.com/tachyon-beep/murk/internal/pipeline"
	"github.com/tachyon-beep/murk/internal/space"
)

// State is one of the three tick-engine states (spec section 4.5).
type State uint8

const (
	Idle State = iota
	Ticking
	Disabled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Ticking:
		return "Ticking"
	case Disabled:
		return "Disabled"
	default:
		return "State(?)"
	}
}

// glsMgr tags the goroutine currently executing a Step or Reset call
// with the owning Engine's id, for the sole purpose of catching
// reentrancy: spec section 5 states there are no suspension points
// inside a tick, so a propagator or registered Handler that (directly
// or indirectly) calls back into Step or Reset on the same call stack
// is a correctness violation, not a legitimate nested operation.
// assertNotReentrant checks the marker BEFORE SetValues installs this
// call's own, so it only ever fires on genuine reentrancy, never on
// the call that is setting it.
var glsMgr = gls.NewContextManager()

const glsWorldKey = "murk-engine-world"

// Engine owns one world's arena, ingress queue, compiled pipeline and
// tick state machine. Engine is not safe for concurrent Step/Reset
// calls from multiple goroutines; exactly one goroutine drives a given
// world's ticks at a time (spec section 5).
type Engine struct {
	mu sync.Mutex

	id           uint64
	fields       *ids.Registry
	sp           space.Space
	arenaCfg     arena.Config
	dt           float64
	staticValues map[ids.FieldId][]float32
	handlers     Handlers
	threshold    uint32

	a  *arena.Arena
	pl *pipeline.Pipeline
	q  *ingress.Queue

	state               State
	consecutiveFailures uint32
	tickID              ids.TickId
	worldGen            ids.WorldGenerationId
	paramVersion        ids.ParameterVersion
	parameters          map[ids.ParameterKey]float64
	latest              *arena.Snapshot
	lastMetrics         StepMetrics
}

var engineCounter uint64

// New constructs an Engine for cfg, applying staticValues to the
// underlying arena's Static fields before construction finishes.
// handlers registers the opaque-to-the-queue Move/Spawn/Despawn/Custom
// dispatch functions; failureThreshold is the consecutive-failure count
// (spec section 4.5) after which the engine transitions to Disabled.
func New(cfg config.WorldConfig, staticValues map[ids.FieldId][]float32, handlers Handlers, failureThreshold uint32) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fields, err := ids.NewRegistry(cfg.Fields)
	if err != nil {
		return nil, err
	}
	pl, err := pipeline.Compile(cfg.Propagators, fields)
	if err != nil {
		return nil, err
	}
	if cfg.Dt > pl.DtCap() {
		return nil, &DtOutOfRangeError{Dt: cfg.Dt, DtCap: pl.DtCap()}
	}
	engineCounter++
	e := &Engine{
		id:           engineCounter,
		fields:       fields,
		sp:           cfg.Space,
		arenaCfg:     cfg.Arena,
		dt:           cfg.Dt,
		staticValues: staticValues,
		handlers:     handlers,
		threshold:    failureThreshold,
		pl:           pl,
		parameters:   make(map[ids.ParameterKey]float64),
	}
	a, err := buildArena(cfg.Arena, fields.All(), staticValues)
	if err != nil {
		return nil, err
	}
	e.a = a
	e.q = ingress.NewQueue(int(cfg.MaxIngressQueue), 0, fields, nil, cfg.Space)
	e.state = Idle
	return e, nil
}

func buildArena(cfg arena.Config, fields []ids.FieldDescriptor, staticValues map[ids.FieldId][]float32) (*arena.Arena, error) {
	a, err := arena.New(cfg, fields)
	if err != nil {
		return nil, err
	}
	for field, values := range staticValues {
		if err := a.WriteStatic(field, values); err != nil {
			return nil, err
		}
	}
	a.FinishConstruction()
	return a, nil
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// TickID returns the last successfully published TickId (0 before any
// successful step, or immediately after Reset).
func (e *Engine) TickID() ids.TickId {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickID
}

// Queue exposes the ingress queue for Submit calls between ticks.
func (e *Engine) Queue() *ingress.Queue { return e.q }

// LastMetrics returns the metrics from the most recent successful Step
// call; a failed Step leaves them unchanged.
func (e *Engine) LastMetrics() StepMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastMetrics
}

// assertNotReentrant panics if this goroutine's call stack is already
// inside a Step or Reset call (for this Engine or any other), which
// can only happen if a propagator or registered Handler called back
// into the engine instead of returning control to the pipeline —
// exactly the suspension point spec section 5 says a tick never has.
func (e *Engine) assertNotReentrant() {
	if v, ok := glsMgr.GetValue(glsWorldKey); ok {
		panic(fmt.Sprintf("murk: engine %d re-entered Step/Reset from within engine %d's call stack — no suspension points exist inside a tick", e.id, v))
	}
}

// Step drains the ingress queue, dispatches every live command, runs
// the compiled pipeline once, and publishes the result. On any
// dispatch or propagator error the staging generation is rolled back,
// the published generation is left unchanged, and the consecutive-
// failure counter is incremented; once it exceeds threshold the engine
// transitions to Disabled and further Step calls are rejected until
// Reset.
func (e *Engine) Step(batch []ingress.Command) (StepResult, error) {
	e.assertNotReentrant()
	var result StepResult
	var stepErr error
	glsMgr.SetValues(gls.Values{glsWorldKey: e.id}, func() {
		result, stepErr = e.step(batch)
	})
	return result, stepErr
}

// StepResult is what a successful Step returns: the newly published
// Snapshot (one reference, owned by the caller — Release it when done)
// and this tick's metrics.
type StepResult struct {
	Snapshot *arena.Snapshot
	Metrics  StepMetrics
	Receipts []ingress.Receipt
}

func (e *Engine) step(batch []ingress.Command) (result StepResult, stepErr error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == Disabled {
		return StepResult{}, &DisabledError{ConsecutiveFailures: e.consecutiveFailures, Threshold: e.threshold}
	}
	e.state = Ticking

	var guard *arena.TickGuard
	defer func() {
		if r := recover(); r != nil {
			if guard != nil {
				guard.Abort()
			}
			stepErr = &PropagatorPanicError{Recovered: r, Stack: string(debug.Stack())}
			e.onFailure()
		}
	}()

	tStart := time.Now()
	receipts := e.q.Submit(batch)
	nextTick := e.tickID + 1

	guard, err := e.a.BeginTick()
	if err != nil {
		e.onFailure()
		return StepResult{}, err
	}

	cmdStart := time.Now()
	drained := e.q.Drain(nextTick)
	if err := e.dispatch(guard, drained.Commands, nextTick); err != nil {
		guard.Abort()
		e.onFailure()
		return StepResult{}, err
	}
	commandUs := uint64(time.Since(cmdStart).Microseconds())

	timings, err := e.pl.ExecuteTimed(guard, e.sp, nextTick, e.dt)
	if err != nil {
		guard.Abort()
		e.onFailure()
		return StepResult{}, err
	}

	publishStart := time.Now()
	snap, err := guard.Publish()
	if err != nil {
		e.onFailure()
		return StepResult{}, err
	}
	publishUs := uint64(time.Since(publishStart).Microseconds())

	e.tickID = nextTick
	e.worldGen = snap.Generation()
	e.consecutiveFailures = 0
	e.state = Idle
	if e.latest != nil {
		e.latest.Release()
	}
	e.latest = snap
	snap.Retain()

	metrics := StepMetrics{
		TotalUs:              uint64(time.Since(tStart).Microseconds()),
		CommandProcessingUs:  commandUs,
		PropagatorUs:         namedDurationsFrom(timings),
		SnapshotPublishUs:    publishUs,
		MemoryBytes:          e.a.MemoryBytes(),
		SparseRetiredRanges:  uint32(e.a.SparseRetiredRanges()),
		SparsePendingRetired: uint32(e.a.SparsePendingRetired()),
	}
	e.lastMetrics = metrics

	return StepResult{Snapshot: snap, Metrics: metrics, Receipts: receipts}, nil
}

func (e *Engine) onFailure() {
	e.state = Idle
	e.consecutiveFailures++
	if e.consecutiveFailures > e.threshold {
		e.state = Disabled
	}
}

func namedDurationsFrom(timings []pipeline.PropagatorTiming) []NamedDuration {
	out := make([]NamedDuration, len(timings))
	for i, t := range timings {
		out[i] = NamedDuration{Name: t.Name, Micros: t.Micros}
	}
	return out
}

// Reset clears the ingress queue, rebuilds the arena (reinitializing
// every PerTick/Sparse field from its construction-time value or zero,
// leaving Static fields untouched by replaying staticValues), bumps
// WorldGenerationId and ParameterVersion, zeroes TickId, clears the
// consecutive-failure counter, and returns the engine to Idle —
// including from Disabled, per spec section 4.5's Disabled -> Idle
// transition.
func (e *Engine) Reset(seed uint64) error {
	e.assertNotReentrant()
	var resetErr error
	glsMgr.SetValues(gls.Values{glsWorldKey: e.id}, func() {
		resetErr = e.reset(seed)
	})
	return resetErr
}

func (e *Engine) reset(seed uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	a, err := buildArena(e.arenaCfg, e.fields.All(), e.staticValues)
	if err != nil {
		return err
	}
	if e.latest != nil {
		e.latest.Release()
		e.latest = nil
	}
	e.a = a
	e.q = ingress.NewQueue(e.q.Capacity(), e.q.MaxPayloadBytes(), e.fields, e.q.KnownParams(), e.sp)
	e.parameters = make(map[ids.ParameterKey]float64)
	e.tickID = 0
	e.worldGen++
	e.paramVersion++
	e.consecutiveFailures = 0
	e.state = Idle
	_ = seed // consumed by caller-side RNG re-seeding, out of the arena/pipeline's scope
	return nil
}
