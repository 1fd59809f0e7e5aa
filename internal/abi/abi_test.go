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

package abi

import (
	"testing"

	"github.com/tachyon-beep/murk/internal/arena"
	"github.com/tachyon-beep/murk/internal/engine"
	"github.com/tachyon-beep/murk/internal/ingress"
	"github.com/tachyon-beep/murk/internal/pipeline"
)

func TestTableInsertResolveDestroy(t *testing.T) {
	tbl := NewTable[string]()
	h := tbl.Insert("hello")
	if h == Invalid {
		t.Fatal("Insert returned Invalid")
	}
	v, status := tbl.Resolve(h)
	if !status.Ok() || v != "hello" {
		t.Fatalf("Resolve = %q, %v; want hello, Ok", v, status)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tbl.Len())
	}
	if !tbl.Destroy(h) {
		t.Fatal("Destroy returned false on a live handle")
	}
	if _, status := tbl.Resolve(h); status != StatusInvalidHandle {
		t.Fatalf("Resolve after Destroy = %v, want StatusInvalidHandle", status)
	}
}

func TestTableDoubleDestroyIsNoop(t *testing.T) {
	tbl := NewTable[int]()
	h := tbl.Insert(42)
	if !tbl.Destroy(h) {
		t.Fatal("first Destroy should succeed")
	}
	if tbl.Destroy(h) {
		t.Fatal("second Destroy should be a no-op reporting false")
	}
}

func TestTableInvalidHandleNeverResolves(t *testing.T) {
	tbl := NewTable[int]()
	if _, status := tbl.Resolve(Invalid); status != StatusInvalidHandle {
		t.Fatalf("Resolve(Invalid) = %v, want StatusInvalidHandle", status)
	}
	if tbl.Destroy(Invalid) {
		t.Fatal("Destroy(Invalid) should report false")
	}
}

func TestTableSlotReuseBumpsGeneration(t *testing.T) {
	tbl := NewTable[int]()
	h1 := tbl.Insert(1)
	tbl.Destroy(h1)
	h2 := tbl.Insert(2)
	if h1 == h2 {
		t.Fatal("reused slot must not reissue the same handle")
	}
	if _, status := tbl.Resolve(h1); status != StatusInvalidHandle {
		t.Fatal("stale handle from before reuse must not resolve")
	}
	v, status := tbl.Resolve(h2)
	if !status.Ok() || v != 2 {
		t.Fatalf("Resolve(h2) = %v, %v; want 2, Ok", v, status)
	}
}

func TestVersionSplit(t *testing.T) {
	major, minor := CurrentVersion.Split()
	if major != 1 || minor != 0 {
		t.Fatalf("Split() = %d, %d; want 1, 0", major, minor)
	}
}

func TestClassifyNilIsOk(t *testing.T) {
	if got := Classify(nil); got != StatusOk {
		t.Fatalf("Classify(nil) = %v, want StatusOk", got)
	}
}

func TestClassifyKnownErrorTypes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Status
	}{
		{"disabled", &engine.DisabledError{ConsecutiveFailures: 3, Threshold: 2}, StatusTickingDisabled},
		{"policy", &engine.PolicyError{Kind: ingress.Spawn}, StatusInvalidArg},
		{"dt out of range", &engine.DtOutOfRangeError{Dt: 1, DtCap: 0.5}, StatusDtOutOfRange},
		{"capacity", &arena.CapacityExceededError{Requested: 10, Capacity: 5}, StatusArenaOom},
		{"stale", &arena.StaleHandleError{HandleGeneration: 1, OldestLive: 2}, StatusInvalidHandle},
		{"unknown field", &arena.UnknownFieldError{Field: 9}, StatusInvalidArg},
		{"not writable", &arena.NotWritableError{Field: 9}, StatusInvalidArg},
		{"compile", &pipeline.CompileError{Reason: "bad"}, StatusInvalidSpec},
		{"propagator", &pipeline.PropagatorError{Propagator: "p", Err: errString("boom")}, StatusPropagatorFailed},
		{"validation", &ingress.ValidationError{Reason: "bad coord"}, StatusStaleCommand},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("%s: Classify() = %v, want %v", c.name, got, c.want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }

func TestClassifyReceipt(t *testing.T) {
	cases := []struct {
		status ingress.ReceiptStatus
		want   Status
	}{
		{ingress.Accepted, StatusOk},
		{ingress.QueueFull, StatusQueueFull},
		{ingress.Expired, StatusStaleCommand},
		{ingress.Rejected, StatusInvalidArg},
	}
	for _, c := range cases {
		if got := ClassifyReceipt(ingress.Receipt{Status: c.status}); got != c.want {
			t.Errorf("ClassifyReceipt(%v) = %v, want %v", c.status, got, c.want)
		}
	}
}
