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

// Status is the ABI-stable result code every handle-table operation
// and engine-facing call collapses its internal error type down to.
// The numbering is part of the ABI: new codes are appended, existing
// ones never renumbered or removed.
type Status int32

const (
	StatusOk Status = 0

	StatusInvalidHandle             Status = -1
	StatusPlanInvalidated           Status = -2
	StatusTimeout                   Status = -3
	StatusSnapshotEvicted           Status = -4
	StatusInvalidObservationCompose Status = -5
	StatusQueueFull                 Status = -6
	StatusStaleCommand              Status = -7
	StatusRollback                  Status = -8
	StatusArenaOom                  Status = -9
	StatusPropagatorFailed          Status = -10
	StatusObservationExecFailed     Status = -11
	StatusInvalidSpec               Status = -12
	StatusDtOutOfRange              Status = -13
	StatusEgressStalled             Status = -14
	StatusShuttingDown              Status = -15
	StatusTickingDisabled           Status = -16
	StatusConfigError               Status = -17
	StatusInvalidArg                Status = -18
	StatusBufferTooSmall            Status = -19
)

var statusNames = map[Status]string{
	StatusOk:                        "Ok",
	StatusInvalidHandle:             "InvalidHandle",
	StatusPlanInvalidated:           "PlanInvalidated",
	StatusTimeout:                   "Timeout",
	StatusSnapshotEvicted:           "SnapshotEvicted",
	StatusInvalidObservationCompose: "InvalidObservationCompose",
	StatusQueueFull:                 "QueueFull",
	StatusStaleCommand:              "StaleCommand",
	StatusRollback:                  "Rollback",
	StatusArenaOom:                  "ArenaOom",
	StatusPropagatorFailed:          "PropagatorFailed",
	StatusObservationExecFailed:     "ObservationExecFailed",
	StatusInvalidSpec:               "InvalidSpec",
	StatusDtOutOfRange:              "DtOutOfRange",
	StatusEgressStalled:             "EgressStalled",
	StatusShuttingDown:              "ShuttingDown",
	StatusTickingDisabled:           "TickingDisabled",
	StatusConfigError:               "ConfigError",
	StatusInvalidArg:                "InvalidArg",
	StatusBufferTooSmall:            "BufferTooSmall",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Ok reports whether s is the success code.
func (s Status) Ok() bool { return s == StatusOk }

// Error satisfies the error interface so a Status can be returned
// wherever Go code expects one, without a wrapper type.
func (s Status) Error() string {
	return s.String()
}
