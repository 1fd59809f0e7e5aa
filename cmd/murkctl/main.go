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

// Command murkctl is an interactive operator shell around a small
// single-field demo world: step it, inspect it, push parameter changes,
// and optionally watch per-tick metrics over a websocket or hot-reload
// its scalar knobs from a config directory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/dc0d/onexit"
	"github.com/google/uuid"

	"github.com/tachyon-beep/murk/internal/replay"
)

// newRunID mints the identifier murkctl reports for this process's demo
// run, delegating to internal/replay's low-entropy-safe generator
// rather than crypto/rand.
func newRunID() uuid.UUID { return replay.NewRunID() }

func main() {
	cells := flag.Int("cells", 32, "number of cells in the demo line world")
	dt := flag.Float64("dt", 0.1, "tick step size")
	decayRate := flag.Float64("decay-rate", 0.2, "fraction of density decayed per second")
	maxIngressQueue := flag.Uint("max-ingress-queue", 256, "ingress queue capacity")
	listenAddr := flag.String("listen", "", "address to serve the websocket demo observer on, e.g. :8089 (disabled if empty)")
	configDir := flag.String("config-dir", "", "directory to watch for scenario.conf reloads (disabled if empty)")
	historyFile := flag.String("history-file", "", "readline history file (disabled if empty)")
	flag.Parse()

	params := demoParams{
		Cells:           *cells,
		Dt:              *dt,
		DecayRate:       *decayRate,
		MaxIngressQueue: uint32(*maxIngressQueue),
	}

	a, err := newApp(params)
	if err != nil {
		fmt.Fprintln(os.Stderr, "murkctl:", err)
		os.Exit(1)
	}
	onexit.Register(func() { a.close() })

	if *listenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/observe", a.hub)
		server := &http.Server{Addr: *listenAddr, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				fmt.Fprintln(os.Stderr, "murkctl: observer server:", err)
			}
		}()
		onexit.Register(func() { server.Close() })
		fmt.Println("murkctl: observer websocket on", *listenAddr+"/observe")
	}

	if *configDir != "" {
		watcher, err := watchConfigDir(*configDir, a)
		if err != nil {
			fmt.Fprintln(os.Stderr, "murkctl:", err)
			os.Exit(1)
		}
		onexit.Register(func() { watcher.Close() })
		fmt.Println("murkctl: watching", *configDir, "for", scenarioFileName, "reloads")
	}

	fmt.Println("murkctl: run", a.runID)
	repl(a, *historyFile)
	onexit.Exit(0)
}
