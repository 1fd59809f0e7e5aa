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
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tachyon-beep/murk/internal/engine"
	"github.com/tachyon-beep/murk/internal/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// tickUpdate is the JSON message pushed to every connected demo
// observer after a successful step.
type tickUpdate struct {
	TickID      uint64   `json:"tick_id"`
	TotalUs     uint64   `json:"total_us"`
	MemoryBytes uint64   `json:"memory_bytes"`
	Propagators []string `json:"propagators"`
}

// observerConn is one connected websocket client with its own send
// mutex, mirroring scm/network.go's sendmutex-guarded WriteMessage
// closure: gorilla/websocket forbids concurrent writers on one
// connection.
type observerConn struct {
	ws   *websocket.Conn
	send sync.Mutex
}

// observerHub fans tick updates out to every connected demo observer.
// Connections that error on write are dropped from the set; a slow or
// dead browser tab never blocks the engine's tick loop beyond one
// best-effort write attempt.
type observerHub struct {
	mu    sync.Mutex
	conns map[*observerConn]bool
}

func newObserverHub() *observerHub {
	return &observerHub{conns: make(map[*observerConn]bool)}
}

// ServeHTTP upgrades the incoming request to a websocket and registers
// it as an observer until the client disconnects, following
// scm/network.go's upgrade-then-read-loop-in-a-goroutine shape (the
// read loop exists here only to detect the client going away, since
// observers are receive-only).
func (h *observerHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	conn := &observerConn{ws: ws}
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()

	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				fmt.Println("murkctl: panic in observer read loop:", rec)
			}
			h.mu.Lock()
			delete(h.conns, conn)
			h.mu.Unlock()
			ws.Close()
		}()
		for {
			// observers never send anything meaningful; ReadMessage's only
			// job here is to notice a CloseError and exit the loop.
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *observerHub) broadcastTick(tick ids.TickId, result engine.StepResult) {
	names := make([]string, len(result.Metrics.PropagatorUs))
	for i, d := range result.Metrics.PropagatorUs {
		names[i] = d.Name
	}
	msg, err := json.Marshal(tickUpdate{
		TickID:      uint64(tick),
		TotalUs:     result.Metrics.TotalUs,
		MemoryBytes: result.Metrics.MemoryBytes,
		Propagators: names,
	})
	if err != nil {
		fmt.Println("murkctl: marshaling tick update:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.send.Lock()
		err := conn.ws.WriteMessage(websocket.TextMessage, msg)
		conn.send.Unlock()
		if err != nil {
			delete(h.conns, conn)
			conn.ws.Close()
		}
	}
}
