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
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/tachyon-beep/murk/internal/config"
)

// scenarioFileName is the one file a config directory is expected to
// hold: a handful of "key = value" lines parsed into a demoParams.
const scenarioFileName = "scenario.conf"

// watchConfigDir watches dir for changes to scenarioFileName and, on
// every write, parses it into a demoParams and hands it to
// app.applyPending so it takes effect on the operator's next reset.
// Parse errors are logged and otherwise ignored: a bad edit to the
// scenario file must never crash the running demo or touch the live
// engine.
func watchConfigDir(dir string, a *app) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("murkctl: creating config watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("murkctl: watching %s: %w", dir, err)
	}

	target := filepath.Join(dir, scenarioFileName)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Println("murkctl: panic in config watcher:", r)
			}
		}()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				params, err := parseScenarioFile(target, a.currentParams())
				if err != nil {
					fmt.Println("murkctl: scenario reload:", err)
					continue
				}
				a.applyPending(params)
				fmt.Println("murkctl: scenario reload staged; effective on next reset")
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				fmt.Println("murkctl: config watcher error:", err)
			}
		}
	}()
	return w, nil
}

// parseScenarioFile reads "key = value" lines (cells, dt, decay_rate,
// max_ingress_queue) using internal/config's decimal-backed parsers,
// starting from the current live demoParams so a scenario file only
// needs to name the fields it wants to change.
func parseScenarioFile(path string, base demoParams) (demoParams, error) {
	f, err := os.Open(path)
	if err != nil {
		return demoParams{}, fmt.Errorf("murkctl: opening %s: %w", path, err)
	}
	defer f.Close()

	params := base
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return demoParams{}, fmt.Errorf("murkctl: %s:%d: expected key = value", path, lineNo)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "cells":
			cells, err := strconv.Atoi(value)
			if err != nil {
				return demoParams{}, fmt.Errorf("murkctl: %s:%d: cells: %w", path, lineNo, err)
			}
			params.Cells = cells
		case "dt":
			dt, err := config.ParseDt(value)
			if err != nil {
				return demoParams{}, fmt.Errorf("murkctl: %s:%d: dt: %w", path, lineNo, err)
			}
			params.Dt = dt
		case "decay_rate":
			rate, err := config.ParseDt(value) // same shape as dt: a small positive decimal
			if err != nil {
				return demoParams{}, fmt.Errorf("murkctl: %s:%d: decay_rate: %w", path, lineNo, err)
			}
			params.DecayRate = rate
		case "max_ingress_queue":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return demoParams{}, fmt.Errorf("murkctl: %s:%d: max_ingress_queue: %w", path, lineNo, err)
			}
			params.MaxIngressQueue = uint32(n)
		default:
			return demoParams{}, fmt.Errorf("murkctl: %s:%d: unknown key %q", path, lineNo, key)
		}
	}
	if err := scanner.Err(); err != nil {
		return demoParams{}, fmt.Errorf("murkctl: reading %s: %w", path, err)
	}
	return params, nil
}
