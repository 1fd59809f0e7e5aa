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
	"io"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/tachyon-beep/murk/internal/config"
	"github.com/tachyon-beep/murk/internal/ids"
	"github.com/tachyon-beep/murk/internal/ingress"
)

const (
	prompt     = "\033[32mmurk>\033[0m "
	resultMark = "\033[31m=\033[0m "
)

// repl runs an interactive command loop against a, reading lines with
// history and Ctrl-C/EOF handling the way scm/prompt.go's Repl does.
// Every command runs inside a panic-recovery wrapper so a bad command
// never takes the whole process down.
func repl(a *app, historyFile string) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	fmt.Println("murkctl ready. Commands: step [n], reset [seed], status, set <key> <value>, field, quit")

	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !runCommand(a, line) {
			break
		}
	}
}

func runCommand(a *app, line string) (keepGoing bool) {
	keepGoing = true
	defer func() {
		if r := recover(); r != nil {
			fmt.Println("panic:", r, string(debug.Stack()))
		}
	}()

	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		return false

	case "step":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Println("error: step count must be an integer:", err)
				return true
			}
			n = v
		}
		for i := 0; i < n; i++ {
			result, err := a.step()
			if err != nil {
				fmt.Println("error:", err)
				return true
			}
			fmt.Printf("%stick=%d total_us=%d memory_bytes=%d\n", resultMark, a.tickID(), result.Metrics.TotalUs, result.Metrics.MemoryBytes)
		}

	case "reset":
		seed := uint64(0)
		if len(args) > 0 {
			s, err := config.ParseSeed(args[0])
			if err != nil {
				fmt.Println("error:", err)
				return true
			}
			seed = s
		}
		if err := a.reset(seed); err != nil {
			fmt.Println("error:", err)
			return true
		}
		fmt.Println(resultMark + "reset complete")

	case "status":
		fmt.Printf("%sstate=%s tick=%d\n", resultMark, a.state(), a.tickID())

	case "set":
		if len(args) != 2 {
			fmt.Println("usage: set <parameter-key> <value>")
			return true
		}
		key, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			fmt.Println("error: parameter key must be an integer:", err)
			return true
		}
		value, err := config.ParseDt(args[1]) // decimal parse, reused for any scalar value
		if err != nil {
			fmt.Println("error:", err)
			return true
		}
		receipt := a.submit(ingress.Command{
			Payload: ingress.CommandPayload{
				Kind:           ingress.SetParameter,
				ParameterKey:   ids.ParameterKey(key),
				ParameterValue: value,
			},
		})
		fmt.Printf("%sstatus=%s arrival_seq=%d\n", resultMark, receipt.Status, receipt.ArrivalSeq)

	case "field":
		values, err := a.readDensity()
		if err != nil {
			fmt.Println("error:", err)
			return true
		}
		fmt.Println(resultMark + fmt.Sprint(values))

	default:
		fmt.Println("unknown command:", cmd)
	}
	return true
}
