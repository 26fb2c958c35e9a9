// Command ssikv reads a line-oriented command stream from stdin, one
// logical tick per line, and drives the transaction manager through it.
// Every command and its effects are described in the external-interface
// section of the project documentation this tool implements.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/ssikv/ssikv/pkg/engine"
	"github.com/ssikv/ssikv/pkg/events"
	"github.com/ssikv/ssikv/pkg/obs"
	"github.com/ssikv/ssikv/pkg/topology"
)

func main() {
	verbose := flag.Bool("verbose", false, "lower the structured log level from warn to info")
	httpAddr := flag.String("http", "", "optional address to serve the read-only observability API on, e.g. :8090")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	log := events.New(10_000)
	eng := engine.New(log, engine.WithLogger(logger))

	// mu guards every engine access once the observability server is
	// running: the engine itself assumes a single caller, so the HTTP
	// handlers (a second goroutine) take the read side of the same lock
	// the driver takes around each command.
	var mu sync.RWMutex

	if *httpAddr != "" {
		srv := obs.New(eng, log, &mu)
		go func() {
			if err := srv.ListenAndServe(*httpAddr); err != nil && err != http.ErrServerClosed {
				logger.Error("observability server stopped", "error", err)
			}
		}()
	}

	exitCode := run(os.Stdin, os.Stdout, os.Stderr, eng, &mu)
	os.Exit(exitCode)
}

// run processes the command stream to completion and returns the process
// exit code: 0 on clean EOF, non-zero only on malformed input.
func run(in io.Reader, out, errOut io.Writer, eng *engine.Engine, mu *sync.RWMutex) int {
	scanner := bufio.NewScanner(in)
	w := bufio.NewWriter(out)
	defer w.Flush()

	tick := 0
	malformed := false

	for scanner.Scan() {
		tick++

		mu.Lock()
		eng.RetryWaits(tick)
		mu.Unlock()

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		mu.Lock()
		err := dispatch(eng, w, line, tick)
		mu.Unlock()

		if err != nil {
			fmt.Fprintf(errOut, "line %d: %v\n", tick, err)
			if isMalformed(err) {
				malformed = true
			}
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "input error: %v\n", err)
		malformed = true
	}

	w.Flush()
	if malformed {
		return 1
	}
	return 0
}

// dispatch parses and executes a single command line against the engine,
// writing any stdout output per spec 6. A returned error is always an
// input error or protocol violation; transaction aborts are not errors and
// are printed to w like any other outcome.
func dispatch(eng *engine.Engine, w *bufio.Writer, line string, tick int) error {
	name, args, err := parseCommand(line)
	if err != nil {
		return err
	}

	switch name {
	case "begin":
		id, err := oneTxArg(args)
		if err != nil {
			return err
		}
		if err := eng.Begin(id, tick); err != nil {
			return fmt.Errorf("begin(%s): %w", id, err)
		}
		return nil

	case "R":
		id, v, err := txAndVarArgs(args)
		if err != nil {
			return err
		}
		outcome, err := eng.Read(id, v, tick)
		if err != nil {
			return fmt.Errorf("R(%s,%s): %w", id, v.Name(), err)
		}
		switch {
		case outcome.Served:
			fmt.Fprintf(w, "%s: %d\n", v.Name(), outcome.Value)
		case outcome.Waiting:
			fmt.Fprintf(w, "%s waits on %s\n", id, v.Name())
		case outcome.Aborted:
			fmt.Fprintf(w, "%s aborts (%s)\n", id, outcome.Reason)
		}
		return nil

	case "W":
		id, v, value, err := txVarValueArgs(args)
		if err != nil {
			return err
		}
		outcome, err := eng.Write(id, v, value, tick)
		if err != nil {
			return fmt.Errorf("W(%s,%s,%d): %w", id, v.Name(), value, err)
		}
		fmt.Fprintf(w, "%s writes %s at sites %s\n", id, v.Name(), formatSites(outcome.TargetSites))
		return nil

	case "end":
		id, err := oneTxArg(args)
		if err != nil {
			return err
		}
		outcome, err := eng.End(id, tick)
		if err != nil {
			return fmt.Errorf("end(%s): %w", id, err)
		}
		if outcome.Committed {
			fmt.Fprintf(w, "%s commits\n", id)
		} else {
			fmt.Fprintf(w, "%s aborts (%s)\n", id, outcome.Reason)
		}
		return nil

	case "fail":
		s, err := oneSiteArg(args)
		if err != nil {
			return err
		}
		if err := eng.Fail(s, tick); err != nil {
			return fmt.Errorf("fail(%d): %w", s, err)
		}
		fmt.Fprintf(w, "site %d fails\n", s)
		return nil

	case "recover":
		s, err := oneSiteArg(args)
		if err != nil {
			return err
		}
		if err := eng.Recover(s, tick); err != nil {
			return fmt.Errorf("recover(%d): %w", s, err)
		}
		fmt.Fprintf(w, "site %d recovers\n", s)
		return nil

	case "dump":
		if len(args) == 0 {
			printDump(w, eng.Dump(tick))
			return nil
		}
		v, err := topology.ParseVar(args[0])
		if err != nil {
			return malformed("%v", err)
		}
		printVariableSummary(w, eng.DumpVariable(v, tick))
		return nil

	default:
		return malformed("unknown command %q", name)
	}
}

func printDump(w *bufio.Writer, dumps []engine.SiteDump) {
	for _, d := range dumps {
		parts := make([]string, 0, len(d.Entries))
		for _, e := range d.Entries {
			parts = append(parts, fmt.Sprintf("%s: %d", e.Var.Name(), e.Value))
		}
		fmt.Fprintf(w, "site %d - %s\n", d.ID, strings.Join(parts, ", "))
	}
}

func printVariableSummary(w *bufio.Writer, s engine.VariableSummary) {
	for _, id := range topology.Sites(s.Var) {
		if val, ok := s.PerSite[id]; ok {
			fmt.Fprintf(w, "site %d - %s: %d\n", id, s.Var.Name(), val)
		}
	}
}

func formatSites(ids []topology.SiteID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, ",")
}

// isMalformed reports whether err reflects a malformed input line (unknown
// command, bad argument syntax, out-of-range variable/site) as opposed to
// a protocol violation against an otherwise well-formed command. Both are
// reported and the line is skipped, but only malformed input affects the
// exit code.
func isMalformed(err error) bool {
	var perr *parseError
	return errors.As(err, &perr)
}
