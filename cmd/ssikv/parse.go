package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ssikv/ssikv/pkg/topology"
	"github.com/ssikv/ssikv/pkg/txn"
)

// parseError marks an input line as malformed, distinct from a well-formed
// command that the engine rejected as a protocol violation.
type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }

func malformed(format string, a ...any) error {
	return &parseError{msg: fmt.Sprintf(format, a...)}
}

// parseCommand splits a line of the form "name(arg, arg, ...)" or the bare
// "dump()" / "dump(x3)" forms into a command name and its raw argument
// tokens, tolerating arbitrary surrounding whitespace (spec 6: "whitespace
// insensitive").
func parseCommand(line string) (name string, args []string, err error) {
	open := strings.IndexByte(line, '(')
	if open < 0 || !strings.HasSuffix(line, ")") {
		return "", nil, malformed("not a command: %q", line)
	}
	name = strings.TrimSpace(line[:open])
	if name == "" {
		return "", nil, malformed("missing command name: %q", line)
	}
	inner := strings.TrimSpace(line[open+1 : len(line)-1])
	if inner == "" {
		return name, nil, nil
	}
	for _, tok := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(tok))
	}
	return name, args, nil
}

func oneTxArg(args []string) (txn.ID, error) {
	if len(args) != 1 {
		return "", malformed("expected one transaction argument, got %d", len(args))
	}
	return parseTxID(args[0])
}

func oneSiteArg(args []string) (topology.SiteID, error) {
	if len(args) != 1 {
		return 0, malformed("expected one site argument, got %d", len(args))
	}
	return parseSiteID(args[0])
}

func txAndVarArgs(args []string) (txn.ID, topology.VarID, error) {
	if len(args) != 2 {
		return "", 0, malformed("expected (tx, var), got %d arguments", len(args))
	}
	id, err := parseTxID(args[0])
	if err != nil {
		return "", 0, err
	}
	v, err := topology.ParseVar(args[1])
	if err != nil {
		return "", 0, malformed("%v", err)
	}
	return id, v, nil
}

func txVarValueArgs(args []string) (txn.ID, topology.VarID, int, error) {
	if len(args) != 3 {
		return "", 0, 0, malformed("expected (tx, var, value), got %d arguments", len(args))
	}
	id, err := parseTxID(args[0])
	if err != nil {
		return "", 0, 0, err
	}
	v, err := topology.ParseVar(args[1])
	if err != nil {
		return "", 0, 0, malformed("%v", err)
	}
	value, err := strconv.Atoi(args[2])
	if err != nil {
		return "", 0, 0, malformed("invalid value %q", args[2])
	}
	return id, v, value, nil
}

func parseTxID(s string) (txn.ID, error) {
	if len(s) < 2 || (s[0] != 'T' && s[0] != 't') {
		return "", malformed("invalid transaction name %q", s)
	}
	if _, err := strconv.Atoi(s[1:]); err != nil {
		return "", malformed("invalid transaction name %q", s)
	}
	return txn.ID(s), nil
}

func parseSiteID(s string) (topology.SiteID, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > topology.NumSites {
		return 0, malformed("invalid site %q", s)
	}
	return topology.SiteID(n), nil
}
