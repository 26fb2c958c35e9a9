package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/ssikv/ssikv/pkg/engine"
	"github.com/ssikv/ssikv/pkg/events"
)

func runScript(script string) (stdout, stderr string, code int) {
	log := events.New(100)
	eng := engine.New(log)
	var mu sync.RWMutex

	var outBuf, errBuf bytes.Buffer
	code = run(strings.NewReader(script), &outBuf, &errBuf, eng, &mu)
	return outBuf.String(), errBuf.String(), code
}

func TestRunFirstCommitterWinsScript(t *testing.T) {
	script := strings.Join([]string{
		"begin(T1)",
		"begin(T2)",
		"W(T1,x1,101)",
		"W(T2,x2,202)",
		"W(T1,x2,102)",
		"W(T2,x1,201)",
		"end(T2)",
		"end(T1)",
		"dump()",
		"",
	}, "\n")

	stdout, _, code := runScript(script)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "T2 commits") {
		t.Errorf("stdout missing T2 commits:\n%s", stdout)
	}
	if !strings.Contains(stdout, "T1 aborts (ww-conflict)") {
		t.Errorf("stdout missing T1 abort:\n%s", stdout)
	}
}

func TestRunWaitThenRecoverScript(t *testing.T) {
	script := strings.Join([]string{
		"fail(4)",
		"begin(T1)",
		"R(T1,x3)",
		"recover(4)",
		"",
		"R(T1,x3)",
		"",
	}, "\n")

	stdout, _, code := runScript(script)
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
	if !strings.Contains(stdout, "T1 waits on x3") {
		t.Errorf("stdout missing wait line:\n%s", stdout)
	}
	if !strings.Contains(stdout, "x3: 30") {
		t.Errorf("stdout missing recovered read:\n%s", stdout)
	}
}

func TestRunReportsMalformedLineAndExitCode(t *testing.T) {
	script := "not a command\nbegin(T1)\n"
	_, stderr, code := runScript(script)
	if code != 1 {
		t.Errorf("exit code = %d, want 1 for malformed input", code)
	}
	if !strings.Contains(stderr, "line 1") {
		t.Errorf("stderr should report the offending line: %s", stderr)
	}
}

func TestRunUnknownCommandIsMalformedInput(t *testing.T) {
	script := "frobnicate(T1)\n"
	_, stderr, code := runScript(script)
	if code != 1 {
		t.Errorf("exit code = %d, want 1: an unknown command is an input error, not a protocol violation", code)
	}
	if !strings.Contains(stderr, "unknown command") {
		t.Errorf("stderr should report the unknown command: %s", stderr)
	}
}
