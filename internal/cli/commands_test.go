package cli

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/wordlebot/wordlebot/internal/config"
	"github.com/wordlebot/wordlebot/internal/protocol"
)

// scriptedServer accepts one connection and answers hello with start, the
// first guess with a retry and the second guess with bye.
func scriptedServer(t *testing.T) (port int, done <-chan struct{}) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ch := make(chan struct{})

	go func() {
		defer close(ch)
		defer ln.Close()

		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)

		replies := []func(protocol.Message) protocol.Message{
			func(protocol.Message) protocol.Message { return &protocol.Start{ID: "abc123"} },
			func(m protocol.Message) protocol.Message {
				g := m.(*protocol.Guess)
				return &protocol.Retry{ID: "abc123", Guesses: []protocol.GuessRecord{
					{Word: g.Word, Marks: []protocol.Mark{0, 0, 0, 0, 0}},
				}}
			},
			func(protocol.Message) protocol.Message { return &protocol.Bye{ID: "abc123", Flag: "FLAG123"} },
		}

		for _, reply := range replies {
			line, err := r.ReadBytes('\n')
			if err != nil {
				t.Errorf("server read: %v", err)
				return
			}
			msg, err := protocol.Decode(line)
			if err != nil {
				t.Errorf("server decode: %v", err)
				return
			}
			out, _ := protocol.Encode(reply(msg))
			conn.Write(out)
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, ch
}

func isolate(t *testing.T) (configPath string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvHistory, filepath.Join(dir, "history.db"))
	t.Setenv(config.EnvLogLevel, "error")
	return filepath.Join(dir, "config.json")
}

func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = New(&out, &errOut).Run(context.Background(), args)
	return code, out.String(), errOut.String()
}

func TestPlayPrintsFlagAndRecordsHistory(t *testing.T) {
	cfgPath := isolate(t)
	port, done := scriptedServer(t)

	code, stdout, stderr := run(t, "-c", cfgPath, "-p", strconv.Itoa(port), "127.0.0.1", "student")
	<-done
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "FLAG123\n" {
		t.Errorf("stdout = %q, want only the flag", stdout)
	}

	code, stdout, stderr = run(t, "history", "-c", cfgPath)
	if code != ExitOK {
		t.Fatalf("history exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "FLAG123") || !strings.Contains(stdout, "student") {
		t.Errorf("history output missing game:\n%s", stdout)
	}

	code, stdout, stderr = run(t, "show", "1", "-c", cfgPath)
	if code != ExitOK {
		t.Fatalf("show exit code = %d, stderr = %s", code, stderr)
	}
	if !strings.Contains(stdout, "abc123") || !strings.Contains(stdout, ".....") {
		t.Errorf("show output:\n%s", stdout)
	}
}

func TestPlayFlagsAfterPositionals(t *testing.T) {
	cfgPath := isolate(t)
	port, done := scriptedServer(t)

	code, stdout, stderr := run(t, "play", "127.0.0.1", "student", "-p", strconv.Itoa(port), "-c", cfgPath, "-strategy", "random")
	<-done
	if code != ExitOK {
		t.Fatalf("exit code = %d, stderr = %s", code, stderr)
	}
	if stdout != "FLAG123\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestPlayConnectionFailure(t *testing.T) {
	cfgPath := isolate(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	code, stdout, stderr := run(t, "-c", cfgPath, "-p", strconv.Itoa(port), "127.0.0.1", "student")
	if code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	if !strings.Contains(stderr, "wordlebot:") {
		t.Errorf("stderr = %q, want a diagnostic", stderr)
	}
}

func TestUsageErrors(t *testing.T) {
	cfgPath := isolate(t)
	tests := [][]string{
		{"-c", cfgPath, "onlyhost"},
		{"show", "-c", cfgPath},
		{"show", "-c", cfgPath, "abc"},
		{"play", "-bogus", "host", "user"},
	}
	for _, args := range tests {
		code, _, _ := run(t, args...)
		if code != ExitUsage {
			t.Errorf("Run(%v) = %d, want %d", args, code, ExitUsage)
		}
	}
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := isolate(t)
	code, _, stderr := run(t, "-c", cfgPath, "-strategy", "entropy", "127.0.0.1", "student")
	if code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
	if !strings.Contains(stderr, "strategy") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestShowMissingGame(t *testing.T) {
	cfgPath := isolate(t)
	code, _, stderr := run(t, "show", "-c", cfgPath, "7")
	if code != ExitFailure || !strings.Contains(stderr, "not found") {
		t.Errorf("code = %d, stderr = %q", code, stderr)
	}
}

func TestHelpAndVersion(t *testing.T) {
	code, _, stderr := run(t, "help")
	if code != ExitOK || !strings.Contains(stderr, "Usage:") {
		t.Errorf("help: code = %d, stderr = %q", code, stderr)
	}
	code, stdout, _ := run(t, "version")
	if code != ExitOK || !strings.Contains(stdout, config.AppVersion) {
		t.Errorf("version: code = %d, stdout = %q", code, stdout)
	}
}

func TestFeedback(t *testing.T) {
	if got := feedback([]int{2, 1, 0, 0, 2}); got != "CW..C" {
		t.Errorf("feedback() = %q", got)
	}
	if got := feedback(nil); got != "-" {
		t.Errorf("feedback(nil) = %q", got)
	}
}
