package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/billie-coop/minefile/internal/app"
	"github.com/billie-coop/minefile/internal/config"
)

// startDaemon runs the workers for dir in-process.
func startDaemon(t *testing.T, dir string) {
	t.Helper()
	m := config.NewManager(dir)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	d, err := app.New(m, nil).Daemon(10 * time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = d.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func runCLI(t *testing.T, dir, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"-dir", dir, "-poll", "10ms", "-timeout", "5s"}, args...)
	code := run(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCLI(t, t.TempDir(), "", "help")
	if code != 0 || !strings.Contains(out, "board") {
		t.Errorf("help = %d, %q", code, out)
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	code, _, errOut := runCLI(t, t.TempDir(), "", "chess")
	if code != 1 || !strings.Contains(errOut, "unknown command") {
		t.Errorf("chess = %d, %q", code, errOut)
	}
}

func TestRun_FirstRunWelcome(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".minefile")
	_, _, first := runCLI(t, dir, "", "list")
	_, _, second := runCLI(t, dir, "", "list")
	if !strings.Contains(first, "Welcome") {
		t.Errorf("first run stderr = %q", first)
	}
	if strings.Contains(second, "Welcome") {
		t.Errorf("welcome shown twice: %q", second)
	}
}

func TestRun_BoardArgs(t *testing.T) {
	tests := [][]string{
		{"board", "5", "5"},
		{"board", "a", "b", "c"},
		{"board", "2", "2", "9"},
	}
	for _, args := range tests {
		code, _, _ := runCLI(t, t.TempDir(), "", args...)
		if code != 1 {
			t.Errorf("%v exit = %d, want 1", args, code)
		}
	}
}

func TestRun_Board(t *testing.T) {
	dir := t.TempDir()
	startDaemon(t, dir)

	code, out, errOut := runCLI(t, dir, "", "board", "3", "3", "2")
	if code != 0 {
		t.Fatalf("board exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "3x3, 2 bombs") {
		t.Errorf("board output:\n%s", out)
	}
}

func TestRun_BoardNoWorker(t *testing.T) {
	var stdout, stderr bytes.Buffer
	args := []string{"-dir", t.TempDir(), "-poll", "10ms", "-timeout", "50ms", "board", "2", "2", "1"}
	code := run(context.Background(), args, strings.NewReader(""), &stdout, &stderr)
	if code != 1 || !strings.Contains(stderr.String(), "no response on") {
		t.Errorf("board without worker = %d, %q", code, stderr.String())
	}
}

func TestRun_JournalFlow(t *testing.T) {
	dir := t.TempDir()
	startDaemon(t, dir)

	code, out, errOut := runCLI(t, dir, "dear diary\nfour words here\n", "write")
	if code != 0 {
		t.Fatalf("write exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "(5 words)") {
		t.Errorf("write output: %q", out)
	}

	code, out, _ = runCLI(t, dir, "", "list")
	if code != 0 || !strings.Contains(out, "dear diary") {
		t.Fatalf("list = %d, %q", code, out)
	}
	id := strings.Fields(out)[0]

	code, out, _ = runCLI(t, dir, "", "show", id)
	if code != 0 || !strings.Contains(out, "four words here") || !strings.Contains(out, "5 words") {
		t.Errorf("show = %d, %q", code, out)
	}

	code, out, errOut = runCLI(t, dir, "rewritten in three", "edit", id)
	if code != 0 || !strings.Contains(out, "(3 words)") {
		t.Fatalf("edit = %d, %q, %q", code, out, errOut)
	}
	code, out, _ = runCLI(t, dir, "", "show", id)
	if code != 0 || !strings.Contains(out, "rewritten in three") || !strings.Contains(out, "3 words") {
		t.Errorf("show after edit = %d, %q", code, out)
	}

	if code, _, _ = runCLI(t, dir, "", "delete", id); code != 0 {
		t.Errorf("delete exit %d", code)
	}
	if code, _, _ = runCLI(t, dir, "", "show", id); code != 1 {
		t.Errorf("show after delete exit %d", code)
	}
}

func TestRun_WriteEmpty(t *testing.T) {
	code, _, errOut := runCLI(t, t.TempDir(), "  \n", "write")
	if code != 1 || !strings.Contains(errOut, "empty entry") {
		t.Errorf("write empty = %d, %q", code, errOut)
	}
}

func TestRun_Count(t *testing.T) {
	dir := t.TempDir()
	startDaemon(t, dir)

	code, out, errOut := runCLI(t, dir, "the quick brown fox", "count")
	if code != 0 || strings.TrimSpace(out) != "4" {
		t.Errorf("count = %d, %q, %q", code, out, errOut)
	}
}

func TestRun_EditMissingEntry(t *testing.T) {
	code, _, errOut := runCLI(t, t.TempDir(), "text", "edit", "2001-01-01_00-00-00")
	if code != 1 || !strings.Contains(errOut, "not found") {
		t.Errorf("edit missing = %d, %q", code, errOut)
	}
}
