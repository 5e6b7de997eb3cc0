package manager

import (
	"bytes"
	"log/slog"
	"testing"

	"toyvm/ast"
)

func newTestManager(stdout *bytes.Buffer) *Manager {
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	return New(logger, stdout)
}

func printSumProgram() *ast.Node {
	return ast.Seq(0,
		ast.Decl(1, "x", ast.Int(1, 5)),
		ast.Print(2, ast.Binary(2, ast.ADD, ast.Var(2, "x"), ast.Int(2, 3))),
	)
}

func TestSubmitThenRunTransitionsToFinished(t *testing.T) {
	var out bytes.Buffer
	m := newTestManager(&out)

	pid, err := m.Submit("sum.tvm", printSumProgram())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if err := m.Run(pid); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	entries := m.List()
	if len(entries) != 1 || entries[0].State != Finished {
		t.Fatalf("expected PID %d FINISHED, got %+v", pid, entries)
	}
	if out.String() != "8\n" {
		t.Fatalf("expected program output %q, got %q", "8\n", out.String())
	}
}

func TestRunRejectsNonSubmittedPID(t *testing.T) {
	var out bytes.Buffer
	m := newTestManager(&out)

	pid, err := m.Submit("sum.tvm", printSumProgram())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := m.Run(pid); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if err := m.Run(pid); err == nil {
		t.Fatalf("expected second run on a FINISHED pid to fail")
	}
}

func TestRunUnknownPIDFails(t *testing.T) {
	m := newTestManager(&bytes.Buffer{})
	if err := m.Run(42); err == nil {
		t.Fatalf("expected error for unknown pid")
	}
}

func TestMemstatAfterRunReportsNoObjects(t *testing.T) {
	var out bytes.Buffer
	m := newTestManager(&out)

	pid, err := m.Submit("sum.tvm", printSumProgram())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := m.Run(pid); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	report, err := m.Memstat(pid)
	if err != nil {
		t.Fatalf("memstat failed: %v", err)
	}
	if !bytes.Contains([]byte(report), []byte("GC Objects:    0")) {
		t.Fatalf("expected zero GC objects in report, got %q", report)
	}

	leaks, err := m.Leaks(pid)
	if err != nil {
		t.Fatalf("leaks failed: %v", err)
	}
	if !bytes.Contains([]byte(leaks), []byte("No leaks detected")) {
		t.Fatalf("expected no leaks, got %q", leaks)
	}
}

func TestKillReleasesVMAndMarksFinished(t *testing.T) {
	var out bytes.Buffer
	m := newTestManager(&out)

	pid, err := m.Submit("sum.tvm", printSumProgram())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := m.Kill(pid); err != nil {
		t.Fatalf("kill failed: %v", err)
	}

	entries := m.List()
	if entries[0].State != Finished {
		t.Fatalf("expected FINISHED after kill, got %s", entries[0].State)
	}
}
