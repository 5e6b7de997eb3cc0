package debugger

import (
	"bytes"
	"testing"

	"toyvm/ast"
	"toyvm/codegen"
	"toyvm/vm"
)

func compileProgram(t *testing.T, root *ast.Node) *codegen.Program {
	t.Helper()
	prog, err := codegen.Compile(root)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	return prog
}

// whileLoopProgram puts the print statement on its own line (3), apart from
// the loop condition (2), so a breakpoint on it fires once per iteration.
func whileLoopProgram() *ast.Node {
	return ast.Seq(0,
		ast.Decl(1, "i", ast.Int(1, 0)),
		ast.While(2, ast.Binary(2, ast.LT, ast.Var(2, "i"), ast.Int(2, 3)),
			ast.Seq(2,
				ast.Print(3, ast.Var(3, "i")),
				ast.Assign(4, "i", ast.Binary(4, ast.ADD, ast.Var(4, "i"), ast.Int(4, 1))),
			),
		),
	)
}

func TestBreakpointRejectsLineWithNoCode(t *testing.T) {
	prog := compileProgram(t, whileLoopProgram())
	d := New(vm.NewWithOutput(prog, &bytes.Buffer{}), prog)
	if err := d.AddBreakpoint(999); err == nil {
		t.Fatalf("expected error adding breakpoint at non-existent line")
	}
}

func TestBreakpointRejectsDuplicate(t *testing.T) {
	prog := compileProgram(t, whileLoopProgram())
	d := New(vm.NewWithOutput(prog, &bytes.Buffer{}), prog)
	if err := d.AddBreakpoint(2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := d.AddBreakpoint(2); err == nil {
		t.Fatalf("expected error adding duplicate breakpoint")
	}
}

func TestBreakpointCapacity(t *testing.T) {
	root := ast.Int(1, 0)
	for i := 2; i <= MaxBreakpoints+1; i++ {
		root = ast.Seq(i, root, ast.Print(i, ast.Int(i, int32(i))))
	}
	prog := compileProgram(t, root)
	d := New(vm.NewWithOutput(prog, &bytes.Buffer{}), prog)

	for i := 2; i <= MaxBreakpoints+1; i++ {
		if err := d.AddBreakpoint(i); err != nil {
			t.Fatalf("unexpected rejection at breakpoint %d: %v", i, err)
		}
	}
	if err := d.AddBreakpoint(1); err == nil {
		t.Fatalf("expected the 33rd breakpoint to be rejected")
	}
}

func TestContinueStopsAtBreakpointThreeTimesThenFinishes(t *testing.T) {
	var out bytes.Buffer
	prog := compileProgram(t, whileLoopProgram())
	d := New(vm.NewWithOutput(prog, &out), prog)

	if err := d.AddBreakpoint(3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hits := 0
	for i := 0; i < 4; i++ {
		res := d.Continue()
		if res.Hit {
			hits++
		}
	}
	if hits != 3 {
		t.Fatalf("expected 3 breakpoint hits, got %d", hits)
	}
	if d.VM().Running() {
		t.Fatalf("expected program to have finished after the fourth continue")
	}
}

func TestDumpCommandReportsVMState(t *testing.T) {
	prog := compileProgram(t, whileLoopProgram())
	var out bytes.Buffer
	d := New(vm.NewWithOutput(prog, &bytes.Buffer{}), prog)

	d.dispatch(&out, "dump")
	if !bytes.Contains(out.Bytes(), []byte("pc=")) {
		t.Fatalf("expected dump output to include pc, got %q", out.String())
	}
}

func TestStepLineStopsOnDifferentNonZeroLine(t *testing.T) {
	prog := compileProgram(t, whileLoopProgram())
	d := New(vm.NewWithOutput(prog, &bytes.Buffer{}), prog)

	res := d.StepLine()
	if res.Line == 0 {
		t.Fatalf("expected a non-zero line after step-line")
	}
}
