package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"toyvm/ast"
	"toyvm/codegen"
)

func compileAndRun(t *testing.T, root *ast.Node) (*VM, string) {
	t.Helper()
	prog, err := codegen.Compile(root)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	var out bytes.Buffer
	v := NewWithOutput(prog, &out)
	if err := v.Run(); err != nil {
		return v, out.String()
	}
	return v, out.String()
}

func TestScenarioPrintSumFinishes(t *testing.T) {
	root := ast.Seq(0,
		ast.Decl(1, "x", ast.Int(1, 5)),
		ast.Print(2, ast.Binary(2, ast.ADD, ast.Var(2, "x"), ast.Int(2, 3))),
	)
	v, out := compileAndRun(t, root)
	if v.Err() != nil {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	if out != "8\n" {
		t.Fatalf("expected output %q, got %q", "8\n", out)
	}
}

func TestScenarioWhileLoopPrintsAndEndsWithEmptyStack(t *testing.T) {
	root := ast.Seq(0,
		ast.Decl(1, "i", ast.Int(1, 0)),
		ast.While(2, ast.Binary(2, ast.LT, ast.Var(2, "i"), ast.Int(2, 3)),
			ast.Seq(2,
				ast.Print(2, ast.Var(2, "i")),
				ast.Assign(3, "i", ast.Binary(3, ast.ADD, ast.Var(3, "i"), ast.Int(3, 1))),
			),
		),
	)
	v, out := compileAndRun(t, root)
	if v.Err() != nil {
		t.Fatalf("unexpected error: %v", v.Err())
	}
	if out != "0\n1\n2\n" {
		t.Fatalf("expected output %q, got %q", "0\n1\n2\n", out)
	}
	if len(v.OperandStack()) != 0 {
		t.Fatalf("expected empty operand stack, got depth %d", len(v.OperandStack()))
	}
}

func TestScenarioIfElseFalseBranch(t *testing.T) {
	root := ast.If(1,
		ast.Binary(1, ast.EQ, ast.Int(1, 1), ast.Int(1, 2)),
		ast.Print(2, ast.Int(2, 10)),
		ast.Print(3, ast.Int(3, 20)),
	)
	_, out := compileAndRun(t, root)
	if out != "20\n" {
		t.Fatalf("expected output %q, got %q", "20\n", out)
	}
}

func TestScenarioDivisionByZero(t *testing.T) {
	root := ast.Seq(0,
		ast.Decl(1, "a", ast.Int(1, 10)),
		ast.Seq(1,
			ast.Decl(2, "b", ast.Int(2, 0)),
			ast.Print(3, ast.Binary(3, ast.DIV, ast.Var(3, "a"), ast.Var(3, "b"))),
		),
	)
	v, out := compileAndRun(t, root)
	if !errors.Is(v.Err(), ErrDivisionByZero) {
		t.Fatalf("expected division-by-zero error, got %v", v.Err())
	}
	if out != "" {
		t.Fatalf("expected no output before the failing PRINT, got %q", out)
	}
	// DIV pops b, checks b == 0 immediately, and returns before popping a:
	// a is left on the operand stack after the error.
	if stack := v.OperandStack(); len(stack) != 1 || stack[0] != 10 {
		t.Fatalf("expected operand stack [10] after division by zero, got %v", stack)
	}
}

func TestDumpCapsMemorySlotsAtFive(t *testing.T) {
	var root *ast.Node
	for i := 0; i < 7; i++ {
		decl := ast.Decl(1, string(rune('a'+i)), ast.Int(1, int32(i+1)))
		if root == nil {
			root = decl
		} else {
			root = ast.Seq(1, root, decl)
		}
	}
	v, _ := compileAndRun(t, root)

	dump := v.Dump()
	shown := strings.Count(dump, "]=")
	if shown != dumpMemorySlots {
		t.Fatalf("expected dump to cap at %d memory slots, got %d in %q", dumpMemorySlots, shown, dump)
	}
}

func TestScenarioMemstatAfterCleanRunReportsNoObjects(t *testing.T) {
	root := ast.Decl(1, "x", ast.Int(1, 5))
	v, _ := compileAndRun(t, root)
	if v.Heap().NumObjects() != 0 {
		t.Fatalf("expected 0 heap objects, got %d", v.Heap().NumObjects())
	}
}

func TestStackUnderflowOnBarePop(t *testing.T) {
	prog, err := codegen.Compile(ast.Print(1, ast.Int(1, 0)))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	// Corrupt the compiled program to pop before any push.
	prog.Code = []byte{byte(codegen.POP), byte(codegen.HALT)}

	v := NewWithOutput(prog, &strings.Builder{})
	if err := v.Run(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("expected stack underflow, got %v", err)
	}
}

func TestInvalidOpcodeIsReported(t *testing.T) {
	prog := &codegen.Program{Code: []byte{0x99}}
	v := NewWithOutput(prog, &strings.Builder{})
	if err := v.Run(); !errors.Is(err, ErrInvalidOpcode) {
		t.Fatalf("expected invalid opcode error, got %v", err)
	}
}

func TestJumpToCodeSizeHaltsCleanly(t *testing.T) {
	prog := &codegen.Program{Code: []byte{byte(codegen.HALT)}}
	v := NewWithOutput(prog, &strings.Builder{})
	// Force pc to exactly code size via a single step past HALT, then
	// step again to exercise the "fetch at code size" boundary.
	if err := v.Step(); !errors.Is(err, ErrHalted) {
		t.Fatalf("expected halted, got %v", err)
	}
	if v.PC() != len(prog.Code) {
		t.Fatalf("expected pc at code size %d, got %d", len(prog.Code), v.PC())
	}
	if err := v.Step(); !errors.Is(err, ErrHalted) {
		t.Fatalf("expected halted on fetch at code size, got %v", err)
	}
}

func TestMemoryBoundsViolation(t *testing.T) {
	prog := &codegen.Program{Code: []byte{
		byte(codegen.LOAD), 0xFF, 0xFF, 0x00, 0x00, // slot 65535, out of range
		byte(codegen.HALT),
	}}
	v := NewWithOutput(prog, &strings.Builder{})
	if err := v.Run(); !errors.Is(err, ErrMemoryBounds) {
		t.Fatalf("expected memory-bounds violation, got %v", err)
	}
}

func TestReturnStackUnderflow(t *testing.T) {
	prog := &codegen.Program{Code: []byte{byte(codegen.RET), byte(codegen.HALT)}}
	v := NewWithOutput(prog, &strings.Builder{})
	if err := v.Run(); !errors.Is(err, ErrReturnStackUnderflow) {
		t.Fatalf("expected return-stack underflow, got %v", err)
	}
}
