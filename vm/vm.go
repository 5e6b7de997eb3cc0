// Package vm executes the bytecode produced by package codegen: an
// operand stack, a return stack, linear memory, and a dormant
// garbage-collected object heap, single-steppable for the debugger.
//
// Grounded on _examples/KTStephano-GVM/vm/vm.go for the VM shape (struct
// holding stacks/memory/pc/running/error, a big-switch execution loop) and
// on _examples/original_source/day1/vm.c for this core's exact opcode
// semantics.
package vm

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"toyvm/codegen"
)

const (
	// OperandStackCapacity bounds the operand stack, matching spec.md §3's
	// "bounded capacity (e.g. 1024)".
	OperandStackCapacity = 1024

	// ReturnStackCapacity bounds the return-address stack.
	ReturnStackCapacity = 256

	// MemorySize is the number of addressable linear-memory slots.
	MemorySize = 1024
)

// VM is a stack machine executing one compiled Program.
type VM struct {
	code []byte

	operand []int32
	ret     []int32
	memory  [MemorySize]int32

	pc      int
	running bool
	err     error

	heap *Heap

	Stdout *bufio.Writer
}

// New constructs a VM with its own copy of prog's bytecode, per spec.md
// §5's "the byte buffer is copied into a VM-owned region so that the same
// compiled program can be executed multiple times."
func New(prog *codegen.Program) *VM {
	code := make([]byte, len(prog.Code))
	copy(code, prog.Code)
	return &VM{
		code:    code,
		operand: make([]int32, 0, OperandStackCapacity),
		ret:     make([]int32, 0, ReturnStackCapacity),
		heap:    NewHeap(),
		Stdout:  bufio.NewWriter(os.Stdout),
	}
}

// NewWithOutput is New but writes PRINT output to w instead of os.Stdout,
// used by tests that need to capture output.
func NewWithOutput(prog *codegen.Program, w io.Writer) *VM {
	v := New(prog)
	v.Stdout = bufio.NewWriter(w)
	return v
}

// PC returns the current program counter.
func (v *VM) PC() int { return v.pc }

// Running reports whether the VM is currently executing.
func (v *VM) Running() bool { return v.running }

// Err returns the last error the VM recorded, or nil.
func (v *VM) Err() error { return v.err }

// Heap exposes the object reserve for memstat/leaks/gc commands.
func (v *VM) Heap() *Heap { return v.heap }

// OperandStack returns the operand stack, top last.
func (v *VM) OperandStack() []int32 { return v.operand }

// ReturnStack returns the return-address stack, top last.
func (v *VM) ReturnStack() []int32 { return v.ret }

// Memory returns a read-only view of linear memory.
func (v *VM) Memory() [MemorySize]int32 { return v.memory }

func (v *VM) pushOperand(val int32) error {
	if len(v.operand) >= OperandStackCapacity {
		return ErrStackOverflow
	}
	v.operand = append(v.operand, val)
	return nil
}

func (v *VM) popOperand() (int32, error) {
	if len(v.operand) == 0 {
		return 0, ErrStackUnderflow
	}
	n := len(v.operand) - 1
	val := v.operand[n]
	v.operand = v.operand[:n]
	return val, nil
}

func (v *VM) pushReturn(val int32) error {
	if len(v.ret) >= ReturnStackCapacity {
		return ErrReturnStackOverflow
	}
	v.ret = append(v.ret, val)
	return nil
}

func (v *VM) popReturn() (int32, error) {
	if len(v.ret) == 0 {
		return 0, ErrReturnStackUnderflow
	}
	n := len(v.ret) - 1
	val := v.ret[n]
	v.ret = v.ret[:n]
	return val, nil
}

// fail records err as the VM's terminal error, stops execution, and
// returns err. Per spec.md §7, the first applicable error kind wins and no
// further effects occur this step.
func (v *VM) fail(err error) error {
	v.err = err
	v.running = false
	return err
}

func (v *VM) readImmediate() (int32, error) {
	if v.pc+4 > len(v.code) {
		return 0, v.fail(ErrCodeBounds)
	}
	val := int32(binary.LittleEndian.Uint32(v.code[v.pc : v.pc+4]))
	v.pc += 4
	return val, nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// dumpMemorySlots caps how many non-zero memory slots Dump summarizes,
// matching _examples/original_source/day1/vm.c's vm_dump_state ("shown < 5").
const dumpMemorySlots = 5

// Dump renders a human-readable snapshot covering everything spec.md §4.2
// requires: pc, stack depths, running flag, error, full stack contents in
// order, a summary of the first few non-zero memory slots, and the object
// count. Grounded on _examples/original_source/day1/vm.c's vm_dump_state.
func (v *VM) Dump() string {
	errName := "OK"
	if v.err != nil {
		errName = v.err.Error()
	}

	s := fmt.Sprintf("pc=%d running=%t error=%s operand_depth=%d return_depth=%d objects=%d\n",
		v.pc, v.running, errName, len(v.operand), len(v.ret), v.heap.NumObjects())

	s += fmt.Sprintf("operand stack: %v\n", v.operand)
	s += fmt.Sprintf("return stack: %v\n", v.ret)

	s += "memory (first non-zero slots):"
	shown := 0
	for i, val := range v.memory {
		if shown >= dumpMemorySlots {
			break
		}
		if val != 0 {
			s += fmt.Sprintf(" [%d]=%d", i, val)
			shown++
		}
	}
	if shown == 0 {
		s += " (none)"
	}
	s += "\n"
	return s
}
