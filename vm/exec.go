package vm

import (
	"fmt"

	"toyvm/codegen"
)

// EnsureRunning auto-starts the VM without executing anything, mirroring
// the guard _examples/original_source/debugger_vm.c repeats at the top of
// every stepping command before it reads the current pc/line.
func (v *VM) EnsureRunning() {
	if !v.running && v.pc >= 0 && v.pc < len(v.code) {
		v.running = true
		v.err = nil
	}
}

// Step executes exactly one instruction (spec.md §4.2's single-step
// primitive). If the VM is idle but pc is within bounds, it auto-starts
// (running ← true, error cleared) before executing. Step returns the
// VM's error after the instruction: nil if it is still running, or the
// terminal error (possibly ErrHalted) once it stops.
func (v *VM) Step() error {
	if !v.running {
		if v.pc < 0 || v.pc > len(v.code) {
			return v.fail(ErrCodeBounds)
		}
		v.running = true
		v.err = nil
	}

	if v.pc == len(v.code) {
		// A jump target of exactly code size is a valid boundary value
		// (spec.md §8 "JMP/JZ/JNZ to code size is accepted ... halts
		// cleanly on the next fetch"); fetching past the last byte has
		// nothing left to run, so treat it as an implicit HALT.
		v.running = false
		return ErrHalted
	}
	if v.pc > len(v.code) {
		return v.fail(ErrCodeBounds)
	}

	op := codegen.Opcode(v.code[v.pc])
	if !codegen.IsValid(byte(op)) {
		return v.fail(ErrInvalidOpcode)
	}
	v.pc++

	if err := v.exec(op); err != nil {
		return err
	}

	if op == codegen.HALT {
		v.running = false
		return ErrHalted
	}
	return nil
}

// Run single-steps to completion: HALT, an error, or running turning
// false for any other reason. It returns the terminal VM error, or nil
// if the program finished via HALT with no error recorded.
func (v *VM) Run() error {
	for {
		err := v.Step()
		if err == nil {
			continue
		}
		if err == ErrHalted {
			return nil
		}
		return err
	}
}

func (v *VM) exec(op codegen.Opcode) error {
	switch op {
	case codegen.PUSH:
		n, err := v.readImmediate()
		if err != nil {
			return err
		}
		if err := v.pushOperand(n); err != nil {
			return v.fail(err)
		}
		return nil

	case codegen.POP:
		if _, err := v.popOperand(); err != nil {
			return v.fail(err)
		}
		return nil

	case codegen.DUP:
		if len(v.operand) == 0 {
			return v.fail(ErrStackUnderflow)
		}
		if err := v.pushOperand(v.operand[len(v.operand)-1]); err != nil {
			return v.fail(err)
		}
		return nil

	case codegen.ADD:
		return v.binaryOp(func(a, b int32) (int32, error) { return a + b, nil })
	case codegen.SUB:
		return v.binaryOp(func(a, b int32) (int32, error) { return a - b, nil })
	case codegen.MUL:
		return v.binaryOp(func(a, b int32) (int32, error) { return a * b, nil })
	case codegen.DIV:
		return v.execDiv()

	case codegen.CMP:
		return v.binaryOp(func(a, b int32) (int32, error) { return boolToInt32(a < b), nil })
	case codegen.CMP_EQ:
		return v.binaryOp(func(a, b int32) (int32, error) { return boolToInt32(a == b), nil })
	case codegen.CMP_NE:
		return v.binaryOp(func(a, b int32) (int32, error) { return boolToInt32(a != b), nil })
	case codegen.CMP_GT:
		return v.binaryOp(func(a, b int32) (int32, error) { return boolToInt32(a > b), nil })
	case codegen.CMP_LE:
		return v.binaryOp(func(a, b int32) (int32, error) { return boolToInt32(a <= b), nil })
	case codegen.CMP_GE:
		return v.binaryOp(func(a, b int32) (int32, error) { return boolToInt32(a >= b), nil })

	case codegen.JMP:
		target, err := v.readImmediate()
		if err != nil {
			return err
		}
		return v.jumpTo(target)

	case codegen.JZ:
		target, err := v.readImmediate()
		if err != nil {
			return err
		}
		val, err := v.popOperand()
		if err != nil {
			return v.fail(err)
		}
		if val == 0 {
			return v.jumpTo(target)
		}
		return nil

	case codegen.JNZ:
		target, err := v.readImmediate()
		if err != nil {
			return err
		}
		val, err := v.popOperand()
		if err != nil {
			return v.fail(err)
		}
		if val != 0 {
			return v.jumpTo(target)
		}
		return nil

	case codegen.STORE:
		slot, err := v.readImmediate()
		if err != nil {
			return err
		}
		val, err := v.popOperand()
		if err != nil {
			return v.fail(err)
		}
		if slot < 0 || int(slot) >= MemorySize {
			return v.fail(ErrMemoryBounds)
		}
		v.memory[slot] = val
		return nil

	case codegen.LOAD:
		slot, err := v.readImmediate()
		if err != nil {
			return err
		}
		if slot < 0 || int(slot) >= MemorySize {
			return v.fail(ErrMemoryBounds)
		}
		if err := v.pushOperand(v.memory[slot]); err != nil {
			return v.fail(err)
		}
		return nil

	case codegen.CALL:
		target, err := v.readImmediate()
		if err != nil {
			return err
		}
		if err := v.pushReturn(int32(v.pc)); err != nil {
			return v.fail(err)
		}
		return v.jumpTo(target)

	case codegen.RET:
		addr, err := v.popReturn()
		if err != nil {
			return v.fail(err)
		}
		return v.jumpTo(addr)

	case codegen.PRINT:
		val, err := v.popOperand()
		if err != nil {
			return v.fail(err)
		}
		fmt.Fprintln(v.Stdout, val)
		v.Stdout.Flush()
		return nil

	case codegen.HALT:
		return nil

	default:
		return v.fail(ErrInvalidOpcode)
	}
}

// execDiv handles DIV outside the generic binaryOp helper because the
// division-by-zero check must run immediately after popping b, before a is
// ever popped, matching _examples/original_source/day1/vm.c's OP_DIV: a
// zero divisor leaves a still on the operand stack rather than draining
// both operands first.
func (v *VM) execDiv() error {
	b, err := v.popOperand()
	if err != nil {
		return v.fail(err)
	}
	if b == 0 {
		return v.fail(ErrDivisionByZero)
	}
	a, err := v.popOperand()
	if err != nil {
		return v.fail(err)
	}
	if err := v.pushOperand(a / b); err != nil {
		return v.fail(err)
	}
	return nil
}

func (v *VM) binaryOp(f func(a, b int32) (int32, error)) error {
	b, err := v.popOperand()
	if err != nil {
		return v.fail(err)
	}
	a, err := v.popOperand()
	if err != nil {
		return v.fail(err)
	}
	result, err := f(a, b)
	if err != nil {
		return v.fail(err)
	}
	if err := v.pushOperand(result); err != nil {
		return v.fail(err)
	}
	return nil
}

func (v *VM) jumpTo(target int32) error {
	if target < 0 || int(target) > len(v.code) {
		return v.fail(ErrCodeBounds)
	}
	v.pc = int(target)
	return nil
}
