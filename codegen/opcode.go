// Package codegen lowers an ast.Node tree into the linear bytecode the vm
// package executes, emitting a source map alongside it.
//
// Grounded on _examples/original_source/codegen.c for lowering semantics
// and on _examples/KTStephano-GVM/vm/compile.go for the Go shape: a
// dedicated compile-time package with emit/patch helpers and package-level
// state scoped to a single compile call.
package codegen

// Opcode is a single-byte bytecode instruction. Opcodes live in their own
// namespace from ast.Op so the AST's operator tags and the VM's
// instructions never share identifiers (spec.md §9 "Opcode name
// collision"); codegen's lowering table is the only bridge between them.
//
// Values are grouped by family (stack 0x0_, arithmetic 0x1_, comparison
// 0x2_, memory 0x3_, control flow 0x4_, PRINT 0x50, HALT 0xFF) to match
// the wire bytes spec.md §8 scenario 1 specifies for `int x = 5;
// print(x+3);`.
type Opcode byte

const (
	POP  Opcode = 0x00
	PUSH Opcode = 0x01
	DUP  Opcode = 0x02

	ADD Opcode = 0x10
	SUB Opcode = 0x11
	MUL Opcode = 0x12
	DIV Opcode = 0x13

	CMP    Opcode = 0x20
	CMP_EQ Opcode = 0x21
	CMP_NE Opcode = 0x22
	CMP_GT Opcode = 0x23
	CMP_LE Opcode = 0x24
	CMP_GE Opcode = 0x25

	STORE Opcode = 0x30
	LOAD  Opcode = 0x31

	JMP  Opcode = 0x40
	JZ   Opcode = 0x41
	JNZ  Opcode = 0x42
	CALL Opcode = 0x43
	RET  Opcode = 0x44

	PRINT Opcode = 0x50

	HALT Opcode = 0xFF
)

var opcodeNames = map[Opcode]string{
	POP:    "POP",
	PUSH:   "PUSH",
	DUP:    "DUP",
	ADD:    "ADD",
	SUB:    "SUB",
	MUL:    "MUL",
	DIV:    "DIV",
	CMP:    "CMP",
	CMP_EQ: "CMP_EQ",
	CMP_NE: "CMP_NE",
	CMP_GT: "CMP_GT",
	CMP_LE: "CMP_LE",
	CMP_GE: "CMP_GE",
	STORE:  "STORE",
	LOAD:   "LOAD",
	JMP:    "JMP",
	JZ:     "JZ",
	JNZ:    "JNZ",
	CALL:   "CALL",
	RET:    "RET",
	PRINT:  "PRINT",
	HALT:   "HALT",
}

func (op Opcode) String() string {
	if s, ok := opcodeNames[op]; ok {
		return s
	}
	return "?opcode?"
}

// HasImmediate reports whether op is followed by a four-byte little-endian
// immediate in the instruction stream.
func (op Opcode) HasImmediate() bool {
	switch op {
	case PUSH, JMP, JZ, JNZ, STORE, LOAD, CALL:
		return true
	default:
		return false
	}
}

// IsValid reports whether b names a known opcode, used by the vm package
// to raise the "invalid opcode" error kind.
func IsValid(b byte) bool {
	_, ok := opcodeNames[Opcode(b)]
	return ok
}
