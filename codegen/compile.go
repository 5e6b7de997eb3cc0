package codegen

import (
	"encoding/binary"
	"fmt"

	"toyvm/ast"
)

// compiler holds the package-level state original_source/codegen.c keeps as
// file-scope globals (code buffer, cursor, symbol table, source map),
// scoped here to a single Compile call instead, per
// _examples/KTStephano-GVM/vm/compile.go's compileState pattern.
type compiler struct {
	code      []byte
	vars      []string
	sourceMap []SourceMapEntry
}

// Compile lowers an AST into a Program, implementing the table in
// spec.md §4.1. Grounded on _examples/original_source/codegen.c for the
// lowering rules themselves and on
// _examples/KTStephano-GVM/vm/compile.go for emit/patch helpers.
func Compile(root *ast.Node) (*Program, error) {
	c := &compiler{}
	if err := c.lower(root); err != nil {
		return nil, err
	}
	if err := c.emit1(HALT); err != nil {
		return nil, err
	}

	p := &Program{Code: c.code, Vars: c.vars, SourceMap: c.sourceMap}
	p.rebuildLineIndex()
	return p, nil
}

func (c *compiler) emit1(op Opcode) error {
	if len(c.code)+1 > MaxCodeSize {
		return fmt.Errorf("codegen: code buffer overflow emitting %s", op)
	}
	c.code = append(c.code, byte(op))
	return nil
}

func (c *compiler) emitImm(op Opcode, imm int32) error {
	if len(c.code)+5 > MaxCodeSize {
		return fmt.Errorf("codegen: code buffer overflow emitting %s", op)
	}
	c.code = append(c.code, byte(op))
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(imm))
	c.code = append(c.code, buf[:]...)
	return nil
}

// emitJump emits op with a placeholder offset and returns the position of
// that placeholder for a later patchJump call.
func (c *compiler) emitJump(op Opcode) (int, error) {
	if err := c.emitImm(op, 0); err != nil {
		return 0, err
	}
	return len(c.code) - 4, nil
}

func (c *compiler) patchJump(patchAt int) {
	target := int32(len(c.code))
	binary.LittleEndian.PutUint32(c.code[patchAt:patchAt+4], uint32(target))
}

// recordLine appends a (current offset, line) source-map entry for a node
// with a positive line, mirroring original_source/codegen.c's
// add_source_map, which is called unconditionally before lowering any node
// with line_number > 0. Nested nodes on one line therefore add several
// entries, possibly at the same offset.
func (c *compiler) recordLine(line int) {
	if line <= 0 {
		return
	}
	c.sourceMap = append(c.sourceMap, SourceMapEntry{Offset: len(c.code), Line: line})
}

// slot returns the memory slot for name, allocating the next free slot the
// first time name is seen (original_source/codegen.c's find_or_add_var).
func (c *compiler) slot(name string) (int, error) {
	for i, n := range c.vars {
		if n == name {
			return i, nil
		}
	}
	if len(c.vars) >= MaxVars {
		return 0, fmt.Errorf("codegen: too many variables, limit is %d", MaxVars)
	}
	c.vars = append(c.vars, name)
	return len(c.vars) - 1, nil
}

var binaryOpcodes = map[ast.Op]Opcode{
	ast.ADD: ADD,
	ast.SUB: SUB,
	ast.MUL: MUL,
	ast.DIV: DIV,
	ast.LT:  CMP, // CMP's semantics are specifically pop b, pop a, push (a<b)
	ast.GT:  CMP_GT,
	ast.LE:  CMP_LE,
	ast.GE:  CMP_GE,
	ast.EQ:  CMP_EQ,
	ast.NEQ: CMP_NE,
}

// lower dispatches on node.Kind, emitting bytecode per spec.md §4.1's
// lowering table.
func (c *compiler) lower(n *ast.Node) error {
	if n == nil {
		return nil
	}
	c.recordLine(n.Line)

	switch n.Kind {
	case ast.NodeInt:
		return c.emitImm(PUSH, n.IntValue)

	case ast.NodeVar:
		slot, err := c.slot(n.Name)
		if err != nil {
			return err
		}
		return c.emitImm(LOAD, int32(slot))

	case ast.NodeOp:
		return c.lowerOp(n)

	case ast.NodeDecl:
		if n.Left != nil {
			if err := c.lower(n.Left); err != nil {
				return err
			}
		} else {
			if err := c.emitImm(PUSH, 0); err != nil {
				return err
			}
		}
		slot, err := c.slot(n.Name)
		if err != nil {
			return err
		}
		return c.emitImm(STORE, int32(slot))

	case ast.NodeAssign:
		if err := c.lower(n.Left); err != nil {
			return err
		}
		slot, err := c.slot(n.Name)
		if err != nil {
			return err
		}
		return c.emitImm(STORE, int32(slot))

	case ast.NodeIf:
		return c.lowerIf(n)

	case ast.NodeWhile:
		return c.lowerWhile(n)

	case ast.NodeSeq:
		if err := c.lower(n.Left); err != nil {
			return err
		}
		return c.lower(n.Right)

	case ast.NodePrint:
		if err := c.lower(n.Left); err != nil {
			return err
		}
		return c.emit1(PRINT)

	default:
		return fmt.Errorf("codegen: unknown node kind %s at line %d", n.Kind, n.Line)
	}
}

// lowerOp lowers a binary operator: lower L, lower R, emit the opcode for
// op, per spec.md §4.1.
func (c *compiler) lowerOp(n *ast.Node) error {
	if err := c.lower(n.Left); err != nil {
		return err
	}
	if err := c.lower(n.Right); err != nil {
		return err
	}
	op, ok := binaryOpcodes[n.BinOp]
	if !ok {
		return fmt.Errorf("codegen: unsupported operator %s at line %d", n.BinOp, n.Line)
	}
	return c.emit1(op)
}

// lowerIf implements: cond; JZ else_or_end; then; [JMP end; else]; end.
func (c *compiler) lowerIf(n *ast.Node) error {
	if err := c.lower(n.Cond); err != nil {
		return err
	}
	jzPatch, err := c.emitJump(JZ)
	if err != nil {
		return err
	}
	if err := c.lower(n.Then); err != nil {
		return err
	}

	if n.Else != nil {
		jmpPatch, err := c.emitJump(JMP)
		if err != nil {
			return err
		}
		c.patchJump(jzPatch)
		if err := c.lower(n.Else); err != nil {
			return err
		}
		c.patchJump(jmpPatch)
	} else {
		c.patchJump(jzPatch)
	}
	return nil
}

// lowerWhile implements: loop: cond; JZ end; body; JMP loop; end.
func (c *compiler) lowerWhile(n *ast.Node) error {
	loopStart := len(c.code)
	if err := c.lower(n.Cond); err != nil {
		return err
	}
	jzPatch, err := c.emitJump(JZ)
	if err != nil {
		return err
	}
	if err := c.lower(n.Then); err != nil {
		return err
	}
	if _, err := c.emitJump(JMP); err != nil {
		return err
	}
	// Patch the JMP just emitted to branch back to loopStart.
	binary.LittleEndian.PutUint32(c.code[len(c.code)-4:], uint32(loopStart))
	c.patchJump(jzPatch)
	return nil
}
