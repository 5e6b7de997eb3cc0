package codegen

import (
	"encoding/binary"
	"fmt"
)

// MaxCodeSize caps the emitted bytecode buffer, matching
// _examples/original_source/codegen.h's MAX_CODE_SIZE.
const MaxCodeSize = 4096

// MaxVars caps the symbol table, matching codegen.h's MAX_CODEGEN_VARS.
const MaxVars = 128

// SourceMapEntry relates one bytecode offset to one source line.
type SourceMapEntry struct {
	Offset int
	Line   int
}

// Program is the immutable, append-only output of Compile: bytecode plus
// the symbol table and source map produced alongside it.
type Program struct {
	Code []byte

	// Vars is the symbol table in definition order; Vars[slot] is the name
	// declared or first used at that VM memory slot.
	Vars []string

	// SourceMap is kept in increasing-offset order, per spec.md §3.
	SourceMap []SourceMapEntry

	lineIndex map[int]int // source line -> first offset with that line
}

// LineForPC returns the source line of the highest-offset source-map entry
// whose offset is <= pc, or 0 if there is none. This is a read-only linear
// scan; spec.md §9 explicitly allows an indexed implementation as long as
// the semantics below are preserved.
func (p *Program) LineForPC(pc int) int {
	best := 0
	for _, e := range p.SourceMap {
		if e.Offset <= pc {
			best = e.Line
		} else {
			break
		}
	}
	return best
}

// PCForLine returns the offset of the first source-map entry recorded for
// line, or -1 if the line never emitted any code.
func (p *Program) PCForLine(line int) int {
	if p.lineIndex == nil {
		return -1
	}
	if off, ok := p.lineIndex[line]; ok {
		return off
	}
	return -1
}

// VarSlot returns the memory slot assigned to name, or -1 if name was never
// declared or assigned during compilation.
func (p *Program) VarSlot(name string) int {
	for i, n := range p.Vars {
		if n == name {
			return i
		}
	}
	return -1
}

// Encode serializes the program into the canonical wire representation
// from spec.md §6: raw code, then length-prefixed variable names, then
// (offset, line) pairs as 32-bit big-endian integers.
func (p *Program) Encode() []byte {
	buf := make([]byte, 0, len(p.Code)+64)

	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(p.Code)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, p.Code...)

	binary.BigEndian.PutUint32(tmp[:], uint32(len(p.Vars)))
	buf = append(buf, tmp[:]...)
	for _, name := range p.Vars {
		binary.BigEndian.PutUint32(tmp[:], uint32(len(name)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, name...)
	}

	binary.BigEndian.PutUint32(tmp[:], uint32(len(p.SourceMap)))
	buf = append(buf, tmp[:]...)
	for _, e := range p.SourceMap {
		binary.BigEndian.PutUint32(tmp[:], uint32(e.Offset))
		buf = append(buf, tmp[:]...)
		binary.BigEndian.PutUint32(tmp[:], uint32(e.Line))
		buf = append(buf, tmp[:]...)
	}
	return buf
}

// Decode reverses Encode, rebuilding the line index so PCForLine behaves
// identically to a freshly compiled Program.
func Decode(data []byte) (*Program, error) {
	read32 := func() (uint32, error) {
		if len(data) < 4 {
			return 0, fmt.Errorf("codegen: truncated program encoding")
		}
		v := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		return v, nil
	}

	codeLen, err := read32()
	if err != nil {
		return nil, err
	}
	if uint32(len(data)) < codeLen {
		return nil, fmt.Errorf("codegen: truncated code section")
	}
	code := append([]byte(nil), data[:codeLen]...)
	data = data[codeLen:]

	varCount, err := read32()
	if err != nil {
		return nil, err
	}
	vars := make([]string, 0, varCount)
	for i := uint32(0); i < varCount; i++ {
		nameLen, err := read32()
		if err != nil {
			return nil, err
		}
		if uint32(len(data)) < nameLen {
			return nil, fmt.Errorf("codegen: truncated variable name")
		}
		vars = append(vars, string(data[:nameLen]))
		data = data[nameLen:]
	}

	mapCount, err := read32()
	if err != nil {
		return nil, err
	}
	sourceMap := make([]SourceMapEntry, 0, mapCount)
	for i := uint32(0); i < mapCount; i++ {
		offset, err := read32()
		if err != nil {
			return nil, err
		}
		line, err := read32()
		if err != nil {
			return nil, err
		}
		sourceMap = append(sourceMap, SourceMapEntry{Offset: int(offset), Line: int(line)})
	}

	p := &Program{Code: code, Vars: vars, SourceMap: sourceMap}
	p.rebuildLineIndex()
	return p, nil
}

func (p *Program) rebuildLineIndex() {
	p.lineIndex = make(map[int]int, len(p.SourceMap))
	for _, e := range p.SourceMap {
		if _, ok := p.lineIndex[e.Line]; !ok {
			p.lineIndex[e.Line] = e.Offset
		}
	}
}
