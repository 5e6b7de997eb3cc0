package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads the small S-expression encoding used by cmd/toyvm's `submit`
// command to turn the deliberately out-of-scope front end (spec.md §1 keeps
// the tokenizer/grammar out of the core) into the tagged Node tree the
// codegen package consumes. It exists only to give the CLI something to
// feed a program with; it is not part of the toy language's own grammar.
//
// Grammar (one node per parenthesized form; line numbers are explicit
// since there is no tokenizer assigning them from source text):
//
//	(int <line> <n>)
//	(var <line> <name>)
//	(op <line> <op> <left> <right>)          op ∈ + - * / < > <= >= == !=
//	(decl <line> <name> [<init>])
//	(assign <line> <name> <value>)
//	(if <line> <cond> <then> [<else>])
//	(while <line> <cond> <body>)
//	(seq <line> <first> <second>)
//	(print <line> <expr>)
func Parse(src string) (*Node, error) {
	p := &sexprParser{toks: tokenize(src)}
	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("ast: trailing input after top-level form")
	}
	return node, nil
}

func tokenize(src string) []string {
	var toks []string
	var buf strings.Builder
	flush := func() {
		if buf.Len() > 0 {
			toks = append(toks, buf.String())
			buf.Reset()
		}
	}

	runes := []rune(src)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == '"':
			flush()
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			toks = append(toks, string(runes[i:j+1]))
			i = j
		case c == '(' || c == ')':
			flush()
			toks = append(toks, string(c))
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			buf.WriteRune(c)
		}
	}
	flush()
	return toks
}

type sexprParser struct {
	toks []string
	pos  int
}

func (p *sexprParser) peek() (string, bool) {
	if p.pos >= len(p.toks) {
		return "", false
	}
	return p.toks[p.pos], true
}

func (p *sexprParser) next() (string, error) {
	tok, ok := p.peek()
	if !ok {
		return "", fmt.Errorf("ast: unexpected end of input")
	}
	p.pos++
	return tok, nil
}

func (p *sexprParser) expect(tok string) error {
	got, err := p.next()
	if err != nil {
		return err
	}
	if got != tok {
		return fmt.Errorf("ast: expected %q, got %q", tok, got)
	}
	return nil
}

func (p *sexprParser) parseInt() (int, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("ast: invalid integer %q: %w", tok, err)
	}
	return n, nil
}

func (p *sexprParser) parseString() (string, error) {
	tok, err := p.next()
	if err != nil {
		return "", err
	}
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", fmt.Errorf("ast: expected quoted string, got %q", tok)
	}
	return tok[1 : len(tok)-1], nil
}

func opFromString(s string) (Op, error) {
	switch s {
	case "+":
		return ADD, nil
	case "-":
		return SUB, nil
	case "*":
		return MUL, nil
	case "/":
		return DIV, nil
	case "<":
		return LT, nil
	case ">":
		return GT, nil
	case "<=":
		return LE, nil
	case ">=":
		return GE, nil
	case "==":
		return EQ, nil
	case "!=":
		return NEQ, nil
	default:
		return 0, fmt.Errorf("ast: unknown operator %q", s)
	}
}

// parseNode parses one `(tag ...)` form. It is the only entry point used
// recursively for child nodes, and for optional trailing children it peeks
// for a closing ')' before committing to another recursive parse.
func (p *sexprParser) parseNode() (*Node, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}

	tag, err := p.next()
	if err != nil {
		return nil, err
	}

	var node *Node
	switch tag {
	case "int":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		n, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		node = Int(line, int32(n))

	case "var":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		node = Var(line, name)

	case "op":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		opTok, err := p.next()
		if err != nil {
			return nil, err
		}
		op, err := opFromString(opTok)
		if err != nil {
			return nil, err
		}
		left, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		right, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		node = Binary(line, op, left, right)

	case "decl":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		var init *Node
		if tok, ok := p.peek(); ok && tok != ")" {
			init, err = p.parseNode()
			if err != nil {
				return nil, err
			}
		}
		node = Decl(line, name, init)

	case "assign":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		name, err := p.parseString()
		if err != nil {
			return nil, err
		}
		value, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		node = Assign(line, name, value)

	case "if":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		cond, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		thenBranch, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		var elseBranch *Node
		if tok, ok := p.peek(); ok && tok != ")" {
			elseBranch, err = p.parseNode()
			if err != nil {
				return nil, err
			}
		}
		node = If(line, cond, thenBranch, elseBranch)

	case "while":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		cond, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		body, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		node = While(line, cond, body)

	case "seq":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		first, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		second, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		node = Seq(line, first, second)

	case "print":
		line, err := p.parseInt()
		if err != nil {
			return nil, err
		}
		expr, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		node = Print(line, expr)

	default:
		return nil, fmt.Errorf("ast: unknown node tag %q", tag)
	}

	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return node, nil
}
