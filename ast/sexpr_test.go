package ast

import "testing"

func TestParseSimpleDecl(t *testing.T) {
	node, err := Parse(`(decl 1 "x" (int 1 5))`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if node.Kind != NodeDecl || node.Name != "x" {
		t.Fatalf("unexpected node: %+v", node)
	}
	if node.Left == nil || node.Left.Kind != NodeInt || node.Left.IntValue != 5 {
		t.Fatalf("unexpected init: %+v", node.Left)
	}
}

func TestParseDeclWithoutInit(t *testing.T) {
	node, err := Parse(`(decl 1 "x")`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if node.Left != nil {
		t.Fatalf("expected nil init, got %+v", node.Left)
	}
}

func TestParseIfElse(t *testing.T) {
	node, err := Parse(`(if 1 (op 1 == (int 1 1) (int 1 2)) (print 1 (int 1 10)) (print 1 (int 1 20)))`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if node.Kind != NodeIf || node.Else == nil {
		t.Fatalf("expected if/else, got %+v", node)
	}
}

func TestParseWhileLoop(t *testing.T) {
	src := `(seq 0
		(decl 1 "i" (int 1 0))
		(while 2 (op 2 < (var 2 "i") (int 2 3))
			(seq 2
				(print 2 (var 2 "i"))
				(assign 3 "i" (op 3 + (var 3 "i") (int 3 1))))))`
	node, err := Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if node.Kind != NodeSeq {
		t.Fatalf("expected seq root, got %+v", node)
	}
}

func TestParseRejectsUnknownTag(t *testing.T) {
	if _, err := Parse(`(bogus 1)`); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}

func TestParseRejectsTrailingInput(t *testing.T) {
	if _, err := Parse(`(int 1 5) (int 1 6)`); err == nil {
		t.Fatalf("expected error for trailing input")
	}
}
