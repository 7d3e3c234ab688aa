// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"
)

func parseSource(t *testing.T, source string) *File {
	t.Helper()
	file, err := NewParser().Parse(context.Background(), []byte(source), "test.py")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return file
}

func singleNode[T pyast.Node](t *testing.T, source string) T {
	t.Helper()
	file := parseSource(t, source)
	if len(file.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1: %#v", len(file.Nodes), file.Nodes)
	}
	node, ok := file.Nodes[0].(T)
	if !ok {
		t.Fatalf("node is %T, want %T", file.Nodes[0], node)
	}
	return node
}

func TestParse_Import(t *testing.T) {
	imp := singleNode[*pyast.Import](t, "import os, pdb as debugger\n")
	if len(imp.Names) != 2 {
		t.Fatalf("got %d names, want 2", len(imp.Names))
	}
	if imp.Names[0].Name != "os" || imp.Names[0].AsName != "" {
		t.Errorf("names[0] = %+v", imp.Names[0])
	}
	if imp.Names[1].Name != "pdb" || imp.Names[1].AsName != "debugger" {
		t.Errorf("names[1] = %+v", imp.Names[1])
	}
	if imp.Pos().Line != 1 {
		t.Errorf("line = %d, want 1", imp.Pos().Line)
	}
}

func TestParse_ImportFrom(t *testing.T) {
	imp := singleNode[*pyast.ImportFrom](t, "from os.path import relpath as rp, join\n")
	if imp.Module != "os.path" {
		t.Errorf("module = %q, want os.path", imp.Module)
	}
	if len(imp.Names) != 2 {
		t.Fatalf("got %d names, want 2: %+v", len(imp.Names), imp.Names)
	}
	if imp.Names[0].Name != "relpath" || imp.Names[0].AsName != "rp" {
		t.Errorf("names[0] = %+v", imp.Names[0])
	}
	if imp.Names[1].Name != "join" {
		t.Errorf("names[1] = %+v", imp.Names[1])
	}
}

func TestParse_ImportFrom_Wildcard(t *testing.T) {
	imp := singleNode[*pyast.ImportFrom](t, "from os import *\n")
	if imp.Module != "os" {
		t.Errorf("module = %q, want os", imp.Module)
	}
	if len(imp.Names) != 0 {
		t.Errorf("wildcard import should have no names: %+v", imp.Names)
	}
}

func TestParse_QualifiedCall(t *testing.T) {
	call := singleNode[*pyast.Call](t, `subprocess.run("ls", shell=True)`+"\n")

	fn, ok := call.Func.(*pyast.Attribute)
	if !ok {
		t.Fatalf("Func is %T, want *Attribute", call.Func)
	}
	base, ok := fn.Value.(*pyast.Name)
	if !ok || base.ID != "subprocess" || fn.Attr != "run" {
		t.Fatalf("callee = %v.%s", fn.Value, fn.Attr)
	}

	if len(call.Args) != 1 {
		t.Fatalf("got %d args, want 1", len(call.Args))
	}
	arg, ok := call.Args[0].(*pyast.Const)
	if !ok || arg.Kind != pyast.ConstString || arg.Str != "ls" {
		t.Errorf("args[0] = %#v", call.Args[0])
	}

	if len(call.Keywords) != 1 {
		t.Fatalf("got %d keywords, want 1", len(call.Keywords))
	}
	kw := call.Keywords[0]
	if kw.Arg != "shell" {
		t.Errorf("keyword = %q, want shell", kw.Arg)
	}
	val, ok := kw.Value.(*pyast.Const)
	if !ok || val.Kind != pyast.ConstBool || !val.Bool {
		t.Errorf("keyword value = %#v", kw.Value)
	}
}

func TestParse_IntegerLiterals(t *testing.T) {
	tests := []struct {
		source string
		want   int64
	}{
		{"f(0o755)", 0o755},
		{"f(493)", 493},
		{"f(0x1FF)", 0x1FF},
		{"f(0b111)", 7},
		{"f(1_000)", 1000},
	}
	for _, tc := range tests {
		call := singleNode[*pyast.Call](t, tc.source+"\n")
		if len(call.Args) != 1 {
			t.Fatalf("%s: got %d args", tc.source, len(call.Args))
		}
		c, ok := call.Args[0].(*pyast.Const)
		if !ok || c.Kind != pyast.ConstInt {
			t.Fatalf("%s: arg = %#v", tc.source, call.Args[0])
		}
		if c.Int != tc.want {
			t.Errorf("%s: value = %d, want %d", tc.source, c.Int, tc.want)
		}
	}
}

func TestParse_StringLiterals(t *testing.T) {
	tests := []struct {
		source   string
		want     string
		wantKind pyast.ConstKind
	}{
		{`f('w')`, "w", pyast.ConstString},
		{`f("a+b")`, "a+b", pyast.ConstString},
		{`f(b'x')`, "x", pyast.ConstBytes},
		{`f(r"raw")`, "raw", pyast.ConstString},
		{`f("""doc""")`, "doc", pyast.ConstString},
	}
	for _, tc := range tests {
		call := singleNode[*pyast.Call](t, tc.source+"\n")
		c, ok := call.Args[0].(*pyast.Const)
		if !ok {
			t.Fatalf("%s: arg = %#v", tc.source, call.Args[0])
		}
		if c.Kind != tc.wantKind || c.Str != tc.want {
			t.Errorf("%s: got kind=%v str=%q, want kind=%v str=%q",
				tc.source, c.Kind, c.Str, tc.wantKind, tc.want)
		}
	}
}

func TestParse_ModeExpression(t *testing.T) {
	call := singleNode[*pyast.Call](t, "os.chmod('f', ~0o022 & 0o777)\n")
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}

	bin, ok := call.Args[1].(*pyast.BinOp)
	if !ok || bin.Op != pyast.BinBitAnd {
		t.Fatalf("args[1] = %#v", call.Args[1])
	}
	unary, ok := bin.Left.(*pyast.UnaryOp)
	if !ok || unary.Op != pyast.UnaryInvert {
		t.Fatalf("left = %#v", bin.Left)
	}
	operand, ok := unary.Operand.(*pyast.Const)
	if !ok || operand.Int != 0o022 {
		t.Fatalf("operand = %#v", unary.Operand)
	}
	right, ok := bin.Right.(*pyast.Const)
	if !ok || right.Int != 0o777 {
		t.Fatalf("right = %#v", bin.Right)
	}
}

func TestParse_StatConstants(t *testing.T) {
	call := singleNode[*pyast.Call](t, "os.chmod('f', stat.S_IRUSR | stat.S_IWUSR)\n")
	bin, ok := call.Args[1].(*pyast.BinOp)
	if !ok || bin.Op != pyast.BinBitOr {
		t.Fatalf("args[1] = %#v", call.Args[1])
	}
	left, ok := bin.Left.(*pyast.Attribute)
	if !ok || left.Attr != "S_IRUSR" {
		t.Fatalf("left = %#v", bin.Left)
	}
	base, ok := left.Value.(*pyast.Name)
	if !ok || base.ID != "stat" {
		t.Fatalf("left base = %#v", left.Value)
	}
}

func TestParse_With(t *testing.T) {
	file := parseSource(t, `with open("f", "w") as fd:
    fd.write(data)
`)
	if len(file.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %#v", len(file.Nodes), file.Nodes)
	}

	with, ok := file.Nodes[0].(*pyast.With)
	if !ok {
		t.Fatalf("nodes[0] is %T, want *With", file.Nodes[0])
	}
	if len(with.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(with.Items))
	}
	call, ok := with.Items[0].ContextExpr.(*pyast.Call)
	if !ok {
		t.Fatalf("context expr = %#v", with.Items[0].ContextExpr)
	}
	if fn, ok := call.Func.(*pyast.Name); !ok || fn.ID != "open" {
		t.Errorf("context callee = %#v", call.Func)
	}

	// The body call is collected; the with-item call is not duplicated.
	body, ok := file.Nodes[1].(*pyast.Call)
	if !ok {
		t.Fatalf("nodes[1] is %T, want *Call", file.Nodes[1])
	}
	if fn, ok := body.Func.(*pyast.Attribute); !ok || fn.Attr != "write" {
		t.Errorf("body callee = %#v", body.Func)
	}
}

func TestParse_WithItemNestedCalls(t *testing.T) {
	file := parseSource(t, `with open(build_path(), "w") as fh:
    pass
`)
	// The context-manager call is owned by the With node, but the call
	// nested in its arguments is a standalone call site.
	if len(file.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %#v", len(file.Nodes), file.Nodes)
	}
	if _, ok := file.Nodes[0].(*pyast.With); !ok {
		t.Fatalf("nodes[0] is %T, want *With", file.Nodes[0])
	}
	nested, ok := file.Nodes[1].(*pyast.Call)
	if !ok {
		t.Fatalf("nodes[1] is %T, want *Call", file.Nodes[1])
	}
	if fn, ok := nested.Func.(*pyast.Name); !ok || fn.ID != "build_path" {
		t.Errorf("nested callee = %#v", nested.Func)
	}
}

func TestParse_WithMultipleItems(t *testing.T) {
	file := parseSource(t, `with open("a") as a, open("b", "w") as b:
    pass
`)
	with, ok := file.Nodes[0].(*pyast.With)
	if !ok {
		t.Fatalf("nodes[0] is %T, want *With", file.Nodes[0])
	}
	if len(with.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(with.Items))
	}
	for i, item := range with.Items {
		if _, ok := item.ContextExpr.(*pyast.Call); !ok {
			t.Errorf("items[%d] = %#v", i, item.ContextExpr)
		}
	}
}

func TestParse_Assert(t *testing.T) {
	file := parseSource(t, "assert x > 0, 'must be positive'\n")
	if len(file.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(file.Nodes))
	}
	if _, ok := file.Nodes[0].(*pyast.Assert); !ok {
		t.Fatalf("nodes[0] is %T, want *Assert", file.Nodes[0])
	}
}

func TestParse_AssertWithCall(t *testing.T) {
	file := parseSource(t, "assert eval(check)\n")
	if len(file.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %#v", len(file.Nodes), file.Nodes)
	}
	if _, ok := file.Nodes[0].(*pyast.Assert); !ok {
		t.Errorf("nodes[0] is %T, want *Assert", file.Nodes[0])
	}
	if _, ok := file.Nodes[1].(*pyast.Call); !ok {
		t.Errorf("nodes[1] is %T, want *Call", file.Nodes[1])
	}
}

func TestParse_NestedCalls(t *testing.T) {
	file := parseSource(t, "print(eval(expr))\n")
	if len(file.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(file.Nodes))
	}
	outer := file.Nodes[0].(*pyast.Call)
	inner := file.Nodes[1].(*pyast.Call)
	if fn := outer.Func.(*pyast.Name); fn.ID != "print" {
		t.Errorf("outer = %s", fn.ID)
	}
	if fn := inner.Func.(*pyast.Name); fn.ID != "eval" {
		t.Errorf("inner = %s", fn.ID)
	}
}

func TestParse_CallsInsideDefinitions(t *testing.T) {
	file := parseSource(t, `def handler(data):
    return eval(data)

class Runner:
    def go(self):
        os.system("ls")
`)
	if len(file.Nodes) != 2 {
		t.Fatalf("got %d nodes, want 2: %#v", len(file.Nodes), file.Nodes)
	}
}

func TestParse_SplatArguments(t *testing.T) {
	call := singleNode[*pyast.Call](t, "subprocess.run(*args, **kwargs)\n")
	if len(call.Args) != 2 {
		t.Fatalf("got %d args, want 2", len(call.Args))
	}
	for i, arg := range call.Args {
		if _, ok := arg.(*pyast.Opaque); !ok {
			t.Errorf("args[%d] = %T, want *Opaque", i, arg)
		}
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	file := parseSource(t, "def broken(:\n    eval(x)\n")
	if !file.HasSyntaxErrors {
		t.Error("expected HasSyntaxErrors")
	}
}

func TestParse_Limits(t *testing.T) {
	parser := NewParser(WithMaxFileSize(16))
	_, err := parser.Parse(context.Background(), bytes.Repeat([]byte("x"), 32), "big.py")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("error = %v, want ErrFileTooLarge", err)
	}

	_, err = NewParser().Parse(context.Background(), []byte{0xff, 0xfe, 0x00}, "bad.py")
	if !errors.Is(err, ErrInvalidContent) {
		t.Errorf("error = %v, want ErrInvalidContent", err)
	}
}

func TestParse_Position(t *testing.T) {
	file := parseSource(t, "\n\nx = eval(source)\n")
	if len(file.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(file.Nodes))
	}
	pos := file.Nodes[0].Pos()
	if pos.Line != 3 {
		t.Errorf("line = %d, want 3", pos.Line)
	}
	if pos.Col != 4 {
		t.Errorf("col = %d, want 4", pos.Col)
	}
}

func TestStringLiteralValue(t *testing.T) {
	tests := []struct {
		raw       string
		want      string
		wantBytes bool
	}{
		{`'w'`, "w", false},
		{`"w"`, "w", false},
		{`b'x'`, "x", true},
		{`rb"y"`, "y", true},
		{`'''triple'''`, "triple", false},
		{`""`, "", false},
	}
	for _, tc := range tests {
		got, isBytes := stringLiteralValue(tc.raw)
		if got != tc.want || isBytes != tc.wantBytes {
			t.Errorf("stringLiteralValue(%q) = (%q, %v), want (%q, %v)",
				tc.raw, got, isBytes, tc.want, tc.wantBytes)
		}
	}
}
