// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pyast defines the Python syntax-node model consumed by the
// secure-coding-standard checker.
//
// The checker never constructs these nodes itself; the host (normally
// services/scanner, but any embedder with its own Python front end) builds
// them and drives the checker's visitor methods. The node set is a closed
// sum type over exactly the variants the rules inspect:
//
//	Call, Attribute, Name, Const, UnaryOp, BinOp, Keyword,
//	Import, ImportFrom, With, Assert, Opaque
//
// Anything the host cannot express with these variants is represented as an
// Opaque node. Matchers treat Opaque as "does not match" and the permission
// evaluator treats it as "cannot be statically resolved", so an incomplete
// conversion degrades to fewer findings, never to wrong ones.
//
// Design principles:
//   - Closed sum type: the node() marker keeps the variant set fixed
//   - Positions on every node (1-based line, 0-based column)
//   - No behavior beyond simple accessors - the engine owns all logic
package pyast

// Position locates a node in its source file. Line is 1-based, Col is
// 0-based, matching tree-sitter's row/column convention shifted to the
// line numbering linters report.
type Position struct {
	Line int
	Col  int
}

// Pos returns the position itself so that embedding Position satisfies
// the Node interface's position accessor.
func (p Position) Pos() Position { return p }

func (Position) node() {}

// Node is the interface implemented by all syntax-node variants.
//
// The node() marker method is unexported: the variant set is closed and
// hosts cannot add new kinds. Type-switching over Node is exhaustive for
// the types declared in this package.
type Node interface {
	Pos() Position
	node()
}

// Name is a bare identifier reference, e.g. `eval` or `mode`.
type Name struct {
	Position
	ID string
}

// Attribute is a dotted access, e.g. `os.system` (Value=Name{os},
// Attr="system") or `os.path.abspath` (Value=Attribute{os.path},
// Attr="abspath").
type Attribute struct {
	Position
	Value Node
	Attr  string
}

// ConstKind discriminates the literal variants a Const can hold.
type ConstKind int

const (
	// ConstNone is the Python `None` literal.
	ConstNone ConstKind = iota

	// ConstBool is `True` or `False`.
	ConstBool

	// ConstInt is an integer literal in any base.
	ConstInt

	// ConstFloat is a floating-point literal.
	ConstFloat

	// ConstString is a string literal (prefix and quotes stripped).
	ConstString

	// ConstBytes is a bytes literal (prefix and quotes stripped).
	ConstBytes
)

// Const is a compile-time literal directly visible in source.
type Const struct {
	Position
	Kind  ConstKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

// Truthy reports the Python truth value of the literal.
func (c *Const) Truthy() bool {
	switch c.Kind {
	case ConstNone:
		return false
	case ConstBool:
		return c.Bool
	case ConstInt:
		return c.Int != 0
	case ConstFloat:
		return c.Float != 0
	case ConstString, ConstBytes:
		return c.Str != ""
	}
	return false
}

// UnaryOperator enumerates the unary operators the permission evaluator
// understands.
type UnaryOperator int

const (
	// UnaryNeg is arithmetic negation, `-x`.
	UnaryNeg UnaryOperator = iota

	// UnaryPos is the no-op unary plus, `+x`.
	UnaryPos

	// UnaryInvert is bitwise inversion, `~x`.
	UnaryInvert

	// UnaryNot is logical negation, `not x`.
	UnaryNot
)

// UnaryOp applies a unary operator to one operand.
type UnaryOp struct {
	Position
	Op      UnaryOperator
	Operand Node
}

// BinOperator enumerates the binary operators the permission evaluator
// understands.
type BinOperator int

const (
	// BinAdd is `+`.
	BinAdd BinOperator = iota

	// BinSub is `-`.
	BinSub

	// BinMult is `*`.
	BinMult

	// BinDiv is `/`.
	BinDiv

	// BinFloorDiv is `//`.
	BinFloorDiv

	// BinMod is `%`.
	BinMod

	// BinBitXor is `^`.
	BinBitXor

	// BinBitOr is `|`.
	BinBitOr

	// BinBitAnd is `&`.
	BinBitAnd
)

// BinOp applies a binary operator to two operands, e.g.
// `stat.S_IRUSR | stat.S_IWUSR`.
type BinOp struct {
	Position
	Op    BinOperator
	Left  Node
	Right Node
}

// Keyword is a keyword argument at a call site, e.g. `shell=True`.
// Arg is empty for `**kwargs` splats.
type Keyword struct {
	Position
	Arg   string
	Value Node
}

// Call is a function or method invocation.
type Call struct {
	Position
	Func     Node
	Args     []Node
	Keywords []Keyword
}

// Alias is one imported name with its optional binding, e.g.
// `system as run` (Name="system", AsName="run"). AsName is empty when the
// name is not rebound.
type Alias struct {
	Name   string
	AsName string
}

// Import is an `import X[, Y as Z]` statement.
type Import struct {
	Position
	Names []Alias
}

// ImportFrom is a `from X import name[, name as alias]` statement.
// Names is empty for wildcard imports.
type ImportFrom struct {
	Position
	Module string
	Names  []Alias
}

// WithItem is one context-manager clause of a with statement. ContextExpr
// is nil when the clause could not be converted.
type WithItem struct {
	ContextExpr Node
}

// With is a `with ...:` statement. The statement itself carries no call
// node; only its items do.
type With struct {
	Position
	Items []WithItem
}

// Assert is an `assert ...` statement.
type Assert struct {
	Position
	Test Node
}

// Opaque stands in for any expression the host could not (or chose not to)
// convert: comprehensions, lambdas, subscripts, and so on.
type Opaque struct {
	Position
}

// Visitor is the callback surface a checker exposes to the host. The host
// walks its syntax tree depth-first and invokes the method matching each
// statement-level node kind. A non-nil error aborts the walk.
type Visitor interface {
	VisitCall(*Call) error
	VisitImport(*Import) error
	VisitImportFrom(*ImportFrom) error
	VisitWith(*With) error
	VisitAssert(*Assert) error
}
