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
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"
)

const (
	// DefaultMaxFileSize is the maximum file size the parser will accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024
)

// Parser errors.
var (
	// ErrFileTooLarge is returned when content exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds maximum size")

	// ErrInvalidContent is returned when content is not valid UTF-8.
	ErrInvalidContent = errors.New("content is not valid UTF-8")
)

// File is the parsed view of one Python source file: the statement-level
// nodes the checker visits, in source order.
type File struct {
	Path string

	// Nodes holds Call, Import, ImportFrom, With and Assert nodes in
	// depth-first source order. Calls bound as with-statement context
	// managers are not listed separately; they are reached through their
	// With node.
	Nodes []pyast.Node

	// HasSyntaxErrors reports whether tree-sitter found syntax errors.
	// Parsing is error-tolerant, so Nodes may still be non-empty.
	HasSyntaxErrors bool
}

// Parser converts Python source text into the pyast node model.
//
// Parser uses tree-sitter and is safe for concurrent use: each Parse call
// creates its own tree-sitter parser instance internally.
type Parser struct {
	maxFileSize int64
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithMaxFileSize sets the maximum file size the parser will accept.
func WithMaxFileSize(bytes int64) ParserOption {
	return func(p *Parser) {
		if bytes > 0 {
			p.maxFileSize = bytes
		}
	}
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxFileSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts Python source into the statement nodes the checker
// inspects. The parse is error-tolerant: syntactically broken files yield
// partial results with HasSyntaxErrors set rather than an error.
//
// Errors: ErrFileTooLarge, ErrInvalidContent, context cancellation, or a
// tree-sitter failure.
func (p *Parser) Parse(ctx context.Context, content []byte, path string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse canceled before start: %w", err)
	}
	if int64(len(content)) > p.maxFileSize {
		return nil, fmt.Errorf("%w: size %d exceeds limit %d", ErrFileTooLarge, len(content), p.maxFileSize)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w", ErrInvalidContent)
	}

	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	file := &File{Path: path}
	root := tree.RootNode()
	if root == nil {
		return file, nil
	}
	file.HasSyntaxErrors = root.HasError()
	collectNodes(root, content, &file.Nodes)
	return file, nil
}

// collectNodes walks the tree-sitter tree depth-first and appends the
// statement-level nodes the checker has visitor methods for. Nested calls
// are collected individually (a call in an argument list is still a call
// site), except for calls bound as with-items, which the With node owns.
func collectNodes(node *sitter.Node, content []byte, out *[]pyast.Node) {
	switch node.Type() {
	case "import_statement":
		if imp := convertImport(node, content); imp != nil {
			*out = append(*out, imp)
		}
		return

	case "import_from_statement":
		if imp := convertImportFrom(node, content); imp != nil {
			*out = append(*out, imp)
		}
		return

	case "with_statement":
		*out = append(*out, convertWith(node, content))
		// The context-manager calls belong to the With node and must not
		// be double-visited as standalone calls, but calls nested in
		// their arguments are still call sites.
		for _, value := range withItemValues(node) {
			if value.Type() == "call" {
				collectChildren(value, content, out)
			} else {
				collectNodes(value, content, out)
			}
		}
		if body := node.ChildByFieldName("body"); body != nil {
			collectChildren(body, content, out)
		}
		return

	case "assert_statement":
		// Calls inside the test expression are still call sites, so keep
		// descending after recording the statement.
		*out = append(*out, convertAssert(node, content))

	case "call":
		if call, ok := convertExpr(node, content).(*pyast.Call); ok {
			*out = append(*out, call)
		}
	}

	collectChildren(node, content, out)
}

func collectChildren(node *sitter.Node, content []byte, out *[]pyast.Node) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		collectNodes(node.NamedChild(i), content, out)
	}
}

// position converts a tree-sitter start point to the 1-based line /
// 0-based column convention of pyast.
func position(node *sitter.Node) pyast.Position {
	return pyast.Position{
		Line: int(node.StartPoint().Row) + 1,
		Col:  int(node.StartPoint().Column),
	}
}

func text(node *sitter.Node, content []byte) string {
	return string(content[node.StartByte():node.EndByte()])
}

// convertExpr maps a tree-sitter expression node to the pyast sum type.
// Shapes the rules never inspect come back as Opaque.
func convertExpr(node *sitter.Node, content []byte) pyast.Node {
	if node == nil {
		return nil
	}
	pos := position(node)

	switch node.Type() {
	case "identifier":
		return &pyast.Name{Position: pos, ID: text(node, content)}

	case "attribute":
		obj := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if obj == nil || attr == nil {
			return &pyast.Opaque{Position: pos}
		}
		return &pyast.Attribute{
			Position: pos,
			Value:    convertExpr(obj, content),
			Attr:     text(attr, content),
		}

	case "call":
		return convertCall(node, content)

	case "integer":
		raw := strings.ReplaceAll(text(node, content), "_", "")
		if v, err := strconv.ParseInt(raw, 0, 64); err == nil {
			return &pyast.Const{Position: pos, Kind: pyast.ConstInt, Int: v}
		}
		return &pyast.Opaque{Position: pos}

	case "float":
		if v, err := strconv.ParseFloat(text(node, content), 64); err == nil {
			return &pyast.Const{Position: pos, Kind: pyast.ConstFloat, Float: v}
		}
		return &pyast.Opaque{Position: pos}

	case "string", "concatenated_string":
		value, isBytes := stringLiteralValue(text(node, content))
		kind := pyast.ConstString
		if isBytes {
			kind = pyast.ConstBytes
		}
		return &pyast.Const{Position: pos, Kind: kind, Str: value}

	case "true":
		return &pyast.Const{Position: pos, Kind: pyast.ConstBool, Bool: true}

	case "false":
		return &pyast.Const{Position: pos, Kind: pyast.ConstBool, Bool: false}

	case "none":
		return &pyast.Const{Position: pos, Kind: pyast.ConstNone}

	case "unary_operator":
		arg := node.ChildByFieldName("argument")
		op, ok := unaryOperator(node, content)
		if arg == nil || !ok {
			return &pyast.Opaque{Position: pos}
		}
		return &pyast.UnaryOp{Position: pos, Op: op, Operand: convertExpr(arg, content)}

	case "not_operator":
		arg := node.ChildByFieldName("argument")
		if arg == nil {
			return &pyast.Opaque{Position: pos}
		}
		return &pyast.UnaryOp{Position: pos, Op: pyast.UnaryNot, Operand: convertExpr(arg, content)}

	case "binary_operator":
		left := node.ChildByFieldName("left")
		right := node.ChildByFieldName("right")
		op, ok := binaryOperator(node, content)
		if left == nil || right == nil || !ok {
			return &pyast.Opaque{Position: pos}
		}
		return &pyast.BinOp{
			Position: pos,
			Op:       op,
			Left:     convertExpr(left, content),
			Right:    convertExpr(right, content),
		}

	case "parenthesized_expression":
		if node.NamedChildCount() == 1 {
			return convertExpr(node.NamedChild(0), content)
		}
		return &pyast.Opaque{Position: pos}
	}

	return &pyast.Opaque{Position: pos}
}

// convertCall maps a call node, splitting its argument list into
// positional arguments and keywords.
func convertCall(node *sitter.Node, content []byte) pyast.Node {
	pos := position(node)
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return &pyast.Opaque{Position: pos}
	}

	call := &pyast.Call{Position: pos, Func: convertExpr(fn, content)}
	args := node.ChildByFieldName("arguments")
	if args == nil {
		return call
	}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		arg := args.NamedChild(i)
		switch arg.Type() {
		case "keyword_argument":
			name := arg.ChildByFieldName("name")
			value := arg.ChildByFieldName("value")
			if name == nil || value == nil {
				continue
			}
			call.Keywords = append(call.Keywords, pyast.Keyword{
				Position: position(arg),
				Arg:      text(name, content),
				Value:    convertExpr(value, content),
			})
		case "list_splat", "dictionary_splat":
			// *args / **kwargs: opaque, cannot match anything by shape.
			call.Args = append(call.Args, &pyast.Opaque{Position: position(arg)})
		case "comment":
		default:
			call.Args = append(call.Args, convertExpr(arg, content))
		}
	}
	return call
}

// convertImport maps `import foo, bar as b` to an Import node.
func convertImport(node *sitter.Node, content []byte) *pyast.Import {
	imp := &pyast.Import{Position: position(node)}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		switch child.Type() {
		case "dotted_name":
			imp.Names = append(imp.Names, pyast.Alias{Name: text(child, content)})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil {
				continue
			}
			entry := pyast.Alias{Name: text(name, content)}
			if alias != nil {
				entry.AsName = text(alias, content)
			}
			imp.Names = append(imp.Names, entry)
		}
	}
	if len(imp.Names) == 0 {
		return nil
	}
	return imp
}

// convertImportFrom maps `from x import a, b as c` to an ImportFrom node.
// Wildcard imports yield an empty name list; relative imports keep their
// leading dots in Module.
func convertImportFrom(node *sitter.Node, content []byte) *pyast.ImportFrom {
	imp := &pyast.ImportFrom{Position: position(node)}

	if module := node.ChildByFieldName("module_name"); module != nil {
		imp.Module = text(module, content)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if node.FieldNameForChild(i) != "name" {
			continue
		}
		child := node.Child(i)
		switch child.Type() {
		case "dotted_name", "identifier":
			imp.Names = append(imp.Names, pyast.Alias{Name: text(child, content)})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			alias := child.ChildByFieldName("alias")
			if name == nil {
				continue
			}
			entry := pyast.Alias{Name: text(name, content)}
			if alias != nil {
				entry.AsName = text(alias, content)
			}
			imp.Names = append(imp.Names, entry)
		}
	}

	if imp.Module == "" {
		return nil
	}
	return imp
}

// withItemValues extracts the context-manager expression of every item in
// a with statement, unwrapping `expr as target` bindings.
func withItemValues(node *sitter.Node) []*sitter.Node {
	var clause *sitter.Node
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if node.NamedChild(i).Type() == "with_clause" {
			clause = node.NamedChild(i)
			break
		}
	}
	if clause == nil {
		return nil
	}

	var values []*sitter.Node
	for i := 0; i < int(clause.NamedChildCount()); i++ {
		item := clause.NamedChild(i)
		if item.Type() != "with_item" {
			continue
		}
		value := item.ChildByFieldName("value")
		if value == nil && item.NamedChildCount() > 0 {
			value = item.NamedChild(0)
		}
		if value != nil && value.Type() == "as_pattern" && value.NamedChildCount() > 0 {
			value = value.NamedChild(0)
		}
		if value != nil {
			values = append(values, value)
		}
	}
	return values
}

// convertWith maps a with statement to a With node.
func convertWith(node *sitter.Node, content []byte) *pyast.With {
	with := &pyast.With{Position: position(node)}
	for _, value := range withItemValues(node) {
		with.Items = append(with.Items, pyast.WithItem{ContextExpr: convertExpr(value, content)})
	}
	return with
}

// convertAssert maps an assert statement; only the statement itself
// matters to the rules, but the test expression is kept for hosts that
// want it.
func convertAssert(node *sitter.Node, content []byte) *pyast.Assert {
	assert := &pyast.Assert{Position: position(node)}
	if node.NamedChildCount() > 0 {
		assert.Test = convertExpr(node.NamedChild(0), content)
	}
	return assert
}

// unaryOperator reads the operator token of a unary_operator node.
func unaryOperator(node *sitter.Node, content []byte) (pyast.UnaryOperator, bool) {
	op := node.ChildByFieldName("operator")
	var token string
	if op != nil {
		token = text(op, content)
	} else if node.ChildCount() > 0 {
		token = text(node.Child(0), content)
	}
	switch token {
	case "-":
		return pyast.UnaryNeg, true
	case "+":
		return pyast.UnaryPos, true
	case "~":
		return pyast.UnaryInvert, true
	}
	return 0, false
}

// binaryOperator reads the operator token of a binary_operator node.
// Operators the permission evaluator cannot fold (**, <<, >>, @) are
// rejected so the whole expression degrades to Opaque.
func binaryOperator(node *sitter.Node, content []byte) (pyast.BinOperator, bool) {
	op := node.ChildByFieldName("operator")
	if op == nil {
		return 0, false
	}
	switch text(op, content) {
	case "+":
		return pyast.BinAdd, true
	case "-":
		return pyast.BinSub, true
	case "*":
		return pyast.BinMult, true
	case "/":
		return pyast.BinDiv, true
	case "//":
		return pyast.BinFloorDiv, true
	case "%":
		return pyast.BinMod, true
	case "^":
		return pyast.BinBitXor, true
	case "|":
		return pyast.BinBitOr, true
	case "&":
		return pyast.BinBitAnd, true
	}
	return 0, false
}

// stringLiteralValue strips the prefix letters and quotes from a Python
// string literal. Escape sequences are left as-is: the rules only inspect
// short mode strings where escapes do not occur.
func stringLiteralValue(raw string) (value string, isBytes bool) {
	i := 0
	for i < len(raw) && raw[i] != '"' && raw[i] != '\'' {
		if raw[i] == 'b' || raw[i] == 'B' {
			isBytes = true
		}
		i++
	}
	rest := raw[i:]

	for _, quote := range []string{`"""`, `'''`} {
		if strings.HasPrefix(rest, quote) {
			if len(rest) >= 2*len(quote) && strings.HasSuffix(rest, quote) {
				return rest[len(quote) : len(rest)-len(quote)], isBytes
			}
			return strings.Trim(rest, `"'`), isBytes
		}
	}
	if len(rest) >= 2 && (rest[0] == '"' || rest[0] == '\'') && rest[len(rest)-1] == rest[0] {
		return rest[1 : len(rest)-1], isBytes
	}
	return rest, isBytes
}
