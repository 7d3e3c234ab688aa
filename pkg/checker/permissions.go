// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package checker

import (
	"fmt"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"
)

// modeConstants maps the Python stat module's permission-constant names to
// their bit values, including the BSD-style S_IREAD/S_IWRITE/S_IEXEC aliases
// and the set-id/sticky bits.
var modeConstants = map[string]int64{
	"S_ISUID": 0o4000,
	"S_ISGID": 0o2000,
	"S_ENFMT": 0o2000,
	"S_ISVTX": 0o1000,

	"S_IREAD":  0o400,
	"S_IWRITE": 0o200,
	"S_IEXEC":  0o100,

	"S_IRWXU": 0o700,
	"S_IRUSR": 0o400,
	"S_IWUSR": 0o200,
	"S_IXUSR": 0o100,

	"S_IRWXG": 0o070,
	"S_IRGRP": 0o040,
	"S_IWGRP": 0o020,
	"S_IXGRP": 0o010,

	"S_IRWXO": 0o007,
	"S_IROTH": 0o004,
	"S_IWOTH": 0o002,
	"S_IXOTH": 0o001,
}

// unsafeGroupOtherMask selects the bits os.chmod must not grant: write or
// execute access for group or others. Read bits alone are not flagged.
const unsafeGroupOtherMask = 0o033

// evalModeExpr constant-folds a node believed to represent a permission
// bitmask into its integer value. Recognized shapes:
//
//   - integer literals
//   - bare permission-constant names (S_IWOTH)
//   - stat-qualified constants (stat.S_IWOTH)
//   - unary negate/invert/not and binary arithmetic/bitwise combinations
//     of the above, folded recursively
//
// Any other shape (a variable reference, a call, an unknown attribute base)
// fails with errUnrecognizedExpression. Callers must treat that failure as
// "mode could not be statically determined", not as a scan failure.
func evalModeExpr(node pyast.Node) (int64, error) {
	switch n := node.(type) {
	case *pyast.Const:
		if n.Kind == pyast.ConstInt {
			return n.Int, nil
		}
		if n.Kind == pyast.ConstBool {
			if n.Bool {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("non-integer literal: %w", errUnrecognizedExpression)

	case *pyast.Name:
		if v, ok := modeConstants[n.ID]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("name %q: %w", n.ID, errUnrecognizedExpression)

	case *pyast.Attribute:
		base, ok := n.Value.(*pyast.Name)
		if !ok || base.ID != "stat" {
			return 0, fmt.Errorf("attribute %q: %w", n.Attr, errUnrecognizedExpression)
		}
		if v, ok := modeConstants[n.Attr]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("stat.%s: %w", n.Attr, errUnrecognizedExpression)

	case *pyast.UnaryOp:
		v, err := evalModeExpr(n.Operand)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case pyast.UnaryNeg:
			return -v, nil
		case pyast.UnaryPos:
			return v, nil
		case pyast.UnaryInvert:
			return ^v, nil
		case pyast.UnaryNot:
			if v == 0 {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("unary operator: %w", errUnrecognizedExpression)

	case *pyast.BinOp:
		left, err := evalModeExpr(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := evalModeExpr(n.Right)
		if err != nil {
			return 0, err
		}
		return applyBinOp(n.Op, left, right)
	}

	return 0, fmt.Errorf("node shape: %w", errUnrecognizedExpression)
}

// applyBinOp folds one binary operation. Division is integral: a mode
// expression is a bitmask, so any fractional result is already meaningless
// and truncation loses nothing the rules care about.
func applyBinOp(op pyast.BinOperator, left, right int64) (int64, error) {
	switch op {
	case pyast.BinAdd:
		return left + right, nil
	case pyast.BinSub:
		return left - right, nil
	case pyast.BinMult:
		return left * right, nil
	case pyast.BinDiv, pyast.BinFloorDiv:
		if right == 0 {
			return 0, fmt.Errorf("division by zero: %w", errUnrecognizedExpression)
		}
		return left / right, nil
	case pyast.BinMod:
		if right == 0 {
			return 0, fmt.Errorf("modulo by zero: %w", errUnrecognizedExpression)
		}
		return left % right, nil
	case pyast.BinBitXor:
		return left ^ right, nil
	case pyast.BinBitOr:
		return left | right, nil
	case pyast.BinBitAnd:
		return left & right, nil
	}
	return 0, fmt.Errorf("binary operator: %w", errUnrecognizedExpression)
}
