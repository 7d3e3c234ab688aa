// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pyast

import "testing"

func TestPositionEmbedding(t *testing.T) {
	nodes := []Node{
		&Name{Position: Position{Line: 3, Col: 7}, ID: "x"},
		&Call{Position: Position{Line: 3, Col: 7}},
		&Import{Position: Position{Line: 3, Col: 7}},
		&With{Position: Position{Line: 3, Col: 7}},
		&Opaque{Position: Position{Line: 3, Col: 7}},
	}
	for _, n := range nodes {
		pos := n.Pos()
		if pos.Line != 3 || pos.Col != 7 {
			t.Errorf("%T.Pos() = %+v, want line 3 col 7", n, pos)
		}
	}
}

func TestConstTruthy(t *testing.T) {
	tests := []struct {
		name string
		c    Const
		want bool
	}{
		{"none", Const{Kind: ConstNone}, false},
		{"true", Const{Kind: ConstBool, Bool: true}, true},
		{"false", Const{Kind: ConstBool}, false},
		{"zero int", Const{Kind: ConstInt}, false},
		{"nonzero int", Const{Kind: ConstInt, Int: 2}, true},
		{"zero float", Const{Kind: ConstFloat}, false},
		{"nonzero float", Const{Kind: ConstFloat, Float: 0.5}, true},
		{"empty string", Const{Kind: ConstString}, false},
		{"string", Const{Kind: ConstString, Str: "x"}, true},
		{"empty bytes", Const{Kind: ConstBytes}, false},
		{"bytes", Const{Kind: ConstBytes, Str: "x"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Truthy(); got != tc.want {
				t.Errorf("Truthy() = %v, want %v", got, tc.want)
			}
		})
	}
}
