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
	"strings"
	"testing"
)

func TestMessages_Complete(t *testing.T) {
	all := Messages()
	if len(all) != 20 {
		t.Fatalf("Messages() has %d entries, want 20", len(all))
	}

	seen := make(map[string]Code)
	for code, msg := range all {
		if msg.ID == "" || msg.Title == "" || msg.Explanation == "" {
			t.Errorf("%s: incomplete message metadata: %+v", code, msg)
		}
		if prev, dup := seen[msg.ID]; dup {
			t.Errorf("message ID %s shared by %s and %s", msg.ID, prev, code)
		}
		seen[msg.ID] = code
	}
}

func TestMessages_SeverityMatchesIDPrefix(t *testing.T) {
	prefixes := map[Severity]byte{
		SeverityConvention: 'C',
		SeverityRefactor:   'R',
		SeverityWarning:    'W',
		SeverityError:      'E',
	}

	for code, msg := range Messages() {
		want, ok := prefixes[msg.Severity]
		if !ok {
			t.Fatalf("%s: unknown severity %v", code, msg.Severity)
		}
		if msg.ID[0] != want {
			t.Errorf("%s: ID %s does not match severity %s", code, msg.ID, msg.Severity)
		}
	}
}

func TestMessages_PermissionTitlesHaveSlot(t *testing.T) {
	// The permission rules interpolate the configured policy into the
	// message; every other title must be static.
	withSlot := map[Code]bool{
		CodeOsOpenUnsafePermissions:   true,
		CodeOsMkdirUnsafePermissions:  true,
		CodeOsMkfifoUnsafePermissions: true,
		CodeOsMknodUnsafePermissions:  true,
	}

	for code, msg := range Messages() {
		has := strings.Contains(msg.Title, "%s")
		if has != withSlot[code] {
			t.Errorf("%s: title %q slot mismatch (want slot: %v)", code, msg.Title, withSlot[code])
		}
	}
}

func TestLookup(t *testing.T) {
	msg, ok := Lookup(CodeAvoidEvalExec)
	if !ok {
		t.Fatal("Lookup(CodeAvoidEvalExec) not found")
	}
	if msg.ID != "E8001" {
		t.Errorf("CodeAvoidEvalExec ID = %s, want E8001", msg.ID)
	}

	if _, ok := Lookup(Code("no-such-rule")); ok {
		t.Error("Lookup of unknown code should fail")
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	all := Messages()
	all[CodeAvoidEvalExec] = Message{ID: "X0000"}

	msg, _ := Lookup(CodeAvoidEvalExec)
	if msg.ID != "E8001" {
		t.Error("mutating the Messages() result must not affect Lookup")
	}
}

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityConvention, "convention"},
		{SeverityRefactor, "refactor"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(99), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.severity.String(); got != tc.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tc.severity, got, tc.want)
		}
	}
}
