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
	"errors"
	"testing"
)

func TestParseModeOption_BooleanTokens(t *testing.T) {
	for _, tok := range []string{"y", "yes", "true", "Y", "Yes", "TRUE"} {
		policy, err := parseModeOption("os-open-mode", tok)
		if err != nil {
			t.Fatalf("parseModeOption(%q) error = %v", tok, err)
		}
		if !policy.Enabled() {
			t.Errorf("parseModeOption(%q) should enable the policy", tok)
		}
		if !policy.Allows(0o755) {
			t.Errorf("parseModeOption(%q) should allow 0o755", tok)
		}
		if policy.Allows(0o756) {
			t.Errorf("parseModeOption(%q) should not allow 0o756", tok)
		}
		if got, want := policy.Display(), "0 <= mode <= 0o755"; got != want {
			t.Errorf("Display() = %q, want %q", got, want)
		}
	}

	for _, tok := range []string{"n", "no", "false", "N", "No", "FALSE"} {
		policy, err := parseModeOption("os-open-mode", tok)
		if err != nil {
			t.Fatalf("parseModeOption(%q) error = %v", tok, err)
		}
		if policy.Enabled() {
			t.Errorf("parseModeOption(%q) should disable the policy", tok)
		}
	}
}

func TestParseModeOption_SingleInteger(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		allow   []int64
		deny    []int64
		display string
	}{
		{
			// Bare digits read as octal first.
			name:    "octal digits without prefix",
			value:   "755",
			allow:   []int64{0, 0o644, 0o755},
			deny:    []int64{0o756, 0o777},
			display: "0 <= mode <= 0o755",
		},
		{
			name:    "explicit octal prefix",
			value:   "0o755",
			allow:   []int64{0o755},
			deny:    []int64{0o756},
			display: "0 <= mode <= 0o755",
		},
		{
			// 493 has a digit invalid in octal, so it parses as decimal
			// 493 == 0o755.
			name:    "decimal fallback",
			value:   "493",
			allow:   []int64{0o755},
			deny:    []int64{0o756},
			display: "0 <= mode <= 0o755",
		},
		{
			name:    "smaller bound",
			value:   "0o644",
			allow:   []int64{0, 0o600, 0o644},
			deny:    []int64{0o645, 0o755},
			display: "0 <= mode <= 0o644",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := parseModeOption("os-open-mode", tc.value)
			if err != nil {
				t.Fatalf("parseModeOption(%q) error = %v", tc.value, err)
			}
			if !policy.Enabled() {
				t.Fatalf("parseModeOption(%q) should enable the policy", tc.value)
			}
			for _, mode := range tc.allow {
				if !policy.Allows(mode) {
					t.Errorf("policy %q should allow 0o%o", tc.value, mode)
				}
			}
			for _, mode := range tc.deny {
				if policy.Allows(mode) {
					t.Errorf("policy %q should not allow 0o%o", tc.value, mode)
				}
			}
			if got := policy.Display(); got != tc.display {
				t.Errorf("Display() = %q, want %q", got, tc.display)
			}
		})
	}
}

func TestParseModeOption_ZeroAndNegativeDisable(t *testing.T) {
	for _, value := range []string{"0", "-1"} {
		policy, err := parseModeOption("os-mkdir-mode", value)
		if err != nil {
			t.Fatalf("parseModeOption(%q) error = %v", value, err)
		}
		if policy.Enabled() {
			t.Errorf("parseModeOption(%q) should disable the policy", value)
		}
	}
}

func TestParseModeOption_List(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		allow   []int64
		deny    []int64
		display string
	}{
		{
			// The trailing comma is meaningful: exactly this mode, not a
			// range up to it.
			name:    "single value with trailing comma",
			value:   "0o755,",
			allow:   []int64{0o755},
			deny:    []int64{0, 0o644, 0o754},
			display: "mode in (0o755)",
		},
		{
			name:    "two values",
			value:   "0o644,0o755",
			allow:   []int64{0o644, 0o755},
			deny:    []int64{0, 0o600, 0o700},
			display: "mode in (0o644, 0o755)",
		},
		{
			name:    "spaces and mixed bases",
			value:   " 0o644 , 493 ",
			allow:   []int64{0o644, 0o755},
			deny:    []int64{0o600},
			display: "mode in (0o644, 0o755)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			policy, err := parseModeOption("os-mknod-mode", tc.value)
			if err != nil {
				t.Fatalf("parseModeOption(%q) error = %v", tc.value, err)
			}
			for _, mode := range tc.allow {
				if !policy.Allows(mode) {
					t.Errorf("policy %q should allow 0o%o", tc.value, mode)
				}
			}
			for _, mode := range tc.deny {
				if policy.Allows(mode) {
					t.Errorf("policy %q should not allow 0o%o", tc.value, mode)
				}
			}
			if got := policy.Display(); got != tc.display {
				t.Errorf("Display() = %q, want %q", got, tc.display)
			}
		})
	}
}

func TestParseModeOption_Invalid(t *testing.T) {
	for _, value := range []string{"", "   ", ",", ",,", "asd", "a,", "493, a", "0o8"} {
		_, err := parseModeOption("os-open-mode", value)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("parseModeOption(%q) error = %v, want ErrInvalidOption", value, err)
		}
	}
}

func TestModePolicy_ZeroValue(t *testing.T) {
	var policy ModePolicy
	if policy.Enabled() {
		t.Error("zero-value policy should be disabled")
	}
	if policy.Allows(0) {
		t.Error("zero-value policy should allow nothing")
	}
}
