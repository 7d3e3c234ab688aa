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
	"strconv"
	"strings"
)

// DefaultMaxMode is the upper bound of the allowed-modes range when an
// option is enabled with a plain truthy token ("y", "yes", "true").
const DefaultMaxMode = 0o755

// ModePolicy is the per-operation allow-list of file permission modes. The
// zero value is a disabled policy. A policy is populated exactly once by the
// corresponding checker setter and is read-only for the rest of the scan.
type ModePolicy struct {
	allowed []int64
	display string
}

// Enabled reports whether the guarded operation should be checked at all.
func (p ModePolicy) Enabled() bool {
	return len(p.allowed) > 0
}

// Allows reports whether a literal mode value is a member of the allow-list.
func (p ModePolicy) Allows(mode int64) bool {
	for _, m := range p.allowed {
		if m == mode {
			return true
		}
	}
	return false
}

// Display returns the human-readable policy fragment interpolated into
// permission diagnostics, e.g. "0 <= mode <= 0o755" or
// "mode in (0o644, 0o755)".
func (p ModePolicy) Display() string {
	return p.display
}

// parseModeOption translates a raw option string into a ModePolicy. The
// grammar, shared by all four guarded operations:
//
//   - falsy token ("n", "no", "false", case-insensitive) or a literal zero
//     value: disabled policy
//   - truthy token ("y", "yes", "true", case-insensitive): allowed modes
//     0..DefaultMaxMode
//   - single integer N > 0: allowed modes 0..N
//   - comma-separated integers (two or more fields, blank fields ignored):
//     exactly the listed modes
//
// Integer tokens are parsed as octal first, then with Go literal syntax
// (accepting the 0o prefix and plain decimal). Anything else wraps
// ErrInvalidOption; option names the offending option for the host's
// startup error message.
func parseModeOption(option, value string) (ModePolicy, error) {
	if strings.TrimSpace(value) == "" {
		return ModePolicy{}, fmt.Errorf("%s: empty value: %w", option, ErrInvalidOption)
	}

	fields := strings.Split(value, ",")
	if len(fields) > 1 {
		return parseModeList(option, fields)
	}

	tok := strings.TrimSpace(value)
	switch strings.ToLower(tok) {
	case "y", "yes", "true":
		return rangePolicy(DefaultMaxMode), nil
	case "n", "no", "false":
		return ModePolicy{}, nil
	}

	mode, err := parseModeInt(tok)
	if err != nil {
		return ModePolicy{}, fmt.Errorf("%s: %q is neither a boolean token nor an integer: %w",
			option, tok, ErrInvalidOption)
	}
	if mode <= 0 {
		return ModePolicy{}, nil
	}
	return rangePolicy(mode), nil
}

// parseModeList handles the comma-separated form: the allowed set is exactly
// the listed integers. Blank fields (from trailing commas) are skipped; a
// list with no non-blank field is an error.
func parseModeList(option string, fields []string) (ModePolicy, error) {
	var modes []int64
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		mode, err := parseModeInt(field)
		if err != nil {
			return ModePolicy{}, fmt.Errorf("%s: %q is not an integer: %w", option, field, ErrInvalidOption)
		}
		modes = append(modes, mode)
	}
	if len(modes) == 0 {
		return ModePolicy{}, fmt.Errorf("%s: no usable values: %w", option, ErrInvalidOption)
	}

	display := make([]string, len(modes))
	for i, m := range modes {
		display[i] = "0o" + strconv.FormatInt(m, 8)
	}
	return ModePolicy{
		allowed: modes,
		display: fmt.Sprintf("mode in (%s)", strings.Join(display, ", ")),
	}, nil
}

// rangePolicy builds the contiguous allow-list {0 .. maxMode}.
func rangePolicy(maxMode int64) ModePolicy {
	allowed := make([]int64, 0, maxMode+1)
	for m := int64(0); m <= maxMode; m++ {
		allowed = append(allowed, m)
	}
	return ModePolicy{
		allowed: allowed,
		display: fmt.Sprintf("0 <= mode <= 0o%s", strconv.FormatInt(maxMode, 8)),
	}
}

// parseModeInt parses one integer token, octal first ("644" reads as 0o644),
// then Go literal syntax ("0o644", "420"). The octal-first order means a
// bare "755" is the permission bits a user almost certainly meant, while
// digits invalid in octal ("493") still parse as decimal.
func parseModeInt(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 8, 64); err == nil {
		return v, nil
	}
	return strconv.ParseInt(s, 0, 64)
}
