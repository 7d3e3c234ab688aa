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
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorEnabled reports whether colored output makes sense for f.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var severityColors = map[string]*color.Color{
	"error":      color.New(color.FgRed, color.Bold),
	"warning":    color.New(color.FgYellow),
	"refactor":   color.New(color.FgCyan),
	"convention": color.New(color.FgBlue),
}

// WriteText renders findings one per line in the pylint-style
// `file:line:col: ID (slug) message` format.
func WriteText(w io.Writer, findings []Finding, colored bool) error {
	for _, f := range findings {
		id := f.MsgID
		if colored {
			if c, ok := severityColors[f.Severity]; ok {
				id = c.Sprint(id)
			}
		}
		if _, err := fmt.Fprintf(w, "%s:%d:%d: %s (%s) %s\n", f.File, f.Line, f.Col, id, f.Slug, f.Message); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders findings as a JSON array. An empty result renders as
// [] rather than null.
func WriteJSON(w io.Writer, findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(findings); err != nil {
		return fmt.Errorf("encoding findings: %w", err)
	}
	return nil
}
