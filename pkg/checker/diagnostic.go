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

import "github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"

// Diagnostic is one finding handed back to the host: the stable code, the
// node it anchors to, and at most one format argument (the policy display
// fragment for the permission checks, empty otherwise). Presentation is the
// host's job; the engine never renders messages.
type Diagnostic struct {
	Code Code
	Node pyast.Node
	Arg  string
}

// Reporter receives diagnostics as the checker emits them. Implementations
// must not call back into the checker.
type Reporter interface {
	Report(Diagnostic)
}

// ReporterFunc adapts a plain function to the Reporter interface.
type ReporterFunc func(Diagnostic)

// Report calls the wrapped function.
func (f ReporterFunc) Report(d Diagnostic) { f(d) }
