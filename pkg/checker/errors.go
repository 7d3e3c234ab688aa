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

import "errors"

// Checker errors.
var (
	// ErrInvalidOption is returned by the policy setters when an option
	// string does not conform to the allowed-modes grammar. It is fatal to
	// plugin startup: the host must not start a scan after receiving it.
	ErrInvalidOption = errors.New("invalid allowed-modes option value")

	// ErrMissingModeArgument is returned during a scan when a guarded
	// permission-changing call (os.chmod) carries no mode argument at all.
	// This is a usage error in the scanned code, distinct from a mode
	// expression that merely cannot be resolved statically.
	ErrMissingModeArgument = errors.New("missing mode argument on guarded call")

	// errUnrecognizedExpression is the recovered-internally signal that a
	// mode expression could not be constant-folded. It never escapes the
	// visitor methods: callers treat it as "mode unknown".
	errUnrecognizedExpression = errors.New("unrecognized permission expression")
)
