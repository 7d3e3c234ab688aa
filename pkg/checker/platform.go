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

import "runtime"

// PlatformFunc answers the capability query "is the execution platform
// POSIX-like", i.e. does it have meaningful file-permission-bit semantics.
// The checker queries it per call rather than caching the answer at
// construction, so tests and unusual hosts can swap it mid-session.
type PlatformFunc func() bool

// DefaultPlatform reports whether the current operating system is
// POSIX-like. Windows ignores Unix permission bits and Plan 9 and the wasm
// targets reinterpret them; everything else (linux, darwin, the BSDs,
// solaris, aix) qualifies.
func DefaultPlatform() bool {
	switch runtime.GOOS {
	case "windows", "plan9", "js", "wasip1":
		return false
	}
	return true
}
