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

// Code is the stable, machine-readable slug of a diagnostic. These strings
// are a wire contract: downstream tooling suppresses, counts, and documents
// findings by slug, so they must never change.
type Code string

const (
	// CodeReplaceOsRelpathAbspath flags os.path.abspath/relpath usage.
	CodeReplaceOsRelpathAbspath Code = "replace-os-relpath-abspath"

	// CodeAvoidEvalExec flags calls to eval() and exec().
	CodeAvoidEvalExec Code = "avoid-eval-exec"

	// CodeAvoidOsSystem flags calls to os.system().
	CodeAvoidOsSystem Code = "avoid-os-system"

	// CodeAvoidShellTrue flags subprocess-style calls run through a shell.
	CodeAvoidShellTrue Code = "avoid-shell-true"

	// CodeReplaceMktemp flags tempfile.mktemp() usage.
	CodeReplaceMktemp Code = "replace-mktemp"

	// CodeAvoidYamlUnsafeLoad flags unsafe PyYAML loading functions.
	CodeAvoidYamlUnsafeLoad Code = "avoid-yaml-unsafe-load"

	// CodeAvoidJsonpickleDecode flags jsonpickle.decode() usage.
	CodeAvoidJsonpickleDecode Code = "avoid-jsonpickle-decode"

	// CodeAvoidDebugStmt flags debugger calls and imports.
	CodeAvoidDebugStmt Code = "avoid-debug-stmt"

	// CodeAvoidAssert flags assert statements.
	CodeAvoidAssert Code = "avoid-assert"

	// CodeReplaceBuiltinOpen flags builtin open() used for writing.
	CodeReplaceBuiltinOpen Code = "replace-builtin-open"

	// CodeAvoidOsPopen flags calls to os.popen().
	CodeAvoidOsPopen Code = "avoid-os-popen"

	// CodeAvoidShlexQuoteOnNonPosix flags shlex.quote() on platforms where
	// its quoting rules do not apply.
	CodeAvoidShlexQuoteOnNonPosix Code = "avoid-shlex-quote-on-non-posix"

	// CodeOsOpenUnsafePermissions flags os.open() with a mode outside the
	// configured allow-list.
	CodeOsOpenUnsafePermissions Code = "os-open-unsafe-permissions"

	// CodeAvoidPickleLoad flags pickle.load()/pickle.loads().
	CodeAvoidPickleLoad Code = "avoid-pickle-load"

	// CodeAvoidMarshalLoad flags marshal.load()/marshal.loads().
	CodeAvoidMarshalLoad Code = "avoid-marshal-load"

	// CodeAvoidShelveOpen flags shelve.open() usage.
	CodeAvoidShelveOpen Code = "avoid-shelve-open"

	// CodeOsMkdirUnsafePermissions flags os.mkdir/os.makedirs with a mode
	// outside the configured allow-list.
	CodeOsMkdirUnsafePermissions Code = "os-mkdir-unsafe-permissions"

	// CodeOsMkfifoUnsafePermissions flags os.mkfifo with a mode outside the
	// configured allow-list.
	CodeOsMkfifoUnsafePermissions Code = "os-mkfifo-unsafe-permissions"

	// CodeOsMknodUnsafePermissions flags os.mknod with a mode outside the
	// configured allow-list.
	CodeOsMknodUnsafePermissions Code = "os-mknod-unsafe-permissions"

	// CodeOsChmodUnsafePermissions flags os.chmod granting write or execute
	// access to group or others.
	CodeOsChmodUnsafePermissions Code = "os-chmod-unsafe-permissions"
)

// Severity is the pylint message category a diagnostic belongs to.
type Severity int

const (
	// SeverityConvention maps to pylint's C category.
	SeverityConvention Severity = iota

	// SeverityRefactor maps to pylint's R category.
	SeverityRefactor

	// SeverityWarning maps to pylint's W category.
	SeverityWarning

	// SeverityError maps to pylint's E category.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityConvention:
		return "convention"
	case SeverityRefactor:
		return "refactor"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Message is the host-facing metadata for one diagnostic code: the numeric
// pylint message ID, the severity category, the short title shown next to a
// finding (with one optional %s slot for a policy description), and the
// long explanation.
type Message struct {
	ID          string
	Severity    Severity
	Title       string
	Explanation string
}

var messages = map[Code]Message{
	CodeReplaceOsRelpathAbspath: {
		ID:       "R8000",
		Severity: SeverityRefactor,
		Title:    "Use `os.path.realpath()` instead of `os.path.abspath()` and `os.path.relpath()`",
		Explanation: "Use of `os.path.abspath()` and `os.path.relpath()` should be avoided in favor of " +
			"`os.path.realpath()`",
	},
	CodeAvoidEvalExec: {
		ID:          "E8001",
		Severity:    SeverityError,
		Title:       "Avoid using `exec()` and `eval()`",
		Explanation: "Use of `eval()` and `exec()` represent a security risk and should be avoided",
	},
	CodeAvoidOsSystem: {
		ID:          "E8002",
		Severity:    SeverityError,
		Title:       "Avoid using `os.system()`",
		Explanation: "Use of `os.system()` should be avoided",
	},
	CodeAvoidShellTrue: {
		ID:       "E8003",
		Severity: SeverityError,
		Title:    "Avoid using `shell=True` when calling `subprocess` functions",
		Explanation: "Use of `shell=True` in subprocess functions or use of functions that internally set it " +
			"should be avoided",
	},
	CodeReplaceMktemp: {
		ID:          "R8004",
		Severity:    SeverityRefactor,
		Title:       "Avoid using `tempfile.mktemp()`, prefer `tempfile.mkstemp()` instead",
		Explanation: "Use of `tempfile.mktemp()` should be avoided, prefer `tempfile.mkstemp()`",
	},
	CodeAvoidYamlUnsafeLoad: {
		ID:       "E8005",
		Severity: SeverityError,
		Title:    "Avoid using unsafe PyYAML loading functions",
		Explanation: "Use of `yaml.load()` should be avoided, prefer `yaml.safe_load()` or " +
			"`yaml.load(xxx, Loader=SafeLoader)`",
	},
	CodeAvoidJsonpickleDecode: {
		ID:          "E8006",
		Severity:    SeverityError,
		Title:       "Avoid using `jsonpickle.decode()`",
		Explanation: "Use of `jsonpickle.decode()` should be avoided",
	},
	CodeAvoidDebugStmt: {
		ID:          "C8007",
		Severity:    SeverityConvention,
		Title:       "Avoid debug statement in production code",
		Explanation: "Use of debugging code should not be present in production code (e.g. `import pdb`)",
	},
	CodeAvoidAssert: {
		ID:          "C8008",
		Severity:    SeverityConvention,
		Title:       "Avoid `assert` statements in production code",
		Explanation: "`assert` statements should not be present in production code",
	},
	CodeReplaceBuiltinOpen: {
		ID:       "R8005",
		Severity: SeverityRefactor,
		Title:    "Avoid builtin open() when writing to files, prefer os.open()",
		Explanation: "Use of builtin `open` for writing is discouraged in favor of `os.open` to allow for " +
			"setting file permissions",
	},
	CodeAvoidOsPopen: {
		ID:       "E8010",
		Severity: SeverityError,
		Title:    "Avoid using `os.popen()`",
		Explanation: "Use of `os.popen()` should be avoided, as it internally uses `subprocess.Popen` with " +
			"`shell=True`",
	},
	CodeAvoidShlexQuoteOnNonPosix: {
		ID:          "E8011",
		Severity:    SeverityError,
		Title:       "Avoid using `shlex.quote()` on non-POSIX platforms",
		Explanation: "Use of `shlex.quote()` should be avoided on non-POSIX platforms (such as Windows)",
	},
	CodeOsOpenUnsafePermissions: {
		ID:          "W8012",
		Severity:    SeverityWarning,
		Title:       "Avoid using `os.open()` with unsafe file permissions (should be %s)",
		Explanation: "Avoid using `os.open()` with unsafe file permissions (by default 0 <= mode <= 0o755)",
	},
	CodeAvoidPickleLoad: {
		ID:          "E8013",
		Severity:    SeverityError,
		Title:       "Avoid using `pickle.load()` and `pickle.loads()`",
		Explanation: "Use of `pickle.load()` and `pickle.loads()` should be avoided in favor of safer file formats",
	},
	CodeAvoidMarshalLoad: {
		ID:          "E8014",
		Severity:    SeverityError,
		Title:       "Avoid using `marshal.load()` and `marshal.loads()`",
		Explanation: "Use of `marshal.load()` and `marshal.loads()` should be avoided in favor of safer file formats",
	},
	CodeAvoidShelveOpen: {
		ID:          "E8015",
		Severity:    SeverityError,
		Title:       "Avoid using `shelve.open()`",
		Explanation: "Use of `shelve.open()` should be avoided in favor of safer file formats",
	},
	CodeOsMkdirUnsafePermissions: {
		ID:       "W8016",
		Severity: SeverityWarning,
		Title:    "Avoid using `os.mkdir()` and `os.makedirs()` with unsafe file permissions (should be %s)",
		Explanation: "Avoid using `os.mkdir()` and `os.makedirs()` with unsafe file permissions " +
			"(by default 0 <= mode <= 0o755)",
	},
	CodeOsMkfifoUnsafePermissions: {
		ID:          "W8017",
		Severity:    SeverityWarning,
		Title:       "Avoid using `os.mkfifo()` with unsafe file permissions (should be %s)",
		Explanation: "Avoid using `os.mkfifo()` with unsafe file permissions (by default 0 <= mode <= 0o755)",
	},
	CodeOsMknodUnsafePermissions: {
		ID:          "W8018",
		Severity:    SeverityWarning,
		Title:       "Avoid using `os.mknod()` with unsafe file permissions (should be %s)",
		Explanation: "Avoid using `os.mknod()` with unsafe file permissions (by default 0 <= mode <= 0o755)",
	},
	CodeOsChmodUnsafePermissions: {
		ID:       "W8019",
		Severity: SeverityWarning,
		Title:    "Avoid using `os.chmod()` with unsafe permissions (W ^ X for group and others)",
		Explanation: "Avoid using `os.chmod()` with permissions that grant write or execute access to the " +
			"group or to others",
	},
}

// Messages returns a copy of the full diagnostic metadata table, keyed by
// slug. Hosts use it to register the checker's message set.
func Messages() map[Code]Message {
	out := make(map[Code]Message, len(messages))
	for code, msg := range messages {
		out[code] = msg
	}
	return out
}

// Lookup returns the metadata for a single code.
func Lookup(code Code) (Message, bool) {
	msg, ok := messages[code]
	return msg, ok
}
