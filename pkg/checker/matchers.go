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

	"github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"
)

// The matchers below are pure predicates over a single Call node. Each one
// recognizes exactly one risky API shape; none of them consult checker
// state. Platform and policy gating happens in the dispatch table, not here.

// qualifiedCallee extracts `<base>.<attr>` from a module-qualified call,
// i.e. a callee of shape Attribute(Name(base), attr). Deeper attribute
// chains (os.path.abspath) do not match this helper.
func qualifiedCallee(call *pyast.Call) (base, attr string, ok bool) {
	attrNode, ok := call.Func.(*pyast.Attribute)
	if !ok {
		return "", "", false
	}
	baseNode, ok := attrNode.Value.(*pyast.Name)
	if !ok {
		return "", "", false
	}
	return baseNode.ID, attrNode.Attr, true
}

// calleeName extracts the identifier of a bare-name call, e.g. `eval(x)`.
func calleeName(call *pyast.Call) (string, bool) {
	name, ok := call.Func.(*pyast.Name)
	if !ok {
		return "", false
	}
	return name.ID, true
}

// keywordValue returns the value bound to a keyword argument, if present.
func keywordValue(call *pyast.Call, name string) (pyast.Node, bool) {
	for _, kw := range call.Keywords {
		if kw.Arg == name {
			return kw.Value, true
		}
	}
	return nil, false
}

// argOrKeyword returns the argument that may be passed positionally at idx
// or by keyword name; both forms must be recognized identically.
func argOrKeyword(call *pyast.Call, idx int, name string) (pyast.Node, bool) {
	if len(call.Args) > idx {
		return call.Args[idx], true
	}
	return keywordValue(call, name)
}

// importsAnyName reports whether an import list binds one of the wanted
// names, regardless of aliasing.
func importsAnyName(names []pyast.Alias, wanted ...string) bool {
	for _, alias := range names {
		for _, want := range wanted {
			if alias.Name == want {
				return true
			}
		}
	}
	return false
}

// isPdbCall matches `pdb.<anything>()` and bare `Pdb()`.
func isPdbCall(call *pyast.Call) bool {
	if base, _, ok := qualifiedCallee(call); ok && base == "pdb" {
		return true
	}
	name, ok := calleeName(call)
	return ok && name == "Pdb"
}

// isMktempCall matches `<anything>.mktemp()` and bare `mktemp()`. The
// attribute form matches any base on purpose: `tempfile.mktemp` and an
// aliased `tf.mktemp` are equally discouraged.
func isMktempCall(call *pyast.Call) bool {
	if attrNode, ok := call.Func.(*pyast.Attribute); ok {
		return attrNode.Attr == "mktemp"
	}
	name, ok := calleeName(call)
	return ok && name == "mktemp"
}

// Loader names accepted and rejected by the yaml.load matcher.
var (
	yamlSafeLoaders   = []string{"BaseLoader", "SafeLoader"}
	yamlUnsafeLoaders = []string{"Loader", "UnsafeLoader", "FullLoader"}
)

func nameIn(node pyast.Node, candidates []string) bool {
	name, ok := node.(*pyast.Name)
	if !ok {
		return false
	}
	for _, c := range candidates {
		if name.ID == c {
			return true
		}
	}
	return false
}

// isYamlUnsafeCall matches the unsafe PyYAML loading shapes:
//
//	yaml.unsafe_load(...), yaml.full_load(...)
//	yaml.load(x)                      -- no loader at all
//	yaml.load(x, Loader)              -- positional unsafe loader
//	yaml.load(x, Loader=FullLoader)   -- keyword unsafe loader
//	unsafe_load(...), full_load(...)  -- imported bare names
//
// A recognized safe loader (BaseLoader, SafeLoader) in either form defeats
// the match. An unrecognized keyword loader name falls through unmatched.
func isYamlUnsafeCall(call *pyast.Call) bool {
	if base, attr, ok := qualifiedCallee(call); ok && base == "yaml" {
		if attr == "unsafe_load" || attr == "full_load" {
			return true
		}
		if attr == "load" {
			if len(call.Keywords) > 0 {
				if loader, ok := keywordValue(call, "Loader"); ok {
					return nameIn(loader, yamlUnsafeLoaders)
				}
				return false
			}
			return len(call.Args) < 2 || nameIn(call.Args[1], yamlUnsafeLoaders)
		}
	}

	if name, ok := calleeName(call); ok {
		return name == "unsafe_load" || name == "full_load"
	}
	return false
}

// isJsonpickleDecodeCall matches `jsonpickle.decode(...)`.
func isJsonpickleDecodeCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "jsonpickle" && attr == "decode"
}

// isOsSystemCall matches `os.system(...)`.
func isOsSystemCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && attr == "system"
}

// isOsPathCall matches the deprecated path-normalization calls
// `os.path.abspath`/`os.path.relpath` and their common alias
// `op.abspath`/`op.relpath`.
func isOsPathCall(call *pyast.Call) bool {
	attrNode, ok := call.Func.(*pyast.Attribute)
	if !ok || (attrNode.Attr != "abspath" && attrNode.Attr != "relpath") {
		return false
	}
	switch base := attrNode.Value.(type) {
	case *pyast.Name:
		return base.ID == "op"
	case *pyast.Attribute:
		inner, ok := base.Value.(*pyast.Name)
		return ok && inner.ID == "os" && base.Attr == "path"
	}
	return false
}

// shellFlagArgIndex is the position of the `shell` parameter in the
// subprocess function signatures (run, call, check_call, check_output,
// Popen all share it).
const shellFlagArgIndex = 8

// shellFlagTriggers reports whether a value bound to the shell flag
// triggers the rule: literal truthy values do, and any non-literal value is
// treated conservatively as triggering since we cannot prove it false.
func shellFlagTriggers(value pyast.Node) bool {
	if c, ok := value.(*pyast.Const); ok {
		return c.Truthy()
	}
	return true
}

// isSubprocessShellTrueCall matches `subprocess.<fn>(...)` (or the `sp`
// import alias) with the shell flag passed either by keyword or positionally
// at index 8.
func isSubprocessShellTrueCall(call *pyast.Call) bool {
	base, _, ok := qualifiedCallee(call)
	if !ok || (base != "subprocess" && base != "sp") {
		return false
	}
	if value, ok := keywordValue(call, "shell"); ok {
		return shellFlagTriggers(value)
	}
	if len(call.Args) > shellFlagArgIndex {
		return shellFlagTriggers(call.Args[shellFlagArgIndex])
	}
	return false
}

// isAsyncSubprocessShellCall matches the asyncio shell-spawning shapes:
// `asyncio.create_subprocess_shell(...)` and `loop.subprocess_shell(...)`.
// These run their command through a shell unconditionally.
func isAsyncSubprocessShellCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	if !ok {
		return false
	}
	if attr == "create_subprocess_shell" {
		return base == "asyncio"
	}
	return attr == "subprocess_shell"
}

// isOsPopenCall matches `os.popen(...)`.
func isOsPopenCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && attr == "popen"
}

// isBuiltinOpenForWriting matches builtin `open(...)` with a mode that
// enables writing ('a', 'w' or 'x' in the mode string). A mode that is not
// a literal is treated as unsafe: this check deliberately errs toward
// flagging, unlike the permission-threshold checks which err toward
// silence.
func isBuiltinOpenForWriting(call *pyast.Call) bool {
	name, ok := calleeName(call)
	if !ok || name != "open" {
		return false
	}
	mode, ok := argOrKeyword(call, 1, "mode")
	if !ok {
		return false
	}
	c, ok := mode.(*pyast.Const)
	if !ok || c.Kind != pyast.ConstString {
		return true
	}
	return strings.ContainsAny(c.Str, "awx")
}

// isEvalExecCall matches bare `eval(...)` and `exec(...)`.
func isEvalExecCall(call *pyast.Call) bool {
	name, ok := calleeName(call)
	return ok && (name == "eval" || name == "exec")
}

// isShlexQuoteCall matches `shlex.quote(...)`. Platform gating is the
// dispatcher's concern.
func isShlexQuoteCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "shlex" && attr == "quote"
}

// isOsOpenCall matches `os.open(...)`.
func isOsOpenCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && attr == "open"
}

// isPickleLoadCall matches `pickle.load(...)` and `pickle.loads(...)`.
func isPickleLoadCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "pickle" && (attr == "load" || attr == "loads")
}

// isMarshalLoadCall matches `marshal.load(...)` and `marshal.loads(...)`.
func isMarshalLoadCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "marshal" && (attr == "load" || attr == "loads")
}

// isShelveOpenCall matches `shelve.open(...)`.
func isShelveOpenCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "shelve" && attr == "open"
}

// isOsMkdirCall matches `os.mkdir(...)` and `os.makedirs(...)`.
func isOsMkdirCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && (attr == "mkdir" || attr == "makedirs")
}

// isOsMkfifoCall matches `os.mkfifo(...)`.
func isOsMkfifoCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && attr == "mkfifo"
}

// isOsMknodCall matches `os.mknod(...)`.
func isOsMknodCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && attr == "mknod"
}

// isOsChmodCall matches `os.chmod(...)`.
func isOsChmodCall(call *pyast.Call) bool {
	base, attr, ok := qualifiedCallee(call)
	return ok && base == "os" && attr == "chmod"
}
