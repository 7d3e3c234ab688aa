// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package checker implements the secure-coding-standard rule engine: a set
// of structural pattern matchers over Python syntax nodes, a constant
// folder for permission-bitmask expressions, a per-instance mode-policy
// store, and the dispatcher that ties them together.
//
// Lifecycle: construct with New, configure the four mode policies via the
// Set*Modes setters (fail-fast on malformed values), then let the host
// drive the pyast.Visitor methods for the whole tree walk. Policies are
// immutable once the walk starts; the checker itself holds no other state,
// so a scan is a pure function of the tree and the configuration.
//
// Dispatch is first-match-wins over an explicit ordered rule list. The
// order is part of the engine's contract: downstream tooling depends on
// which single code a node emits, so rules must not be reordered.
package checker

import (
	"fmt"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"
)

// Checker is the stateful object the host drives. It is not safe for
// concurrent use: the host guarantees sequential visitor calls within one
// instance (use one Checker per goroutine when scanning files in parallel).
type Checker struct {
	reporter Reporter
	platform PlatformFunc

	osOpen   ModePolicy
	osMkdir  ModePolicy
	osMkfifo ModePolicy
	osMknod  ModePolicy
}

// Compile-time check that Checker implements the visitor surface.
var _ pyast.Visitor = (*Checker)(nil)

// Option configures a Checker at construction.
type Option func(*Checker)

// WithPlatform overrides the POSIX-capability query. Tests use this to
// exercise both sides of the platform-gated rules on any build host.
func WithPlatform(fn PlatformFunc) Option {
	return func(c *Checker) {
		if fn != nil {
			c.platform = fn
		}
	}
}

// New creates a Checker reporting to the given Reporter. All four mode
// policies start disabled; the policy-gated rules stay inert until the
// host invokes the corresponding setter.
func New(reporter Reporter, opts ...Option) *Checker {
	c := &Checker{
		reporter: reporter,
		platform: DefaultPlatform,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetOsOpenModes configures the generic-open policy from the raw
// "os-open-mode" option string. Enabling it activates both the
// os-open-unsafe-permissions check and the stricter replace-builtin-open
// check. Returns ErrInvalidOption (wrapped) on malformed input.
func (c *Checker) SetOsOpenModes(value string) error {
	policy, err := parseModeOption("os-open-mode", value)
	if err != nil {
		return err
	}
	c.osOpen = policy
	return nil
}

// SetOsMkdirModes configures the directory-create policy
// ("os-mkdir-mode"), covering os.mkdir and os.makedirs.
func (c *Checker) SetOsMkdirModes(value string) error {
	policy, err := parseModeOption("os-mkdir-mode", value)
	if err != nil {
		return err
	}
	c.osMkdir = policy
	return nil
}

// SetOsMkfifoModes configures the fifo-create policy ("os-mkfifo-mode").
func (c *Checker) SetOsMkfifoModes(value string) error {
	policy, err := parseModeOption("os-mkfifo-mode", value)
	if err != nil {
		return err
	}
	c.osMkfifo = policy
	return nil
}

// SetOsMknodModes configures the special-file-create policy
// ("os-mknod-mode").
func (c *Checker) SetOsMknodModes(value string) error {
	policy, err := parseModeOption("os-mknod-mode", value)
	if err != nil {
		return err
	}
	c.osMknod = policy
	return nil
}

// ruleFunc evaluates one dispatch entry against a call. It reports whether
// the rule matched, the optional diagnostic format argument, and an error
// only for the non-recoverable missing-mode case.
type ruleFunc func(*Checker, *pyast.Call) (bool, string, error)

// callRule pairs a diagnostic code with its predicate.
type callRule struct {
	code  Code
	match ruleFunc
}

// pure adapts a stateless predicate to the ruleFunc signature.
func pure(match func(*pyast.Call) bool) ruleFunc {
	return func(_ *Checker, call *pyast.Call) (bool, string, error) {
		return match(call), "", nil
	}
}

// callRules is the dispatch priority chain. First match wins and
// short-circuits; a later rule is unreachable for a node once an earlier
// one matches, even if both would structurally apply.
var callRules = []callRule{
	{CodeAvoidDebugStmt, pure(isPdbCall)},
	{CodeReplaceMktemp, pure(isMktempCall)},
	{CodeAvoidYamlUnsafeLoad, pure(isYamlUnsafeCall)},
	{CodeAvoidJsonpickleDecode, pure(isJsonpickleDecodeCall)},
	{CodeAvoidOsSystem, pure(isOsSystemCall)},
	{CodeReplaceOsRelpathAbspath, pure(isOsPathCall)},
	{CodeAvoidShellTrue, pure(func(call *pyast.Call) bool {
		return isSubprocessShellTrueCall(call) || isAsyncSubprocessShellCall(call)
	})},
	{CodeAvoidOsPopen, pure(isOsPopenCall)},
	{CodeReplaceBuiltinOpen, (*Checker).matchBuiltinOpenForWriting},
	{CodeAvoidEvalExec, pure(isEvalExecCall)},
	{CodeAvoidShlexQuoteOnNonPosix, (*Checker).matchShlexQuoteNonPosix},
	{CodeOsOpenUnsafePermissions, (*Checker).matchOsOpenPermissions},
	{CodeAvoidPickleLoad, pure(isPickleLoadCall)},
	{CodeAvoidMarshalLoad, pure(isMarshalLoadCall)},
	{CodeAvoidShelveOpen, pure(isShelveOpenCall)},
	{CodeOsChmodUnsafePermissions, (*Checker).matchOsChmodPermissions},
	{CodeOsMkdirUnsafePermissions, (*Checker).matchOsMkdirPermissions},
	{CodeOsMkfifoUnsafePermissions, (*Checker).matchOsMkfifoPermissions},
	{CodeOsMknodUnsafePermissions, (*Checker).matchOsMknodPermissions},
}

// VisitCall evaluates the dispatch chain against one call node and emits at
// most one diagnostic. The only error condition is a POSIX os.chmod call
// with no mode argument at all, which aborts the scan of this tree.
func (c *Checker) VisitCall(node *pyast.Call) error {
	for _, rule := range callRules {
		matched, arg, err := rule.match(c, node)
		if err != nil {
			return err
		}
		if matched {
			c.report(rule.code, node, arg)
			return nil
		}
	}
	return nil
}

// VisitImport flags `import pdb` in any position of the import list.
func (c *Checker) VisitImport(node *pyast.Import) error {
	if importsAnyName(node.Names, "pdb") {
		c.report(CodeAvoidDebugStmt, node, "")
	}
	return nil
}

// VisitImportFrom matches `from X import name` statements against the
// guarded module/symbol pairs, in the same relative priority order as the
// call rules. At most one diagnostic per statement.
func (c *Checker) VisitImportFrom(node *pyast.ImportFrom) error {
	switch {
	case node.Module == "pdb":
		c.report(CodeAvoidDebugStmt, node, "")
	case node.Module == "tempfile" && importsAnyName(node.Names, "mktemp"):
		c.report(CodeReplaceMktemp, node, "")
	case (node.Module == "os.path" || node.Module == "op") &&
		importsAnyName(node.Names, "relpath", "abspath"):
		c.report(CodeReplaceOsRelpathAbspath, node, "")
	case node.Module == "os" && importsAnyName(node.Names, "system"):
		c.report(CodeAvoidOsSystem, node, "")
	case node.Module == "os" && importsAnyName(node.Names, "popen"):
		c.report(CodeAvoidOsPopen, node, "")
	case node.Module == "shlex" && importsAnyName(node.Names, "quote") && !c.platform():
		c.report(CodeAvoidShlexQuoteOnNonPosix, node, "")
	case node.Module == "pickle" && importsAnyName(node.Names, "load", "loads"):
		c.report(CodeAvoidPickleLoad, node, "")
	case node.Module == "marshal" && importsAnyName(node.Names, "load", "loads"):
		c.report(CodeAvoidMarshalLoad, node, "")
	case node.Module == "shelve" && importsAnyName(node.Names, "open"):
		c.report(CodeAvoidShelveOpen, node, "")
	}
	return nil
}

// VisitWith inspects each bound context-manager expression for the guarded
// file-opening shapes. Diagnostics anchor at the with statement, since
// that is the node the host hands us.
func (c *Checker) VisitWith(node *pyast.With) error {
	for _, item := range node.Items {
		call, ok := item.ContextExpr.(*pyast.Call)
		if !ok {
			continue
		}
		if matched, _, _ := c.matchBuiltinOpenForWriting(call); matched {
			c.report(CodeReplaceBuiltinOpen, node, "")
			continue
		}
		if matched, arg, _ := c.matchOsOpenPermissions(call); matched {
			c.report(CodeOsOpenUnsafePermissions, node, arg)
			continue
		}
		if isShelveOpenCall(call) {
			c.report(CodeAvoidShelveOpen, node, "")
		}
	}
	return nil
}

// VisitAssert flags every assert statement.
func (c *Checker) VisitAssert(node *pyast.Assert) error {
	c.report(CodeAvoidAssert, node, "")
	return nil
}

func (c *Checker) report(code Code, node pyast.Node, arg string) {
	c.reporter.Report(Diagnostic{Code: code, Node: node, Arg: arg})
}

// matchBuiltinOpenForWriting gates the open-for-writing shape on the
// generic-open policy: the diagnostic only makes sense when the user asked
// for os.open with explicit permissions to be preferred.
func (c *Checker) matchBuiltinOpenForWriting(call *pyast.Call) (bool, string, error) {
	if !c.osOpen.Enabled() {
		return false, "", nil
	}
	return isBuiltinOpenForWriting(call), "", nil
}

// matchShlexQuoteNonPosix flags shlex.quote only where its quoting rules
// do not hold.
func (c *Checker) matchShlexQuoteNonPosix(call *pyast.Call) (bool, string, error) {
	if c.platform() {
		return false, "", nil
	}
	return isShlexQuoteCall(call), "", nil
}

// matchOsOpenPermissions checks the mode argument of os.open (positional
// index 2 or keyword) against the generic-open allow-list. A missing or
// unresolvable mode is not flagged: os.open has a safe default and an
// expression we cannot fold cannot be proven unsafe.
func (c *Checker) matchOsOpenPermissions(call *pyast.Call) (bool, string, error) {
	if !isOsOpenCall(call) || !c.osOpen.Enabled() {
		return false, "", nil
	}
	modeNode, ok := argOrKeyword(call, 2, "mode")
	if !ok {
		return false, "", nil
	}
	mode, err := evalModeExpr(modeNode)
	if err != nil || c.osOpen.Allows(mode) {
		return false, "", nil
	}
	return true, c.osOpen.Display(), nil
}

// matchOsChmodPermissions flags chmod modes granting group/other write or
// execute access. POSIX-only; a chmod with no mode argument at all is a
// fatal usage error in the scanned code, unlike an unresolvable mode
// expression which is silently skipped.
func (c *Checker) matchOsChmodPermissions(call *pyast.Call) (bool, string, error) {
	if !isOsChmodCall(call) || !c.platform() {
		return false, "", nil
	}
	modeNode, ok := argOrKeyword(call, 1, "mode")
	if !ok {
		return false, "", fmt.Errorf("os.chmod at line %d: %w", call.Pos().Line, ErrMissingModeArgument)
	}
	mode, err := evalModeExpr(modeNode)
	if err != nil {
		return false, "", nil
	}
	return mode&unsafeGroupOtherMask != 0, "", nil
}

func (c *Checker) matchOsMkdirPermissions(call *pyast.Call) (bool, string, error) {
	return c.matchCreatePermissions(call, isOsMkdirCall, c.osMkdir)
}

func (c *Checker) matchOsMkfifoPermissions(call *pyast.Call) (bool, string, error) {
	return c.matchCreatePermissions(call, isOsMkfifoCall, c.osMkfifo)
}

func (c *Checker) matchOsMknodPermissions(call *pyast.Call) (bool, string, error) {
	return c.matchCreatePermissions(call, isOsMknodCall, c.osMknod)
}

// matchCreatePermissions is the shared threshold check for the
// directory/fifo/special-file creation calls: POSIX-only, policy-gated,
// mode at positional index 1 or by keyword. These calls have safe API
// defaults, so a missing or unresolvable mode is never flagged.
func (c *Checker) matchCreatePermissions(call *pyast.Call, isMatch func(*pyast.Call) bool, policy ModePolicy) (bool, string, error) {
	if !isMatch(call) || !c.platform() || !policy.Enabled() {
		return false, "", nil
	}
	modeNode, ok := argOrKeyword(call, 1, "mode")
	if !ok {
		return false, "", nil
	}
	mode, err := evalModeExpr(modeNode)
	if err != nil || policy.Allows(mode) {
		return false, "", nil
	}
	return true, policy.Display(), nil
}
