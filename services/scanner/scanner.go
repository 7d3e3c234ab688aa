// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scanner applies the secure-coding rules to Python source files.
//
// It pairs the tree-sitter based Parser with pkg/checker: each file gets a
// fresh Checker wired to a recording reporter, and the resulting findings
// carry file/line/column coordinates plus the rendered message text.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/checker"
	"github.com/Takishima/pylint-secure-coding-standard/pkg/pyast"
)

// Finding is one rule violation located in a source file.
type Finding struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Col      int    `json:"column"`
	Slug     string `json:"slug"`
	MsgID    string `json:"message-id"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// Options configures a Scanner. The four mode options accept the same
// grammar as the checker setters; empty strings leave the corresponding
// rules at their defaults.
type Options struct {
	OsOpenMode   string
	OsMkdirMode  string
	OsMkfifoMode string
	OsMknodMode  string

	// Platform overrides POSIX detection. Nil means detect from the
	// host operating system.
	Platform checker.PlatformFunc

	// MaxFileSize caps parsed file size; zero means DefaultMaxFileSize.
	MaxFileSize int64

	// Workers bounds directory-scan concurrency; zero means GOMAXPROCS.
	Workers int

	Logger *slog.Logger
}

// Scanner runs the rule set over files and directory trees. It is safe
// for concurrent use.
type Scanner struct {
	opts   Options
	parser *Parser
	log    *slog.Logger
}

// New validates the options and builds a Scanner. Mode option errors are
// reported here, before any file is touched, wrapped with
// checker.ErrInvalidOption.
func New(opts Options) (*Scanner, error) {
	s := &Scanner{opts: opts, log: opts.Logger}
	if s.log == nil {
		s.log = slog.Default()
	}

	var popts []ParserOption
	if opts.MaxFileSize > 0 {
		popts = append(popts, WithMaxFileSize(opts.MaxFileSize))
	}
	s.parser = NewParser(popts...)

	// Configure a throwaway checker so malformed mode values fail fast.
	if _, err := s.newChecker(checker.ReporterFunc(func(checker.Diagnostic) {})); err != nil {
		return nil, err
	}
	return s, nil
}

// newChecker builds a per-file Checker from the scanner options.
func (s *Scanner) newChecker(reporter checker.Reporter) (*checker.Checker, error) {
	var copts []checker.Option
	if s.opts.Platform != nil {
		copts = append(copts, checker.WithPlatform(s.opts.Platform))
	}
	c := checker.New(reporter, copts...)

	for _, opt := range []struct {
		value string
		set   func(string) error
	}{
		{s.opts.OsOpenMode, c.SetOsOpenModes},
		{s.opts.OsMkdirMode, c.SetOsMkdirModes},
		{s.opts.OsMkfifoMode, c.SetOsMkfifoModes},
		{s.opts.OsMknodMode, c.SetOsMknodModes},
	} {
		if opt.value == "" {
			continue
		}
		if err := opt.set(opt.value); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ScanSource checks a single buffer of Python source. The path is only
// used to label findings.
func (s *Scanner) ScanSource(ctx context.Context, content []byte, path string) ([]Finding, error) {
	file, err := s.parser.Parse(ctx, content, path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	if file.HasSyntaxErrors {
		s.log.Warn("source has syntax errors, results may be partial", "path", path)
	}

	var findings []Finding
	reporter := checker.ReporterFunc(func(d checker.Diagnostic) {
		findings = append(findings, newFinding(path, d))
	})
	c, err := s.newChecker(reporter)
	if err != nil {
		return nil, err
	}

	for _, node := range file.Nodes {
		if err := visit(c, node); err != nil {
			return findings, fmt.Errorf("scan %s: %w", path, err)
		}
	}
	sortFindings(findings)
	return findings, nil
}

// ScanFile checks one file on disk.
func (s *Scanner) ScanFile(ctx context.Context, path string) ([]Finding, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return s.ScanSource(ctx, content, path)
}

// ScanPaths checks files and directory trees. Directories are walked
// recursively for .py and .pyi files, scanned concurrently, and the
// combined findings come back sorted by file, line, column and message ID.
func (s *Scanner) ScanPaths(ctx context.Context, paths []string) ([]Finding, error) {
	files, err := collectPythonFiles(paths)
	if err != nil {
		return nil, err
	}
	s.log.Debug("scanning files", "count", len(files))

	workers := s.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu  sync.Mutex
		all []Finding
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			findings, err := s.ScanFile(ctx, path)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, findings...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortFindings(all)
	return all, nil
}

// visit dispatches one statement node to the matching visitor method.
func visit(v pyast.Visitor, node pyast.Node) error {
	switch n := node.(type) {
	case *pyast.Call:
		return v.VisitCall(n)
	case *pyast.Import:
		return v.VisitImport(n)
	case *pyast.ImportFrom:
		return v.VisitImportFrom(n)
	case *pyast.With:
		return v.VisitWith(n)
	case *pyast.Assert:
		return v.VisitAssert(n)
	}
	return nil
}

// newFinding renders a diagnostic into its located, human-readable form.
func newFinding(path string, d checker.Diagnostic) Finding {
	msg, ok := checker.Lookup(d.Code)
	if !ok {
		// Unreachable for diagnostics produced by the checker itself.
		msg = checker.Message{ID: "E0000", Title: string(d.Code)}
	}

	text := msg.Title
	if strings.Contains(text, "%s") {
		text = fmt.Sprintf(text, d.Arg)
	}

	pos := d.Node.Pos()
	return Finding{
		File:     path,
		Line:     pos.Line,
		Col:      pos.Col,
		Slug:     string(d.Code),
		MsgID:    msg.ID,
		Severity: msg.Severity.String(),
		Message:  text,
	}
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Col != b.Col {
			return a.Col < b.Col
		}
		return a.MsgID < b.MsgID
	})
}

// collectPythonFiles expands the given paths: plain files are taken as-is,
// directories are walked for Python sources. Hidden directories and
// __pycache__ are skipped.
func collectPythonFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if p != path && (strings.HasPrefix(name, ".") || name == "__pycache__") {
					return filepath.SkipDir
				}
				return nil
			}
			if isPythonFile(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", path, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isPythonFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return true
	}
	return false
}
