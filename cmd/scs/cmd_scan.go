// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/checker"
	"github.com/Takishima/pylint-secure-coding-standard/services/scanner"
)

var (
	scanOsOpenMode   string
	scanOsMkdirMode  string
	scanOsMkfifoMode string
	scanOsMknodMode  string
	scanPlatform     string
	scanFormat       string
	scanConfigPath   string
	scanWatch        bool
	scanWorkers      int
	scanMaxFileSize  int64
)

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Scan Python files for insecure coding patterns",
	Long: `Scan Python files and directory trees for insecure coding patterns.

Directories are walked recursively for .py and .pyi files. Each finding
is reported with its location, pylint-style message ID and a stable slug.

The four --os-*-mode flags tune the file-permission rules. Each accepts
"yes"/"no", a single maximum mode (e.g. "0o755"), or a comma-separated
list of allowed modes (e.g. "0o644,0o755").

Examples:
  scs scan src/
  scs scan --os-open-mode y app.py
  scs scan --os-mkdir-mode "0o755," --format json .
  scs scan --watch src/

Exit Codes:
  0 = No findings
  1 = Findings reported
  2 = Error (bad option, unreadable path, parse failure)`,
	Args: cobra.MinimumNArgs(1),
	Run:  runScan,
}

func init() {
	scanCmd.Flags().StringVar(&scanOsOpenMode, "os-open-mode", "",
		"Permission policy for os.open (yes/no, max mode, or mode list)")
	scanCmd.Flags().StringVar(&scanOsMkdirMode, "os-mkdir-mode", "",
		"Permission policy for os.mkdir / os.makedirs")
	scanCmd.Flags().StringVar(&scanOsMkfifoMode, "os-mkfifo-mode", "",
		"Permission policy for os.mkfifo")
	scanCmd.Flags().StringVar(&scanOsMknodMode, "os-mknod-mode", "",
		"Permission policy for os.mknod")
	scanCmd.Flags().StringVar(&scanPlatform, "platform", "auto",
		"Platform for platform-gated rules: auto, posix, other")
	scanCmd.Flags().StringVar(&scanFormat, "format", "text",
		"Output format: text, json")
	scanCmd.Flags().StringVar(&scanConfigPath, "config", "",
		"YAML config file (flags override file values)")
	scanCmd.Flags().BoolVar(&scanWatch, "watch", false,
		"Rescan whenever watched Python files change")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0,
		"Parallel scan workers (0 = GOMAXPROCS)")
	scanCmd.Flags().Int64Var(&scanMaxFileSize, "max-file-size", 0,
		"Skip files larger than this size in bytes (0 = 10MB default)")

	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	cfg, err := resolveScanConfig(cmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}

	platform, err := platformFunc(cfg.Platform)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}

	s, err := scanner.New(scanner.Options{
		OsOpenMode:   cfg.OsOpenMode,
		OsMkdirMode:  cfg.OsMkdirMode,
		OsMkfifoMode: cfg.OsMkfifoMode,
		OsMknodMode:  cfg.OsMknodMode,
		Platform:     platform,
		MaxFileSize:  cfg.MaxFileSize,
		Workers:      cfg.Workers,
		Logger:       slog.Default(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if scanWatch {
		runScanWatch(ctx, s, args, cfg.Format)
		return
	}

	findings, err := s.ScanPaths(ctx, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}
	if err := renderFindings(findings, cfg.Format); err != nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}
	if len(findings) > 0 {
		os.Exit(ExitFindings)
	}
	os.Exit(ExitClean)
}

// runScanWatch rescans on every filesystem change until interrupted.
// Watch mode always exits clean on interrupt; findings are a stream, not
// a verdict.
func runScanWatch(ctx context.Context, s *scanner.Scanner, paths []string, format string) {
	err := s.Watch(ctx, paths, func(findings []scanner.Finding, err error) {
		if err != nil {
			fmt.Fprintf(os.Stderr, "scs: %v\n", err)
			return
		}
		if renderErr := renderFindings(findings, format); renderErr != nil {
			fmt.Fprintf(os.Stderr, "scs: %v\n", renderErr)
		}
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitClean)
}

func renderFindings(findings []scanner.Finding, format string) error {
	switch format {
	case "json":
		return scanner.WriteJSON(os.Stdout, findings)
	case "text":
		return scanner.WriteText(os.Stdout, findings, scanner.ColorEnabled(os.Stdout))
	}
	return fmt.Errorf("unknown output format %q", format)
}

// platformFunc maps the --platform flag to the checker's POSIX gate.
func platformFunc(value string) (checker.PlatformFunc, error) {
	switch value {
	case "", "auto":
		return nil, nil
	case "posix":
		return func() bool { return true }, nil
	case "other":
		return func() bool { return false }, nil
	}
	return nil, fmt.Errorf("unknown platform %q (want auto, posix or other)", value)
}
