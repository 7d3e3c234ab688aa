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
	"os"
	"path/filepath"
	"testing"
)

func resetScanFlags(t *testing.T) {
	t.Helper()
	scanOsOpenMode, scanOsMkdirMode, scanOsMkfifoMode, scanOsMknodMode = "", "", "", ""
	scanPlatform, scanFormat, scanConfigPath = "auto", "text", ""
	scanWorkers, scanMaxFileSize = 0, 0
	for _, name := range []string{"os-open-mode", "os-mkdir-mode", "os-mkfifo-mode", "os-mknod-mode",
		"platform", "format", "workers", "max-file-size"} {
		if f := scanCmd.Flags().Lookup(name); f != nil {
			f.Changed = false
		}
	}
}

func TestResolveScanConfig_Defaults(t *testing.T) {
	resetScanFlags(t)

	cfg, err := resolveScanConfig(scanCmd)
	if err != nil {
		t.Fatalf("resolveScanConfig() error = %v", err)
	}
	if cfg.Platform != "auto" || cfg.Format != "text" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.OsOpenMode != "" {
		t.Errorf("os-open-mode default = %q, want empty", cfg.OsOpenMode)
	}
}

func TestResolveScanConfig_FileValues(t *testing.T) {
	resetScanFlags(t)

	path := filepath.Join(t.TempDir(), "scs.yaml")
	content := "os-open-mode: \"0o755\"\nformat: json\nworkers: 4\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	scanConfigPath = path

	cfg, err := resolveScanConfig(scanCmd)
	if err != nil {
		t.Fatalf("resolveScanConfig() error = %v", err)
	}
	if cfg.OsOpenMode != "0o755" {
		t.Errorf("OsOpenMode = %q, want 0o755", cfg.OsOpenMode)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Workers)
	}
	// Unset keys fall back to flag defaults.
	if cfg.Platform != "auto" {
		t.Errorf("Platform = %q, want auto", cfg.Platform)
	}
}

func TestResolveScanConfig_FlagOverridesFile(t *testing.T) {
	resetScanFlags(t)

	path := filepath.Join(t.TempDir(), "scs.yaml")
	if err := os.WriteFile(path, []byte("format: json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	scanConfigPath = path

	if err := scanCmd.Flags().Set("format", "text"); err != nil {
		t.Fatal(err)
	}
	defer func() { scanCmd.Flags().Lookup("format").Changed = false }()

	cfg, err := resolveScanConfig(scanCmd)
	if err != nil {
		t.Fatalf("resolveScanConfig() error = %v", err)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want text (flag wins)", cfg.Format)
	}
}

func TestResolveScanConfig_BadFile(t *testing.T) {
	resetScanFlags(t)

	scanConfigPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := resolveScanConfig(scanCmd); err == nil {
		t.Error("expected error for missing config file")
	}

	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ]"), 0o644); err != nil {
		t.Fatal(err)
	}
	scanConfigPath = path
	if _, err := resolveScanConfig(scanCmd); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestPlatformFunc(t *testing.T) {
	fn, err := platformFunc("posix")
	if err != nil || fn == nil || !fn() {
		t.Errorf("posix: fn=%v err=%v", fn, err)
	}
	fn, err = platformFunc("other")
	if err != nil || fn == nil || fn() {
		t.Errorf("other: fn=%v err=%v", fn, err)
	}
	fn, err = platformFunc("auto")
	if err != nil || fn != nil {
		t.Errorf("auto should defer to host detection: fn=%v err=%v", fn, err)
	}
	if _, err = platformFunc("windows"); err == nil {
		t.Error("expected error for unknown platform value")
	}
}
