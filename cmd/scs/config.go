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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ScanConfig holds the scan settings that can come from a YAML file.
// Command-line flags that were explicitly set override file values.
type ScanConfig struct {
	OsOpenMode   string `yaml:"os-open-mode"`
	OsMkdirMode  string `yaml:"os-mkdir-mode"`
	OsMkfifoMode string `yaml:"os-mkfifo-mode"`
	OsMknodMode  string `yaml:"os-mknod-mode"`
	Platform     string `yaml:"platform"`
	Format       string `yaml:"format"`
	Workers      int    `yaml:"workers"`
	MaxFileSize  int64  `yaml:"max-file-size"`
}

// resolveScanConfig merges the optional config file with the flag values.
func resolveScanConfig(cmd *cobra.Command) (ScanConfig, error) {
	var cfg ScanConfig
	if scanConfigPath != "" {
		data, err := os.ReadFile(scanConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", scanConfigPath, err)
		}
	}

	// Flags win when the user set them; otherwise keep file values and
	// fall back to flag defaults for anything still empty.
	override := func(name string, target *string, flagValue string) {
		if cmd.Flags().Changed(name) || *target == "" {
			*target = flagValue
		}
	}
	override("os-open-mode", &cfg.OsOpenMode, scanOsOpenMode)
	override("os-mkdir-mode", &cfg.OsMkdirMode, scanOsMkdirMode)
	override("os-mkfifo-mode", &cfg.OsMkfifoMode, scanOsMkfifoMode)
	override("os-mknod-mode", &cfg.OsMknodMode, scanOsMknodMode)
	override("platform", &cfg.Platform, scanPlatform)
	override("format", &cfg.Format, scanFormat)

	if cmd.Flags().Changed("workers") || cfg.Workers == 0 {
		cfg.Workers = scanWorkers
	}
	if cmd.Flags().Changed("max-file-size") || cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = scanMaxFileSize
	}
	return cfg, nil
}
