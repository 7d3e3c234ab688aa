// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// scs checks Python source files against a set of secure coding rules.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/logging"
)

// Exit codes.
const (
	ExitClean    = 0
	ExitFindings = 1
	ExitError    = 2
)

var (
	flagLogLevel string
	flagLogJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "scs",
	Short: "Secure coding standard checker for Python",
	Long: `scs inspects Python source files and flags calls, imports and
statements that violate common secure coding guidance: shell execution,
unsafe deserialization, overly permissive file modes, debugger imports
and more.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(flagLogLevel)
		if err != nil {
			return err
		}
		logger := logging.New(logging.Config{Level: level, JSON: flagLogJSON})
		logging.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn",
		"Log verbosity: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false,
		"Emit logs as JSON instead of text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "scs: %v\n", err)
		os.Exit(ExitError)
	}
}
