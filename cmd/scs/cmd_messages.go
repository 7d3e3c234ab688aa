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
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Takishima/pylint-secure-coding-standard/pkg/checker"
)

var messagesJSON bool

var messagesCmd = &cobra.Command{
	Use:   "messages",
	Short: "List every rule with its message ID, slug and severity",
	Run:   runMessages,
}

func init() {
	messagesCmd.Flags().BoolVar(&messagesJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(messagesCmd)
}

type messageEntry struct {
	ID       string `json:"message-id"`
	Slug     string `json:"slug"`
	Severity string `json:"severity"`
	Title    string `json:"title"`
}

func runMessages(cmd *cobra.Command, args []string) {
	var entries []messageEntry
	for code, msg := range checker.Messages() {
		entries = append(entries, messageEntry{
			ID:       msg.ID,
			Slug:     string(code),
			Severity: msg.Severity.String(),
			Title:    msg.Title,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	if messagesJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			fmt.Fprintf(os.Stderr, "scs: %v\n", err)
			os.Exit(ExitError)
		}
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %-38s %-10s %s\n", e.ID, e.Slug, e.Severity, e.Title)
	}
}
