// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces bursts of filesystem events (editors often
// fire several per save) into a single rescan.
const watchDebounce = 250 * time.Millisecond

// Watch scans the given paths, then rescans whenever a Python file under
// them changes. onScan receives the result of every scan, including the
// initial one. Watch blocks until ctx is canceled or the watcher fails.
func (s *Scanner) Watch(ctx context.Context, paths []string, onScan func([]Finding, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addWatchTargets(watcher, paths); err != nil {
		return err
	}

	onScan(s.ScanPaths(ctx, paths))

	var (
		debounce *time.Timer
		fire     <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchRelevant(event) {
				continue
			}
			// New directories need watching so files created inside
			// them later are seen too.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addWatchTargets(watcher, []string{event.Name})
				}
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				fire = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", "error", err)

		case <-fire:
			debounce = nil
			fire = nil
			onScan(s.ScanPaths(ctx, paths))
		}
	}
}

// watchRelevant filters events down to changes that can alter scan
// results: Python file changes and directory-level changes.
func watchRelevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	if isPythonFile(event.Name) {
		return true
	}
	if info, err := os.Stat(event.Name); err == nil {
		return info.IsDir()
	}
	// The path is already gone, so it cannot be classified. A removed or
	// renamed directory may have taken Python files with it; rescan.
	return event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename)
}

// addWatchTargets registers the paths (and, for directories, every
// subdirectory) with the watcher.
func addWatchTargets(watcher *fsnotify.Watcher, paths []string) error {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if !info.IsDir() {
			if err := watcher.Add(filepath.Dir(path)); err != nil {
				return fmt.Errorf("watching %s: %w", path, err)
			}
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if p != path && (name == "__pycache__" || name[0] == '.') {
				return filepath.SkipDir
			}
			return watcher.Add(p)
		})
		if err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
	}
	return nil
}
