// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is how long a file must stay quiet before it is processed.
// Word writes documents in several bursts when saving.
const debounceDelay = 500 * time.Millisecond

// Watch processes documents as they appear in or change under folder. It
// blocks until the context is cancelled. Each event is debounced so a
// document is only processed once its writer has finished with it.
func (p *Processor) Watch(ctx context.Context, folder string, onResult func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(folder); err != nil {
		return fmt.Errorf("cannot watch folder %s: %w", folder, err)
	}

	// pending maps a path to its debounce deadline
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(debounceDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !EligibleDocument(filepath.Base(event.Name)) {
				continue
			}
			pending[event.Name] = time.Now().Add(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)

		case now := <-ticker.C:
			for path, deadline := range pending {
				if now.Before(deadline) {
					continue
				}
				delete(pending, path)
				result := p.ProcessFile(path)
				if onResult != nil {
					onResult(result)
				}
			}
		}
	}
}
