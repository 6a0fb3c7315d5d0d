package planfile

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settle is how long Watch waits after the last event before reloading.
// Editors often emit several writes per save.
const settle = 200 * time.Millisecond

// Watch calls onChange with the freshly parsed plan every time the file at
// path is written, created or renamed into place. It watches the parent
// directory so atomic-rename saves are seen. Parse and callback errors are
// logged and watching continues. Watch returns when ctx is done.
func Watch(ctx context.Context, path string, onChange func(*Plan) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Plan watcher error: %v", err)
		case <-timer.C:
			plan, err := Load(abs)
			if err != nil {
				log.Printf("Skipping reload of %s: %v", abs, err)
				continue
			}
			if err := onChange(plan); err != nil {
				log.Printf("Reload of %s failed: %v", abs, err)
			}
		}
	}
}
