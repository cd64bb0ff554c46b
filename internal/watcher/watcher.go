// Package watcher ingests video files dropped into a local inbox
// directory, as an alternative entry point to the HTTP upload.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"clipfinder/internal/ingest"
)

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 2 * time.Second

// Watcher monitors a drop directory and runs each settled video file
// through the upload ingestion path.
type Watcher struct {
	dir     string
	manager *ingest.Manager
	fs      *fsnotify.Watcher
	logger  *logrus.Logger
	wg      sync.WaitGroup
}

func New(dir string, manager *ingest.Manager, logger *logrus.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, err
	}
	return &Watcher{dir: dir, manager: manager, fs: fs, logger: logger}, nil
}

// Start blocks, ingesting dropped files until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.logger.Infof("Inbox watcher started on %s", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.fs.Close()
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != fsnotify.Create || !isVideoFile(event.Name) {
				continue
			}
			w.wg.Add(1)
			go func(path string) {
				defer w.wg.Done()
				w.ingest(ctx, path)
			}(event.Name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Errorf("Watcher error: %v", err)
		}
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	time.Sleep(settleDelay)

	f, err := os.Open(path)
	if err != nil {
		w.logger.Errorf("Cannot open dropped file %s: %v", path, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		w.logger.Errorf("Cannot stat dropped file %s: %v", path, err)
		return
	}

	res, err := w.manager.IngestFromUpload(ctx, f, filepath.Base(path), info.Size())
	if err != nil {
		w.logger.Errorf("Inbox ingestion failed for %s: %v", path, err)
		return
	}

	// The bytes now live in the media store; the inbox copy is redundant.
	if err := os.Remove(path); err != nil {
		w.logger.Warnf("Could not remove inbox file %s: %v", path, err)
	}
	w.logger.Infof("Inbox file %s ingested as %s", path, res.Record.Filename)
}

func isVideoFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".avi", ".mkv", ".webm":
		return true
	}
	return false
}
