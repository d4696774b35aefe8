// Package filesystem provides the dataset source: a recursive walk of a
// local directory tree and an fsnotify watch over it.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/campus-rag/internal/core/domain"
	"github.com/custodia-labs/campus-rag/internal/core/ports/driven"
	"github.com/custodia-labs/campus-rag/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// ErrRootNotFound indicates the dataset directory is missing.
var ErrRootNotFound = errors.New("dataset directory does not exist")

// Source enumerates candidate files under a root directory.
// Hidden files and directories are skipped, as are files whose extension
// is not a supported source type.
type Source struct {
	rootPath string
	log      logger.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a source rooted at rootPath.
func New(rootPath string) *Source {
	return &Source{rootPath: rootPath, log: logger.For("dataset")}
}

// Root returns the dataset root directory.
func (s *Source) Root() string {
	return s.rootPath
}

// FullSync walks the tree in lexical order and emits every candidate file.
func (s *Source) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		info, err := os.Stat(s.rootPath)
		if err != nil || !info.IsDir() {
			errs <- fmt.Errorf("%w: %s", ErrRootNotFound, s.rootPath)
			return
		}

		walkErr := filepath.WalkDir(s.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				return s.send(ctx, errs, domain.NewIngestionError(path, "", domain.ErrUnreadableFile, err))
			}
			if path != s.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			typ, ok := domain.SourceTypeFromPath(path)
			if !ok {
				return nil
			}

			raw, err := readRaw(path, typ)
			if err != nil {
				return s.send(ctx, errs, err)
			}
			select {
			case docs <- *raw:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if walkErr != nil && !errors.Is(walkErr, context.Canceled) && !errors.Is(walkErr, context.DeadlineExceeded) {
			s.log.Warn("walk stopped: %v", walkErr)
		}
	}()

	return docs, errs
}

// send delivers a per-file error without stopping the walk.
func (s *Source) send(ctx context.Context, errs chan<- error, err error) error {
	select {
	case errs <- err:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Watch emits create, update and delete events for candidate files until
// ctx is cancelled or Close is called. New subdirectories are watched as
// they appear.
func (s *Source) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := s.addTree(watcher, s.rootPath); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	s.mu.Lock()
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	s.watcher = watcher
	s.mu.Unlock()

	changes := make(chan domain.RawDocumentChange)
	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				_ = watcher.Close()
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !s.hiddenUnderRoot(event.Name) {
						if err := s.addTree(watcher, event.Name); err != nil {
							s.log.Warn("%v", err)
						}
					}
				}
				change := s.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					_ = watcher.Close()
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("watch error: %v", err)
			}
		}
	}()
	return changes, nil
}

// addTree watches dir and every non-hidden directory below it.
func (s *Source) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != s.rootPath && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent converts an fsnotify event into a change, or nil when the
// event concerns a directory, a hidden path, a non-candidate file, or only
// permissions.
func (s *Source) handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if s.hiddenUnderRoot(event.Name) {
		return nil
	}
	typ, ok := domain.SourceTypeFromPath(event.Name)
	if !ok {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RawDocumentChange{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{Path: event.Name, Type: typ},
		}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		raw, err := readRaw(event.Name, typ)
		if err != nil {
			s.log.Debug("skipping %s: %v", event.Name, err)
			return nil
		}
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.RawDocumentChange{Type: changeType, Document: *raw}
	default:
		return nil
	}
}

// Close stops any active watch.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	return err
}

func (s *Source) hiddenUnderRoot(path string) bool {
	rel, err := filepath.Rel(s.rootPath, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return isHidden(path)
	}
	return isHidden(rel)
}

func readRaw(path string, typ domain.SourceType) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, domain.NewIngestionError(path, typ, domain.ErrUnreadableFile, err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewIngestionError(path, typ, domain.ErrUnreadableFile, err)
	}
	return &domain.RawDocument{
		Path:    path,
		Type:    typ,
		Content: content,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" || part == "." || part == ".." {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
