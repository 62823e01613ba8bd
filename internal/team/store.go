// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package team

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce collapses the burst of events editors emit for one save.
const debounce = 300 * time.Millisecond

// Store holds the current Team. Readers call Current and keep the snapshot
// for the duration of a run; reloads swap the whole pointer.
type Store struct {
	current atomic.Pointer[Team]
	path    string
	log     *zap.Logger
}

// NewStore returns a Store serving t. path is the file Reload and Watch
// read; it may be empty when t is the built-in team.
func NewStore(t *Team, path string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{path: path, log: log}
	s.current.Store(t)
	return s
}

// Open loads the team at path, or the built-in team when path is empty.
func Open(path string, log *zap.Logger) (*Store, error) {
	if path == "" {
		return NewStore(Default(), "", log), nil
	}
	t, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStore(t, path, log), nil
}

// Current returns the active team snapshot.
func (s *Store) Current() *Team { return s.current.Load() }

// Reload re-reads the team file. An invalid file leaves the current team
// in place and returns the error.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	t, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	s.current.Store(t)
	return nil
}

// Watch reloads the team file whenever it changes until ctx is done. The
// parent directory is watched so that editors saving via rename are seen.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating team watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return fmt.Errorf("resolving team file: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	s.log.Info("watching team file", zap.String("file", abs))

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Rename) {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("team watcher error", zap.Error(err))
		case <-timer.C:
			if err := s.Reload(); err != nil {
				s.log.Warn("team reload failed, keeping previous team", zap.Error(err))
				continue
			}
			s.log.Info("team reloaded", zap.String("name", s.Current().Name))
		}
	}
}
