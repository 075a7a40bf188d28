package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// StagingSweeper periodically removes staging files left behind by a crashed
// process. Files that belong to a running request are younger than MaxAge
type StagingSweeper struct {
	Fs     afero.Fs
	Dir    string
	MaxAge time.Duration

	now  func() time.Time
	cron *cron.Cron
}

func NewStagingSweeper(fs afero.Fs, dir string, maxAge time.Duration) *StagingSweeper {
	return &StagingSweeper{
		Fs:     fs,
		Dir:    dir,
		MaxAge: maxAge,
		now:    time.Now,
	}
}

// Sweep removes every staging file older than MaxAge and returns how many
// were removed. Other files in the directory are never touched
func (s *StagingSweeper) Sweep() (int, error) {
	entries, err := afero.ReadDir(s.Fs, s.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}

		return 0, fmt.Errorf("failed to read staging directory, %w", err)
	}

	cutoff := s.now().Add(-s.MaxAge)
	removed := 0

	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), stagingPrefix) {
			continue
		}

		if e.ModTime().After(cutoff) {
			continue
		}

		p := filepath.Join(s.Dir, e.Name())
		if err := s.Fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			zap.L().Warn("Failed to remove stale staging file", zap.String("path", p), zap.Error(err))
			continue
		}

		removed++
	}

	return removed, nil
}

// Start runs Sweep on the given cron schedule, e.g. "@every 1h"
func (s *StagingSweeper) Start(schedule string) error {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		n, err := s.Sweep()
		if err != nil {
			zap.L().Error("Staging sweep failed", zap.Error(err))
			return
		}

		if n > 0 {
			zap.L().Info("Removed stale staging files", zap.Int("count", n))
		}
	})
	if err != nil {
		return fmt.Errorf("invalid sweep schedule %q, %w", schedule, err)
	}

	s.cron = c
	c.Start()

	zap.L().Debug("Staging sweeper attached", zap.String("schedule", schedule), zap.Duration("max_age", s.MaxAge))

	return nil
}

// Stop waits for a running sweep to finish
func (s *StagingSweeper) Stop() {
	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
}
