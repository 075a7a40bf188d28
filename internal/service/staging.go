package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Every staging file name starts with this so the sweeper can tell them apart
// from anything else living in the same directory
const stagingPrefix = "vidstage-"

const defaultSuffix = ".mp4"

// Stager creates request scoped staging files. The media tools infer the
// container from the extension so every file carries one
type Stager struct {
	Fs  afero.Fs
	Dir string
}

func NewStager(fs afero.Fs, dir string) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}

	return &Stager{Fs: fs, Dir: dir}
}

// StagingFile is a path owned by a single call. Cleanup must be deferred
// right after creation
type StagingFile struct {
	path string
	fs   afero.Fs
	once sync.Once
}

func (f *StagingFile) Path() string {
	return f.path
}

// Cleanup removes the file. It is safe to call more than once and a file
// that is already gone is not an error. Failures are only logged so they
// never mask the error that caused the scope to exit
func (f *StagingFile) Cleanup() {
	f.once.Do(func() {
		err := f.fs.Remove(f.path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			zap.L().Warn("Failed to remove staging file", zap.String("path", f.path), zap.Error(err))
			return
		}

		zap.L().Debug("Staging file removed", zap.String("path", f.path))
	})
}

// Create allocates an empty staging file ending with suffix
func (s *Stager) Create(suffix string) (*StagingFile, error) {
	if err := s.Fs.MkdirAll(s.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create staging directory, %w", err)
	}

	f, err := afero.TempFile(s.Fs, s.Dir, stagingPrefix+"*"+normalizeSuffix(suffix))
	if err != nil {
		return nil, fmt.Errorf("failed to create staging file, %w", err)
	}

	name := f.Name()
	if err := f.Close(); err != nil {
		s.Fs.Remove(name)
		return nil, fmt.Errorf("failed to close staging file, %w", err)
	}

	return &StagingFile{path: name, fs: s.Fs}, nil
}

// Write copies r into a new staging file and returns the amount of bytes
// written. Nothing is left behind on failure
func (s *Stager) Write(suffix string, r io.Reader) (*StagingFile, int64, error) {
	sf, err := s.Create(suffix)
	if err != nil {
		return nil, 0, err
	}

	f, err := s.Fs.OpenFile(sf.path, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		sf.Cleanup()
		return nil, 0, fmt.Errorf("failed to open staging file, %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		sf.Cleanup()
		return nil, 0, fmt.Errorf("failed to copy data to staging file, %w", err)
	}

	if err := f.Close(); err != nil {
		sf.Cleanup()
		return nil, 0, fmt.Errorf("failed to flush staging file, %w", err)
	}

	return sf, n, nil
}

// With runs fn with the path of a fresh staging file and removes the file
// afterwards, whichever way fn returns
func (s *Stager) With(suffix string, fn func(p string) error) error {
	sf, err := s.Create(suffix)
	if err != nil {
		return err
	}
	defer sf.Cleanup()

	return fn(sf.path)
}

// SizeMB returns the size of the file at p in megabytes
func (s *Stager) SizeMB(p string) (float64, error) {
	stat, err := s.Fs.Stat(p)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s, %w", p, err)
	}

	return BytesToMB(stat.Size()), nil
}

// SuffixFor returns the extension of a file name including the dot,
// falling back to .mp4 when there is none
func SuffixFor(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." {
		return defaultSuffix
	}

	return strings.ToLower(ext)
}

func normalizeSuffix(s string) string {
	s = strings.ReplaceAll(s, string(filepath.Separator), "")
	s = strings.ReplaceAll(s, "*", "")

	if s == "" {
		return defaultSuffix
	}

	if !strings.HasPrefix(s, ".") {
		s = "." + s
	}

	return s
}

func BytesToMB(n int64) float64 {
	return float64(n) / (1 << 20)
}
