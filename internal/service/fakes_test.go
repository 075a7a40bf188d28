package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"videoverse/video-api/aws"
	"videoverse/video-api/internal/model"
	"videoverse/video-api/internal/repository"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// Test media is a text file "duration=<seconds>" padded to the wanted size,
// which lets the fake tools behave like the real ones

func fakeMedia(duration float64, size int) []byte {
	b := []byte(fmt.Sprintf("duration=%g\n", duration))
	if len(b) < size {
		b = append(b, []byte(strings.Repeat("x", size-len(b)))...)
	}

	return b
}

func parseFakeMedia(b []byte) (float64, error) {
	line, _, _ := strings.Cut(string(b), "\n")
	v, ok := strings.CutPrefix(line, "duration=")
	if !ok {
		return 0, fmt.Errorf("not a video")
	}

	return strconv.ParseFloat(v, 64)
}

type fakeInspector struct {
	err   error
	paths []string
}

func (f *fakeInspector) Duration(_ context.Context, p string) (float64, error) {
	f.paths = append(f.paths, p)
	if f.err != nil {
		return 0, f.err
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", Err: err}
	}

	d, err := parseFakeMedia(b)
	if err != nil {
		return 0, &ToolError{Tool: "ffprobe", Output: "Invalid data found when processing input", Err: err}
	}

	return d, nil
}

type trimCall struct {
	In, Out    string
	Start, End float64
}

type fakeTrimmer struct {
	mu    sync.Mutex
	err   error
	calls []trimCall
	// Called while the trim runs, used to interleave concurrent trims
	during func()
}

func (f *fakeTrimmer) Trim(_ context.Context, in string, start, end float64, out string) error {
	f.mu.Lock()
	f.calls = append(f.calls, trimCall{In: in, Out: out, Start: start, End: end})
	f.mu.Unlock()

	if f.during != nil {
		f.during()
	}

	if f.err != nil {
		return f.err
	}

	if _, err := os.Stat(in); err != nil {
		return &ToolError{Tool: "ffmpeg", Err: err}
	}

	return os.WriteFile(out, fakeMedia(end-start, int(((end-start)/100)*(1<<20))), 0o600)
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	getErr  error
	deleted []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(_ context.Context, key, p string) error {
	if s.putErr != nil {
		return s.putErr
	}

	b, err := os.ReadFile(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b

	return nil
}

func (s *fakeStore) Get(_ context.Context, key, p string) error {
	if s.getErr != nil {
		return s.getErr
	}

	s.mu.Lock()
	b, ok := s.objects[key]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("get %s: %w", key, aws.ErrObjectNotFound)
	}

	return os.WriteFile(p, b, 0o600)
}

func (s *fakeStore) SignedReadURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://bucket.example.com/" + key + "?X-Amz-Expires=" + strconv.Itoa(int(ttl.Seconds())), nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	s.deleted = append(s.deleted, key)

	return nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.objects)
}

func (s *fakeStore) object(key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.objects[key]
	return b, ok
}

type fakeRepo struct {
	mu        sync.Mutex
	videos    map[uint]model.Video
	nextID    uint
	createErr error
	updateErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{videos: map[uint]model.Video{}, nextID: 1}
}

func (r *fakeRepo) Create(_ context.Context, v *model.Video) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v.ID = r.nextID
	r.nextID++
	v.CreatedAt = time.Now()
	v.UpdatedAt = v.CreatedAt
	r.videos[v.ID] = *v

	return nil
}

func (r *fakeRepo) Get(_ context.Context, id uint) (*model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}

	return &v, nil
}

func (r *fakeRepo) UpdateMedia(_ context.Context, id uint, duration, size float64) (*model.Video, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.videos[id]
	if !ok {
		return nil, repository.ErrVideoNotFound
	}

	v.Duration = duration
	v.Size = size
	v.UpdatedAt = time.Now()
	r.videos[id] = v

	return &v, nil
}

func (r *fakeRepo) List(context.Context) ([]model.Video, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []model.Video{}
	for _, v := range r.videos {
		out = append(out, v)
	}

	return out, nil
}

func (r *fakeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.videos)
}

// seed stores a video object and its record the way a finished upload would
func (r *fakeRepo) seed(t *testing.T, s *fakeStore, filename string, duration float64) model.Video {
	t.Helper()

	v := &model.Video{Filename: filename, StorageKey: "videos/" + filename + "_seed", Duration: duration, Size: 10}
	require.NoError(t, r.Create(context.Background(), v))

	s.mu.Lock()
	s.objects[v.StorageKey] = fakeMedia(duration, 10<<20)
	s.mu.Unlock()

	return *v
}

// newOSStager returns a stager over a private directory so tests can assert
// that nothing is left in it
func newOSStager(t *testing.T) (*Stager, string) {
	t.Helper()

	dir := t.TempDir()
	return NewStager(afero.NewOsFs(), dir), dir
}

func requireEmptyDir(t *testing.T, dir string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "staging files left behind")
}
