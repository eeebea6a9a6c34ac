// Package backup keeps point-in-time snapshots of the section collection on
// disk and optionally mirrors them to S3-compatible storage.
package backup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultDir  = "./backups"
	DefaultKeep = 30
	filePrefix  = "sections-"
	fileSuffix  = ".json"
	timeLayout  = "2006-01-02T15-04-05"
)

var (
	ErrNotFound    = errors.New("backup not found")
	ErrInvalidName = errors.New("invalid backup name")

	namePattern = regexp.MustCompile(`^sections-\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}(-\d+)?\.json$`)
)

// Snapshotter serializes and replaces the whole section collection.
type Snapshotter interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, blob []byte) (int, error)
}

// Uploader mirrors a finished snapshot to remote storage.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
}

type Item struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	SizeText string    `json:"sizeText"`
	Created  time.Time `json:"created"`
}

type Service struct {
	src      Snapshotter
	dir      string
	keep     int
	uploader Uploader
	keyTpl   string
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithDir(dir string) Option {
	return func(s *Service) {
		if strings.TrimSpace(dir) != "" {
			s.dir = dir
		}
	}
}

// WithKeep bounds how many local snapshots survive pruning. Zero keeps all.
func WithKeep(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.keep = n
		}
	}
}

// WithUploader mirrors every new snapshot. keyTemplate accepts {Y} {m} {d}
// {H} {M} {s} and {filename}.
func WithUploader(u Uploader, keyTemplate string) Option {
	return func(s *Service) {
		s.uploader = u
		s.keyTpl = keyTemplate
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.Named("BackupService")
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(src Snapshotter, opts ...Option) *Service {
	s := &Service{
		src:    src,
		dir:    DefaultDir,
		keep:   DefaultKeep,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create writes a new snapshot, prunes old ones and uploads the new one when
// an uploader is configured. The local file is kept even if the upload fails.
func (s *Service) Create(ctx context.Context) (Item, error) {
	blob, err := s.src.Export(ctx)
	if err != nil {
		return Item{}, fmt.Errorf("export sections: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Item{}, err
	}

	now := s.now()
	name := s.freeName(now)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return Item{}, err
	}
	item := Item{Name: name, Size: int64(len(blob)), SizeText: formatSize(int64(len(blob))), Created: now}
	s.logger.Info("backup created", zap.String("name", name), zap.Int64("size", item.Size))

	if err := s.prune(); err != nil {
		s.logger.Warn("prune backups failed", zap.Error(err))
	}

	if s.uploader != nil {
		key := renderObjectKey(s.keyTpl, name, now)
		if err := s.uploader.Upload(ctx, key, blob, "application/json"); err != nil {
			return item, fmt.Errorf("upload backup %s: %w", name, err)
		}
		s.logger.Info("backup uploaded", zap.String("key", key))
	}
	return item, nil
}

// freeName avoids clobbering a snapshot taken within the same second.
func (s *Service) freeName(now time.Time) string {
	base := filePrefix + now.Format(timeLayout)
	name := base + fileSuffix
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(s.dir, name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s-%d%s", base, i, fileSuffix)
	}
}

// List returns local snapshots, newest first.
func (s *Service) List() ([]Item, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Item{}, nil
		}
		return nil, err
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !namePattern.MatchString(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, Item{
			Name:     e.Name(),
			Size:     info.Size(),
			SizeText: formatSize(info.Size()),
			Created:  info.ModTime(),
		})
	}
	// Names embed the timestamp, so lexical order is chronological.
	sort.Slice(items, func(i, j int) bool { return items[i].Name > items[j].Name })
	return items, nil
}

func (s *Service) Read(name string) ([]byte, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Service) Delete(name string) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Restore replaces the section collection with a stored snapshot.
func (s *Service) Restore(ctx context.Context, name string) (int, error) {
	blob, err := s.Read(name)
	if err != nil {
		return 0, err
	}
	n, err := s.RestoreBlob(ctx, blob)
	if err == nil {
		s.logger.Info("backup restored", zap.String("name", name), zap.Int("sections", n))
	}
	return n, err
}

// RestoreBlob replaces the section collection with an uploaded snapshot.
func (s *Service) RestoreBlob(ctx context.Context, blob []byte) (int, error) {
	return s.src.Import(ctx, blob)
}

func (s *Service) pathFor(name string) (string, error) {
	if filepath.Base(name) != name || !namePattern.MatchString(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.dir, name), nil
}

func (s *Service) prune() error {
	if s.keep <= 0 {
		return nil
	}
	items, err := s.List()
	if err != nil {
		return err
	}
	for _, it := range items[min(s.keep, len(items)):] {
		if err := os.Remove(filepath.Join(s.dir, it.Name)); err != nil && !os.IsNotExist(err) {
			return err
		}
		s.logger.Debug("backup pruned", zap.String("name", it.Name))
	}
	return nil
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}
