package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"graph_router/pkg"
)

// FileHistory implements HistoryStore as a JSON file, used when Redis is not configured
type FileHistory struct {
	path       string
	maxEntries int
}

// NewFileHistory creates a file-based history store
func NewFileHistory(path string, maxEntries int) *FileHistory {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &FileHistory{path: path, maxEntries: maxEntries}
}

// load reads all records; a missing file is an empty history
func (f *FileHistory) load() ([]pkg.RunRecord, error) {
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return []pkg.RunRecord{}, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var records []pkg.RunRecord
	if err := pkg.JSON.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return records, nil
}

// Save appends a record, keeping only the newest maxEntries
func (f *FileHistory) Save(ctx context.Context, record pkg.RunRecord) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	records, err := f.load()
	if err != nil {
		return err
	}
	records = append(records, record)
	if len(records) > f.maxEntries {
		records = records[len(records)-f.maxEntries:]
	}

	data, err := pkg.JSON.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}

// Recent returns up to n records, newest first
func (f *FileHistory) Recent(ctx context.Context, n int) ([]pkg.RunRecord, error) {
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if n >= 0 && len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// Get returns the record with the given ID
func (f *FileHistory) Get(ctx context.Context, id string) (*pkg.RunRecord, error) {
	records, err := f.load()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("run not found: %s", id)
}

// Close is a no-op
func (f *FileHistory) Close() error {
	return nil
}

// NewHistoryStore picks Redis when REDIS_URL is set and the JSON file otherwise
func NewHistoryStore(ctx context.Context, config HistoryConfig) (HistoryStore, error) {
	if config.RedisURL != "" {
		return NewRedisHistory(ctx, config)
	}
	return NewFileHistory(config.FilePath, config.MaxEntries), nil
}
