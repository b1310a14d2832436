package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"mongoutils/internal/document"
)

// FileStore implements DocumentStore using the local filesystem. Each
// document is a canonical Extended JSON file under <base>/<collection>/.
type FileStore struct {
	basePath string
	mu       sync.RWMutex
}

func NewFileStore(basePath string) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FileStore{
		basePath: basePath,
	}, nil
}

func (s *FileStore) Close(ctx context.Context) error {
	return nil
}

func (s *FileStore) Get(ctx context.Context, collection string, id any) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.read(collection, document.FormatID(id))
}

func (s *FileStore) Find(ctx context.Context, collection string, ids []any, fields []string) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*document.Document
	for _, id := range ids {
		doc, err := s.read(collection, document.FormatID(id))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		docs = append(docs, doc.Project(fields))
	}
	return docs, nil
}

func (s *FileStore) List(ctx context.Context, collection string, offset, limit int) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.collectionDir(collection))
	if err != nil {
		if os.IsNotExist(err) {
			return []*document.Document{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)

	// Apply pagination
	total := len(names)
	if offset >= total {
		return []*document.Document{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	docs := make([]*document.Document, 0, end-offset)
	for _, name := range names[offset:end] {
		doc, err := s.read(collection, name)
		if err != nil {
			continue // Skip unreadable files
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *FileStore) Save(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc.EnsureID()
	data, err := doc.MarshalExtJSON()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.collectionDir(doc.Collection), 0755); err != nil {
		return fmt.Errorf("failed to create collection directory: %w", err)
	}
	return os.WriteFile(s.path(doc.Collection, doc.IDString()), data, 0644)
}

func (s *FileStore) Remove(ctx context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(doc.Collection, doc.IDString())); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s/%s: %w", doc.Collection, doc.IDString(), ErrNotFound)
		}
		return err
	}
	return nil
}

// Helper functions

func (s *FileStore) read(collection, id string) (*document.Document, error) {
	data, err := os.ReadFile(s.path(collection, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return nil, err
	}
	return document.UnmarshalExtJSON(collection, data)
}

func (s *FileStore) collectionDir(collection string) string {
	return filepath.Join(s.basePath, filepath.Base(collection))
}

func (s *FileStore) path(collection, id string) string {
	return filepath.Join(s.collectionDir(collection), filepath.Base(id)+".json")
}
