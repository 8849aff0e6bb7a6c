package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// collectionFiles maps collection names to their backing file. Chats and
// messages share chats.json, each under its own top-level key.
var collectionFiles = map[string]string{
	CollectionUsers:      "users.json",
	CollectionChats:      "chats.json",
	CollectionMessages:   "chats.json",
	CollectionFiles:      "files.json",
	CollectionCategories: "categories.json",
	CollectionModels:     "models.json",
}

// JSONFileStorage persists each collection as a named top-level array inside
// a flat JSON file, rewritten wholesale on every mutation. Uploaded blobs
// are plain files under <dataDir>/uploads.
type JSONFileStorage struct {
	dataDir   string
	uploadDir string
}

func NewJSONFileStorage(dataDir string) (*JSONFileStorage, error) {
	uploadDir := filepath.Join(dataDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &JSONFileStorage{dataDir: dataDir, uploadDir: uploadDir}
	if err := s.seedFiles(); err != nil {
		return nil, fmt.Errorf("failed to seed data files: %w", err)
	}
	return s, nil
}

// seedFiles creates any missing backing file with its empty collections, so
// later reads only fail on genuine I/O problems.
func (s *JSONFileStorage) seedFiles() error {
	keysByFile := make(map[string][]string)
	for collection, file := range collectionFiles {
		keysByFile[file] = append(keysByFile[file], collection)
	}

	for file, keys := range keysByFile {
		path := filepath.Join(s.dataDir, file)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return err
		}

		doc := make(map[string]json.RawMessage, len(keys))
		for _, key := range keys {
			doc[key] = json.RawMessage("[]")
		}
		if err := s.writeFile(path, doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *JSONFileStorage) pathFor(collection string) (string, error) {
	file, ok := collectionFiles[collection]
	if !ok {
		return "", fmt.Errorf("unknown collection %q", collection)
	}
	return filepath.Join(s.dataDir, file), nil
}

func (s *JSONFileStorage) readFile(path string) (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

func (s *JSONFileStorage) writeFile(path string, doc map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s *JSONFileStorage) ReadCollection(name string) ([]byte, error) {
	path, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	doc, err := s.readFile(path)
	if err != nil {
		return nil, err
	}
	payload, ok := doc[name]
	if !ok {
		return []byte("[]"), nil
	}
	return payload, nil
}

func (s *JSONFileStorage) WriteCollection(name string, payload []byte) error {
	path, err := s.pathFor(name)
	if err != nil {
		return err
	}
	doc, err := s.readFile(path)
	if err != nil {
		return err
	}
	doc[name] = json.RawMessage(payload)
	return s.writeFile(path, doc)
}

func (s *JSONFileStorage) PutBlob(key string, data []byte) error {
	path := filepath.Join(s.uploadDir, filepath.Base(key))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to store upload %s: %w", key, err)
	}
	return nil
}

func (s *JSONFileStorage) GetBlob(key string) ([]byte, error) {
	path := filepath.Join(s.uploadDir, filepath.Base(key))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", key, err)
	}
	return data, nil
}

func (s *JSONFileStorage) DeleteBlob(key string) error {
	path := filepath.Join(s.uploadDir, filepath.Base(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete upload %s: %w", key, err)
	}
	return nil
}

func (s *JSONFileStorage) Stats() (StorageStats, error) {
	stats := StorageStats{CollectionBytes: make(map[string]int64)}
	for collection := range collectionFiles {
		payload, err := s.ReadCollection(collection)
		if err != nil {
			return StorageStats{}, err
		}
		stats.CollectionBytes[collection] = int64(len(payload))
	}

	entries, err := os.ReadDir(s.uploadDir)
	if err != nil {
		return StorageStats{}, fmt.Errorf("failed to read upload dir: %w", err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats.BlobCount++
		stats.BlobBytes += info.Size()
	}
	return stats, nil
}

func (s *JSONFileStorage) Close() error { return nil }
