package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStorage is the local-mode backend: a key-value table holds the JSON
// collections (the role localStorage plays in the browser client) and a blob
// table holds uploaded file payloads (the IndexedDB files object store).
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dataSourceName string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{db: db}
	if err = s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS kv (
        collection TEXT PRIMARY KEY,
        payload TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS blobs (
        key TEXT PRIMARY KEY,
        data BLOB NOT NULL
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStorage) ReadCollection(name string) ([]byte, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM kv WHERE collection = ?", name).Scan(&payload)
	if err == sql.ErrNoRows {
		return []byte("[]"), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}
	return []byte(payload), nil
}

func (s *SQLiteStorage) WriteCollection(name string, payload []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO kv (collection, payload) VALUES (?, ?) ON CONFLICT(collection) DO UPDATE SET payload = excluded.payload",
		name, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to write collection %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStorage) PutBlob(key string, data []byte) error {
	_, err := s.db.Exec(
		"INSERT INTO blobs (key, data) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET data = excluded.data",
		key, data,
	)
	if err != nil {
		return fmt.Errorf("failed to store blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) GetBlob(key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM blobs WHERE key = ?", key).Scan(&data)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, nil
}

func (s *SQLiteStorage) DeleteBlob(key string) error {
	_, err := s.db.Exec("DELETE FROM blobs WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) Stats() (StorageStats, error) {
	stats := StorageStats{CollectionBytes: make(map[string]int64)}

	rows, err := s.db.Query("SELECT collection, LENGTH(payload) FROM kv")
	if err != nil {
		return StorageStats{}, fmt.Errorf("failed to query kv stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var collection string
		var size int64
		if err := rows.Scan(&collection, &size); err != nil {
			return StorageStats{}, fmt.Errorf("failed to scan kv stats row: %w", err)
		}
		stats.CollectionBytes[collection] = size
	}
	if err := rows.Err(); err != nil {
		return StorageStats{}, fmt.Errorf("failed to iterate kv stats: %w", err)
	}

	err = s.db.QueryRow("SELECT COUNT(*), COALESCE(SUM(LENGTH(data)), 0) FROM blobs").
		Scan(&stats.BlobCount, &stats.BlobBytes)
	if err != nil {
		return StorageStats{}, fmt.Errorf("failed to query blob stats: %w", err)
	}
	return stats, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
