package store

// Collection names understood by every Storage backend.
const (
	CollectionUsers      = "users"
	CollectionChats      = "chats"
	CollectionMessages   = "messages"
	CollectionFiles      = "files"
	CollectionCategories = "categories"
	CollectionModels     = "models"
)

// Storage is the persistence adapter beneath the data manager. Two
// implementations exist: flat JSON files (server mode) and sqlite (local
// mode). Collections are read and rewritten wholesale with no locking, so
// two concurrent writers can silently overwrite each other's mutation.
// That race is part of the storage contract, not something a backend is
// expected to fix.
type Storage interface {
	// ReadCollection returns the raw JSON array stored under the collection
	// name. A collection that was never written reads as an empty array.
	ReadCollection(name string) ([]byte, error)
	// WriteCollection replaces the collection wholesale.
	WriteCollection(name string, payload []byte) error

	// Blob storage for uploaded file payloads, keyed by stored filename.
	PutBlob(key string, data []byte) error
	GetBlob(key string) ([]byte, error)
	DeleteBlob(key string) error

	Stats() (StorageStats, error)
	Close() error
}

// StorageStats reports raw usage of the backing store.
type StorageStats struct {
	CollectionBytes map[string]int64 `json:"collectionBytes"`
	BlobCount       int              `json:"blobCount"`
	BlobBytes       int64            `json:"blobBytes"`
}
