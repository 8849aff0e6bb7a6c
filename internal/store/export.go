package store

import "time"

// ExportBundle is the full persisted graph as served by /api/data/export.
// Password hashes are replaced with PasswordResetSentinel; uploaded blob
// payloads are not included, only their metadata.
type ExportBundle struct {
	ExportedAt time.Time        `json:"exportedAt"`
	Users      []storedUser     `json:"users"`
	Chats      []Chat           `json:"chats"`
	Messages   []Message        `json:"messages"`
	Files      []FileAttachment `json:"files"`
	Categories []Category       `json:"categories"`
}

func (m *DataManager) ExportData() (*ExportBundle, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return nil, err
	}
	messages, err := readCollection[Message](m.storage, CollectionMessages)
	if err != nil {
		return nil, err
	}
	files, err := readCollection[FileAttachment](m.storage, CollectionFiles)
	if err != nil {
		return nil, err
	}
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return nil, err
	}

	exported := make([]storedUser, len(users))
	for i, u := range users {
		u.PasswordHash = ""
		exported[i] = storedUser{User: u, PasswordHash: PasswordResetSentinel}
	}

	return &ExportBundle{
		ExportedAt: time.Now(),
		Users:      exported,
		Chats:      chats,
		Messages:   messages,
		Files:      files,
		Categories: categories,
	}, nil
}

// ImportData replaces the whole store with the bundle's contents. Imported
// users keep whatever hash the bundle carries, which for exports produced
// here is the reset sentinel.
func (m *DataManager) ImportData(bundle *ExportBundle) error {
	users := make([]User, len(bundle.Users))
	for i, su := range bundle.Users {
		u := su.User
		u.PasswordHash = su.PasswordHash
		users[i] = u
	}
	if err := m.writeUsers(users); err != nil {
		return err
	}
	if err := writeCollection(m.storage, CollectionChats, bundle.Chats); err != nil {
		return err
	}
	if err := writeCollection(m.storage, CollectionMessages, bundle.Messages); err != nil {
		return err
	}
	if err := writeCollection(m.storage, CollectionFiles, bundle.Files); err != nil {
		return err
	}
	return writeCollection(m.storage, CollectionCategories, bundle.Categories)
}

// DataStats combines entity counts with raw storage usage for the
// /api/data/stats endpoint.
type DataStats struct {
	Users      int          `json:"users"`
	Chats      int          `json:"chats"`
	Messages   int          `json:"messages"`
	Files      int          `json:"files"`
	Categories int          `json:"categories"`
	Storage    StorageStats `json:"storage"`
}

func (m *DataManager) Stats() (*DataStats, error) {
	bundle, err := m.ExportData()
	if err != nil {
		return nil, err
	}
	storageStats, err := m.storage.Stats()
	if err != nil {
		return nil, err
	}
	return &DataStats{
		Users:      len(bundle.Users),
		Chats:      len(bundle.Chats),
		Messages:   len(bundle.Messages),
		Files:      len(bundle.Files),
		Categories: len(bundle.Categories),
		Storage:    storageStats,
	}, nil
}

// ClearChats wipes every chat and message, keeping users, files and
// categories.
func (m *DataManager) ClearChats() error {
	if err := writeCollection(m.storage, CollectionChats, []Chat{}); err != nil {
		return err
	}
	return writeCollection(m.storage, CollectionMessages, []Message{})
}

// ClearAll wipes chats, messages, files (including blobs) and categories.
// Users and the model catalog survive.
func (m *DataManager) ClearAll() error {
	files, err := readCollection[FileAttachment](m.storage, CollectionFiles)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := m.storage.DeleteBlob(file.StoredName); err != nil {
			return err
		}
	}
	if err := writeCollection(m.storage, CollectionFiles, []FileAttachment{}); err != nil {
		return err
	}
	if err := m.ClearChats(); err != nil {
		return err
	}
	return writeCollection(m.storage, CollectionCategories, []Category{})
}
