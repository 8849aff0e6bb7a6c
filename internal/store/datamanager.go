package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors surfaced by the data manager. Missing ids are reported as
// nil results, not errors; these cover invariant violations.
var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrDefaultCategory = errors.New("default category cannot be renamed or deleted")
)

// DefaultCategoryName is the name of the lazily created default category.
const DefaultCategoryName = "General"

const maxTitleLength = 50

// DataManager implements per-entity CRUD on top of a Storage backend. Every
// operation re-reads the affected collections and rewrites them wholesale;
// there is no transactional guarantee against partial failure.
type DataManager struct {
	storage Storage
}

func NewDataManager(storage Storage) *DataManager {
	return &DataManager{storage: storage}
}

func readCollection[T any](s Storage, name string) ([]T, error) {
	raw, err := s.ReadCollection(name)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse %s collection: %w", name, err)
	}
	return items, nil
}

func writeCollection[T any](s Storage, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s collection: %w", name, err)
	}
	return s.WriteCollection(name, raw)
}

// storedUser re-adds the password hash that the API-facing User struct hides
// from JSON, so it survives the round trip through the backing store.
type storedUser struct {
	User
	PasswordHash string `json:"passwordHash"`
}

func (m *DataManager) readUsers() ([]User, error) {
	stored, err := readCollection[storedUser](m.storage, CollectionUsers)
	if err != nil {
		return nil, err
	}
	users := make([]User, len(stored))
	for i, su := range stored {
		u := su.User
		u.PasswordHash = su.PasswordHash
		users[i] = u
	}
	return users, nil
}

func (m *DataManager) writeUsers(users []User) error {
	stored := make([]storedUser, len(users))
	for i, u := range users {
		stored[i] = storedUser{User: u, PasswordHash: u.PasswordHash}
	}
	return writeCollection(m.storage, CollectionUsers, stored)
}

// Users

func (m *DataManager) GetUsers() ([]User, error) {
	return m.readUsers()
}

func (m *DataManager) GetUserByID(id string) (*User, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (m *DataManager) GetUserByEmail(email string) (*User, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

func (m *DataManager) CreateUser(displayName, email, passwordHash string) (*User, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	user := User{
		ID:           uuid.NewString(),
		DisplayName:  displayName,
		Email:        email,
		PasswordHash: passwordHash,
		Settings:     DefaultUserSettings(),
		CreatedAt:    time.Now(),
	}
	users = append(users, user)
	if err := m.writeUsers(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserUpdate carries the partial fields of a profile update.
type UserUpdate struct {
	DisplayName *string `json:"displayName,omitempty"`
	Email       *string `json:"email,omitempty"`
}

func (m *DataManager) UpdateUser(id string, update UserUpdate) (*User, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		if update.DisplayName != nil {
			users[i].DisplayName = *update.DisplayName
		}
		if update.Email != nil {
			users[i].Email = *update.Email
		}
		if err := m.writeUsers(users); err != nil {
			return nil, err
		}
		return &users[i], nil
	}
	return nil, nil
}

func (m *DataManager) UpdateUserSettings(id string, settings UserSettings) (*User, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		users[i].Settings = settings
		if err := m.writeUsers(users); err != nil {
			return nil, err
		}
		return &users[i], nil
	}
	return nil, nil
}

// UpdateUserPassword replaces the stored password hash.
func (m *DataManager) UpdateUserPassword(id, passwordHash string) (*User, error) {
	users, err := m.readUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID != id {
			continue
		}
		users[i].PasswordHash = passwordHash
		if err := m.writeUsers(users); err != nil {
			return nil, err
		}
		return &users[i], nil
	}
	return nil, nil
}

// Chats

func (m *DataManager) GetChatsByUserID(userID string) ([]Chat, error) {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return nil, err
	}
	var owned []Chat
	for _, chat := range chats {
		if chat.UserID == userID {
			owned = append(owned, chat)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].UpdatedAt.After(owned[j].UpdatedAt)
	})
	return owned, nil
}

func (m *DataManager) GetChatByID(id string) (*Chat, error) {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ID == id {
			return &chats[i], nil
		}
	}
	return nil, nil
}

func (m *DataManager) CreateChat(userID, title, model, categoryID string) (*Chat, error) {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = DefaultChatTitle
	}
	now := time.Now()
	chat := Chat{
		ID:         uuid.NewString(),
		Title:      title,
		Model:      model,
		UserID:     userID,
		CategoryID: categoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	chats = append(chats, chat)
	if err := writeCollection(m.storage, CollectionChats, chats); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ChatUpdate carries the partial fields of a chat update. A non-nil empty
// CategoryID strips the category assignment.
type ChatUpdate struct {
	Title      *string `json:"title,omitempty"`
	CategoryID *string `json:"categoryId,omitempty"`
}

// UpdateChat applies a partial update. Renaming bumps UpdatedAt; moving a
// chat between categories does not, so re-categorizing never reorders the
// recency-sorted chat list.
func (m *DataManager) UpdateChat(id string, update ChatUpdate) (*Chat, error) {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].ID != id {
			continue
		}
		if update.Title != nil {
			chats[i].Title = *update.Title
			chats[i].UpdatedAt = time.Now()
		}
		if update.CategoryID != nil {
			chats[i].CategoryID = *update.CategoryID
		}
		if err := writeCollection(m.storage, CollectionChats, chats); err != nil {
			return nil, err
		}
		return &chats[i], nil
	}
	return nil, nil
}

// DeleteChat removes the chat, every message belonging to it, and the
// metadata and blob of any file attached to those messages.
func (m *DataManager) DeleteChat(id string) (bool, error) {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return false, err
	}
	idx := -1
	for i := range chats {
		if chats[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return false, nil
	}

	messages, err := readCollection[Message](m.storage, CollectionMessages)
	if err != nil {
		return false, err
	}
	var kept []Message
	var attachments []FileAttachment
	for _, msg := range messages {
		if msg.ChatID == id {
			attachments = append(attachments, msg.Attachments...)
			continue
		}
		kept = append(kept, msg)
	}

	for _, att := range attachments {
		if _, err := m.DeleteFile(att.ID); err != nil {
			return false, fmt.Errorf("failed to delete attachment %s: %w", att.ID, err)
		}
	}

	if err := writeCollection(m.storage, CollectionMessages, kept); err != nil {
		return false, err
	}
	chats = append(chats[:idx], chats[idx+1:]...)
	if err := writeCollection(m.storage, CollectionChats, chats); err != nil {
		return false, err
	}
	return true, nil
}

// Messages

func (m *DataManager) GetMessagesByChatID(chatID string) ([]Message, error) {
	messages, err := readCollection[Message](m.storage, CollectionMessages)
	if err != nil {
		return nil, err
	}
	var owned []Message
	for _, msg := range messages {
		if msg.ChatID == chatID {
			owned = append(owned, msg)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].Timestamp.Before(owned[j].Timestamp)
	})
	return owned, nil
}

// AddMessage appends the message and, as a side effect, recomputes the
// owning chat's messageCount and updatedAt. The first user message rewrites
// a still-default chat title. There is no transactional guarantee between
// the message write and the chat write.
func (m *DataManager) AddMessage(msg *Message) (*Message, error) {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range chats {
		if chats[i].ID == msg.ChatID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrChatNotFound
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	messages, err := readCollection[Message](m.storage, CollectionMessages)
	if err != nil {
		return nil, err
	}
	messages = append(messages, *msg)
	if err := writeCollection(m.storage, CollectionMessages, messages); err != nil {
		return nil, err
	}

	count := 0
	for _, other := range messages {
		if other.ChatID == msg.ChatID {
			count++
		}
	}
	chats[idx].MessageCount = count
	chats[idx].UpdatedAt = time.Now()
	if msg.Type == MessageTypeUser && chats[idx].Title == DefaultChatTitle {
		chats[idx].Title = TitleFromMessage(msg.Content)
	}
	if err := writeCollection(m.storage, CollectionChats, chats); err != nil {
		return nil, err
	}
	return msg, nil
}

// TitleFromMessage derives a chat title from the first user message: the
// first 50 characters, with a trailing ellipsis when truncated.
func TitleFromMessage(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return DefaultChatTitle
	}
	runes := []rune(content)
	if len(runes) <= maxTitleLength {
		return content
	}
	return string(runes[:maxTitleLength]) + "..."
}

// SetMessageFeedback merges the liked/disliked flags, the only mutation
// messages accept after creation.
func (m *DataManager) SetMessageFeedback(messageID string, liked, disliked *bool) (*Message, error) {
	messages, err := readCollection[Message](m.storage, CollectionMessages)
	if err != nil {
		return nil, err
	}
	for i := range messages {
		if messages[i].ID != messageID {
			continue
		}
		if liked != nil {
			messages[i].Liked = liked
		}
		if disliked != nil {
			messages[i].Disliked = disliked
		}
		if err := writeCollection(m.storage, CollectionMessages, messages); err != nil {
			return nil, err
		}
		return &messages[i], nil
	}
	return nil, nil
}

// Files

func (m *DataManager) CreateFile(name, mimeType string, data []byte) (*FileAttachment, error) {
	id := uuid.NewString()
	storedName := id + filepath.Ext(name)
	if err := m.storage.PutBlob(storedName, data); err != nil {
		return nil, err
	}

	files, err := readCollection[FileAttachment](m.storage, CollectionFiles)
	if err != nil {
		return nil, err
	}
	file := FileAttachment{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		MimeType:   mimeType,
		URL:        "/api/files/" + storedName,
		StoredName: storedName,
		UploadedAt: time.Now(),
	}
	files = append(files, file)
	if err := writeCollection(m.storage, CollectionFiles, files); err != nil {
		return nil, err
	}
	return &file, nil
}

func (m *DataManager) GetFiles() ([]FileAttachment, error) {
	return readCollection[FileAttachment](m.storage, CollectionFiles)
}

func (m *DataManager) GetFileByStoredName(storedName string) (*FileAttachment, error) {
	files, err := readCollection[FileAttachment](m.storage, CollectionFiles)
	if err != nil {
		return nil, err
	}
	for i := range files {
		if files[i].StoredName == storedName {
			return &files[i], nil
		}
	}
	return nil, nil
}

func (m *DataManager) GetFileData(storedName string) ([]byte, error) {
	return m.storage.GetBlob(storedName)
}

func (m *DataManager) DeleteFile(id string) (bool, error) {
	files, err := readCollection[FileAttachment](m.storage, CollectionFiles)
	if err != nil {
		return false, err
	}
	for i := range files {
		if files[i].ID != id {
			continue
		}
		if err := m.storage.DeleteBlob(files[i].StoredName); err != nil {
			return false, err
		}
		files = append(files[:i], files[i+1:]...)
		if err := writeCollection(m.storage, CollectionFiles, files); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Categories

// GetCategoriesByUserID lists the user's categories, lazily creating the
// default one so it always exists before it can be assigned.
func (m *DataManager) GetCategoriesByUserID(userID string) ([]Category, error) {
	if _, err := m.EnsureDefaultCategory(userID); err != nil {
		return nil, err
	}
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return nil, err
	}
	var owned []Category
	for _, cat := range categories {
		if cat.UserID == userID {
			owned = append(owned, cat)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	return owned, nil
}

func (m *DataManager) GetCategoryByID(id string) (*Category, error) {
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	return nil, nil
}

func (m *DataManager) EnsureDefaultCategory(userID string) (*Category, error) {
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].UserID == userID && categories[i].IsDefault {
			return &categories[i], nil
		}
	}

	now := time.Now()
	category := Category{
		ID:        uuid.NewString(),
		Name:      DefaultCategoryName,
		UserID:    userID,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	categories = append(categories, category)
	if err := writeCollection(m.storage, CollectionCategories, categories); err != nil {
		return nil, err
	}
	return &category, nil
}

func (m *DataManager) CreateCategory(userID, name string) (*Category, error) {
	if _, err := m.EnsureDefaultCategory(userID); err != nil {
		return nil, err
	}
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	category := Category{
		ID:        uuid.NewString(),
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	categories = append(categories, category)
	if err := writeCollection(m.storage, CollectionCategories, categories); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory renames a category. The default category cannot be renamed.
func (m *DataManager) UpdateCategory(id, name string) (*Category, error) {
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID != id {
			continue
		}
		if categories[i].IsDefault {
			return nil, ErrDefaultCategory
		}
		categories[i].Name = name
		categories[i].UpdatedAt = time.Now()
		if err := writeCollection(m.storage, CollectionCategories, categories); err != nil {
			return nil, err
		}
		return &categories[i], nil
	}
	return nil, nil
}

// DeleteCategory removes a non-default category and strips its id from any
// chat that referenced it. (The client-local category service instead
// reassigns those chats to the default category before deleting; the two
// paths intentionally differ.)
func (m *DataManager) DeleteCategory(id string) (bool, error) {
	categories, err := readCollection[Category](m.storage, CollectionCategories)
	if err != nil {
		return false, err
	}
	for i := range categories {
		if categories[i].ID != id {
			continue
		}
		if categories[i].IsDefault {
			return false, ErrDefaultCategory
		}
		if err := m.RemoveCategoryFromChats(id); err != nil {
			return false, err
		}
		categories = append(categories[:i], categories[i+1:]...)
		if err := writeCollection(m.storage, CollectionCategories, categories); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// RemoveCategoryFromChats strips the category assignment from every chat
// that carries the given category id.
func (m *DataManager) RemoveCategoryFromChats(categoryID string) error {
	chats, err := readCollection[Chat](m.storage, CollectionChats)
	if err != nil {
		return err
	}
	changed := false
	for i := range chats {
		if chats[i].CategoryID == categoryID {
			chats[i].CategoryID = ""
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return writeCollection(m.storage, CollectionChats, chats)
}

// Models

var defaultModels = []Model{
	{ID: "demo", Name: "Demo", Description: "Simulated responses for local development", Provider: "simulated"},
	{ID: "gemini-1.5-flash", Name: "Gemini 1.5 Flash", Description: "Fast general-purpose model", Provider: "google"},
	{ID: "gemini-1.5-pro", Name: "Gemini 1.5 Pro", Description: "Higher quality, slower", Provider: "google"},
}

// GetModels returns the model catalog, seeding the defaults on first read.
func (m *DataManager) GetModels() ([]Model, error) {
	models, err := readCollection[Model](m.storage, CollectionModels)
	if err != nil {
		return nil, err
	}
	if len(models) > 0 {
		return models, nil
	}
	if err := writeCollection(m.storage, CollectionModels, defaultModels); err != nil {
		return nil, err
	}
	return defaultModels, nil
}
