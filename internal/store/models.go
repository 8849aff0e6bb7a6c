package store

import "time"

// Message types as stored in the messages collection.
const (
	MessageTypeUser      = "user"
	MessageTypeAssistant = "assistant"
	MessageTypeSystem    = "system"
)

// DefaultChatTitle is assigned to new chats until the first user message
// rewrites it.
const DefaultChatTitle = "New Chat"

// PasswordResetSentinel replaces password hashes in exported data. Imported
// users carrying it must go through a password reset before they can log in.
const PasswordResetSentinel = "RESET_REQUIRED"

type UserSettings struct {
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
	AutoScroll    bool   `json:"autoScroll"`
	SoundEffects  bool   `json:"soundEffects"`
}

func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:         "light",
		Language:      "en",
		Notifications: true,
		AutoScroll:    true,
		SoundEffects:  false,
	}
}

type User struct {
	ID           string       `json:"id"`
	DisplayName  string       `json:"displayName"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Settings     UserSettings `json:"settings"`
	CreatedAt    time.Time    `json:"createdAt"`
}

type Chat struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	UserID       string    `json:"userId"`
	CategoryID   string    `json:"categoryId,omitempty"`
	MessageCount int       `json:"messageCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Message struct {
	ID          string           `json:"id"`
	ChatID      string           `json:"chatId"`
	Type        string           `json:"type"` // user, assistant or system
	Content     string           `json:"content"`
	Timestamp   time.Time        `json:"timestamp"`
	Attachments []FileAttachment `json:"attachments,omitempty"`
	Liked       *bool            `json:"liked,omitempty"`
	Disliked    *bool            `json:"disliked,omitempty"`
}

type FileAttachment struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mimeType"`
	URL        string    `json:"url"`
	StoredName string    `json:"storedName"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Model describes an entry of the selectable model catalog.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
}
