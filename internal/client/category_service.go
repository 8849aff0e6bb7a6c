package client

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/core"
	"github.com/ZakariaeAmrani1/chatBootDemo-sub000/internal/store"
)

// CategoryService manages chat categories with client-local semantics:
// every mutation recomputes the full list and broadcasts it synchronously
// to all listeners (no diffing), and deleting a category moves its chats to
// the default category. The server path instead strips the assignment; the
// divergence is deliberate.
type CategoryService struct {
	data   *store.DataManager
	userID string
	logger *zap.Logger

	mu        sync.Mutex
	listeners map[int]func([]store.Category)
	nextID    int
	collapsed map[string]bool
}

func NewCategoryService(data *store.DataManager, userID string, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		data:      data,
		userID:    userID,
		logger:    logger,
		listeners: make(map[int]func([]store.Category)),
		collapsed: make(map[string]bool),
	}
}

// Categories lists the user's categories, lazily creating the default one
// so it always exists before anything can be assigned to it.
func (s *CategoryService) Categories() ([]store.Category, error) {
	return s.data.GetCategoriesByUserID(s.userID)
}

// Subscribe registers a listener, calls it immediately with the current
// list, and returns its unsubscribe function.
func (s *CategoryService) Subscribe(l func([]store.Category)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	categories, err := s.Categories()
	if err != nil {
		s.logger.Warn("failed to load categories for subscriber", zap.Error(err))
	}
	l(categories)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *CategoryService) broadcast() {
	categories, err := s.Categories()
	if err != nil {
		s.logger.Warn("failed to load categories for broadcast", zap.Error(err))
		return
	}

	s.mu.Lock()
	listeners := make([]func([]store.Category), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(categories)
	}
}

// Create adds a category. Any collapsed state recorded under the new id is
// cleared so the category is never born hidden.
func (s *CategoryService) Create(name string) (*store.Category, error) {
	category, err := s.data.CreateCategory(s.userID, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.collapsed, category.ID)
	s.mu.Unlock()

	s.broadcast()
	return category, nil
}

func (s *CategoryService) Rename(id, name string) (*store.Category, error) {
	category, err := s.data.UpdateCategory(id, name)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, core.ErrCategoryNotFound
	}
	s.broadcast()
	return category, nil
}

// Delete removes a non-default category, first reassigning its chats to the
// default category.
func (s *CategoryService) Delete(id string) error {
	category, err := s.data.GetCategoryByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return core.ErrCategoryNotFound
	}
	if category.IsDefault {
		return store.ErrDefaultCategory
	}

	def, err := s.data.EnsureDefaultCategory(s.userID)
	if err != nil {
		return err
	}
	chats, err := s.data.GetChatsByUserID(s.userID)
	if err != nil {
		return err
	}
	for _, chat := range chats {
		if chat.CategoryID != id {
			continue
		}
		if _, err := s.data.UpdateChat(chat.ID, store.ChatUpdate{CategoryID: &def.ID}); err != nil {
			return err
		}
	}

	if _, err := s.data.DeleteCategory(id); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.collapsed, id)
	s.mu.Unlock()

	s.broadcast()
	return nil
}

// SetCollapsed records whether a category is collapsed in the sidebar.
func (s *CategoryService) SetCollapsed(id string, collapsed bool) {
	s.mu.Lock()
	if collapsed {
		s.collapsed[id] = true
	} else {
		delete(s.collapsed, id)
	}
	s.mu.Unlock()
}

func (s *CategoryService) IsCollapsed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collapsed[id]
}
