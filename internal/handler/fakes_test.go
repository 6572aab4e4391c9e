package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chatvault/chatvault/internal/auth"
	"github.com/chatvault/chatvault/internal/middleware"
	"github.com/chatvault/chatvault/internal/model"
	"github.com/chatvault/chatvault/internal/repository"
	"github.com/chatvault/chatvault/internal/service"
)

var testHashParams = auth.HashParams{Time: 1, Memory: 16 * 1024, Threads: 1}

// memoryRepo backs handler tests without a database. It mirrors the
// sentinel errors of *repository.Repository.
type memoryRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	boxes    map[int64]*model.ChatBox
	messages []*model.ChatMessage
	nextID   int64
	now      time.Time
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		users:  make(map[string]*model.User),
		boxes:  make(map[int64]*model.ChatBox),
		nextID: 1,
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *memoryRepo) tick() time.Time {
	m.now = m.now.Add(time.Millisecond)
	return m.now
}

func (m *memoryRepo) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Username]; exists {
		return repository.ErrUsernameExists
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = m.tick()
	clone := *user
	m.users[user.Username] = &clone
	return nil
}

func (m *memoryRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memoryRepo) CreateChatBox(_ context.Context, box *model.ChatBox) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	box.ID = m.nextID
	m.nextID++
	box.CreatedAt = m.tick()
	clone := *box
	m.boxes[box.ID] = &clone
	return nil
}

func (m *memoryRepo) ListChatBoxesByUser(_ context.Context, userID int64) ([]*model.ChatBox, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ChatBox
	for id := int64(0); id < m.nextID; id++ {
		if box, ok := m.boxes[id]; ok && box.UserID == userID {
			clone := *box
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryRepo) ChatBoxOwnedBy(_ context.Context, boxID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	box, ok := m.boxes[boxID]
	return ok && box.UserID == userID, nil
}

func (m *memoryRepo) DeleteChatBox(_ context.Context, boxID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boxes[boxID]; !ok {
		return repository.ErrChatBoxNotFound
	}
	delete(m.boxes, boxID)
	kept := m.messages[:0]
	for _, msg := range m.messages {
		if msg.ChatBoxID != boxID {
			kept = append(kept, msg)
		}
	}
	m.messages = kept
	return nil
}

func (m *memoryRepo) CreateChatMessage(_ context.Context, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = m.nextID
	m.nextID++
	msg.Timestamp = m.tick()
	clone := *msg
	m.messages = append(m.messages, &clone)
	return nil
}

func (m *memoryRepo) ListChatMessages(_ context.Context, boxID int64) ([]*model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ChatMessage
	for _, msg := range m.messages {
		if msg.ChatBoxID == boxID {
			clone := *msg
			out = append(out, &clone)
		}
	}
	return out, nil
}

// newTestRouter wires the real handlers, services and auth middleware over
// the in-memory repo, mirroring the production route table.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	repo := newMemoryRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService([]byte("test-secret"), 60*time.Minute)

	authSvc, err := service.NewAuthService(repo, auth.NewHasher(testHashParams), tokens)
	if err != nil {
		t.Fatalf("NewAuthService failed: %v", err)
	}
	chatSvc := service.NewChatService(repo)

	h := New()
	authHandler := NewAuthHandler(authSvc, logger)
	chatHandler := NewChatBoxHandler(chatSvc, logger)

	r := chi.NewRouter()
	r.Get("/", h.Hello)
	r.Post("/users/", authHandler.Register)
	r.Post("/token", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:   logger,
			Tokens:   tokens,
			Resolver: authSvc,
		}))
		r.Get("/chatboxes/", chatHandler.List)
		r.Post("/chatboxes/", chatHandler.Create)
		r.Delete("/chatboxes/{id}", chatHandler.Delete)
		r.Get("/chatboxes/{id}/messages/", chatHandler.History)
		r.Post("/chatboxes/{id}/messages/", chatHandler.PostMessage)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
