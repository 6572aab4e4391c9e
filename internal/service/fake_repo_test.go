package service

import (
	"context"
	"sync"
	"time"

	"github.com/chatvault/chatvault/internal/model"
	"github.com/chatvault/chatvault/internal/repository"
)

// fakeRepo is an in-memory stand-in for *repository.Repository.
// It returns the same sentinel errors the real repository does.
type fakeRepo struct {
	mu       sync.Mutex
	users    map[string]*model.User
	boxes    map[int64]*model.ChatBox
	messages []*model.ChatMessage
	nextID   int64
	now      time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:  make(map[string]*model.User),
		boxes:  make(map[int64]*model.ChatBox),
		nextID: 1,
		now:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRepo) tick() time.Time {
	f.now = f.now.Add(time.Millisecond)
	return f.now
}

func (f *fakeRepo) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.Username]; exists {
		return repository.ErrUsernameExists
	}
	user.ID = f.nextID
	f.nextID++
	user.CreatedAt = f.tick()
	clone := *user
	f.users[user.Username] = &clone
	return nil
}

func (f *fakeRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeRepo) CreateChatBox(_ context.Context, box *model.ChatBox) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	box.ID = f.nextID
	f.nextID++
	box.CreatedAt = f.tick()
	clone := *box
	f.boxes[box.ID] = &clone
	return nil
}

func (f *fakeRepo) ListChatBoxesByUser(_ context.Context, userID int64) ([]*model.ChatBox, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ChatBox
	for id := int64(0); id < f.nextID; id++ {
		if box, ok := f.boxes[id]; ok && box.UserID == userID {
			clone := *box
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepo) ChatBoxOwnedBy(_ context.Context, boxID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	box, ok := f.boxes[boxID]
	return ok && box.UserID == userID, nil
}

func (f *fakeRepo) DeleteChatBox(_ context.Context, boxID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.boxes[boxID]; !ok {
		return repository.ErrChatBoxNotFound
	}
	delete(f.boxes, boxID)
	kept := f.messages[:0]
	for _, msg := range f.messages {
		if msg.ChatBoxID != boxID {
			kept = append(kept, msg)
		}
	}
	f.messages = kept
	return nil
}

func (f *fakeRepo) CreateChatMessage(_ context.Context, msg *model.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg.ID = f.nextID
	f.nextID++
	msg.Timestamp = f.tick()
	clone := *msg
	f.messages = append(f.messages, &clone)
	return nil
}

func (f *fakeRepo) ListChatMessages(_ context.Context, boxID int64) ([]*model.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.ChatMessage
	for _, msg := range f.messages {
		if msg.ChatBoxID == boxID {
			clone := *msg
			out = append(out, &clone)
		}
	}
	return out, nil
}
