package service

import (
	"context"
	"errors"
	"testing"
)

func TestChatService_CreateAndListBoxes(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())
	ctx := context.Background()

	box, err := svc.CreateBox(ctx, 1, "notes")
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}
	if box.ID == 0 {
		t.Error("created box should have an id")
	}
	if box.UserID != 1 {
		t.Errorf("expected owner 1, got %d", box.UserID)
	}

	boxes, err := svc.ListBoxes(ctx, 1)
	if err != nil {
		t.Fatalf("ListBoxes failed: %v", err)
	}
	if len(boxes) != 1 || boxes[0].Name != "notes" {
		t.Errorf("expected exactly one box named notes, got %+v", boxes)
	}

	// other users see nothing
	other, err := svc.ListBoxes(ctx, 2)
	if err != nil {
		t.Fatalf("ListBoxes failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("user 2 should own no boxes, got %d", len(other))
	}
}

func TestChatService_CreateBox_EmptyName(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())

	for _, name := range []string{"", "   "} {
		if _, err := svc.CreateBox(context.Background(), 1, name); !errors.Is(err, ErrEmptyBoxName) {
			t.Errorf("CreateBox(%q): expected ErrEmptyBoxName, got %v", name, err)
		}
	}
}

func TestChatService_AuthorizeBoxAccess(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())
	ctx := context.Background()

	box, err := svc.CreateBox(ctx, 1, "notes")
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}

	owned, err := svc.AuthorizeBoxAccess(ctx, 1, box.ID)
	if err != nil || !owned {
		t.Errorf("owner should be authorized, got (%v, %v)", owned, err)
	}

	// foreign box and nonexistent box are observably identical
	foreign, err := svc.AuthorizeBoxAccess(ctx, 2, box.ID)
	if err != nil || foreign {
		t.Errorf("non-owner must be denied, got (%v, %v)", foreign, err)
	}

	missing, err := svc.AuthorizeBoxAccess(ctx, 1, 9999)
	if err != nil || missing {
		t.Errorf("nonexistent box must be denied, got (%v, %v)", missing, err)
	}
}

func TestChatService_PostAndHistory(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())
	ctx := context.Background()

	box, err := svc.CreateBox(ctx, 1, "notes")
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}

	want := []string{"first", "second", "third"}
	for _, body := range want {
		if _, err := svc.PostMessage(ctx, 1, box.ID, "alice", body); err != nil {
			t.Fatalf("PostMessage(%q) failed: %v", body, err)
		}
	}

	history, err := svc.History(ctx, 1, box.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(history))
	}
	for i, msg := range history {
		if msg.Message != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], msg.Message)
		}
		if msg.Timestamp.IsZero() {
			t.Errorf("message %d has no server-assigned timestamp", i)
		}
		if i > 0 && msg.Timestamp.Before(history[i-1].Timestamp) {
			t.Errorf("history out of timestamp order at index %d", i)
		}
	}
}

func TestChatService_CrossUserAccessDenied(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())
	ctx := context.Background()

	box, err := svc.CreateBox(ctx, 1, "private")
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}

	if _, err := svc.PostMessage(ctx, 2, box.ID, "bob", "hi"); !errors.Is(err, ErrBoxAccessDenied) {
		t.Errorf("foreign post: expected ErrBoxAccessDenied, got %v", err)
	}
	if _, err := svc.History(ctx, 2, box.ID); !errors.Is(err, ErrBoxAccessDenied) {
		t.Errorf("foreign read: expected ErrBoxAccessDenied, got %v", err)
	}
	if err := svc.DeleteBox(ctx, 2, box.ID); !errors.Is(err, ErrBoxAccessDenied) {
		t.Errorf("foreign delete: expected ErrBoxAccessDenied, got %v", err)
	}

	// denial left no side effects
	history, err := svc.History(ctx, 1, box.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("denied post must not mutate the box, got %d messages", len(history))
	}
}

func TestChatService_PostMessage_Validation(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())
	ctx := context.Background()

	box, err := svc.CreateBox(ctx, 1, "notes")
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}

	if _, err := svc.PostMessage(ctx, 1, box.ID, "", "hi"); !errors.Is(err, ErrEmptySender) {
		t.Errorf("expected ErrEmptySender, got %v", err)
	}
	if _, err := svc.PostMessage(ctx, 1, box.ID, "alice", ""); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestChatService_DeleteBox(t *testing.T) {
	t.Parallel()

	svc := NewChatService(newFakeRepo())
	ctx := context.Background()

	box, err := svc.CreateBox(ctx, 1, "scratch")
	if err != nil {
		t.Fatalf("CreateBox failed: %v", err)
	}
	if _, err := svc.PostMessage(ctx, 1, box.ID, "alice", "bye"); err != nil {
		t.Fatalf("PostMessage failed: %v", err)
	}

	if err := svc.DeleteBox(ctx, 1, box.ID); err != nil {
		t.Fatalf("DeleteBox failed: %v", err)
	}

	boxes, err := svc.ListBoxes(ctx, 1)
	if err != nil {
		t.Fatalf("ListBoxes failed: %v", err)
	}
	if len(boxes) != 0 {
		t.Errorf("box should be gone, got %d", len(boxes))
	}

	// and the id no longer authorizes
	if err := svc.DeleteBox(ctx, 1, box.ID); !errors.Is(err, ErrBoxAccessDenied) {
		t.Errorf("deleting a deleted box: expected ErrBoxAccessDenied, got %v", err)
	}
}
