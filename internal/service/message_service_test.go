package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/domain"
)

type mockMessageRepo struct {
	messages map[string]domain.Message
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{messages: make(map[string]domain.Message)}
}

func (m *mockMessageRepo) Create(_ context.Context, msg domain.Message) error {
	m.messages[msg.ID] = msg
	return nil
}

func (m *mockMessageRepo) GetByID(_ context.Context, id string) (domain.Message, error) {
	msg, ok := m.messages[id]
	if !ok {
		return domain.Message{}, pgx.ErrNoRows
	}
	return msg, nil
}

func (m *mockMessageRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.messages[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.messages, id)
	return nil
}

func (m *mockMessageRepo) Conversation(_ context.Context, userA, userB string, _ int) ([]domain.Message, error) {
	var msgs []domain.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

func (m *mockMessageRepo) Conversations(_ context.Context, _ string) ([]domain.Conversation, error) {
	return nil, nil
}

func (m *mockMessageRepo) MarkRead(_ context.Context, senderID, receiverID string) (int64, error) {
	var count int64
	for id, msg := range m.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID && !msg.Read {
			msg.Read = true
			m.messages[id] = msg
			count++
		}
	}
	return count, nil
}

func (m *mockMessageRepo) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, msg := range m.messages {
		if msg.ReceiverID == userID && !msg.Read {
			count++
		}
	}
	return count, nil
}

type mockNotifier struct {
	newMessages []domain.Message
	reads       []string
}

func (m *mockNotifier) NotifyNewMessage(msg domain.Message) {
	m.newMessages = append(m.newMessages, msg)
}

func (m *mockNotifier) NotifyRead(senderID, readerID string, _ int64) {
	m.reads = append(m.reads, senderID+"<-"+readerID)
}

func newTestMessageService(msgs *mockMessageRepo, users *mockUserRepo, notifier *mockNotifier) *MessageService {
	return NewMessageService(zap.NewNop(), msgs, users, notifier)
}

func seedUser(repo *mockUserRepo, id string) {
	repo.usersByID[id] = domain.User{ID: id, Username: id, Active: true, IsEmailVerified: true}
}

func TestMessageServiceSend_Success(t *testing.T) {
	msgs := newMockMessageRepo()
	users := newMockUserRepo()
	notifier := &mockNotifier{}
	svc := newTestMessageService(msgs, users, notifier)
	seedUser(users, "u1")
	seedUser(users, "u2")

	msg, err := svc.Send(context.Background(), "u1", "u2", "  hola  ", nil)
	if err != nil {
		t.Fatalf("expected send success, got %v", err)
	}
	if msg.Content != "hola" {
		t.Fatalf("expected trimmed content, got %q", msg.Content)
	}
	if len(notifier.newMessages) != 1 || notifier.newMessages[0].ReceiverID != "u2" {
		t.Fatalf("expected receiver notified")
	}
}

func TestMessageServiceSend_EmptyContent(t *testing.T) {
	svc := newTestMessageService(newMockMessageRepo(), newMockUserRepo(), &mockNotifier{})

	if _, err := svc.Send(context.Background(), "u1", "u2", "   ", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestMessageServiceSend_UnknownReceiver(t *testing.T) {
	users := newMockUserRepo()
	seedUser(users, "u1")
	svc := newTestMessageService(newMockMessageRepo(), users, &mockNotifier{})

	if _, err := svc.Send(context.Background(), "u1", "ghost", "hola", nil); !errors.Is(err, ErrReceiverNotFound) {
		t.Fatalf("expected ErrReceiverNotFound, got %v", err)
	}
}

func TestMessageServiceConversation_MarksReadAndNotifies(t *testing.T) {
	msgs := newMockMessageRepo()
	users := newMockUserRepo()
	notifier := &mockNotifier{}
	svc := newTestMessageService(msgs, users, notifier)
	seedUser(users, "u1")
	seedUser(users, "u2")

	if _, err := svc.Send(context.Background(), "u2", "u1", "hola", nil); err != nil {
		t.Fatalf("send: %v", err)
	}

	if _, err := svc.Conversation(context.Background(), "u1", "u2", 0); err != nil {
		t.Fatalf("conversation: %v", err)
	}

	unread, err := svc.UnreadCount(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unread count: %v", err)
	}
	if unread != 0 {
		t.Fatalf("expected messages marked read, got %d unread", unread)
	}
	if len(notifier.reads) != 1 || notifier.reads[0] != "u2<-u1" {
		t.Fatalf("expected read receipt to sender, got %v", notifier.reads)
	}
}

func TestMessageServiceDelete_OwnerWithinWindow(t *testing.T) {
	msgs := newMockMessageRepo()
	users := newMockUserRepo()
	svc := newTestMessageService(msgs, users, &mockNotifier{})
	seedUser(users, "u1")
	seedUser(users, "u2")

	msg, err := svc.Send(context.Background(), "u1", "u2", "hola", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.Delete(context.Background(), "u1", msg.ID); err != nil {
		t.Fatalf("expected delete success, got %v", err)
	}
	if _, err := msgs.GetByID(context.Background(), msg.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("expected message removed")
	}
}

func TestMessageServiceDelete_NotOwner(t *testing.T) {
	msgs := newMockMessageRepo()
	users := newMockUserRepo()
	svc := newTestMessageService(msgs, users, &mockNotifier{})
	seedUser(users, "u1")
	seedUser(users, "u2")

	msg, err := svc.Send(context.Background(), "u1", "u2", "hola", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := svc.Delete(context.Background(), "u2", msg.ID); !errors.Is(err, ErrNotMessageOwner) {
		t.Fatalf("expected ErrNotMessageOwner, got %v", err)
	}
}

func TestMessageServiceDelete_WindowElapsed(t *testing.T) {
	msgs := newMockMessageRepo()
	users := newMockUserRepo()
	svc := newTestMessageService(msgs, users, &mockNotifier{})
	seedUser(users, "u1")
	seedUser(users, "u2")

	msg, err := svc.Send(context.Background(), "u1", "u2", "hola", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	stale := msgs.messages[msg.ID]
	stale.CreatedAt = time.Now().UTC().Add(-messageDeleteWindow - time.Minute)
	msgs.messages[msg.ID] = stale

	if err := svc.Delete(context.Background(), "u1", msg.ID); !errors.Is(err, ErrDeleteWindow) {
		t.Fatalf("expected ErrDeleteWindow, got %v", err)
	}
}

func TestMessageServiceDelete_Missing(t *testing.T) {
	svc := newTestMessageService(newMockMessageRepo(), newMockUserRepo(), &mockNotifier{})

	if err := svc.Delete(context.Background(), "u1", "missing"); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("expected ErrMessageNotFound, got %v", err)
	}
}
