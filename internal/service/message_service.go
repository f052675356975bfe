package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/repository"
)

// Ventana en la que el emisor puede borrar un mensaje propio.
const messageDeleteWindow = 5 * time.Minute

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrReceiverNotFound = errors.New("receiver not found")
	ErrEmptyMessage     = errors.New("message content required")
	ErrNotMessageOwner  = errors.New("not the message sender")
	ErrDeleteWindow     = errors.New("delete window elapsed")
)

// Notifier empuja eventos de mensajería en tiempo real. La entrega es best
// effort: un socket caído nunca falla la operación HTTP.
type Notifier interface {
	NotifyNewMessage(msg domain.Message)
	NotifyRead(senderID, readerID string, count int64)
}

// MessageService persiste mensajes directos y notifica por el canal realtime.
type MessageService struct {
	logger   *zap.Logger
	messages repository.MessageRepository
	users    repository.UserRepository
	notifier Notifier
}

func NewMessageService(logger *zap.Logger, messages repository.MessageRepository, users repository.UserRepository, notifier Notifier) *MessageService {
	return &MessageService{
		logger:   logger,
		messages: messages,
		users:    users,
		notifier: notifier,
	}
}

// Send valida receptor y contenido, persiste y notifica al receptor.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, content string, attachment *domain.Attachment) (domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Message{}, ErrEmptyMessage
	}

	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Message{}, ErrReceiverNotFound
		}
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Attachment: attachment,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return domain.Message{}, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}
	return msg, nil
}

// Conversation devuelve el hilo con otro usuario y marca como leídos los
// mensajes entrantes, notificando el read receipt a la contraparte.
func (s *MessageService) Conversation(ctx context.Context, userID, otherUserID string, limit int) ([]domain.Message, error) {
	if _, err := s.users.GetByID(ctx, otherUserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReceiverNotFound
		}
		return nil, err
	}

	msgs, err := s.messages.Conversation(ctx, userID, otherUserID, limit)
	if err != nil {
		return nil, err
	}

	count, err := s.messages.MarkRead(ctx, otherUserID, userID)
	if err != nil {
		s.logger.Warn("mark conversation read", zap.Error(err), zap.String("user_id", userID))
	} else if count > 0 && s.notifier != nil {
		s.notifier.NotifyRead(otherUserID, userID, count)
	}
	return msgs, nil
}

func (s *MessageService) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}

// MarkRead marca los mensajes de sender hacia el lector y notifica el receipt.
func (s *MessageService) MarkRead(ctx context.Context, readerID, senderID string) (int64, error) {
	count, err := s.messages.MarkRead(ctx, senderID, readerID)
	if err != nil {
		return 0, err
	}
	if count > 0 && s.notifier != nil {
		s.notifier.NotifyRead(senderID, readerID, count)
	}
	return count, nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.messages.UnreadCount(ctx, userID)
}

// Delete borra un mensaje propio dentro de la ventana permitida.
func (s *MessageService) Delete(ctx context.Context, userID, messageID string) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.SenderID != userID {
		return ErrNotMessageOwner
	}
	if time.Since(msg.CreatedAt) > messageDeleteWindow {
		return ErrDeleteWindow
	}
	return s.messages.Delete(ctx, messageID)
}
