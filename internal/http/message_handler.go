package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"artmarket/internal/domain"
	"artmarket/internal/service"
)

// MessageHandler mantiene dependencias para endpoints de mensajería.
type MessageHandler struct {
	logger   *zap.Logger
	messages *service.MessageService
}

func NewMessageHandler(logger *zap.Logger, messages *service.MessageService) *MessageHandler {
	return &MessageHandler{logger: logger, messages: messages}
}

// Conversations maneja GET /api/messages/conversations.
func (h *MessageHandler) Conversations(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	convs, err := h.messages.Conversations(c.Request.Context(), caller.ID)
	if err != nil {
		h.logger.Error("list conversations failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list conversations"})
		return
	}
	c.JSON(http.StatusOK, convs)
}

// Conversation maneja GET /api/messages/conversation/:userId. Marca como
// leídos los mensajes entrantes del hilo.
func (h *MessageHandler) Conversation(c *gin.Context) {
	caller, _ := GetAuthUser(c)

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	msgs, err := h.messages.Conversation(c.Request.Context(), caller.ID, c.Param("userId"), limit)
	if err != nil {
		if errors.Is(err, service.ErrReceiverNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		h.logger.Error("get conversation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get conversation"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Send maneja POST /api/messages/send.
func (h *MessageHandler) Send(c *gin.Context) {
	caller, _ := GetAuthUser(c)

	var req struct {
		ReceiverID string             `json:"receiver_id" binding:"required"`
		Content    string             `json:"content"`
		Attachment *domain.Attachment `json:"attachment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id is required"})
		return
	}

	msg, err := h.messages.Send(c.Request.Context(), caller.ID, req.ReceiverID, req.Content, req.Attachment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message content required"})
		case errors.Is(err, service.ErrReceiverNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "receiver not found"})
		default:
			h.logger.Error("send message failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkRead maneja POST /api/messages/mark-read/:senderId.
func (h *MessageHandler) MarkRead(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	count, err := h.messages.MarkRead(c.Request.Context(), caller.ID, c.Param("senderId"))
	if err != nil {
		h.logger.Error("mark read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": count})
}

// UnreadCount maneja GET /api/messages/unread-count.
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	count, err := h.messages.UnreadCount(c.Request.Context(), caller.ID)
	if err != nil {
		h.logger.Error("unread count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get unread count"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// Delete maneja DELETE /api/messages/:id. Solo el emisor y dentro de la
// ventana de borrado.
func (h *MessageHandler) Delete(c *gin.Context) {
	caller, _ := GetAuthUser(c)
	if err := h.messages.Delete(c.Request.Context(), caller.ID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		case errors.Is(err, service.ErrNotMessageOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		case errors.Is(err, service.ErrDeleteWindow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "delete window elapsed"})
		default:
			h.logger.Error("delete message failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted"})
}
