package domain

import "time"

type Message struct {
	ID         string      `json:"id"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id"`
	Content    string      `json:"content"`
	Read       bool        `json:"read"`
	Attachment *Attachment `json:"attachment,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Attachment struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Conversation resume el hilo con otro usuario: último mensaje y cantidad de
// no leídos.
type Conversation struct {
	OtherUser   PublicUser `json:"other_user"`
	LastMessage Message    `json:"last_message"`
	UnreadCount int        `json:"unread_count"`
}
