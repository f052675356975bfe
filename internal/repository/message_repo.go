package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"artmarket/internal/domain"
)

// MessageRepository define la persistencia de mensajes directos.
type MessageRepository interface {
	Create(ctx context.Context, msg domain.Message) error
	GetByID(ctx context.Context, id string) (domain.Message, error)
	Delete(ctx context.Context, id string) error
	Conversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error)
	Conversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	MarkRead(ctx context.Context, senderID, receiverID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// PgMessageRepository implementa MessageRepository usando pgxpool.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

const messageColumns = `m.id, m.sender_id, m.receiver_id, m.content, m.read, m.attachment, m.created_at`

func scanMessage(row pgx.Row) (domain.Message, error) {
	var m domain.Message
	err := row.Scan(
		&m.ID,
		&m.SenderID,
		&m.ReceiverID,
		&m.Content,
		&m.Read,
		&m.Attachment,
		&m.CreatedAt,
	)
	return m, err
}

func (r *PgMessageRepository) Create(ctx context.Context, msg domain.Message) error {
	const query = `
		INSERT INTO messages (id, sender_id, receiver_id, content, read, attachment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		msg.ID,
		msg.SenderID,
		msg.ReceiverID,
		msg.Content,
		msg.Read,
		msg.Attachment,
		msg.CreatedAt,
	)
	return err
}

func (r *PgMessageRepository) GetByID(ctx context.Context, id string) (domain.Message, error) {
	const query = `SELECT ` + messageColumns + ` FROM messages m WHERE m.id = $1`
	return scanMessage(r.pool.QueryRow(ctx, query, id))
}

func (r *PgMessageRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM messages WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Conversation devuelve los últimos mensajes entre dos usuarios, más reciente
// primero.
func (r *PgMessageRepository) Conversation(ctx context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
		SELECT ` + messageColumns + ` FROM messages m
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		   OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, userA, userB, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Conversations agrupa los mensajes del usuario por contraparte: último
// mensaje de cada hilo y cantidad de no leídos entrantes.
func (r *PgMessageRepository) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	const query = `
		SELECT DISTINCT ON (other_id)
			other_id, u.username, u.name, u.avatar_url,
			m.id, m.sender_id, m.receiver_id, m.content, m.read, m.attachment, m.created_at,
			(SELECT count(*) FROM messages x
			 WHERE x.sender_id = other_id AND x.receiver_id = $1 AND NOT x.read)
		FROM (
			SELECT *,
				CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS other_id
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
		) m
		JOIN users u ON u.id = m.other_id
		ORDER BY other_id, m.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		err := rows.Scan(
			&c.OtherUser.ID,
			&c.OtherUser.Username,
			&c.OtherUser.Name,
			&c.OtherUser.AvatarURL,
			&c.LastMessage.ID,
			&c.LastMessage.SenderID,
			&c.LastMessage.ReceiverID,
			&c.LastMessage.Content,
			&c.LastMessage.Read,
			&c.LastMessage.Attachment,
			&c.LastMessage.CreatedAt,
			&c.UnreadCount,
		)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// MarkRead marca como leídos los mensajes de sender hacia receiver y devuelve
// cuántos cambiaron.
func (r *PgMessageRepository) MarkRead(ctx context.Context, senderID, receiverID string) (int64, error) {
	const query = `
		UPDATE messages SET read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT read
	`
	tag, err := r.pool.Exec(ctx, query, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *PgMessageRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	const query = `SELECT count(*) FROM messages WHERE receiver_id = $1 AND NOT read`
	var n int
	err := r.pool.QueryRow(ctx, query, userID).Scan(&n)
	return n, err
}
