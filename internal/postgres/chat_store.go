package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
)

// ChatStore implements domain.ChatStore backed by PostgreSQL.
type ChatStore struct {
	db *DB
}

func NewChatStore(db *DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) CreatePrivateMessage(ctx context.Context, senderID, recipientID int64, message string) (*domain.PrivateMessage, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	var senderName string
	err := s.db.Pool.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, senderID).Scan(&senderName)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, mapErr("create private message: sender lookup", err)
	}

	var m domain.PrivateMessage
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO private_messages (sender_id, recipient_id, message, is_read, created_at)
		VALUES ($1, $2, $3, FALSE, NOW())
		RETURNING id, sender_id, recipient_id, message, is_read, created_at
	`, senderID, recipientID, message).Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Message, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, mapErr("create private message", err)
	}

	m.SenderName = senderName
	return &m, nil
}

// ListConversationPartners returns the distinct set of users this user has
// exchanged private messages with, in either direction.
func (s *ChatStore) ListConversationPartners(ctx context.Context, userID int64) ([]int64, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Pool.Query(ctx, `
		SELECT DISTINCT
			CASE WHEN sender_id = $1 THEN recipient_id ELSE sender_id END AS partner
		FROM private_messages
		WHERE sender_id = $1 OR recipient_id = $1
	`, userID)
	if err != nil {
		return nil, mapErr("list conversation partners", err)
	}
	defer rows.Close()

	partners := []int64{}
	for rows.Next() {
		var partner int64
		if err := rows.Scan(&partner); err != nil {
			return nil, mapErr("list conversation partners: scan", err)
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

func (s *ChatStore) ListPrivateMessages(ctx context.Context, userID, otherID int64) ([]domain.PrivateMessage, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.id, m.sender_id, m.recipient_id, m.message, m.is_read, m.created_at, u.username
		FROM private_messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = $1 AND m.recipient_id = $2)
		   OR (m.sender_id = $2 AND m.recipient_id = $1)
		ORDER BY m.created_at ASC
	`, userID, otherID)
	if err != nil {
		return nil, mapErr("list private messages", err)
	}
	defer rows.Close()

	messages := []domain.PrivateMessage{}
	for rows.Next() {
		var m domain.PrivateMessage
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Message, &m.IsRead, &m.CreatedAt, &m.SenderName); err != nil {
			return nil, mapErr("list private messages: scan", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// MarkPrivateMessageRead flips is_read only for the message's recipient.
func (s *ChatStore) MarkPrivateMessageRead(ctx context.Context, messageID, recipientID int64) (*domain.PrivateMessage, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	var m domain.PrivateMessage
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE private_messages SET is_read = TRUE
		WHERE id = $1 AND recipient_id = $2
		RETURNING id, sender_id, recipient_id, message, is_read, created_at
	`, messageID, recipientID).Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Message, &m.IsRead, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrMessageNotFound
	}
	if err != nil {
		return nil, mapErr("mark private message read", err)
	}
	return &m, nil
}

func (s *ChatStore) CreateGroupMessage(ctx context.Context, groupID, userID int64, message string) (*domain.GroupMessage, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	var username string
	err := s.db.Pool.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, mapErr("create group message: sender lookup", err)
	}

	var m domain.GroupMessage
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO group_messages (group_id, user_id, message, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, group_id, user_id, message, created_at
	`, groupID, userID, message).Scan(&m.ID, &m.GroupID, &m.UserID, &m.Message, &m.CreatedAt)
	if err != nil {
		return nil, mapErr("create group message", err)
	}

	m.Username = username
	return &m, nil
}

func (s *ChatStore) ListGroupMessages(ctx context.Context, groupID int64) ([]domain.GroupMessage, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.id, m.group_id, m.user_id, m.message, m.created_at, u.username
		FROM group_messages m
		JOIN users u ON m.user_id = u.id
		WHERE m.group_id = $1
		ORDER BY m.created_at ASC
	`, groupID)
	if err != nil {
		return nil, mapErr("list group messages", err)
	}
	defer rows.Close()

	messages := []domain.GroupMessage{}
	for rows.Next() {
		var m domain.GroupMessage
		if err := rows.Scan(&m.ID, &m.GroupID, &m.UserID, &m.Message, &m.CreatedAt, &m.Username); err != nil {
			return nil, mapErr("list group messages: scan", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
