package domain

import (
	"context"
	"time"
)

// --- Model types ---

type Answer struct {
	ID         int64     `json:"id" db:"id"`
	QuestionID int64     `json:"question_id" db:"question_id"`
	AuthorID   int64     `json:"user_id" db:"user_id"`
	Body       string    `json:"body" db:"body"`
	Upvotes    int       `json:"upvotes" db:"upvotes"`
	Accepted   bool      `json:"accepted" db:"accepted"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Notification struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	AnswerID  int64     `json:"answer_id" db:"answer_id"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type PrivateMessage struct {
	ID          int64     `json:"id" db:"id"`
	SenderID    int64     `json:"sender_id" db:"sender_id"`
	RecipientID int64     `json:"recipient_id" db:"recipient_id"`
	Message     string    `json:"message" db:"message"`
	IsRead      bool      `json:"is_read" db:"is_read"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// SenderName is joined in for display; not part of the row itself.
	SenderName string `json:"username,omitempty"`
}

type GroupMessage struct {
	ID        int64     `json:"id" db:"id"`
	GroupID   int64     `json:"group_id" db:"group_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Username string `json:"username,omitempty"`

	// LocalID echoes the client-generated id so senders can reconcile
	// their optimistic message with the fanned-out one.
	LocalID string `json:"localId,omitempty"`
}

// --- Store interfaces ---

// VoteStore mutates vote state. ApplyVote must perform the read-transition-write
// for one (userID, answerID) pair as a single atomic unit: concurrent calls on
// the same pair must not lose updates, while different pairs proceed
// independently. The returned Answer reflects the post-transition score.
type VoteStore interface {
	ApplyVote(ctx context.Context, userID, answerID int64, requested VoteDirection) (*VoteResult, error)
}

// AnswerStore mutates acceptance state. AcceptAnswer atomically clears the
// accepted flag on every sibling answer and sets it on the target, so no
// reader ever observes two accepted answers for one question. Both methods
// verify that callerID owns the answer's question and return the updated
// target answer.
type AnswerStore interface {
	GetAnswer(ctx context.Context, answerID int64) (*Answer, error)
	AcceptAnswer(ctx context.Context, callerID, answerID int64) (*Answer, error)
	UnacceptAnswer(ctx context.Context, callerID, answerID int64) (*Answer, error)
}

// NotificationStore persists notification records. The durable row is the
// source of truth for "the event happened"; real-time delivery is a
// best-effort mirror on top of it.
type NotificationStore interface {
	Create(ctx context.Context, userID int64, message string, answerID int64) (*Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, notificationID, userID int64) (*Notification, error)
}

// ChatStore persists private and group chat rows.
type ChatStore interface {
	CreatePrivateMessage(ctx context.Context, senderID, recipientID int64, message string) (*PrivateMessage, error)
	ListConversationPartners(ctx context.Context, userID int64) ([]int64, error)
	ListPrivateMessages(ctx context.Context, userID, otherID int64) ([]PrivateMessage, error)
	MarkPrivateMessageRead(ctx context.Context, messageID, recipientID int64) (*PrivateMessage, error)

	CreateGroupMessage(ctx context.Context, groupID, userID int64, message string) (*GroupMessage, error)
	ListGroupMessages(ctx context.Context, groupID int64) ([]GroupMessage, error)
}

// Notifier bridges state-machine events into durable records plus fan-out.
// Implementations must persist before publishing and must never let a
// notification failure surface as a failure of the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string, answerID int64) error
}
