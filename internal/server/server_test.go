package server

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
)

const testJWTSecret = "test-secret-0123456789"

// --- In-memory stores shared by the handler tests ---

type fakeStores struct {
	mu            sync.Mutex
	answers       map[int64]*domain.Answer
	questionOwner map[int64]int64
	votes         map[[2]int64]domain.VoteDirection
	notifications map[int64][]domain.Notification
	messages      []domain.PrivateMessage
	groupMessages []domain.GroupMessage
	usernames     map[int64]string
	nextID        int64
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		answers:       make(map[int64]*domain.Answer),
		questionOwner: make(map[int64]int64),
		votes:         make(map[[2]int64]domain.VoteDirection),
		notifications: make(map[int64][]domain.Notification),
		usernames:     make(map[int64]string),
		nextID:        1000,
	}
}

func (f *fakeStores) addUser(id int64, username string) {
	f.usernames[id] = username
}

func (f *fakeStores) addQuestion(id, ownerID int64) {
	f.questionOwner[id] = ownerID
}

func (f *fakeStores) addAnswer(id, questionID, authorID int64) {
	f.answers[id] = &domain.Answer{ID: id, QuestionID: questionID, AuthorID: authorID}
}

func (f *fakeStores) ApplyVote(_ context.Context, userID, answerID int64, requested domain.VoteDirection) (*domain.VoteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	answer, ok := f.answers[answerID]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}

	key := [2]int64{userID, answerID}
	current, ok := f.votes[key]
	if !ok {
		current = domain.VoteNone
	}
	next, delta, err := domain.VoteTransition(current, requested)
	if err != nil {
		return nil, err
	}
	f.votes[key] = next
	answer.Upvotes += delta
	snapshot := *answer
	return &domain.VoteResult{Direction: next, Delta: delta, Answer: &snapshot}, nil
}

func (f *fakeStores) GetAnswer(_ context.Context, answerID int64) (*domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	answer, ok := f.answers[answerID]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	snapshot := *answer
	return &snapshot, nil
}

func (f *fakeStores) AcceptAnswer(_ context.Context, callerID, answerID int64) (*domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target, ok := f.answers[answerID]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	if f.questionOwner[target.QuestionID] != callerID {
		return nil, domain.ErrNotQuestionOwner
	}
	for _, a := range f.answers {
		if a.QuestionID == target.QuestionID {
			a.Accepted = false
		}
	}
	target.Accepted = true
	snapshot := *target
	return &snapshot, nil
}

func (f *fakeStores) UnacceptAnswer(_ context.Context, callerID, answerID int64) (*domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	target, ok := f.answers[answerID]
	if !ok {
		return nil, domain.ErrAnswerNotFound
	}
	if f.questionOwner[target.QuestionID] != callerID {
		return nil, domain.ErrNotQuestionOwner
	}
	if !target.Accepted {
		return nil, domain.ErrNotAccepted
	}
	target.Accepted = false
	snapshot := *target
	return &snapshot, nil
}

func (f *fakeStores) Create(_ context.Context, userID int64, message string, answerID int64) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n := domain.Notification{ID: f.nextID, UserID: userID, Message: message, AnswerID: answerID, CreatedAt: time.Now()}
	f.notifications[userID] = append(f.notifications[userID], n)
	return &n, nil
}

func (f *fakeStores) ListByUser(_ context.Context, userID int64) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.notifications[userID]...), nil
}

func (f *fakeStores) CountUnread(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, n := range f.notifications[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStores) MarkRead(_ context.Context, notificationID, userID int64) (*domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := f.notifications[userID]
	for i := range list {
		if list[i].ID == notificationID {
			list[i].IsRead = true
			return &list[i], nil
		}
	}
	return nil, domain.ErrNotificationNotFound
}

func (f *fakeStores) CreatePrivateMessage(_ context.Context, senderID, recipientID int64, message string) (*domain.PrivateMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	senderName, ok := f.usernames[senderID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if _, ok := f.usernames[recipientID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	f.nextID++
	m := domain.PrivateMessage{
		ID:          f.nextID,
		SenderID:    senderID,
		RecipientID: recipientID,
		Message:     message,
		SenderName:  senderName,
		CreatedAt:   time.Now(),
	}
	f.messages = append(f.messages, m)
	return &m, nil
}

func (f *fakeStores) ListConversationPartners(_ context.Context, userID int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[int64]struct{})
	partners := []int64{}
	for _, m := range f.messages {
		var other int64
		switch userID {
		case m.SenderID:
			other = m.RecipientID
		case m.RecipientID:
			other = m.SenderID
		default:
			continue
		}
		if _, ok := seen[other]; !ok {
			seen[other] = struct{}{}
			partners = append(partners, other)
		}
	}
	return partners, nil
}

func (f *fakeStores) ListPrivateMessages(_ context.Context, userID, otherID int64) ([]domain.PrivateMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	messages := []domain.PrivateMessage{}
	for _, m := range f.messages {
		if (m.SenderID == userID && m.RecipientID == otherID) || (m.SenderID == otherID && m.RecipientID == userID) {
			messages = append(messages, m)
		}
	}
	return messages, nil
}

func (f *fakeStores) MarkPrivateMessageRead(_ context.Context, messageID, recipientID int64) (*domain.PrivateMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.messages {
		if f.messages[i].ID == messageID && f.messages[i].RecipientID == recipientID {
			f.messages[i].IsRead = true
			return &f.messages[i], nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (f *fakeStores) CreateGroupMessage(_ context.Context, groupID, userID int64, message string) (*domain.GroupMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	username, ok := f.usernames[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}

	f.nextID++
	m := domain.GroupMessage{
		ID:        f.nextID,
		GroupID:   groupID,
		UserID:    userID,
		Message:   message,
		Username:  username,
		CreatedAt: time.Now(),
	}
	f.groupMessages = append(f.groupMessages, m)
	return &m, nil
}

func (f *fakeStores) ListGroupMessages(_ context.Context, groupID int64) ([]domain.GroupMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	messages := []domain.GroupMessage{}
	for _, m := range f.groupMessages {
		if m.GroupID == groupID {
			messages = append(messages, m)
		}
	}
	return messages, nil
}

type okHealthCheck struct{}

func (okHealthCheck) HealthCheck(context.Context) error { return nil }

// signTestToken issues an HS256 token with the userId claim.
func signTestToken(userID int64, secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		panic(err)
	}
	return signed
}
