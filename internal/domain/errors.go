package domain

import "errors"

var (
	ErrAnswerNotFound       = errors.New("answer not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotQuestionOwner     = errors.New("caller is not the question owner")
	ErrNotAccepted          = errors.New("answer is not currently accepted")
	ErrStoreUnavailable     = errors.New("durable store unavailable")
)
