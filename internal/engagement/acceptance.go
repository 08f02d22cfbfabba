package engagement

import (
	"context"
	"log/slog"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
)

const (
	acceptedMessage   = "Your answer has been accepted!"
	unacceptedMessage = "Your answer is no longer accepted."
)

// AcceptanceController is the use-case layer for answer acceptance. Only the
// question owner may change the flag, at most one answer per question is
// accepted at a time, and the answer author is notified of every change.
// A notification failure never fails the acceptance change itself.
type AcceptanceController struct {
	answers  domain.AnswerStore
	notifier domain.Notifier
}

// NewAcceptanceController creates the acceptance use-case layer.
// notifier may be nil, in which case acceptance changes are silent.
func NewAcceptanceController(answers domain.AnswerStore, notifier domain.Notifier) *AcceptanceController {
	return &AcceptanceController{answers: answers, notifier: notifier}
}

// Accept marks answerID as the accepted answer of its question, clearing any
// previously accepted sibling in the same transaction.
func (c *AcceptanceController) Accept(ctx context.Context, callerID, answerID int64) (*domain.Answer, error) {
	answer, err := c.answers.AcceptAnswer(ctx, callerID, answerID)
	if err != nil {
		return nil, err
	}

	c.notify(ctx, answer, acceptedMessage)
	return answer, nil
}

// Unaccept clears the accepted flag on answerID. The answer must currently be
// accepted.
func (c *AcceptanceController) Unaccept(ctx context.Context, callerID, answerID int64) (*domain.Answer, error) {
	answer, err := c.answers.UnacceptAnswer(ctx, callerID, answerID)
	if err != nil {
		return nil, err
	}

	c.notify(ctx, answer, unacceptedMessage)
	return answer, nil
}

func (c *AcceptanceController) notify(ctx context.Context, answer *domain.Answer, message string) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(ctx, answer.AuthorID, message, answer.ID); err != nil {
		slog.Error("Failed to notify answer author of acceptance change",
			"answer_id", answer.ID,
			"author_id", answer.AuthorID,
			"error", err,
		)
	}
}
