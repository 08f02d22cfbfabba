package engagement

import (
	"context"
	"log/slog"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
)

// VoteLedger is the use-case layer for answer votes. Each call resolves the
// caller's current direction for the answer, applies the transition, and
// returns the new direction, the applied score delta, and the updated answer.
// Repeating a vote in the same direction is a no-op, not an error.
type VoteLedger struct {
	votes domain.VoteStore
}

// NewVoteLedger creates the vote use-case layer.
func NewVoteLedger(votes domain.VoteStore) *VoteLedger {
	return &VoteLedger{votes: votes}
}

// Upvote records an upvote by userID on answerID.
func (l *VoteLedger) Upvote(ctx context.Context, userID, answerID int64) (*domain.VoteResult, error) {
	return l.apply(ctx, userID, answerID, domain.VoteUp)
}

// Downvote records a downvote by userID on answerID.
func (l *VoteLedger) Downvote(ctx context.Context, userID, answerID int64) (*domain.VoteResult, error) {
	return l.apply(ctx, userID, answerID, domain.VoteDown)
}

func (l *VoteLedger) apply(ctx context.Context, userID, answerID int64, direction domain.VoteDirection) (*domain.VoteResult, error) {
	result, err := l.votes.ApplyVote(ctx, userID, answerID, direction)
	if err != nil {
		return nil, err
	}

	slog.Debug("Vote applied",
		"user_id", userID,
		"answer_id", answerID,
		"direction", result.Direction,
		"delta", result.Delta,
	)
	return result, nil
}
