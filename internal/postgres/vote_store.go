package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

// answerColumns must match the Scan order in scanAnswer.
const answerColumns = `id, question_id, user_id, body, upvotes, accepted, created_at`

func scanAnswer(row pgx.Row) (*domain.Answer, error) {
	var a domain.Answer
	err := row.Scan(&a.ID, &a.QuestionID, &a.AuthorID, &a.Body, &a.Upvotes, &a.Accepted, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// VoteStore implements domain.VoteStore backed by PostgreSQL.
type VoteStore struct {
	db *DB
}

func NewVoteStore(db *DB) *VoteStore {
	return &VoteStore{db: db}
}

// ApplyVote runs the read-transition-write for one (user, answer) pair in a
// single transaction. The vote row is locked via an upsert, so two requests
// for the same pair serialize on the row while unrelated pairs proceed in
// parallel; the score delta lands on answers.upvotes inside the same
// transaction, never from a value read outside it.
func (s *VoteStore) ApplyVote(ctx context.Context, userID, answerID int64, requested domain.VoteDirection) (*domain.VoteResult, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	timer := prometheus.NewTimer(metrics.StoreOpDuration.WithLabelValues("apply_vote"))
	defer timer.ObserveDuration()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, mapErr("apply vote: begin", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var exists int
	err = tx.QueryRow(ctx, `SELECT 1 FROM answers WHERE id = $1`, answerID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAnswerNotFound
	}
	if err != nil {
		return nil, mapErr("apply vote: answer lookup", err)
	}

	// Lock-or-create the pair's vote row. The no-op conflict update still
	// takes the row lock, so concurrent votes on the same pair queue here.
	var current domain.VoteDirection
	err = tx.QueryRow(ctx, `
		INSERT INTO answer_votes (user_id, answer_id, direction, created_at, updated_at)
		VALUES ($1, $2, 'none', NOW(), NOW())
		ON CONFLICT (user_id, answer_id) DO UPDATE SET direction = answer_votes.direction
		RETURNING direction
	`, userID, answerID).Scan(&current)
	if err != nil {
		return nil, mapErr("apply vote: lock vote row", err)
	}

	newDirection, delta, err := domain.VoteTransition(current, requested)
	if err != nil {
		return nil, err
	}

	if delta == 0 {
		answer, err := scanAnswer(tx.QueryRow(ctx,
			`SELECT `+answerColumns+` FROM answers WHERE id = $1`, answerID))
		if err != nil {
			return nil, mapErr("apply vote: reload answer", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, mapErr("apply vote: commit", err)
		}
		metrics.VotesAppliedTotal.WithLabelValues("noop").Inc()
		return &domain.VoteResult{Direction: newDirection, Delta: 0, Answer: answer}, nil
	}

	if _, err := tx.Exec(ctx, `
		UPDATE answer_votes SET direction = $3, updated_at = NOW()
		WHERE user_id = $1 AND answer_id = $2
	`, userID, answerID, newDirection); err != nil {
		return nil, mapErr("apply vote: update vote row", err)
	}

	answer, err := scanAnswer(tx.QueryRow(ctx, `
		UPDATE answers SET upvotes = upvotes + $2 WHERE id = $1
		RETURNING `+answerColumns,
		answerID, delta))
	if err != nil {
		return nil, mapErr("apply vote: update score", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr("apply vote: commit", err)
	}

	transition := "added"
	if current != domain.VoteNone {
		transition = "switched"
	}
	metrics.VotesAppliedTotal.WithLabelValues(transition).Inc()

	return &domain.VoteResult{Direction: newDirection, Delta: delta, Answer: answer}, nil
}
