package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kidusaman/StudyGroup-Backend/internal/domain"
	"github.com/kidusaman/StudyGroup-Backend/internal/metrics"
)

// AnswerStore implements domain.AnswerStore backed by PostgreSQL.
type AnswerStore struct {
	db *DB
}

func NewAnswerStore(db *DB) *AnswerStore {
	return &AnswerStore{db: db}
}

func (s *AnswerStore) GetAnswer(ctx context.Context, answerID int64) (*domain.Answer, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	answer, err := scanAnswer(s.db.Pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM answers WHERE id = $1`, answerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAnswerNotFound
	}
	if err != nil {
		return nil, mapErr("get answer", err)
	}
	return answer, nil
}

// resolveForAcceptance loads the answer's question and verifies ownership
// inside the caller's transaction. Locking the question row serializes
// acceptance swaps per question; swaps on different questions do not
// contend.
func (s *AnswerStore) resolveForAcceptance(ctx context.Context, tx pgx.Tx, callerID, answerID int64) (questionID int64, err error) {
	err = tx.QueryRow(ctx, `SELECT question_id FROM answers WHERE id = $1`, answerID).Scan(&questionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrAnswerNotFound
	}
	if err != nil {
		return 0, mapErr("acceptance: answer lookup", err)
	}

	var ownerID int64
	err = tx.QueryRow(ctx, `SELECT user_id FROM questions WHERE id = $1 FOR UPDATE`, questionID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrQuestionNotFound
	}
	if err != nil {
		return 0, mapErr("acceptance: question lookup", err)
	}

	if ownerID != callerID {
		return 0, domain.ErrNotQuestionOwner
	}
	return questionID, nil
}

// AcceptAnswer clears any previously accepted sibling and marks the target
// accepted as one atomic unit, so no reader ever sees two accepted answers
// for the same question.
func (s *AnswerStore) AcceptAnswer(ctx context.Context, callerID, answerID int64) (*domain.Answer, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	timer := prometheus.NewTimer(metrics.StoreOpDuration.WithLabelValues("accept_answer"))
	defer timer.ObserveDuration()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, mapErr("accept: begin", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	questionID, err := s.resolveForAcceptance(ctx, tx, callerID, answerID)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE answers SET accepted = FALSE WHERE question_id = $1 AND accepted`, questionID); err != nil {
		return nil, mapErr("accept: clear previous", err)
	}

	answer, err := scanAnswer(tx.QueryRow(ctx,
		`UPDATE answers SET accepted = TRUE WHERE id = $1 RETURNING `+answerColumns, answerID))
	if err != nil {
		return nil, mapErr("accept: mark accepted", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr("accept: commit", err)
	}

	metrics.AcceptanceChangesTotal.WithLabelValues("accept").Inc()
	return answer, nil
}

// UnacceptAnswer clears the accepted flag; the target must currently be
// accepted, otherwise the operation fails as an invalid state rather than
// silently succeeding.
func (s *AnswerStore) UnacceptAnswer(ctx context.Context, callerID, answerID int64) (*domain.Answer, error) {
	ctx, cancel := s.db.opCtx(ctx)
	defer cancel()

	timer := prometheus.NewTimer(metrics.StoreOpDuration.WithLabelValues("unaccept_answer"))
	defer timer.ObserveDuration()

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, mapErr("unaccept: begin", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := s.resolveForAcceptance(ctx, tx, callerID, answerID); err != nil {
		return nil, err
	}

	answer, err := scanAnswer(tx.QueryRow(ctx,
		`UPDATE answers SET accepted = FALSE WHERE id = $1 AND accepted = TRUE RETURNING `+answerColumns, answerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotAccepted
	}
	if err != nil {
		return nil, mapErr("unaccept: clear accepted", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, mapErr("unaccept: commit", err)
	}

	metrics.AcceptanceChangesTotal.WithLabelValues("unaccept").Inc()
	return answer, nil
}
