package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testSchema mirrors the tables the surrounding system owns. Schema
// management itself lives with the external store; this DDL exists only so
// integration tests can run against a throwaway container.
const testSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS questions (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	title TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS answers (
	id BIGSERIAL PRIMARY KEY,
	question_id BIGINT NOT NULL REFERENCES questions(id),
	user_id BIGINT NOT NULL REFERENCES users(id),
	body TEXT NOT NULL DEFAULT '',
	upvotes INT NOT NULL DEFAULT 0,
	accepted BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS answer_votes (
	user_id BIGINT NOT NULL REFERENCES users(id),
	answer_id BIGINT NOT NULL REFERENCES answers(id),
	direction TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, answer_id)
);

CREATE TABLE IF NOT EXISTS notifications (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL REFERENCES users(id),
	message TEXT NOT NULL,
	answer_id BIGINT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS private_messages (
	id BIGSERIAL PRIMARY KEY,
	sender_id BIGINT NOT NULL REFERENCES users(id),
	recipient_id BIGINT NOT NULL REFERENCES users(id),
	message TEXT NOT NULL,
	is_read BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS group_messages (
	id BIGSERIAL PRIMARY KEY,
	group_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL REFERENCES users(id),
	message TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// createTestUser inserts a user row and returns its id.
func createTestUser(t *testing.T, db *DB, username string) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO users (username) VALUES ($1) RETURNING id`, username).Scan(&id)
	require.NoError(t, err)
	return id
}

// createTestQuestion inserts a question owned by ownerID and returns its id.
func createTestQuestion(t *testing.T, db *DB, ownerID int64) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO questions (user_id, title) VALUES ($1, 'test question') RETURNING id`, ownerID).Scan(&id)
	require.NoError(t, err)
	return id
}

// createTestAnswer inserts an answer and returns its id.
func createTestAnswer(t *testing.T, db *DB, questionID, authorID int64) int64 {
	t.Helper()

	var id int64
	err := db.Pool.QueryRow(context.Background(),
		`INSERT INTO answers (question_id, user_id, body) VALUES ($1, $2, 'test answer') RETURNING id`,
		questionID, authorID).Scan(&id)
	require.NoError(t, err)
	return id
}

// answerScore reads the current upvotes for an answer.
func answerScore(t *testing.T, db *DB, answerID int64) int {
	t.Helper()

	var score int
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := db.Pool.QueryRow(ctx, `SELECT upvotes FROM answers WHERE id = $1`, answerID).Scan(&score)
	require.NoError(t, err)
	return score
}

// acceptedAnswers returns the ids of accepted answers for a question.
func acceptedAnswers(t *testing.T, db *DB, questionID int64) []int64 {
	t.Helper()

	rows, err := db.Pool.Query(context.Background(),
		`SELECT id FROM answers WHERE question_id = $1 AND accepted`, questionID)
	require.NoError(t, err)
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	return ids
}
