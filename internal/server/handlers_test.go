package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidusaman/StudyGroup-Backend/internal/config"
	"github.com/kidusaman/StudyGroup-Backend/internal/engagement"
	"github.com/kidusaman/StudyGroup-Backend/internal/notify"
	"github.com/kidusaman/StudyGroup-Backend/internal/realtime"
)

// newTestServer wires a Server around in-memory stores and a real hub.
func newTestServer(t *testing.T) (*Server, *fakeStores) {
	t.Helper()

	stores := newFakeStores()
	cfg := &config.Config{
		Port:               "0",
		JWTSecret:          testJWTSecret,
		SessionSendBuffer:  32,
		MaxSessionsPerUser: 10,
	}

	hub := realtime.NewHub(clockwork.NewRealClock(), cfg.SessionSendBuffer, cfg.MaxSessionsPerUser)
	t.Cleanup(hub.Shutdown)

	dispatcher := notify.NewDispatcher(stores, hub)
	ledger := engagement.NewVoteLedger(stores)
	acceptance := engagement.NewAcceptanceController(stores, dispatcher)

	return NewServer(cfg, ledger, acceptance, stores, stores, stores, hub, hub, okHealthCheck{}, nil), stores
}

func doRequest(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleVote_RequiresAuth(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/upvote", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/answers/100/upvote", signTestToken(5, "wrong-secret-0123456"), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleVote_UpvoteFlow(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)
	token := signTestToken(5, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/upvote", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Upvote added", body["message"])
	answer := body["answer"].(map[string]any)
	assert.Equal(t, float64(1), answer["upvotes"])

	// Repeat is a no-op.
	rec = doRequest(t, srv, http.MethodPost, "/api/answers/100/upvote", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "Already upvoted", body["message"])

	// Switching nets -1.
	rec = doRequest(t, srv, http.MethodPost, "/api/answers/100/downvote", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, "Switched vote to downvote", body["message"])
	answer = body["answer"].(map[string]any)
	assert.Equal(t, float64(-1), answer["upvotes"])
}

func TestHandleVote_UnknownAnswer(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signTestToken(5, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/999/upvote", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleVote_InvalidAnswerID(t *testing.T) {
	srv, _ := newTestServer(t)
	token := signTestToken(5, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/abc/upvote", token, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAccept_OwnerOnly(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)

	// Not the question owner.
	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/accept", signTestToken(5, testJWTSecret), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner succeeds and the answer author is notified.
	rec = doRequest(t, srv, http.MethodPost, "/api/answers/100/accept", signTestToken(10, testJWTSecret), "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	answer := body["answer"].(map[string]any)
	assert.Equal(t, true, answer["accepted"])

	notifications := stores.notifications[20]
	require.Len(t, notifications, 1)
	assert.Equal(t, "Your answer has been accepted!", notifications[0].Message)
}

func TestHandleAccept_SwapClearsPrevious(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)
	stores.addAnswer(101, 1, 21)
	token := signTestToken(10, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/accept", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, srv, http.MethodPost, "/api/answers/101/accept", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.False(t, stores.answers[100].Accepted)
	assert.True(t, stores.answers[101].Accepted)
}

func TestHandleUnaccept_NotAccepted(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/unaccept", signTestToken(10, testJWTSecret), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUnaccept_NotifiesAuthor(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)
	token := signTestToken(10, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/accept", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, srv, http.MethodPost, "/api/answers/100/unaccept", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	notifications := stores.notifications[20]
	require.Len(t, notifications, 2)
	assert.Equal(t, "Your answer is no longer accepted.", notifications[1].Message)
}

func TestHandleNotifications_Lifecycle(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addQuestion(1, 10)
	stores.addAnswer(100, 1, 20)
	ownerToken := signTestToken(10, testJWTSecret)
	authorToken := signTestToken(20, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/answers/100/accept", ownerToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/notifications", authorToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var notifications []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notifications))
	require.Len(t, notifications, 1)
	notificationID := int64(notifications[0]["id"].(float64))

	rec = doRequest(t, srv, http.MethodGet, "/api/notifications/count", authorToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["unread_count"])

	// Someone else cannot mark it read.
	rec = doRequest(t, srv, http.MethodPost, "/api/notifications/"+itoa(notificationID)+"/read", ownerToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/notifications/"+itoa(notificationID)+"/read", authorToken, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/notifications/count", authorToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["unread_count"])
}

func TestHandleSendPrivateMessage(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addUser(1, "alice")
	stores.addUser(2, "bob")
	token := signTestToken(1, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/private-messages", token, `{"receiver_id":2,"message":"hey"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "hey", body["message"])
	assert.Equal(t, "alice", body["username"])

	// Empty message is rejected.
	rec = doRequest(t, srv, http.MethodPost, "/api/private-messages", token, `{"receiver_id":2,"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown recipient.
	rec = doRequest(t, srv, http.MethodPost, "/api/private-messages", token, `{"receiver_id":99,"message":"hey"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Conversation listing for both sides.
	rec = doRequest(t, srv, http.MethodGet, "/api/private-messages/conversations", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	partners := decodeBody(t, rec)["partners"].([]any)
	require.Len(t, partners, 1)
	assert.Equal(t, float64(2), partners[0])

	rec = doRequest(t, srv, http.MethodGet, "/api/private-messages/2", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 1)
}

func TestHandleMarkMessageRead_RecipientOnly(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addUser(1, "alice")
	stores.addUser(2, "bob")
	aliceToken := signTestToken(1, testJWTSecret)
	bobToken := signTestToken(2, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/private-messages", aliceToken, `{"receiver_id":2,"message":"hey"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	messageID := int64(decodeBody(t, rec)["id"].(float64))

	// Sender cannot mark it read.
	rec = doRequest(t, srv, http.MethodPost, "/api/private-messages/"+itoa(messageID)+"/read", aliceToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/private-messages/"+itoa(messageID)+"/read", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["is_read"])
}

func TestHandleGroupMessages(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addUser(1, "alice")
	token := signTestToken(1, testJWTSecret)

	rec := doRequest(t, srv, http.MethodPost, "/api/group-chat/7", token, `{"message":"hello group","localId":"tmp-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "hello group", body["message"])
	assert.Equal(t, "tmp-1", body["localId"])

	rec = doRequest(t, srv, http.MethodGet, "/api/group-chat/7", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var messages []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "alice", messages[0]["username"])
}

func TestRoutes_MatchClientContract(t *testing.T) {
	srv, stores := newTestServer(t)
	stores.addUser(1, "alice")
	stores.addUser(2, "bob")
	token := signTestToken(1, testJWTSecret)

	rec := doRequest(t, srv, http.MethodGet, "/api/notifications/count", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodPost, "/api/private-messages", token, `{"receiver_id":2,"message":"hi"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// The recipient comes from the body, not the path.
	rec = doRequest(t, srv, http.MethodPost, "/api/private-messages", token, `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/api/group-chat/7", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Mark-read endpoints are POST, not PATCH.
	rec = doRequest(t, srv, http.MethodPatch, "/api/notifications/1/read", token, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health/live", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, srv, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
