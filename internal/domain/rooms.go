package domain

import "fmt"

// Room names are part of the wire contract: clients and other services
// subscribe by these exact strings. All call sites must go through these
// helpers instead of formatting room names inline.

// UserRoom is the per-user room carrying private messages and notifications.
func UserRoom(userID int64) string {
	return fmt.Sprintf("user-%d", userID)
}

// GroupRoom is the per-group chat room.
func GroupRoom(groupID int64) string {
	return fmt.Sprintf("group-%d", groupID)
}

// Event names emitted through the fan-out hub.
const (
	EventReceivePrivateMessage = "receivePrivateMessage"
	EventReceiveGroupMessage   = "receiveGroupMessage"
)

// NotificationEvent is the per-user notification event name.
func NotificationEvent(userID int64) string {
	return fmt.Sprintf("notification-%d", userID)
}

// Event is a named payload delivered to every session in a room.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"data"`
}

// Publisher delivers an event to every live session currently joined to a
// room. Delivery is best-effort and at-most-once: there is no retry, no
// replay, and failures are logged rather than returned.
type Publisher interface {
	Publish(room string, event Event)
}
