package models

// Broadcast event names. Receivers must log and ignore anything else.
const (
	EventMessageNotification       = "messageNotification"
	EventShareApp                  = "shareApp"
	EventGMPropagateNotifications  = "gmPropagateNotifications"
	EventUserPropagateNotification = "userPropagateNotifications"
)

// Event is the broadcast envelope exchanged between connected clients.
// Users is the addressed recipient set; ID names a console where the
// event concerns one; Console carries the full updated record on
// messageNotification so receivers need no follow-up read.
type Event struct {
	Event string   `json:"event"`
	Users []string `json:"users"`
	ID    string   `json:"id,omitempty"`
	// Addition is true when unread flags should be added for ID and
	// false when they should be removed (bulk clear).
	Addition bool     `json:"addition,omitempty"`
	Console  *Console `json:"console,omitempty"`
}

// Addressed reports whether the event names the given user id.
func (e Event) Addressed(userID string) bool {
	for _, u := range e.Users {
		if u == userID {
			return true
		}
	}
	return false
}
