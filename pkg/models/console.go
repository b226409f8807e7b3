package models

// Console is one message-board record inside the shared document.
type Console struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// GMInfo is visible to administrators only; handlers strip it for
	// everyone else.
	GMInfo  string  `json:"gmInfo"`
	Content Content `json:"content"`
	Limits  Limits  `json:"limits"`
	Styling Styling `json:"styling"`
	// Locked rejects ordinary message writes; administrators may still
	// edit through config.
	Locked bool `json:"locked"`
	// Public gates whether non-owners receive notifications.
	Public        bool `json:"public"`
	Notifications bool `json:"notifications"`
	Timestamps    bool `json:"timestamps"`
	// PlayerOwnership lists actor ids the record may be shown to;
	// PlayerPermissions lists actor ids who may post. The two sets are
	// independent.
	PlayerOwnership   []string `json:"playerOwnership"`
	PlayerPermissions []string `json:"playerPermissions"`
	// LinkedActor is an advisory back-reference to a represented character.
	// Always serialised so a full-record save can clear it through the
	// merge protocol; an omitted key would leave the stored value behind.
	LinkedActor string `json:"linkedActor"`
	// Scenes holds foreign scene ids; SceneNames is the advisory parallel
	// array of display names and must be pruned together with Scenes.
	Scenes     []string `json:"scenes"`
	SceneNames []string `json:"sceneNames"`
}

// Content is the display title plus the ordered message log.
type Content struct {
	Title string    `json:"title"`
	Body  []Message `json:"body"`
}

// Limits is the truncation policy applied at message write time.
// Type is one of "characters", "words" or "none"; Value is only
// meaningful when Type != "none". HardLimit is a character ceiling
// carried for clients; the server does not enforce it.
type Limits struct {
	Type      string `json:"type"`
	Value     int    `json:"value"`
	Marker    string `json:"marker"`
	HardLimit int    `json:"hardLimit"`
}

// Styling is opaque presentation state except Mute and NotificationSound,
// which the notification router reads.
type Styling struct {
	BG                string `json:"bg"`
	BGImg             string `json:"bgImg"`
	FG                string `json:"fg"`
	Height            int    `json:"height"`
	Width             int    `json:"width"`
	MessengerStyle    bool   `json:"messengerStyle"`
	Mute              bool   `json:"mute"`
	NotificationSound string `json:"notificationSound"`
}

// HasOwner reports whether the actor id is in the ownership set.
func (c *Console) HasOwner(id string) bool {
	for _, o := range c.PlayerOwnership {
		if o == id {
			return true
		}
	}
	return false
}

// MayPost reports whether the actor id is in the posting-permission set.
func (c *Console) MayPost(id string) bool {
	for _, p := range c.PlayerPermissions {
		if p == id {
			return true
		}
	}
	return false
}
