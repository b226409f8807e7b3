package models

// Message is one entry in a console's log. At least one of Text/Media is
// present. Immutable once appended except for index deletion and bulk clear.
type Message struct {
	Text  string `json:"text,omitempty"`
	Media *Media `json:"media,omitempty"`
	// Timestamp is a prebuilt display string; composition only fills it
	// when the console's timestamps toggle is on.
	Timestamp string  `json:"timestamp,omitempty"`
	User      UserRef `json:"user"`
}

// Media points at an uploaded file shown inline with the message.
type Media struct {
	FilePath string `json:"filePath"`
	FileType string `json:"fileType"`
}

// UserRef identifies the author of a message.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Empty reports whether the message carries neither text nor media.
func (m Message) Empty() bool {
	return m.Text == "" && m.Media == nil
}
