package model

import "time"

// MessageEvent is one inbound message delivered by the gateway.
type MessageEvent struct {
	MessageID   string
	GuildID     string
	ChannelID   string
	UserID      string
	Username    string
	Content     string
	Attachments []Attachment
	Timestamp   time.Time
}

// Attachment carries the metadata and leading bytes of an uploaded file.
// Head holds the first bytes of the file for signature checks; it may be
// empty when the content could not be fetched.
type Attachment struct {
	Filename string
	URL      string
	Size     int
	Head     []byte
}

// JoinEvent is one member join delivered by the gateway.
type JoinEvent struct {
	GuildID        string
	UserID         string
	Username       string
	AccountCreated time.Time
	Timestamp      time.Time
}
