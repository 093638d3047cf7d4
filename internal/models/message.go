package models

import "time"

type MessageType int

const (
	Program MessageType = iota
	Info
	Error
	Navigation
)

// Message is one line of the activity log shown under the page preview.
type Message struct {
	Content string
	Type    MessageType
	At      time.Time
}
