package livefeed

import (
	"time"

	tools "github.com/kirillDanshin/nulltime"
)

const (
	TypeClient  = "CLIENT"
	TypeCheckIn = "CHECKIN"
	TypeImport  = "IMPORT"
	// TypeHeartbeat is sent by browsers to keep the connection alive.
	TypeHeartbeat = "HEARTBEAT"
)

const (
	ActionUpdate = "UPDATE"
	ActionAdd    = "ADD"
	ActionDelete = "DELETE"
)

// Message is the JSON frame written to a coach's connections.
type Message struct {
	MessageType string         `json:"message_type"`
	Timestamp   tools.NullTime `json:"timestamp"`
	Action      string         `json:"action,omitempty"`
	Data        interface{}    `json:"data,omitempty"`
}

// coachMessage addresses a message to every connection of one coach.
type coachMessage struct {
	CoachId uint
	Message Message
}

func newMessage(messageType, action string, data interface{}) Message {
	return Message{
		MessageType: messageType,
		Timestamp:   tools.NullTime{Time: time.Now(), Valid: true},
		Action:      action,
		Data:        data,
	}
}
