package models

import "time"

// NotificationType names the user-facing notifications emitted by the interest flow.
type NotificationType string

const (
	NotifyInterestReceived NotificationType = "interest_received"
	NotifyInterestAccepted NotificationType = "interest_accepted"
	NotifyInterestRejected NotificationType = "interest_rejected"
)

// Notification is dispatched to the recipient over NATS and websocket.
type Notification struct {
	Type        NotificationType `json:"type"`
	RecipientID string           `json:"recipientId"`
	ActorID     string           `json:"actorId"`
	InterestID  string           `json:"interestId"`
	Message     string           `json:"message,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Activity actions recorded in the audit trail.
const (
	ActivityInterestSent      = "interest.sent"
	ActivityInterestAccepted  = "interest.accepted"
	ActivityInterestRejected  = "interest.rejected"
	ActivityInterestWithdrawn = "interest.withdrawn"
	ActivityInterestRead      = "interest.read"
)

// Activity is one audit entry for a mutating operation.
type Activity struct {
	Action     string    `json:"action"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId,omitempty"`
	InterestID string    `json:"interestId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
