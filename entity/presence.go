package entity

import "time"

// Participant roles.
const (
	RoleCustomer = "customer"
	RoleAgent    = "agent"
)

// OtherRole returns the opposite participant role.
func OtherRole(role string) string {
	if role == RoleAgent {
		return RoleCustomer
	}
	return RoleAgent
}

// PresenceRecord is the ephemeral "currently connected" state of one participant.
// It exists only while a live connection holds it and is never persisted.
type PresenceRecord struct {
	ParticipantID string    `json:"participant_id"`
	Role          string    `json:"role"`
	OnlineSince   time.Time `json:"online_since"`
}

// TypingSignal is an ephemeral broadcast that a party is composing a message.
// No history is kept; the latest signal wins.
type TypingSignal struct {
	ConversationID string `json:"conversation_id"`
	Party          string `json:"party"`
	Role           string `json:"role"`
	IsTyping       bool   `json:"is_typing"`
}
