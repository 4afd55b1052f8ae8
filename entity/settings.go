package entity

// AutoReplySettings is the singleton configuration for the automated offline reply.
// It is read once at conversation-creation time; changes only affect conversations
// created afterwards.
type AutoReplySettings struct {
	Enabled      bool   `json:"enabled" bson:"enabled"`
	Message      string `json:"message" bson:"message"`
	DelaySeconds int    `json:"delay_seconds" bson:"delay_seconds"`

	// SuppressAfterAgentReply drops the canned reply if a human agent has already
	// responded by the time the timer fires. Off by default: the race between
	// "agent replies first" and "timer fires first" is otherwise resolved by
	// message ordering alone.
	SuppressAfterAgentReply bool `json:"suppress_after_agent_reply" bson:"suppress_after_agent_reply"`
}
