package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation statuses.
const (
	StatusOpen     = "open"
	StatusPending  = "pending"
	StatusResolved = "resolved"
	StatusClosed   = "closed"
)

// ValidStatus reports whether s is a known conversation status.
func ValidStatus(s string) bool {
	switch s {
	case StatusOpen, StatusPending, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Conversation represents a support dialogue between one customer and the agent pool.
type Conversation struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CustomerName  string             `json:"customer_name" bson:"customer_name"`
	CustomerEmail string             `json:"customer_email" bson:"customer_email"`
	CustomerPhone string             `json:"customer_phone,omitempty" bson:"customer_phone,omitempty"`
	Subject       string             `json:"subject" bson:"subject"`
	Status        string             `json:"status" bson:"status"`
	Priority      string             `json:"priority,omitempty" bson:"priority,omitempty"`
	Category      string             `json:"category,omitempty" bson:"category,omitempty"`
	AssignedTo    string             `json:"assigned_to,omitempty" bson:"assigned_to,omitempty"`

	// UnreadAgent counts customer messages not yet read by any agent,
	// UnreadCustomer counts agent messages not yet read by the customer.
	UnreadAgent    int `json:"unread_agent" bson:"unread_agent"`
	UnreadCustomer int `json:"unread_customer" bson:"unread_customer"`

	Tags        []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	Notes       string    `json:"notes,omitempty" bson:"notes,omitempty"`
	LastMessage string    `json:"last_message,omitempty" bson:"last_message,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// UnreadFor returns the unread counter owed to the given reader role.
func (c *Conversation) UnreadFor(role string) int {
	if role == RoleAgent {
		return c.UnreadAgent
	}
	return c.UnreadCustomer
}

// Intake is the form a storefront visitor submits to open a conversation.
type Intake struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1"`
}
