package entity

// UserAuth is the authenticated identity of a console agent.
type UserAuth struct {
	Username string `json:"username" bson:"username"`
}
