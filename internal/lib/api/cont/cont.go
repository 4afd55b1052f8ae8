package cont

import (
	"context"

	"ShopDesk/entity"
)

type contextKey string

const userKey contextKey = "user"

// PutUser stores the authenticated agent in the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated agent from the request context, or nil.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
