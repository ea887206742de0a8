package utils

import (
	"context"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, u *models.JWT) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// CurrentUser returns the user stored by WithUser.
func CurrentUser(ctx context.Context) (*models.JWT, bool) {
	u, ok := ctx.Value(userKey).(*models.JWT)
	return u, ok && u != nil
}
