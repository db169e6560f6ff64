// Package catcommon provides context management utilities for the catalog
// service: the authenticated user context and the entity reference type
// shared between the access layer and the stores.
package catcommon

import (
	"context"
)

// ctxKeyType represents the type for all context keys
type ctxKeyType string

const (
	ctxUserContextKey ctxKeyType = "CatalogUserContext"
	ctxTestContextKey ctxKeyType = "CatalogTestContext"
)

// UserContext represents the context of an authenticated user in the system.
type UserContext struct {
	// UserID is the unique identifier for the user
	UserID string
	// CollegeID is the user's currently selected college, empty when the
	// user has not picked one yet
	CollegeID string
}

// SetUserContext sets the user context in the provided context.
func SetUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, ctxUserContextKey, uc)
}

// GetUserContext retrieves the user context from the provided context.
func GetUserContext(ctx context.Context) *UserContext {
	if uc, ok := ctx.Value(ctxUserContextKey).(*UserContext); ok {
		return uc
	}
	return nil
}

// SetTestContext sets the test context in the provided context.
func SetTestContext(ctx context.Context, isTest bool) context.Context {
	return context.WithValue(ctx, ctxTestContextKey, isTest)
}

// TestContextFromContext retrieves the test context from the provided context.
func TestContextFromContext(ctx context.Context) bool {
	if testContext, ok := ctx.Value(ctxTestContextKey).(bool); ok {
		return testContext
	}
	return false
}
