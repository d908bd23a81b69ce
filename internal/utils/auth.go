package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ActorIDKey    contextKey = "actor_id"
	BusinessIDKey contextKey = "business_id"
	RoleKey       contextKey = "role"
)

const RoleAdmin = "ADMIN"

// SetActorContext stores the authenticated staff member (called by middleware).
func SetActorContext(ctx context.Context, actorID, businessID, role string) context.Context {
	ctx = context.WithValue(ctx, ActorIDKey, actorID)
	ctx = context.WithValue(ctx, BusinessIDKey, businessID)
	ctx = context.WithValue(ctx, RoleKey, role)
	return ctx
}

func GetActorIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ActorIDKey).(string)
	return id, ok && id != ""
}

func GetBusinessIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(BusinessIDKey).(string)
	return id
}

func GetRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleKey).(string)
	return role
}

// CanActOnBusiness reports whether the actor in ctx may operate on businessID.
// Admins may act on any business. IDs are compared as UUIDs, so letter case
// and braces do not matter.
func CanActOnBusiness(ctx context.Context, businessID string) bool {
	if GetRoleFromContext(ctx) == RoleAdmin {
		return true
	}
	own, err := uuid.Parse(GetBusinessIDFromContext(ctx))
	if err != nil {
		return false
	}
	target, err := uuid.Parse(businessID)
	if err != nil {
		return false
	}
	return own == target
}
