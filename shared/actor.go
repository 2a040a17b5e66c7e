package shared

import (
	"context"
	"slices"
	"voyage/shared/constant"
)

// Actor is the authenticated caller as placed on the context by the auth middleware.
type Actor struct {
	ID        string
	Email     string
	Role      string
	CompanyID string
}

func ActorFromContext(ctx context.Context) Actor {
	id, _ := ctx.Value(constant.ContextKeyUserID).(string)
	email, _ := ctx.Value(constant.ContextKeyUserEmail).(string)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	companyID, _ := ctx.Value(constant.ContextKeyCompanyID).(string)

	return Actor{ID: id, Email: email, Role: role, CompanyID: companyID}
}

// WithActor is the inverse of ActorFromContext.
func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, constant.ContextKeyUserID, actor.ID)
	ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, actor.Email)
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, actor.Role)

	return context.WithValue(ctx, constant.ContextKeyCompanyID, actor.CompanyID)
}

func (a Actor) HasRole(roles ...string) bool {
	return slices.Contains(roles, a.Role)
}

// IsStaff covers agents and admins.
func (a Actor) IsStaff() bool {
	return a.HasRole(constant.RoleAgent, constant.RoleAdmin)
}

// Owns reports whether the actor may act on a resource owned by ownerID.
func (a Actor) Owns(ownerID string) bool {
	return a.IsStaff() || (a.ID != "" && a.ID == ownerID)
}
