package shared_test

import (
	"context"
	"testing"
	"voyage/shared"
	"voyage/shared/constant"

	"github.com/stretchr/testify/assert"
)

func TestActorRoundTrip(t *testing.T) {
	actor := shared.Actor{ID: "u-1", Email: "ada@example.com", Role: constant.RoleCorporate, CompanyID: "c-1"}

	assert.Equal(t, actor, shared.ActorFromContext(shared.WithActor(context.Background(), actor)))
	assert.Equal(t, shared.Actor{}, shared.ActorFromContext(context.Background()))
}

func TestActorOwns(t *testing.T) {
	tests := []struct {
		name  string
		actor shared.Actor
		owner string
		want  bool
	}{
		{name: "owner", actor: shared.Actor{ID: "u-1", Role: constant.RoleCustomer}, owner: "u-1", want: true},
		{name: "other customer", actor: shared.Actor{ID: "u-2", Role: constant.RoleCustomer}, owner: "u-1", want: false},
		{name: "agent", actor: shared.Actor{ID: "a-1", Role: constant.RoleAgent}, owner: "u-1", want: true},
		{name: "admin", actor: shared.Actor{ID: "x", Role: constant.RoleAdmin}, owner: "u-1", want: true},
		{name: "anonymous", actor: shared.Actor{}, owner: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.Owns(tt.owner))
		})
	}
}
