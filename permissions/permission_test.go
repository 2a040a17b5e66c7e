package permissions_test

import (
	"net/http"
	"testing"
	"voyage/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	slots := data.FindPermissions("/v1/appointments/slots", http.MethodGet)
	assert.True(t, slots.Skip)

	payments := data.FindPermissions("/v1/bookings/{id}/payments", http.MethodPost)
	assert.ElementsMatch(t, []string{"agent", "admin"}, payments.Permissions)

	history := data.FindPermissions("/v1/bookings/{id}/payments", http.MethodGet)
	assert.Contains(t, history.Permissions, "customer")

	decision := data.FindPermissions("/v1/corporate/bookings/{id}/decision", http.MethodPost)
	assert.NotContains(t, decision.Permissions, "customer")
}

func TestFindPermissionsUnknown(t *testing.T) {
	data := &permissions.PermissionData{}

	assert.Equal(t, permissions.Permission{}, data.FindPermissions("/v1/nowhere", http.MethodGet))
}

func TestFindPermissionsTrailingSlash(t *testing.T) {
	data := &permissions.PermissionData{
		Endpoints: []permissions.Permission{
			{Path: "/v1/bookings/", Method: http.MethodPost, Permissions: []string{"customer"}},
		},
	}

	assert.Equal(t, []string{"customer"}, data.FindPermissions("/v1/bookings", http.MethodPost).Permissions)
	assert.Equal(t, []string{"customer"}, data.FindPermissions("/v1/bookings/", "post").Permissions)
}
