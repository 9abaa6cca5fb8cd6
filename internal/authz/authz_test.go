package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	for _, raw := range []string{"client", "worker", "admin"} {
		role, err := Parse(raw)
		assert.NoError(t, err)
		assert.Equal(t, Role(raw), role)
	}

	for _, raw := range []string{"", "Client", "superuser", "ADMIN"} {
		_, err := Parse(raw)
		assert.Error(t, err, "raw=%q", raw)
	}
}

func TestSelfRegisterable(t *testing.T) {
	assert.True(t, RoleClient.SelfRegisterable())
	assert.True(t, RoleWorker.SelfRegisterable())
	assert.False(t, RoleAdmin.SelfRegisterable())
}

func TestCan(t *testing.T) {
	cases := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleClient, ActionPostJob, true},
		{RoleWorker, ActionPostJob, false},
		{RoleAdmin, ActionPostJob, true},

		{RoleClient, ActionApplyToJob, false},
		{RoleWorker, ActionApplyToJob, true},
		{RoleAdmin, ActionApplyToJob, false},

		{RoleClient, ActionRespondApplication, true},
		{RoleWorker, ActionRespondApplication, false},

		{RoleClient, ActionManageCatalog, false},
		{RoleWorker, ActionManageCatalog, false},
		{RoleAdmin, ActionManageCatalog, true},

		{RoleWorker, ActionVerifyUser, false},
		{RoleAdmin, ActionVerifyUser, true},

		{RoleClient, ActionViewAllRecords, false},
		{RoleAdmin, ActionViewAllRecords, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.action), "role=%s action=%s", tc.role, tc.action)
	}
}

func TestCan_UnknownAction(t *testing.T) {
	assert.False(t, Can(RoleAdmin, Action("delete_everything")))
}

func TestCan_UnknownRole(t *testing.T) {
	assert.False(t, Can(Role("superuser"), ActionPostJob))
}
