package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleManager, ParseRole("manager"))
	assert.Equal(t, RoleWorker, ParseRole("worker"))

	assert.Equal(t, Role(""), ParseRole("staff"))
	assert.Equal(t, Role(""), ParseRole("ADMIN"))
	assert.Equal(t, Role(""), ParseRole(""))
}

func TestCanDecide(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAdmin.CanDecide())
	assert.True(t, RoleManager.CanDecide())
	assert.False(t, RoleWorker.CanDecide())
	assert.False(t, Role("").CanDecide())
}

func TestActionRequestIsFinalized(t *testing.T) {
	t.Parallel()

	pending := ActionRequest{Status: ActionStatusPending}
	assert.False(t, pending.IsFinalized())

	accepted := ActionRequest{Status: ActionStatusAccepted}
	assert.True(t, accepted.IsFinalized())

	declined := ActionRequest{Status: ActionStatusDeclined}
	assert.True(t, declined.IsFinalized())
}
