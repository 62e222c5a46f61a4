package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserClone(t *testing.T) {
	u := &User{ID: 1, UserName: "alice", Roles: []string{"USER"}}
	c := u.Clone()
	c.Roles[0] = "ADMIN"
	c.UserName = "bob"

	assert.Equal(t, "alice", u.UserName)
	assert.Equal(t, []string{"USER"}, u.Roles)
	assert.Nil(t, (*User)(nil).Clone())
}
