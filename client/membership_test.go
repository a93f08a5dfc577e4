package client

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveRoles(t *testing.T) {
	members := []Member{
		{UserID: "U1", Role: "ADMIN"},
		{UserID: "U2", Role: "MEMBER"},
		{UserID: "U3", Role: "OBSERVER"},
	}

	tests := []struct {
		name        string
		members     []Member
		currentUser string
		wantAdmin   bool
		wantMember  bool
	}{
		{"admin match", members, "U1", true, true},
		{"member match", members, "U2", false, true},
		{"observer match", members, "U3", false, false},
		{"case and whitespace insensitive", members, "u1 ", true, true},
		{"lowercase member", members, " u2", false, true},
		{"no match", members, "U9", false, false},
		{"empty current user", members, "", false, false},
		{"whitespace-only current user", members, "   ", false, false},
		{"empty member list", nil, "U1", false, false},
		{"member ids with whitespace", []Member{{UserID: " u1 ", Role: "ADMIN"}}, "U1", true, true},
		{"unknown role degrades to no permission", []Member{{UserID: "U1", Role: "OWNER"}}, "U1", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isAdmin, isMember := DeriveRoles(tt.members, tt.currentUser)
			assert.Equal(t, tt.wantAdmin, isAdmin, "isAdmin")
			assert.Equal(t, tt.wantMember, isMember, "isMember")
		})
	}
}

func TestMemberUnmarshal_CamelCase(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"projectId":"P1","userId":"U1","userEmail":"a@b.c","role":"admin"}`), &m))
	assert.Equal(t, "P1", m.ProjectID)
	assert.Equal(t, "U1", m.UserID)
	assert.Equal(t, "a@b.c", m.UserEmail)
	assert.Equal(t, "ADMIN", m.Role)
}

func TestMemberUnmarshal_SnakeCase(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"project_id":"P1","user_id":"U1","role":" member "}`), &m))
	assert.Equal(t, "P1", m.ProjectID)
	assert.Equal(t, "U1", m.UserID)
	assert.Equal(t, "MEMBER", m.Role)
}

func TestMemberUnmarshal_PrefersCamelCase(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"userId":"U1","user_id":"other"}`), &m))
	assert.Equal(t, "U1", m.UserID)
}
