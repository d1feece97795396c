package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/session"
)

func strptr(s string) *string { return &s }

func TestColumnsFollowDeclarationOrder(t *testing.T) {
	cols := Columns(KindLandingPage)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"id", "campaign_id", "hostname", "page"}, names)
	assert.Nil(t, Columns(Kind("nope")))
}

func TestEveryKindIsRegistered(t *testing.T) {
	for _, k := range Kinds {
		e, err := New(k)
		require.NoError(t, err)
		assert.Equal(t, k, e.Kind())
		assert.NotEmpty(t, Columns(k))
	}
	_, err := New(Kind("nope"))
	assert.Error(t, err)
}

func TestValueAndMatches(t *testing.T) {
	c := &Credential{ID: 3, CampaignID: 5, Username: strptr("bob")}

	v, ok := Value(c, "username")
	require.True(t, ok)
	assert.Equal(t, "bob", *v.(*string))

	_, ok = Value(c, "missing")
	assert.False(t, ok)

	assert.True(t, Matches(c, map[string]any{"campaign_id": 5}))
	assert.True(t, Matches(c, map[string]any{"id": int64(3), "username": "bob"}))
	assert.False(t, Matches(c, map[string]any{"campaign_id": 6}))
	assert.False(t, Matches(c, map[string]any{"mfa_token": "x"}))
	assert.True(t, Matches(c, map[string]any{"mfa_token": nil}))
	assert.True(t, Matches(c, nil))
}

func TestHasReadAccess(t *testing.T) {
	alice := &session.Static{User: "alice", Deny: map[string][]string{"credentials": {"password"}}}
	admin := &session.Static{User: "root", Admin: true}

	cred := &Credential{ID: 1}
	assert.True(t, cred.HasReadAccess(alice, "username"))
	assert.False(t, cred.HasReadAccess(alice, "password"))

	u := &User{ID: "alice"}
	other := &User{ID: "bob"}
	assert.True(t, u.HasReadAccess(alice, "otp_secret"))
	assert.False(t, other.HasReadAccess(alice, "otp_secret"))
	assert.False(t, other.HasReadAccess(admin, "otp_secret"))
	assert.True(t, other.HasReadAccess(alice, "name"))

	sub := &AlertSubscription{ID: 1, UserID: "bob"}
	assert.False(t, sub.HasReadAccess(alice, "type"))
	assert.True(t, sub.HasReadAccess(admin, "type"))
}
