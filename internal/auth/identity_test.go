package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestIdentity(t *testing.T) {
	guest := GuestIdentity("https://example.my.salesforce.com")

	assert.True(t, guest.IsGuest())
	assert.False(t, guest.Authenticated)
	assert.Equal(t, GuestClientID, guest.ClientID)
	assert.Empty(t, guest.Claims.SalesforceToken)
	assert.Equal(t, "https://example.my.salesforce.com", guest.Claims.InstanceURL)
}

func TestIsGuestOnNil(t *testing.T) {
	var identity *Identity
	assert.True(t, identity.IsGuest())
}

func TestIdentityContextRoundTrip(t *testing.T) {
	identity := &Identity{Authenticated: true, ClientID: "salesforce"}

	ctx := ContextWithIdentity(context.Background(), identity)
	got, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, identity, got)

	_, ok = IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func TestTokenPreview(t *testing.T) {
	assert.Equal(t, "(empty)", TokenPreview(""))
	assert.Equal(t, "00Dxx000...", TokenPreview("00Dxx0000001gPL!AQcAQH0dMHZfz972Szmpkb"))
	assert.NotContains(t, TokenPreview("shorttok"), "shorttok")
}
